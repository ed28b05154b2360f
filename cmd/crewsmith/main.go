package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"

	"github.com/crewsmith/crewsmith/internal/config"
	"github.com/crewsmith/crewsmith/internal/engine"
	"github.com/crewsmith/crewsmith/internal/logging"
	"github.com/crewsmith/crewsmith/internal/team"
	"github.com/crewsmith/crewsmith/internal/tool"
	"github.com/crewsmith/crewsmith/internal/tui"
	"github.com/crewsmith/crewsmith/internal/workflow"
)

var (
	headerColor     = color.New(color.FgCyan, color.Bold)
	capabilityColor = color.New(color.FgYellow)
	textColor       = color.New(color.Faint)
)

func main() {
	requirementsPath := flag.String("requirements", "", "path to a text file containing the project requirements (required)")
	outputDir := flag.String("output", "output", "output directory for generated files")
	workersPath := flag.String("workers", config.DefaultWorkersFile, "path to the worker spec YAML")
	tasksPath := flag.String("tasks", config.DefaultTasksFile, "path to the task spec YAML")
	leadName := flag.String("lead", workflow.DefaultLeadName, "name of the worker that runs the design phase")
	statement := flag.String("statement", "", "explicit task statement (defaults to one derived from the requirements)")
	quiet := flag.Bool("quiet", false, "show minimal progress information")
	useTUI := flag.Bool("tui", false, "render progress in a live terminal view")
	flag.Parse()

	if strings.TrimSpace(*requirementsPath) == "" {
		die("--requirements is required")
	}
	requirements, err := loadRequirements(*requirementsPath)
	if err != nil {
		die("%v", err)
	}

	workers, err := config.LoadWorkerSpecsFile(*workersPath)
	if err != nil {
		die("%v", err)
	}
	tasks, err := config.LoadTaskSpecsFile(*tasksPath)
	if err != nil {
		die("%v", err)
	}

	absOutput, err := filepath.Abs(*outputDir)
	if err != nil {
		die("resolve output dir: %v", err)
	}
	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		die("create output dir: %v", err)
	}
	logger, err := logging.New(absOutput)
	if err != nil {
		die("%v", err)
	}
	defer logger.Close()

	resolver := tool.NewResolver(tool.BuiltinRegistry(absOutput))
	factory := team.NewFactory(workers, tasks, resolver)
	resolved, err := factory.CreateAllWorkers(map[string]string{
		"requirements": requirements,
	})
	if err != nil {
		die("assemble crew: %v", err)
	}

	eng, err := engine.New(engine.Config{}, logger.Prefixed("engine"))
	if err != nil {
		die("%v", err)
	}

	var result workflow.Result
	if *useTUI {
		result, err = runWithTUI(eng, resolved, *leadName, logger, requirements, *statement)
	} else {
		result, err = runPlain(eng, resolved, *leadName, logger, requirements, *statement, *quiet)
	}
	if err != nil {
		die("%v", err)
	}

	if !*quiet {
		fmt.Println()
		fmt.Printf("Run %s. Generated files are in %s\n", result.Status, absOutput)
		if result.FinalOutput != "" {
			fmt.Printf("\nFinal output:\n%s\n", result.FinalOutput)
		}
	}
}

func runPlain(eng workflow.Engine, resolved map[string]*team.ResolvedWorker, lead string,
	logger *logging.Logger, requirements, statement string, quiet bool) (workflow.Result, error) {

	orch, err := workflow.New(eng,
		workflow.WithLeadName(lead),
		workflow.WithLogger(logger.Prefixed("workflow")),
		workflow.WithProgress(func(line workflow.ProgressLine) {
			printLine(line, quiet)
		}),
	)
	if err != nil {
		return workflow.Result{}, err
	}
	if err := orch.Compose(resolved); err != nil {
		return workflow.Result{}, err
	}
	if !quiet {
		printBanner(orch.Graph(), requirements)
	}
	return orch.Run(context.Background(), requirements, statement)
}

func runWithTUI(eng workflow.Engine, resolved map[string]*team.ResolvedWorker, lead string,
	logger *logging.Logger, requirements, statement string) (workflow.Result, error) {

	progress := make(chan workflow.ProgressLine, 64)
	outcomes := make(chan tui.Outcome, 1)

	// Quitting the view cancels the run so in-flight model calls stop and
	// the orchestrator goroutine never blocks on an abandoned channel.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch, err := workflow.New(eng,
		workflow.WithLeadName(lead),
		workflow.WithLogger(logger.Prefixed("workflow")),
		workflow.WithProgress(progressSink(ctx, progress)),
	)
	if err != nil {
		return workflow.Result{}, err
	}
	if err := orch.Compose(resolved); err != nil {
		return workflow.Result{}, err
	}

	go func() {
		result, runErr := orch.Run(ctx, requirements, statement)
		close(progress)
		outcomes <- tui.Outcome{Result: result, Err: runErr}
	}()

	program := tea.NewProgram(tui.NewRun(progress, outcomes))
	final, err := program.Run()
	cancel()
	if err != nil {
		return workflow.Result{}, fmt.Errorf("run progress view: %w", err)
	}
	model, ok := final.(tui.RunModel)
	if !ok {
		return workflow.Result{}, fmt.Errorf("unexpected progress view model")
	}
	outcome, ok := model.Outcome()
	if !ok {
		return workflow.Result{}, fmt.Errorf("run interrupted before completion")
	}
	return outcome.Result, outcome.Err
}

// progressSink forwards progress lines to the view, dropping them once the
// run context is cancelled so a closed view cannot stall the run goroutine.
func progressSink(ctx context.Context, progress chan<- workflow.ProgressLine) func(workflow.ProgressLine) {
	return func(line workflow.ProgressLine) {
		select {
		case progress <- line:
		case <-ctx.Done():
		}
	}
}

func printLine(line workflow.ProgressLine, quiet bool) {
	switch line.Kind {
	case workflow.LineHeader:
		headerColor.Println(line.String())
	case workflow.LineCapability:
		if !quiet {
			capabilityColor.Println(line.String())
		}
	default:
		if !quiet {
			textColor.Println(line.String())
		}
	}
}

func printBanner(graph workflow.Graph, requirements string) {
	divider := strings.Repeat("=", 72)
	fmt.Println(divider)
	fmt.Println("crewsmith - starting crew run")
	fmt.Println(divider)
	fmt.Printf("Phase 1 (design): %s\n", graph.Head().Name)
	names := make([]string, 0, len(graph.Tail()))
	for _, worker := range graph.Tail() {
		names = append(names, worker.Name)
	}
	if len(names) > 0 {
		fmt.Printf("Phase 2 (parallel): %s\n", strings.Join(names, ", "))
	}
	fmt.Printf("\nRequirements:\n%s\n", requirements)
	fmt.Println(divider)
}

func loadRequirements(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read requirements file: %w", err)
	}
	requirements := strings.TrimSpace(string(content))
	if requirements == "" {
		return "", fmt.Errorf("requirements file %s is empty", path)
	}
	return requirements, nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "crewsmith: "+format+"\n", args...)
	os.Exit(1)
}
