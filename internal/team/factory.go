// Package team turns declarative worker and task specs into resolved,
// runnable workers with fully-substituted instructions and capability sets.
package team

import (
	"errors"
	"fmt"
	"sort"

	"github.com/crewsmith/crewsmith/internal/config"
	"github.com/crewsmith/crewsmith/internal/prompt"
	"github.com/crewsmith/crewsmith/internal/tool"
)

var (
	// ErrUnknownWorker indicates a worker name absent from the loaded specs.
	ErrUnknownWorker = errors.New("team: unknown worker")
	// ErrUnknownTask indicates a task name absent from the loaded specs.
	ErrUnknownTask = errors.New("team: unknown task")
)

// ResolvedWorker is a fully-assembled worker: instructions carry no further
// templating, capabilities are in declared order, and the value is never
// mutated after creation.
type ResolvedWorker struct {
	Name         string
	Instructions string
	Capabilities []tool.Capability
	Model        string
	OutputKey    string
}

// Factory builds resolved workers from loaded specs.
type Factory struct {
	workers  map[string]config.WorkerSpec
	tasks    map[string]config.TaskSpec
	resolver *tool.Resolver
}

// NewFactory wires a factory to its spec collections and tool resolver.
func NewFactory(workers map[string]config.WorkerSpec, tasks map[string]config.TaskSpec, resolver *tool.Resolver) *Factory {
	return &Factory{workers: workers, tasks: tasks, resolver: resolver}
}

// CreateWorker resolves one worker against one task, substituting vars into
// every template field.
func (f *Factory) CreateWorker(workerName, taskName string, vars map[string]string) (*ResolvedWorker, error) {
	worker, ok := f.workers[workerName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWorker, workerName)
	}
	task, ok := f.tasks[taskName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, taskName)
	}
	instructions, err := prompt.BuildInstructions(worker, task, vars)
	if err != nil {
		return nil, fmt.Errorf("team: instructions for %s: %w", workerName, err)
	}
	capabilities, err := f.resolver.Resolve(worker.Tools, worker.ToolsModule)
	if err != nil {
		return nil, fmt.Errorf("team: capabilities for %s: %w", workerName, err)
	}
	return &ResolvedWorker{
		Name:         worker.Name,
		Instructions: instructions,
		Capabilities: capabilities,
		Model:        worker.Model,
		OutputKey:    worker.OutputKey,
	}, nil
}

// CreateAllWorkers derives the worker-to-task assignment map from the task
// specs and resolves every assigned worker. Any failure aborts the whole
// batch; no partial team is returned.
func (f *Factory) CreateAllWorkers(vars map[string]string) (map[string]*ResolvedWorker, error) {
	assignments, err := config.Assignments(f.tasks)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(assignments))
	for workerName := range assignments {
		names = append(names, workerName)
	}
	sort.Strings(names)
	resolved := make(map[string]*ResolvedWorker, len(assignments))
	for _, workerName := range names {
		worker, err := f.CreateWorker(workerName, assignments[workerName], vars)
		if err != nil {
			return nil, err
		}
		resolved[workerName] = worker
	}
	return resolved, nil
}

// Task returns the task spec a resolved worker was assigned, used by the
// orchestrator to report output artifacts.
func (f *Factory) Task(name string) (config.TaskSpec, bool) {
	task, ok := f.tasks[name]
	return task, ok
}
