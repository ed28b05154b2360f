package workflow

import (
	"context"
	"testing"

	"github.com/crewsmith/crewsmith/internal/team"
)

// scriptedEngine replays a fixed event sequence over a channel, the way a
// real engine streams a run.
type scriptedEngine struct {
	events    []Event
	statement string
}

func (e *scriptedEngine) Execute(ctx context.Context, graph Graph, statement string) (<-chan Event, error) {
	e.statement = statement
	out := make(chan Event)
	go func() {
		defer close(out)
		for _, ev := range e.events {
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func composedOrchestrator(t *testing.T, engine Engine, opts ...Option) *Orchestrator {
	t.Helper()
	orch, err := New(engine, opts...)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	workers := map[string]*team.ResolvedWorker{
		"lead":             workerNamed("lead"),
		"backend_engineer": workerNamed("backend_engineer"),
	}
	if err := orch.Compose(workers); err != nil {
		t.Fatalf("compose: %v", err)
	}
	return orch
}

func TestRunConsumesStreamToCompletion(t *testing.T) {
	engine := &scriptedEngine{events: []Event{
		{Worker: "lead", Parts: []ContentPart{TextPart("drafting the design")}},
		{Worker: "lead", Terminal: true, Parts: []ContentPart{TextPart("the design")}},
		{Worker: "backend_engineer", Parts: []ContentPart{
			CapabilityPart("save_to_file", map[string]string{"filename": "main.py"}),
		}},
		{Worker: "backend_engineer", Terminal: true, Parts: []ContentPart{TextPart("backend done")}},
	}}
	var lines []ProgressLine
	orch := composedOrchestrator(t, engine, WithProgress(func(line ProgressLine) {
		lines = append(lines, line)
	}))

	result, err := orch.Run(context.Background(), "a todo app", "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Status != StatusCompleted {
		t.Fatalf("expected completed status, got %s", result.Status)
	}
	if result.FinalOutput != "backend done" {
		t.Fatalf("unexpected final output: %q", result.FinalOutput)
	}
	if orch.State() != StateCompleted {
		t.Fatalf("expected completed state, got %s", orch.State())
	}
	if countKind(lines, LineHeader) != 2 {
		t.Fatalf("expected one header per worker, got %d", countKind(lines, LineHeader))
	}
}

func TestRunDerivesStatementFromRequirements(t *testing.T) {
	engine := &scriptedEngine{}
	orch := composedOrchestrator(t, engine)
	if _, err := orch.Run(context.Background(), "a todo app", ""); err != nil {
		t.Fatalf("run: %v", err)
	}
	if engine.statement != TaskStatement("a todo app") {
		t.Fatalf("statement not derived from requirements: %q", engine.statement)
	}
}

func TestRunKeepsExplicitStatement(t *testing.T) {
	engine := &scriptedEngine{}
	orch := composedOrchestrator(t, engine)
	if _, err := orch.Run(context.Background(), "a todo app", "build it now"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if engine.statement != "build it now" {
		t.Fatalf("explicit statement overwritten: %q", engine.statement)
	}
}

func TestRunRequiresComposedState(t *testing.T) {
	orch, err := New(&scriptedEngine{})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	if _, err := orch.Run(context.Background(), "x", ""); err == nil {
		t.Fatalf("run before compose should fail")
	}
}

func TestComposeRejectsSecondCall(t *testing.T) {
	orch := composedOrchestrator(t, &scriptedEngine{})
	err := orch.Compose(map[string]*team.ResolvedWorker{"lead": workerNamed("lead")})
	if err == nil {
		t.Fatalf("compose after compose should fail")
	}
}

func TestNewRequiresEngine(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for nil engine")
	}
}
