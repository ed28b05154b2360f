package workflow

import (
	"context"
	"fmt"

	"github.com/crewsmith/crewsmith/internal/team"
)

// Engine is the execution engine contract the orchestrator consumes. Execute
// runs the phase graph against the given task statement and returns a live,
// chronologically-ordered event stream for the run. The channel is closed
// when the run ends; head-phase events strictly precede tail-phase events.
type Engine interface {
	Execute(ctx context.Context, graph Graph, statement string) (<-chan Event, error)
}

// Logger records orchestration progress. It matches logging.Logger's
// signature.
type Logger interface {
	Printf(format string, args ...any)
}

// State tracks the orchestrator through a single run.
type State string

const (
	StateIdle      State = "idle"
	StateComposed  State = "composed"
	StateRunning   State = "running"
	StateCompleted State = "completed"
)

// Status reports how a run ended.
type Status string

// StatusCompleted is the only status the orchestrator itself surfaces:
// worker-level failures arrive as ordinary event content and are rendered,
// not interpreted.
const StatusCompleted Status = "completed"

// Result is the run outcome.
type Result struct {
	Status      Status
	FinalOutput string
}

// Option customizes orchestrator construction.
type Option func(*Orchestrator)

// WithLeadName overrides the reserved lead worker name.
func WithLeadName(name string) Option {
	return func(o *Orchestrator) {
		if name != "" {
			o.lead = name
		}
	}
}

// WithLogger attaches a logger for phase transitions and progress.
func WithLogger(logger Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithProgress registers a sink for rendered progress lines.
func WithProgress(sink func(ProgressLine)) Option {
	return func(o *Orchestrator) {
		if sink != nil {
			o.progress = sink
		}
	}
}

// Orchestrator owns a run: it composes the phase graph, submits it to the
// engine, and reduces the event stream into progress and a final result.
// Resolved workers are read-only once composed.
type Orchestrator struct {
	engine   Engine
	lead     string
	logger   Logger
	progress func(ProgressLine)

	state State
	graph Graph
}

// New creates an idle orchestrator bound to an execution engine.
func New(engine Engine, opts ...Option) (*Orchestrator, error) {
	if engine == nil {
		return nil, fmt.Errorf("workflow: orchestrator requires an engine")
	}
	o := &Orchestrator{
		engine: engine,
		lead:   DefaultLeadName,
		state:  StateIdle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o, nil
}

// State returns the orchestrator's current run state.
func (o *Orchestrator) State() State {
	return o.state
}

// Graph returns the composed phase graph.
func (o *Orchestrator) Graph() Graph {
	return o.graph
}

// Compose assembles the two-phase graph from the resolved worker map and
// moves the orchestrator from Idle to Composed.
func (o *Orchestrator) Compose(workers map[string]*team.ResolvedWorker) error {
	if o.state != StateIdle {
		return fmt.Errorf("workflow: compose called in state %s", o.state)
	}
	graph, err := Compose(workers, o.lead)
	if err != nil {
		return err
	}
	o.graph = graph
	o.state = StateComposed
	o.logf("composed phase graph: lead=%s tail=%d", graph.Head().Name, len(graph.Tail()))
	return nil
}

// Run submits the composed graph to the engine and consumes the event
// stream until it ends. When statement is empty, a user-facing task
// statement is derived from the requirements text. The stream is the only
// blocking point; worker failures inside the engine surface as event
// content, not as orchestrator errors.
func (o *Orchestrator) Run(ctx context.Context, requirements, statement string) (Result, error) {
	if o.state != StateComposed {
		return Result{}, fmt.Errorf("workflow: run called in state %s", o.state)
	}
	if statement == "" {
		statement = TaskStatement(requirements)
	}
	events, err := o.engine.Execute(ctx, o.graph, statement)
	if err != nil {
		return Result{}, fmt.Errorf("workflow: start run: %w", err)
	}
	o.state = StateRunning
	reducer := NewReducer()
	for ev := range events {
		for _, line := range reducer.Reduce(ev) {
			if o.progress != nil {
				o.progress(line)
			}
			o.logf("%s", line.String())
		}
	}
	o.state = StateCompleted
	result := Result{Status: StatusCompleted, FinalOutput: reducer.FinalOutput()}
	o.logf("run completed: final output %d bytes", len(result.FinalOutput))
	return result, nil
}

// TaskStatement derives the initial user-facing statement from raw
// requirements text.
func TaskStatement(requirements string) string {
	return fmt.Sprintf("Create a complete software solution based on these requirements:\n\n%s", requirements)
}

func (o *Orchestrator) logf(format string, args ...any) {
	if o.logger != nil {
		o.logger.Printf(format, args...)
	}
}
