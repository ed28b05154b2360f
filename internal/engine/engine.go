// Package engine executes a composed phase graph against the Anthropic
// Messages API. The sequential head worker runs to completion first; tail
// workers then run concurrently, each consuming the head phase's published
// outputs. All progress is emitted as ordered events on a single channel.
package engine

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/crewsmith/crewsmith/internal/workflow"
)

const (
	defaultMaxTokens     = 8192
	defaultMaxIterations = 30
	defaultBufferSize    = 64
)

// Config controls engine construction.
type Config struct {
	// APIKey authenticates against the API. Falls back to the
	// ANTHROPIC_API_KEY environment variable when empty.
	APIKey string
	// MaxTokens bounds each model response.
	MaxTokens int64
	// MaxIterations bounds a single worker's reasoning loop.
	MaxIterations int
	// BufferSize sizes the event channel.
	BufferSize int
}

func (cfg Config) normalized() Config {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	return cfg
}

// Anthropic implements workflow.Engine over the Anthropic Messages API.
type Anthropic struct {
	client anthropic.Client
	cfg    Config
	logger workflow.Logger
}

// New creates an engine. The logger is optional.
func New(cfg Config, logger workflow.Logger) (*Anthropic, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("engine: ANTHROPIC_API_KEY is not set")
	}
	return &Anthropic{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		cfg:    cfg.normalized(),
		logger: logger,
	}, nil
}

// Execute runs the graph and returns the run's event stream. The head
// worker is a single blocking unit: no tail work starts until it finishes.
// Tail workers run concurrently with their events merged onto the one
// channel; each worker's own events preserve emission order. The channel is
// closed when every worker has finished.
func (e *Anthropic) Execute(ctx context.Context, graph workflow.Graph, statement string) (<-chan workflow.Event, error) {
	if err := graph.Validate(); err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	events := make(chan workflow.Event, e.cfg.BufferSize)
	go func() {
		defer close(events)
		state := newRunState()
		head := graph.Head()
		e.logf("run %s: head phase worker %s", runID, head.Name)
		if err := e.runWorker(ctx, runID, head, statement, state, events); err != nil {
			e.logf("run %s: head phase failed: %v", runID, err)
			return
		}
		tail := graph.Tail()
		if len(tail) == 0 {
			return
		}
		e.logf("run %s: parallel phase with %d workers", runID, len(tail))
		g, gctx := errgroup.WithContext(ctx)
		for _, worker := range tail {
			worker := worker
			g.Go(func() error {
				if err := e.runWorker(gctx, runID, worker, statement, state, events); err != nil {
					e.logf("run %s: worker %s failed: %v", runID, worker.Name, err)
				}
				// A tail worker's failure never cancels its peers.
				return nil
			})
		}
		_ = g.Wait()
	}()
	return events, nil
}

func (e *Anthropic) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}

// runState is the run-shared output store. Each worker publishes its final
// text under its output key exactly once; keys are exclusive per worker, so
// the map is monotonic for the life of the run.
type runState struct {
	mu      sync.Mutex
	outputs map[string]string
	order   []string
}

func newRunState() *runState {
	return &runState{outputs: make(map[string]string)}
}

func (s *runState) set(key, text string) {
	if key == "" || text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.outputs[key]; !exists {
		s.order = append(s.order, key)
	}
	s.outputs[key] = text
}

// contextBlock renders the published outputs as prompt context for later
// phases, in publication order. Empty when nothing has been published.
func (s *runState) contextBlock() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Context from earlier phases:")
	for _, key := range s.order {
		b.WriteString(fmt.Sprintf("\n\n## %s\n\n%s", key, s.outputs[key]))
	}
	return b.String()
}
