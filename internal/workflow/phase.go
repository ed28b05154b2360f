// Package workflow composes resolved workers into a fixed two-phase
// execution graph and drives a run: a sequential design phase led by one
// worker, then a parallel phase in which the remaining workers consume the
// design concurrently.
package workflow

import (
	"errors"
	"fmt"
	"sort"

	"github.com/crewsmith/crewsmith/internal/team"
)

// DefaultLeadName is the reserved worker name that plays the design role.
const DefaultLeadName = "lead"

// ErrIncompleteTeam indicates the phase graph cannot be composed because an
// expected role is absent.
var ErrIncompleteTeam = errors.New("workflow: incomplete team")

// PhaseKind distinguishes the two scheduling units.
type PhaseKind string

const (
	// PhaseSequential runs a single worker to completion before anything else.
	PhaseSequential PhaseKind = "sequential"
	// PhaseParallel requests concurrent execution of its worker set.
	PhaseParallel PhaseKind = "parallel"
)

// Phase is one scheduling unit of the graph.
type Phase struct {
	Kind    PhaseKind
	Workers []*team.ResolvedWorker
}

// Graph is the ordered phase list. Invariant: exactly one sequential head
// phase followed by exactly one parallel tail phase; the tail may be empty
// but always starts only after the head completes.
type Graph struct {
	Phases []Phase
}

// Head returns the sequential head phase's worker.
func (g Graph) Head() *team.ResolvedWorker {
	if len(g.Phases) == 0 || len(g.Phases[0].Workers) == 0 {
		return nil
	}
	return g.Phases[0].Workers[0]
}

// Tail returns the parallel tail phase's workers.
func (g Graph) Tail() []*team.ResolvedWorker {
	if len(g.Phases) < 2 {
		return nil
	}
	return g.Phases[1].Workers
}

// Validate ensures the graph holds the two-phase invariant.
func (g Graph) Validate() error {
	if len(g.Phases) != 2 {
		return fmt.Errorf("workflow: graph must have exactly two phases, got %d", len(g.Phases))
	}
	head := g.Phases[0]
	if head.Kind != PhaseSequential || len(head.Workers) != 1 {
		return fmt.Errorf("workflow: head phase must be sequential with one worker")
	}
	if g.Phases[1].Kind != PhaseParallel {
		return fmt.Errorf("workflow: tail phase must be parallel")
	}
	return nil
}

// Compose assembles the two-phase graph from a resolved worker map. The
// worker named leadName (DefaultLeadName when empty) heads the sequential
// phase; every other worker joins the parallel tail in name order.
func Compose(workers map[string]*team.ResolvedWorker, leadName string) (Graph, error) {
	if leadName == "" {
		leadName = DefaultLeadName
	}
	lead, ok := workers[leadName]
	if !ok {
		return Graph{}, fmt.Errorf("%w: no worker named %s", ErrIncompleteTeam, leadName)
	}
	names := make([]string, 0, len(workers))
	for name := range workers {
		if name == leadName {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	tail := make([]*team.ResolvedWorker, 0, len(names))
	for _, name := range names {
		tail = append(tail, workers[name])
	}
	return Graph{Phases: []Phase{
		{Kind: PhaseSequential, Workers: []*team.ResolvedWorker{lead}},
		{Kind: PhaseParallel, Workers: tail},
	}}, nil
}
