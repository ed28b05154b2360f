package workflow

import (
	"fmt"
	"strings"

	"github.com/crewsmith/crewsmith/internal/tool"
)

// PreviewBudget bounds how much of a text part the progress feed shows.
// Full text is never needed downstream; previews exist for human feedback.
const PreviewBudget = 160

// LineKind classifies a rendered progress line.
type LineKind string

const (
	// LineHeader introduces a worker section; emitted once per cursor change.
	LineHeader LineKind = "header"
	// LineCapability reports a capability invocation.
	LineCapability LineKind = "capability"
	// LineText carries a bounded preview of worker output.
	LineText LineKind = "text"
)

// ProgressLine is one rendered unit of the progress feed.
type ProgressLine struct {
	Kind       LineKind
	Worker     string
	Capability string
	Filename   string
	Preview    string
}

// String renders the line for plain output.
func (l ProgressLine) String() string {
	switch l.Kind {
	case LineHeader:
		return fmt.Sprintf(">>> Worker: %s", l.Worker)
	case LineCapability:
		if l.Filename != "" {
			return fmt.Sprintf("    [%s] %s -> %s", l.Worker, l.Capability, l.Filename)
		}
		return fmt.Sprintf("    [%s] %s", l.Worker, l.Capability)
	default:
		return "    " + l.Preview
	}
}

// Reducer folds the run's event stream into deduplicated progress lines and
// captures the final output. It tracks a current-worker cursor: a section
// header is emitted only when an event names a worker different from the
// cursor, never for consecutive events from the same worker.
type Reducer struct {
	current     string
	finalOutput string
}

// NewReducer creates a reducer with an empty cursor.
func NewReducer() *Reducer {
	return &Reducer{}
}

// Reduce consumes one event and returns the lines it produces. Terminal
// events with a text part update the captured final output; the last
// terminal event wins.
func (r *Reducer) Reduce(ev Event) []ProgressLine {
	var lines []ProgressLine
	if ev.Worker != "" && ev.Worker != r.current {
		r.current = ev.Worker
		lines = append(lines, ProgressLine{Kind: LineHeader, Worker: ev.Worker})
	}
	for _, part := range ev.Parts {
		switch part.Kind {
		case PartCapability:
			line := ProgressLine{Kind: LineCapability, Worker: ev.Worker, Capability: part.Capability}
			if part.Capability == tool.SaveToFileName {
				line.Filename = part.Args["filename"]
			}
			lines = append(lines, line)
		case PartText:
			preview := Preview(part.Text)
			if preview != "" {
				lines = append(lines, ProgressLine{Kind: LineText, Worker: ev.Worker, Preview: preview})
			}
		}
	}
	if ev.Terminal {
		if text, ok := ev.FirstText(); ok {
			r.finalOutput = text
		}
	}
	return lines
}

// FinalOutput returns the text captured from the last terminal event, or
// the empty string when no terminal event carried text.
func (r *Reducer) FinalOutput() string {
	return r.finalOutput
}

// Preview collapses whitespace and truncates text to PreviewBudget runes,
// appending an ellipsis marker when anything was cut.
func Preview(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	runes := []rune(collapsed)
	if len(runes) <= PreviewBudget {
		return collapsed
	}
	return string(runes[:PreviewBudget]) + "..."
}
