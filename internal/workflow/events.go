package workflow

// PartKind tags a content part so consumers dispatch on an explicit variant
// instead of probing payload shapes.
type PartKind string

const (
	// PartText carries plain text produced by a worker.
	PartText PartKind = "text"
	// PartCapability records a capability invocation by name and arguments.
	PartCapability PartKind = "capability"
)

// ContentPart is one unit of event content: either plain text or a
// capability-invocation record, never both.
type ContentPart struct {
	Kind       PartKind
	Text       string
	Capability string
	Args       map[string]string
}

// TextPart builds a plain-text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Kind: PartText, Text: text}
}

// CapabilityPart builds a capability-invocation content part.
func CapabilityPart(name string, args map[string]string) ContentPart {
	return ContentPart{Kind: PartCapability, Capability: name, Args: args}
}

// Event is one unit of the live execution feed. Events are transient:
// consumed in emission order and never persisted. A terminal event marks a
// worker's (or the run's) final response; its first text part is the
// candidate final output.
type Event struct {
	RunID    string
	Worker   string
	Parts    []ContentPart
	Terminal bool
}

// FirstText returns the event's first plain-text part, if any.
func (e Event) FirstText() (string, bool) {
	for _, part := range e.Parts {
		if part.Kind == PartText {
			return part.Text, true
		}
	}
	return "", false
}
