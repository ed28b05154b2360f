package workflow

import (
	"strings"
	"testing"
)

func countKind(lines []ProgressLine, kind LineKind) int {
	n := 0
	for _, line := range lines {
		if line.Kind == kind {
			n++
		}
	}
	return n
}

func TestReducerCoalescesConsecutiveWorkers(t *testing.T) {
	reducer := NewReducer()
	var lines []ProgressLine
	for _, worker := range []string{"alpha", "alpha", "beta", "alpha"} {
		lines = append(lines, reducer.Reduce(Event{
			Worker: worker,
			Parts:  []ContentPart{TextPart("working")},
		})...)
	}
	if got := countKind(lines, LineHeader); got != 3 {
		t.Fatalf("expected 3 headers for alpha,alpha,beta,alpha; got %d", got)
	}
	if got := countKind(lines, LineText); got != 4 {
		t.Fatalf("every text part should render, got %d lines", got)
	}
}

func TestReducerCapabilityLineNamesSavedFile(t *testing.T) {
	reducer := NewReducer()
	lines := reducer.Reduce(Event{
		Worker: "backend_engineer",
		Parts: []ContentPart{
			CapabilityPart("save_to_file", map[string]string{"filename": "src/main.py", "content": "print()"}),
		},
	})
	if len(lines) != 2 {
		t.Fatalf("expected header plus capability line, got %d", len(lines))
	}
	capLine := lines[1]
	if capLine.Kind != LineCapability || capLine.Filename != "src/main.py" {
		t.Fatalf("unexpected capability line: %+v", capLine)
	}
	if !strings.Contains(capLine.String(), "save_to_file -> src/main.py") {
		t.Fatalf("rendered line should show the target file: %q", capLine.String())
	}
}

func TestReducerTerminalLastWins(t *testing.T) {
	reducer := NewReducer()
	reducer.Reduce(Event{Worker: "lead", Terminal: true, Parts: []ContentPart{TextPart("draft design")}})
	reducer.Reduce(Event{Worker: "test_engineer", Terminal: true, Parts: []ContentPart{TextPart("all tests written")}})
	if got := reducer.FinalOutput(); got != "all tests written" {
		t.Fatalf("last terminal text should win, got %q", got)
	}
}

func TestReducerTerminalWithoutTextKeepsPrevious(t *testing.T) {
	reducer := NewReducer()
	reducer.Reduce(Event{Worker: "lead", Terminal: true, Parts: []ContentPart{TextPart("design")}})
	reducer.Reduce(Event{Worker: "lead", Terminal: true})
	if got := reducer.FinalOutput(); got != "design" {
		t.Fatalf("textless terminal should not erase output, got %q", got)
	}
}

func TestPreviewCollapsesAndTruncates(t *testing.T) {
	if got := Preview("  hello \n\t world  "); got != "hello world" {
		t.Fatalf("whitespace not collapsed: %q", got)
	}
	long := strings.Repeat("x", PreviewBudget+10)
	got := Preview(long)
	if len([]rune(got)) != PreviewBudget+3 || !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncation with ellipsis, got %d runes", len([]rune(got)))
	}
	if Preview("   ") != "" {
		t.Fatalf("blank text should preview empty")
	}
}
