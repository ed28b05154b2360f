package config

import (
	"errors"
	"testing"
)

const workersYAML = `
lead:
  role: Plan the system
  goal: Produce a design
  backstory: You lead the team building {requirements}.
  tools:
    - save_to_file
  output_key: design

backend_engineer:
  role: Implement the backend
  model: claude-haiku-4-5-20251001
  tools:
    - save_to_file
`

const tasksYAML = `
design_task:
  description: Produce a 1-page design for {requirements}
  expected_output: A markdown document
  output_file: docs/DESIGN.md
  worker: lead

backend_task:
  description: Implement the design
  worker: backend_engineer
`

func TestParseWorkerSpecsAppliesDefaults(t *testing.T) {
	specs, err := ParseWorkerSpecs([]byte(workersYAML))
	if err != nil {
		t.Fatalf("parse workers: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("expected 2 workers, got %d", len(specs))
	}
	lead := specs["lead"]
	if lead.Name != "lead" || lead.OutputKey != "design" {
		t.Fatalf("unexpected lead spec: %+v", lead)
	}
	if lead.Model != DefaultModel {
		t.Fatalf("expected default model, got %s", lead.Model)
	}
	backend := specs["backend_engineer"]
	if backend.OutputKey != "backend_engineer" {
		t.Fatalf("output key should default to worker name, got %s", backend.OutputKey)
	}
	if backend.Model != "claude-haiku-4-5-20251001" {
		t.Fatalf("pinned model overwritten: %s", backend.Model)
	}
}

func TestParseWorkerSpecsRejectsEmptyWorker(t *testing.T) {
	if _, err := ParseWorkerSpecs([]byte("ghost: {}\n")); err == nil {
		t.Fatalf("expected validation error for empty worker")
	}
}

func TestParseTaskSpecs(t *testing.T) {
	specs, err := ParseTaskSpecs([]byte(tasksYAML))
	if err != nil {
		t.Fatalf("parse tasks: %v", err)
	}
	design := specs["design_task"]
	if design.Worker != "lead" || design.OutputFile != "docs/DESIGN.md" {
		t.Fatalf("unexpected design task: %+v", design)
	}
}

func TestParseTaskSpecsRequiresWorker(t *testing.T) {
	payload := "orphan_task:\n  description: no one runs this\n"
	if _, err := ParseTaskSpecs([]byte(payload)); err == nil {
		t.Fatalf("expected validation error for task without worker")
	}
}

func TestAssignmentsInvertsTaskReferences(t *testing.T) {
	tasks, err := ParseTaskSpecs([]byte(tasksYAML))
	if err != nil {
		t.Fatalf("parse tasks: %v", err)
	}
	assignments, err := Assignments(tasks)
	if err != nil {
		t.Fatalf("assignments: %v", err)
	}
	if len(assignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(assignments))
	}
	if assignments["lead"] != "design_task" {
		t.Fatalf("lead assigned %s", assignments["lead"])
	}
	if assignments["backend_engineer"] != "backend_task" {
		t.Fatalf("backend assigned %s", assignments["backend_engineer"])
	}
}

func TestAssignmentsRejectsDuplicateWorker(t *testing.T) {
	tasks := map[string]TaskSpec{
		"first":  {Name: "first", Description: "one", Worker: "lead"},
		"second": {Name: "second", Description: "two", Worker: "lead"},
	}
	_, err := Assignments(tasks)
	if !errors.Is(err, ErrDuplicateAssignment) {
		t.Fatalf("expected ErrDuplicateAssignment, got %v", err)
	}
}

func TestParseWorkerSpecsEmptyPayload(t *testing.T) {
	if _, err := ParseWorkerSpecs([]byte("  \n")); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}
