// Package config loads the declarative crew configuration: one YAML file
// describing workers and one describing the tasks assigned to them. Both are
// loaded once per run and treated as immutable afterwards.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultWorkersFile is the conventional worker spec location.
	DefaultWorkersFile = "configs/workers.yaml"
	// DefaultTasksFile is the conventional task spec location.
	DefaultTasksFile = "configs/tasks.yaml"
	// DefaultModel is applied to workers that do not pin a model.
	DefaultModel = "claude-sonnet-4-20250514"
)

// ErrDuplicateAssignment indicates a worker referenced by more than one task.
// Silently discarding one of the assignments is almost certainly a config
// mistake, so the whole load fails instead.
var ErrDuplicateAssignment = errors.New("config: worker assigned by more than one task")

// WorkerSpec declares a role-specialized worker. The natural-language fields
// are templates; placeholders are substituted with run variables when the
// worker is resolved.
type WorkerSpec struct {
	Name        string   `yaml:"-"`
	Role        string   `yaml:"role"`
	Goal        string   `yaml:"goal"`
	Backstory   string   `yaml:"backstory"`
	Model       string   `yaml:"model"`
	Tools       []string `yaml:"tools"`
	ToolsModule string   `yaml:"tools_module"`
	OutputKey   string   `yaml:"output_key"`
}

// Normalized trims whitespace and applies defaults: the model falls back to
// DefaultModel and the output key to the worker name.
func (w WorkerSpec) Normalized() WorkerSpec {
	w.Name = strings.TrimSpace(w.Name)
	w.Role = strings.TrimSpace(w.Role)
	w.Goal = strings.TrimSpace(w.Goal)
	w.Backstory = strings.TrimSpace(w.Backstory)
	w.Model = strings.TrimSpace(w.Model)
	w.ToolsModule = strings.TrimSpace(w.ToolsModule)
	w.OutputKey = strings.TrimSpace(w.OutputKey)
	if w.Model == "" {
		w.Model = DefaultModel
	}
	if w.OutputKey == "" {
		w.OutputKey = w.Name
	}
	return w
}

// Validate ensures the spec is usable.
func (w WorkerSpec) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("config: worker name is required")
	}
	if w.Role == "" && w.Goal == "" && w.Backstory == "" {
		return fmt.Errorf("config: worker %s declares no role, goal, or backstory", w.Name)
	}
	for i, tool := range w.Tools {
		if strings.TrimSpace(tool) == "" {
			return fmt.Errorf("config: worker %s tool[%d] is empty", w.Name, i)
		}
	}
	return nil
}

// TaskSpec declares a unit of work and the worker that must execute it.
type TaskSpec struct {
	Name           string `yaml:"-"`
	Description    string `yaml:"description"`
	ExpectedOutput string `yaml:"expected_output"`
	OutputFile     string `yaml:"output_file"`
	Worker         string `yaml:"worker"`
}

// Normalized trims whitespace on every field.
func (t TaskSpec) Normalized() TaskSpec {
	t.Name = strings.TrimSpace(t.Name)
	t.Description = strings.TrimSpace(t.Description)
	t.ExpectedOutput = strings.TrimSpace(t.ExpectedOutput)
	t.OutputFile = strings.TrimSpace(t.OutputFile)
	t.Worker = strings.TrimSpace(t.Worker)
	return t
}

// Validate ensures the spec is usable.
func (t TaskSpec) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("config: task name is required")
	}
	if t.Worker == "" {
		return fmt.Errorf("config: task %s does not name a worker", t.Name)
	}
	if t.Description == "" {
		return fmt.Errorf("config: task %s has no description", t.Name)
	}
	return nil
}

// ParseWorkerSpecs decodes a worker spec collection keyed by worker name.
func ParseWorkerSpecs(data []byte) (map[string]WorkerSpec, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("config: worker spec payload is empty")
	}
	var raw map[string]WorkerSpec
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: decode worker specs: %w", err)
	}
	specs := make(map[string]WorkerSpec, len(raw))
	for name, spec := range raw {
		spec.Name = name
		spec = spec.Normalized()
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		specs[spec.Name] = spec
	}
	return specs, nil
}

// ParseTaskSpecs decodes a task spec collection keyed by task name.
func ParseTaskSpecs(data []byte) (map[string]TaskSpec, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("config: task spec payload is empty")
	}
	var raw map[string]TaskSpec
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: decode task specs: %w", err)
	}
	specs := make(map[string]TaskSpec, len(raw))
	for name, spec := range raw {
		spec.Name = name
		spec = spec.Normalized()
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		specs[spec.Name] = spec
	}
	return specs, nil
}

// LoadWorkerSpecs reads worker specs from an io.Reader.
func LoadWorkerSpecs(r io.Reader) (map[string]WorkerSpec, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: read worker specs: %w", err)
	}
	return ParseWorkerSpecs(content)
}

// LoadTaskSpecs reads task specs from an io.Reader.
func LoadTaskSpecs(r io.Reader) (map[string]TaskSpec, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: read task specs: %w", err)
	}
	return ParseTaskSpecs(content)
}

// LoadWorkerSpecsFile loads worker specs from an explicit file path.
func LoadWorkerSpecsFile(path string) (map[string]WorkerSpec, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	specs, parseErr := ParseWorkerSpecs(content)
	if parseErr != nil {
		return nil, fmt.Errorf("config: %s: %w", path, parseErr)
	}
	return specs, nil
}

// LoadTaskSpecsFile loads task specs from an explicit file path.
func LoadTaskSpecsFile(path string) (map[string]TaskSpec, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	specs, parseErr := ParseTaskSpecs(content)
	if parseErr != nil {
		return nil, fmt.Errorf("config: %s: %w", path, parseErr)
	}
	return specs, nil
}

// Assignments inverts the task specs' worker references into a map from
// worker name to the task it must execute.
// Task names are visited in sorted order so failures are deterministic. A
// worker referenced by two tasks fails with ErrDuplicateAssignment.
func Assignments(tasks map[string]TaskSpec) (map[string]string, error) {
	names := make([]string, 0, len(tasks))
	for name := range tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	assignments := make(map[string]string, len(tasks))
	for _, name := range names {
		task := tasks[name]
		if task.Worker == "" {
			continue
		}
		if prior, exists := assignments[task.Worker]; exists {
			return nil, fmt.Errorf("%w: %s claimed by %s and %s", ErrDuplicateAssignment, task.Worker, prior, name)
		}
		assignments[task.Worker] = name
	}
	return assignments, nil
}
