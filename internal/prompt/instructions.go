package prompt

import (
	"fmt"
	"path"
	"strings"

	"github.com/crewsmith/crewsmith/internal/config"
	"github.com/crewsmith/crewsmith/internal/tool"
)

// BuildInstructions renders a worker's operating instructions by composing
// the present-and-non-empty spec fields in a fixed order: backstory, role,
// goal, task description, expected output, and a persistence directive when
// the task names an output artifact. Every field is template-substituted
// with vars before inclusion; absent fields contribute no section at all.
func BuildInstructions(worker config.WorkerSpec, task config.TaskSpec, vars map[string]string) (string, error) {
	var sections []string
	appendSection := func(tmpl, prefix string) error {
		if strings.TrimSpace(tmpl) == "" {
			return nil
		}
		rendered, err := Render(tmpl, vars)
		if err != nil {
			return err
		}
		sections = append(sections, prefix+strings.TrimSpace(rendered))
		return nil
	}

	if err := appendSection(worker.Backstory, ""); err != nil {
		return "", err
	}
	if err := appendSection(worker.Role, "Your role: "); err != nil {
		return "", err
	}
	if err := appendSection(worker.Goal, "Your goal: "); err != nil {
		return "", err
	}
	if err := appendSection(task.Description, "Task: "); err != nil {
		return "", err
	}
	if err := appendSection(task.ExpectedOutput, "Expected output: "); err != nil {
		return "", err
	}

	if strings.TrimSpace(task.OutputFile) != "" {
		rendered, err := Render(task.OutputFile, vars)
		if err != nil {
			return "", err
		}
		filename := path.Base(strings.TrimSpace(rendered))
		sections = append(sections, fmt.Sprintf(
			"When you complete your work, save it with the %s tool using filename %q.",
			tool.SaveToFileName, filename))
	}

	return strings.Join(sections, "\n\n"), nil
}
