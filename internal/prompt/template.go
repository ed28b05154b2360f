// Package prompt renders worker operating instructions from declarative
// specs. Template fields use {name} placeholders; rendering fails closed on
// any reference that is not bound, rather than substituting a blank.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// MissingVariableError reports a template reference with no binding.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("prompt: template references undefined variable {%s}", e.Name)
}

// Render substitutes every {name} placeholder in tmpl using vars. Doubled
// braces ({{ and }}) escape to literal braces. The first unresolved
// reference aborts rendering with a MissingVariableError.
func Render(tmpl string, vars map[string]string) (string, error) {
	var missing *MissingVariableError
	replaced := replacePlaceholders(tmpl, func(name string) (string, bool) {
		value, ok := vars[name]
		if !ok && missing == nil {
			missing = &MissingVariableError{Name: name}
		}
		return value, ok
	})
	if missing != nil {
		return "", missing
	}
	return replaced, nil
}

// Vars returns the distinct placeholder names referenced by tmpl, in first
// occurrence order. Escaped braces are not counted as references.
func Vars(tmpl string) []string {
	var names []string
	seen := map[string]struct{}{}
	replacePlaceholders(tmpl, func(name string) (string, bool) {
		if _, dup := seen[name]; !dup {
			seen[name] = struct{}{}
			names = append(names, name)
		}
		return "", true
	})
	return names
}

func replacePlaceholders(tmpl string, lookup func(string) (string, bool)) string {
	// Hide escaped braces from the placeholder pattern, then restore them.
	const openMark = "\x00"
	const closeMark = "\x01"
	escaped := strings.ReplaceAll(tmpl, "{{", openMark)
	escaped = strings.ReplaceAll(escaped, "}}", closeMark)
	replaced := placeholderPattern.ReplaceAllStringFunc(escaped, func(match string) string {
		name := match[1 : len(match)-1]
		value, ok := lookup(name)
		if !ok {
			return match
		}
		return value
	})
	replaced = strings.ReplaceAll(replaced, openMark, "{")
	return strings.ReplaceAll(replaced, closeMark, "}")
}
