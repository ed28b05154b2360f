// Package tool maps logical capability names to callable capabilities. A
// worker declares the capability names it needs; the resolver merges the
// built-in registry with an optional custom capability module interpreted at
// runtime.
package tool

import (
	"errors"
	"fmt"
	"sort"
)

// SaveToFileName is the registered name of the persistence capability.
const SaveToFileName = "save_to_file"

var (
	// ErrUnknownCapability indicates a requested name that resolves in
	// neither the custom module nor the built-in registry.
	ErrUnknownCapability = errors.New("tool: unknown capability")
	// ErrCapabilityModule indicates a custom capability module that could
	// not be loaded or does not satisfy the module contract.
	ErrCapabilityModule = errors.New("tool: capability module load failed")
)

// InvokeFunc is the fixed invocation signature every capability satisfies.
// Invocations are synchronous and may side-effect (for example, persisting
// an artifact); failures propagate to the caller.
type InvokeFunc func(args map[string]string) (string, error)

// Param describes one argument a capability accepts.
type Param struct {
	Name        string
	Description string
	Required    bool
}

// Capability is a named, invocable operation available to a worker.
type Capability struct {
	Name        string
	Description string
	Params      []Param
	Invoke      InvokeFunc
}

// Registry holds the built-in capability set.
type Registry struct {
	capabilities map[string]Capability
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{capabilities: make(map[string]Capability)}
}

// BuiltinRegistry creates a registry populated with the standard
// capabilities. The persistence capability captures outputDir at
// construction time instead of reading process-wide state.
func BuiltinRegistry(outputDir string) *Registry {
	reg := NewRegistry()
	reg.Register(NewSaveToFile(outputDir))
	return reg
}

// Register adds or replaces a capability.
func (r *Registry) Register(cap Capability) error {
	if cap.Name == "" {
		return fmt.Errorf("tool: capability name is required")
	}
	if cap.Invoke == nil {
		return fmt.Errorf("tool: capability %s has no implementation", cap.Name)
	}
	r.capabilities[cap.Name] = cap
	return nil
}

// Lookup retrieves a capability by name.
func (r *Registry) Lookup(name string) (Capability, bool) {
	cap, ok := r.capabilities[name]
	return cap, ok
}

// Names returns the registered capability names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.capabilities))
	for name := range r.capabilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
