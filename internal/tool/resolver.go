package tool

import (
	"fmt"
	"sync"
)

// Resolver resolves capability names against the built-in registry plus an
// optional custom capability module. Loaded modules are cached by reference
// for the life of the resolver, so repeated resolution of the same module
// returns the identical loaded set without re-interpreting the source.
type Resolver struct {
	registry *Registry

	mu     sync.Mutex
	cache  map[string]map[string]InvokeFunc
	loader func(string) (map[string]InvokeFunc, error)
}

// NewResolver wires a resolver to a built-in registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{
		registry: registry,
		cache:    make(map[string]map[string]InvokeFunc),
		loader:   LoadCapabilityModule,
	}
}

// SetLoader overrides the module loader. Tests use this to avoid
// interpreting real source files.
func (r *Resolver) SetLoader(loader func(string) (map[string]InvokeFunc, error)) {
	if loader != nil {
		r.loader = loader
	}
}

// Resolve maps each requested name to a capability, preferring the custom
// module when one is given and falling back to the built-in registry. The
// returned slice preserves the requested order. A name found in neither
// source fails with ErrUnknownCapability.
func (r *Resolver) Resolve(names []string, moduleRef string) ([]Capability, error) {
	custom, err := r.customCapabilities(moduleRef)
	if err != nil {
		return nil, err
	}
	resolved := make([]Capability, 0, len(names))
	for _, name := range names {
		if fn, ok := custom[name]; ok {
			resolved = append(resolved, Capability{
				Name:        name,
				Description: fmt.Sprintf("Custom capability %s from %s.", name, moduleRef),
				Invoke:      fn,
			})
			continue
		}
		if cap, ok := r.registry.Lookup(name); ok {
			resolved = append(resolved, cap)
			continue
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownCapability, name)
	}
	return resolved, nil
}

// customCapabilities returns the loaded set for moduleRef, loading and
// caching it on first use. The cache is write-once per reference.
func (r *Resolver) customCapabilities(moduleRef string) (map[string]InvokeFunc, error) {
	if moduleRef == "" {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache[moduleRef]; ok {
		return cached, nil
	}
	loaded, err := r.loader(moduleRef)
	if err != nil {
		return nil, err
	}
	r.cache[moduleRef] = loaded
	return loaded, nil
}
