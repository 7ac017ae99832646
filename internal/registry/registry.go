package registry

import (
	"errors"
	"fmt"
	"sync"
)

// Sentinel errors for the tool registry.
var (
	ErrDuplicateTool = errors.New("tool already registered")
	ErrUnknownTool   = errors.New("unknown tool")
	ErrEmptyName     = errors.New("tool name is empty")
	ErrFrozen        = errors.New("registry is frozen")
)

// Registry holds the catalog of available tools. Registration happens at
// process start; Freeze makes the registry read-only before any agent loop
// can observe it, so List and Get never race with writers.
type Registry struct {
	mu     sync.RWMutex
	specs  map[string]ToolSpec
	order  []string
	frozen bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{specs: make(map[string]ToolSpec)}
}

// Register adds a tool spec. It fails with ErrDuplicateTool if a spec with
// the same name is already present, and with ErrFrozen after Freeze.
func (r *Registry) Register(spec ToolSpec) error {
	if spec.Name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("%w: cannot register %q", ErrFrozen, spec.Name)
	}
	if _, exists := r.specs[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, spec.Name)
	}

	r.specs[spec.Name] = spec
	r.order = append(r.order, spec.Name)
	return nil
}

// Freeze marks the registry read-only. Called by the composition root once
// all tools are registered, before any request is served.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Get returns the spec for the named tool, or ErrUnknownTool.
func (r *Registry) Get(name string) (ToolSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[name]
	if !ok {
		return ToolSpec{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return spec, nil
}

// List returns all specs in registration order.
func (r *Registry) List() []ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.specs)
}
