package tools

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/poiesic/modelkit/core"
)

var (
	// ErrNilCallback indicates an attempt to register a nil callback.
	ErrNilCallback = errors.New("callback is nil")

	// ErrEmptyName indicates a callback without a name.
	ErrEmptyName = errors.New("callback name is empty")

	// ErrAlreadyRegistered indicates a name collision on registration.
	ErrAlreadyRegistered = errors.New("callback already registered")
)

// Registry keeps the mapping between tool names and callbacks.
// Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	callbacks map[string]Callback
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{callbacks: make(map[string]Callback)}
}

// Register inserts a callback when its name is not in use.
func (r *Registry) Register(cb Callback) error {
	if cb == nil {
		return core.Precondition(ErrNilCallback)
	}
	name := cb.Name()
	if name == "" {
		return core.Precondition(ErrEmptyName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.callbacks[name]; exists {
		return core.Preconditionf("%q: %w", name, ErrAlreadyRegistered)
	}
	r.callbacks[name] = cb
	return nil
}

// Lookup fetches a callback by name. A missing name is a precondition
// failure: the model requested a tool the caller never enabled.
func (r *Registry) Lookup(name string) (Callback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cb, exists := r.callbacks[name]
	if !exists {
		return nil, core.Preconditionf("tool %q is not registered", name)
	}
	return cb, nil
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.callbacks))
	for name := range r.callbacks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the callbacks for the given names, failing on the
// first name that is not registered.
func (r *Registry) Resolve(names []string) ([]Callback, error) {
	out := make([]Callback, 0, len(names))
	for _, name := range names {
		cb, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, cb)
	}
	return out, nil
}

// Execute looks up and invokes a callback in one step.
func (r *Registry) Execute(ctx context.Context, name, argumentsJSON string) (string, error) {
	cb, err := r.Lookup(name)
	if err != nil {
		return "", err
	}
	return cb.Call(ctx, argumentsJSON)
}
