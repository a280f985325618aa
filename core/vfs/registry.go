package vfs

import (
	"sync"

	"github.com/FocuswithJustin/JuniperVFS/internal/logging"
)

// Registry maps backend names to Backend implementations. The host engine
// consults it at database-open time. A Registry is safe for concurrent use.
//
// There is no implicit default backend: a name absent from the registry
// means the host engine's built-in filesystem backend handles the open.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
}

// NewRegistry creates an empty Registry. Most callers use the package-level
// Default registry; separate instances exist for test isolation.
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]Backend),
	}
}

// Register stores backend under name. It fails with a DuplicateNameError
// if the name is already taken.
func (r *Registry) Register(name string, backend Backend) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.backends[name]; ok {
		return &DuplicateNameError{Name: name}
	}

	r.backends[name] = backend
	logging.BackendEvent("registered", name)
	return nil
}

// Lookup returns the backend registered under name, or a NotFoundError.
func (r *Registry) Lookup(name string) (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	backend, ok := r.backends[name]
	if !ok {
		return nil, &NotFoundError{Resource: "backend", Name: name}
	}
	return backend, nil
}

// Unregister removes the named backend. Removing an absent name is a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.backends[name]; ok {
		delete(r.backends, name)
		logging.BackendEvent("unregistered", name)
	}
}

// Names returns the registered backend names in unspecified order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	return names
}

// Default is the process-wide registry used by the host engine adapter.
var Default = NewRegistry()

// Register registers backend under name in the Default registry.
func Register(name string, backend Backend) error {
	return Default.Register(name, backend)
}

// Lookup looks up name in the Default registry.
func Lookup(name string) (Backend, error) {
	return Default.Lookup(name)
}

// Unregister removes name from the Default registry.
func Unregister(name string) {
	Default.Unregister(name)
}
