package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/vectorhive/core/manifest"
	"github.com/vectorhive/core/schema"
)

// Module is the contract every plugin module fulfils: a manifest, optional
// named schemas, and a task-dispatch surface addressable by name. Task names
// include the operations matching the module's declared capability type plus
// the reserved lifecycle names (manifest.TaskBootstrap and friends).
//
// Handle must report ErrUnknownTask (wrapped or direct) for names the module
// does not implement; the registry treats missing lifecycle hooks as no-ops.
type Module interface {
	Manifest() manifest.Manifest
	Schemas() map[manifest.SchemaKind]schema.JSON
	Handle(ctx context.Context, task string, input map[string]any) (any, error)
}

// Loader is implemented by modules that need their resolved configuration
// before use. Load may perform the module's own static initialization.
type Loader interface {
	Load(ctx context.Context, config map[string]any) error
}

// Initializer is implemented by modules with startup work such as opening
// connections.
type Initializer interface {
	Initialize(ctx context.Context) error
}

// Factory produces a fresh Module. Each Runner gets its own Module value so
// per-runner state is never shared between registrations.
type Factory func() (Module, error)

// Resolver maps a declaration's module path to a Module.
type Resolver interface {
	Resolve(path string) (Module, error)
}

// Modules is a path-keyed factory table implementing Resolver. Go offers no
// safe way to load arbitrary native code at runtime, so in-process modules
// are linked into the host and register their factories here.
type Modules struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewModules creates an empty factory table.
func NewModules() *Modules {
	return &Modules{factories: make(map[string]Factory)}
}

// Register binds a module path to a factory. Re-registering a path replaces
// the previous factory.
func (m *Modules) Register(path string, f Factory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factories[path] = f
}

// Resolve constructs a fresh Module for the path.
func (m *Modules) Resolve(path string) (Module, error) {
	m.mu.RLock()
	f, ok := m.factories[path]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no module registered for path %q", path)
	}
	return f()
}

// Paths returns the registered module paths.
func (m *Modules) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.factories))
	for p := range m.factories {
		out = append(out, p)
	}
	return out
}
