package runner

import (
	"context"
	"sync"

	"github.com/vectorhive/core/manifest"
	"github.com/vectorhive/core/schema"
)

// Local runs a trusted plugin module in-process. It resolves the module
// lazily on first use and memoizes it for the runner's lifetime.
type Local struct {
	path     string
	resolver Resolver

	mu     sync.Mutex
	mod    Module
	config map[string]any
	loaded bool
}

// NewLocal creates an in-process runner for the module at path with the
// given initial configuration.
func NewLocal(path string, config map[string]any, resolver Resolver) *Local {
	if config == nil {
		config = map[string]any{}
	}
	return &Local{path: path, resolver: resolver, config: config}
}

// module resolves and memoizes the underlying Module.
func (l *Local) module() (Module, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.mod != nil {
		return l.mod, nil
	}
	mod, err := l.resolver.Resolve(l.path)
	if err != nil {
		return nil, &ManifestError{Path: l.path, Err: err}
	}
	l.mod = mod
	return mod, nil
}

// Manifest implements Runner.
func (l *Local) Manifest(ctx context.Context) (manifest.Manifest, error) {
	mod, err := l.module()
	if err != nil {
		return manifest.Manifest{}, err
	}
	m := mod.Manifest()
	if err := m.Validate(); err != nil {
		return manifest.Manifest{}, &ManifestError{Path: l.path, Err: err}
	}
	return m, nil
}

// Load implements Runner. The module's Load hook runs at most once per
// runner instance.
func (l *Local) Load(ctx context.Context) error {
	mod, err := l.module()
	if err != nil {
		return err
	}
	l.mu.Lock()
	if l.loaded {
		l.mu.Unlock()
		return nil
	}
	cfg := l.config
	l.mu.Unlock()

	if loader, ok := mod.(Loader); ok {
		if err := loader.Load(ctx, cfg); err != nil {
			return err
		}
	}
	l.mu.Lock()
	l.loaded = true
	l.mu.Unlock()
	return nil
}

// Schema implements Runner. Returns nil when the module declares no schema
// for the kind.
func (l *Local) Schema(ctx context.Context, kind manifest.SchemaKind) (*schema.JSON, error) {
	mod, err := l.module()
	if err != nil {
		return nil, err
	}
	schemas := mod.Schemas()
	if schemas == nil {
		return nil, nil
	}
	s, ok := schemas[kind]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Initialize implements Runner.
func (l *Local) Initialize(ctx context.Context) error {
	mod, err := l.module()
	if err != nil {
		return err
	}
	init, ok := mod.(Initializer)
	if !ok {
		return nil
	}
	if err := init.Initialize(ctx); err != nil {
		return &InitializationError{Path: l.path, Err: err}
	}
	return nil
}

// RunTask implements Runner.
func (l *Local) RunTask(name string) Task {
	return func(ctx context.Context, input map[string]any) (any, error) {
		mod, err := l.module()
		if err != nil {
			return nil, err
		}
		return mod.Handle(ctx, name, input)
	}
}

// Config implements Runner.
func (l *Local) Config() map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.config
}

// SetConfig implements Runner.
func (l *Local) SetConfig(cfg map[string]any) {
	if cfg == nil {
		cfg = map[string]any{}
	}
	l.mu.Lock()
	l.config = cfg
	l.mu.Unlock()
}
