package runner

import (
	"context"
	"fmt"

	"github.com/vectorhive/core/manifest"
	"github.com/vectorhive/core/schema"
)

// TaskHandler handles one named task invocation.
type TaskHandler func(ctx context.Context, input map[string]any) (any, error)

// LoadFunc receives the resolved configuration before the module is used.
type LoadFunc func(ctx context.Context, config map[string]any) error

// InitFunc performs module startup.
type InitFunc func(ctx context.Context) error

// Builder assembles a Module from task handlers and schemas. Use NewBuilder
// to create one, configure it with the setter methods, then call Build.
type Builder struct {
	mf       manifest.Manifest
	schemas  map[manifest.SchemaKind]schema.JSON
	tasks    map[string]TaskHandler
	loadFunc LoadFunc
	initFunc InitFunc
}

// NewBuilder creates a builder for a module with the given manifest.
func NewBuilder(m manifest.Manifest) *Builder {
	return &Builder{
		mf:      m,
		schemas: make(map[manifest.SchemaKind]schema.JSON),
		tasks:   make(map[string]TaskHandler),
	}
}

// SetSchema declares a schema for the given kind.
func (b *Builder) SetSchema(kind manifest.SchemaKind, s schema.JSON) *Builder {
	b.schemas[kind] = s
	return b
}

// HandleTask registers a handler for the named task. Registering a name
// twice replaces the earlier handler.
func (b *Builder) HandleTask(name string, h TaskHandler) *Builder {
	b.tasks[name] = h
	return b
}

// OnLoad sets the hook invoked with the resolved configuration.
func (b *Builder) OnLoad(fn LoadFunc) *Builder {
	b.loadFunc = fn
	return b
}

// OnInitialize sets the startup hook.
func (b *Builder) OnInitialize(fn InitFunc) *Builder {
	b.initFunc = fn
	return b
}

// Build validates the configuration and returns the Module.
func (b *Builder) Build() (Module, error) {
	if err := b.mf.Validate(); err != nil {
		return nil, err
	}
	for name := range b.tasks {
		if name == "" {
			return nil, fmt.Errorf("task name cannot be empty")
		}
	}
	tasks := make(map[string]TaskHandler, len(b.tasks))
	for name, h := range b.tasks {
		tasks[name] = h
	}
	schemas := make(map[manifest.SchemaKind]schema.JSON, len(b.schemas))
	for kind, s := range b.schemas {
		schemas[kind] = s
	}
	return &builtModule{
		mf:       b.mf,
		schemas:  schemas,
		tasks:    tasks,
		loadFunc: b.loadFunc,
		initFunc: b.initFunc,
	}, nil
}

// Factory returns a Factory producing this builder's module. All runners
// share the same handlers; modules needing per-runner state should supply
// their own Factory instead.
func (b *Builder) Factory() Factory {
	return func() (Module, error) { return b.Build() }
}

type builtModule struct {
	mf       manifest.Manifest
	schemas  map[manifest.SchemaKind]schema.JSON
	tasks    map[string]TaskHandler
	loadFunc LoadFunc
	initFunc InitFunc
}

func (m *builtModule) Manifest() manifest.Manifest {
	return m.mf
}

func (m *builtModule) Schemas() map[manifest.SchemaKind]schema.JSON {
	return m.schemas
}

func (m *builtModule) Handle(ctx context.Context, task string, input map[string]any) (any, error) {
	h, ok := m.tasks[task]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, task)
	}
	if in, declared := m.schemas[manifest.SchemaInput]; declared && !isLifecycle(task) {
		if issues := in.Validate(input); len(issues) > 0 {
			return nil, fmt.Errorf("invalid input for task %s: %w", task, issues)
		}
	}
	out, err := h(ctx, input)
	if err != nil {
		return nil, err
	}
	if os, declared := m.schemas[manifest.SchemaOutput]; declared && !isLifecycle(task) {
		if issues := os.Validate(out); len(issues) > 0 {
			return nil, fmt.Errorf("invalid output for task %s: %w", task, issues)
		}
	}
	return out, nil
}

func (m *builtModule) Load(ctx context.Context, config map[string]any) error {
	if m.loadFunc == nil {
		return nil
	}
	return m.loadFunc(ctx, config)
}

func (m *builtModule) Initialize(ctx context.Context) error {
	if m.initFunc == nil {
		return nil
	}
	return m.initFunc(ctx)
}

func isLifecycle(task string) bool {
	switch task {
	case manifest.TaskBootstrap, manifest.TaskDestroy,
		manifest.TaskStartService, manifest.TaskStopService:
		return true
	}
	return false
}
