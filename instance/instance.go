// Package instance provides capability-typed façades over loaded plugins.
//
// An instance restricts the callable surface of a plugin to the operations
// defined for its declared capability type: a reranker instance exposes
// Rerank and the lifecycle hooks, nothing else. Every exposed method
// delegates to the runner's task-invocation primitive, so instances carry
// no behavior of their own.
//
// Construction is cheap and side-effect-free; instances are created on
// demand and never cached by the registry.
package instance

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/vectorhive/core/manifest"
	"github.com/vectorhive/core/runner"
)

// Resources are shared host facilities handed to every instance.
type Resources struct {
	Logger *slog.Logger
	Tracer trace.Tracer

	// Extra carries host-specific shared objects (caches, clients)
	// plugins may cooperate on.
	Extra map[string]any
}

// Instance is the minimal surface common to every capability variant:
// the four reserved lifecycle hooks plus generic task invocation.
type Instance interface {
	Alias() string
	ID() string
	Manifest() manifest.Manifest

	// Invoke runs a named task on the plugin. Capability variants wrap
	// this with their typed methods.
	Invoke(ctx context.Context, task string, input map[string]any) (any, error)

	// Bootstrap runs the one-time setup task. A plugin without a
	// bootstrap handler is treated as having a no-op hook.
	Bootstrap(ctx context.Context) error

	// Destroy runs the teardown task invoked before a plugin is removed.
	Destroy(ctx context.Context) error

	// StartService starts a service-runtime plugin.
	StartService(ctx context.Context) error

	// StopService stops a service-runtime plugin.
	StopService(ctx context.Context) error

	// Config returns the instance configuration supplied at construction.
	Config() map[string]any

	// Resources returns the shared host resources.
	Resources() *Resources
}

// New constructs the capability-typed instance matching the manifest's
// declared type. An unrecognized type yields a minimal instance exposing
// only the lifecycle hooks.
func New(alias, id string, mf manifest.Manifest, r runner.Runner, config map[string]any, res *Resources) Instance {
	b := &base{alias: alias, id: id, mf: mf, runner: r, config: config, res: res}
	switch mf.Type {
	case manifest.TypeProvider:
		return &Provider{base: b}
	case manifest.TypeFileParser:
		return &FileParser{base: b}
	case manifest.TypeStorage:
		return &Storage{base: b}
	case manifest.TypeDatabase:
		return &Database{base: b}
	case manifest.TypeTextVectorizer:
		return &TextVectorizer{base: b}
	case manifest.TypeImageVectorizer:
		return &ImageVectorizer{base: b}
	case manifest.TypeMultimodalVectorizer:
		return &MultimodalVectorizer{base: b}
	case manifest.TypeReranker:
		return &Reranker{base: b}
	case manifest.TypeGenerative:
		return &Generative{base: b}
	case manifest.TypeEnhancer:
		return &Enhancer{base: b}
	default:
		return b
	}
}

type base struct {
	alias  string
	id     string
	mf     manifest.Manifest
	runner runner.Runner
	config map[string]any
	res    *Resources
}

func (b *base) Alias() string               { return b.alias }
func (b *base) ID() string                  { return b.id }
func (b *base) Manifest() manifest.Manifest { return b.mf }
func (b *base) Config() map[string]any      { return b.config }
func (b *base) Resources() *Resources       { return b.res }

func (b *base) Invoke(ctx context.Context, task string, input map[string]any) (any, error) {
	return b.runner.RunTask(task)(ctx, input)
}

// lifecycle invokes a reserved hook, treating an undeclared handler as a
// no-op.
func (b *base) lifecycle(ctx context.Context, task string) error {
	_, err := b.Invoke(ctx, task, nil)
	if err != nil && errors.Is(err, runner.ErrUnknownTask) {
		return nil
	}
	return err
}

func (b *base) Bootstrap(ctx context.Context) error {
	return b.lifecycle(ctx, manifest.TaskBootstrap)
}

func (b *base) Destroy(ctx context.Context) error {
	return b.lifecycle(ctx, manifest.TaskDestroy)
}

func (b *base) StartService(ctx context.Context) error {
	return b.lifecycle(ctx, manifest.TaskStartService)
}

func (b *base) StopService(ctx context.Context) error {
	return b.lifecycle(ctx, manifest.TaskStopService)
}
