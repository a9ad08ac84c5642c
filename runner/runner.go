// Package runner is the isolation boundary between the registry and plugin
// code. A Runner loads a plugin module by path, exposes its manifest and
// declared schemas, applies resolved configuration, and offers a single
// task-invocation primitive used uniformly for capability operations and
// lifecycle hooks.
//
// Runner is an interface so that alternative isolation strategies can be
// substituted without changing the registry or instances. The shipped
// implementation is Local, which runs trusted modules in-process.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/vectorhive/core/manifest"
	"github.com/vectorhive/core/schema"
)

// Task invokes a named task on a plugin with the given input and returns
// its output.
type Task func(ctx context.Context, input map[string]any) (any, error)

// ErrUnknownTask is returned by Task invocations for task names the module
// does not handle. Callers treating lifecycle hooks as optional check for
// this with errors.Is.
var ErrUnknownTask = errors.New("unknown task")

// Runner isolates plugin execution behind a narrow surface. Implementations
// must be safe for use by a single registration goroutine; RunTask results
// may be invoked concurrently after Load and Initialize complete.
type Runner interface {
	// Manifest loads the plugin module if necessary and returns its
	// manifest. Failure is reported as a *ManifestError.
	Manifest(ctx context.Context) (manifest.Manifest, error)

	// Load prepares the plugin for use with the runner's current
	// configuration. Idempotent per runner instance.
	Load(ctx context.Context) error

	// Schema returns the schema the plugin declares for the given kind,
	// or nil if the plugin declares none.
	Schema(ctx context.Context, kind manifest.SchemaKind) (*schema.JSON, error)

	// Initialize performs plugin-specific startup such as opening
	// connections. Failure is reported as an *InitializationError.
	Initialize(ctx context.Context) error

	// RunTask returns the invocation primitive for the named task.
	// The returned Task reports ErrUnknownTask if the module does not
	// handle the name.
	RunTask(name string) Task

	// Config returns the runner's effective configuration.
	Config() map[string]any

	// SetConfig replaces the runner's effective configuration. Used by the
	// registry to install the validated/normalized config after schema
	// validation.
	SetConfig(cfg map[string]any)
}

// ManifestError indicates a plugin module could not be loaded or did not
// produce a valid manifest.
type ManifestError struct {
	Path string
	Err  error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("runner: manifest for module %q: %v", e.Path, e.Err)
}

func (e *ManifestError) Unwrap() error { return e.Err }

// InitializationError indicates a plugin's Initialize hook failed.
type InitializationError struct {
	Path string
	Err  error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("runner: initialize module %q: %v", e.Path, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }
