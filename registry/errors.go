package registry

import (
	"fmt"

	"github.com/vectorhive/core/manifest"
	"github.com/vectorhive/core/schema"
)

// RegistrationError is the normalized form every registration-time failure
// is wrapped into, carrying enough plugin context for a precise per-plugin
// diagnosis in a batch result.
type RegistrationError struct {
	// Alias is the declaration alias that failed to register.
	Alias string

	// Path is the declaration's module path.
	Path string

	// Manifest is the resolved manifest, when resolution got that far.
	Manifest *manifest.Manifest

	// Err is the original cause.
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registry: register plugin %q (path %q): %v", e.Alias, e.Path, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// ConfigValidationError indicates the resolved configuration failed the
// plugin's declared config schema. Issues carry per-field paths.
type ConfigValidationError struct {
	Alias  string
	Issues schema.Issues
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("registry: invalid config for plugin %q: %v", e.Alias, e.Issues.Error())
}

func (e *ConfigValidationError) Unwrap() error { return e.Issues }

// BootstrapError indicates the one-time bootstrap task failed. No state
// record is persisted when bootstrap fails, so the next registration of
// the same identity runs bootstrap again.
type BootstrapError struct {
	Alias string
	Err   error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("registry: bootstrap plugin %q: %v", e.Alias, e.Err)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

// ServiceStartError indicates a service-runtime plugin failed to start.
// It aborts the whole startup sequence.
type ServiceStartError struct {
	Alias string
	Err   error
}

func (e *ServiceStartError) Error() string {
	return fmt.Sprintf("registry: start service plugin %q: %v", e.Alias, e.Err)
}

func (e *ServiceStartError) Unwrap() error { return e.Err }
