package core

import (
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/vectorhive/core/instance"
	"github.com/vectorhive/core/registry"
	"github.com/vectorhive/core/runner"
	"github.com/vectorhive/core/state"
)

// Option configures the registry built by New.
type Option func(*registry.Options)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *registry.Options) {
		o.Logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer for registration spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *registry.Options) {
		o.Tracer = tracer
	}
}

// WithMeter sets an OpenTelemetry meter for registry counters. Without it
// metrics are no-ops.
func WithMeter(meter metric.Meter) Option {
	return func(o *registry.Options) {
		o.Meter = meter
	}
}

// WithStateStore sets the persisted bootstrap-state store. Defaults to an
// in-memory store, which loses exactly-once bootstrap semantics across
// restarts.
func WithStateStore(store state.Store) Option {
	return func(o *registry.Options) {
		o.Store = store
	}
}

// WithResolver sets the module resolver used by in-process runners.
func WithResolver(resolver runner.Resolver) Option {
	return func(o *registry.Options) {
		o.Resolver = resolver
	}
}

// WithConfigLoader installs a custom configuration loader. The registry
// falls back to the default loader when the custom one yields no value.
func WithConfigLoader(loader registry.ConfigLoader) Option {
	return func(o *registry.Options) {
		o.Loader = loader
	}
}

// WithResources sets the shared resources handed to every plugin instance.
func WithResources(res *instance.Resources) Option {
	return func(o *registry.Options) {
		o.Resources = res
	}
}

// WithRunnerFactory substitutes how runners are constructed, e.g. to run
// plugins under a sandboxed Runner implementation.
func WithRunnerFactory(f registry.RunnerFactory) Option {
	return func(o *registry.Options) {
		o.NewRunner = f
	}
}

// New builds a plugin registry.
func New(opts ...Option) (*registry.Registry, error) {
	var o registry.Options
	for _, opt := range opts {
		opt(&o)
	}
	return registry.New(o)
}

// CloseWithLog attempts to close the provided resource and logs any error
// at warning level. Intended for defer statements so cleanup errors are
// not silently ignored.
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource",
			"resource", name,
			"error", err)
	}
}
