// Package registry orchestrates the lifecycle of capability plugins:
// two-phase batch registration with per-plugin error isolation,
// capability-indexed lookup, transactional one-time bootstrap, and
// start/stop of service-runtime plugins.
//
// A Registry is constructed once per process and handed to collaborators
// explicitly; there is no package-level instance. The indexing pipeline,
// the generative engine, and the HTTP layer consume plugins exclusively
// through the typed getters, which build capability instances on demand.
package registry

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	otelnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/vectorhive/core/instance"
	"github.com/vectorhive/core/manifest"
	"github.com/vectorhive/core/runner"
	"github.com/vectorhive/core/state"
)

// LoadedPlugin is the runtime record of a successfully registered plugin.
// It is owned by the registry and shared read-only with instances.
type LoadedPlugin struct {
	ID       string
	Alias    string
	Path     string
	Manifest manifest.Manifest
	Runner   runner.Runner
}

// CatalogEntry is the read-only view of a registered plugin returned by
// Plugins.
type CatalogEntry struct {
	Alias       string        `json:"alias"`
	ID          string        `json:"id"`
	Type        manifest.Type `json:"type"`
	Name        string        `json:"name"`
	DisplayName string        `json:"displayName"`
	Description string        `json:"description"`
	Version     string        `json:"version"`
}

// RunnerFactory constructs the runner used to isolate one plugin. The
// default builds an in-process runner; hosts may substitute sandboxed
// implementations without touching the registry.
type RunnerFactory func(path string, config map[string]any) runner.Runner

// Options configures a Registry. Zero fields get working defaults; Store
// defaults to an in-memory store, which is only suitable when bootstrap
// exactly-once semantics across restarts are not required.
type Options struct {
	Logger    *slog.Logger
	Tracer    trace.Tracer
	Meter     metric.Meter
	Store     state.Store
	Resolver  runner.Resolver
	Loader    ConfigLoader
	Resources *instance.Resources
	NewRunner RunnerFactory
}

// Registry owns all plugin index state.
type Registry struct {
	logger    *slog.Logger
	tracer    trace.Tracer
	store     state.Store
	resolver  runner.Resolver
	loader    ConfigLoader
	res       *instance.Resources
	newRunner RunnerFactory

	registrations metric.Int64Counter
	regErrors     metric.Int64Counter
	bootstraps    metric.Int64Counter

	mu      sync.RWMutex
	plugins map[string]*LoadedPlugin // flat table, keyed by alias
	order   []string                 // aliases in registration order
}

// New creates a Registry from the options.
func New(opts Options) (*Registry, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("vectorhive.core/registry")
	}
	meter := opts.Meter
	if meter == nil {
		meter = otelnoop.NewMeterProvider().Meter("vectorhive.core/registry")
	}
	store := opts.Store
	if store == nil {
		store = state.NewMemoryStore()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = runner.NewModules()
	}
	res := opts.Resources
	if res == nil {
		res = &instance.Resources{Logger: logger, Tracer: tracer}
	}
	newRunner := opts.NewRunner
	if newRunner == nil {
		newRunner = func(path string, config map[string]any) runner.Runner {
			return runner.NewLocal(path, config, resolver)
		}
	}

	registrations, err := meter.Int64Counter("core.registry.registrations")
	if err != nil {
		return nil, err
	}
	regErrors, err := meter.Int64Counter("core.registry.registration_errors")
	if err != nil {
		return nil, err
	}
	bootstraps, err := meter.Int64Counter("core.registry.bootstraps")
	if err != nil {
		return nil, err
	}

	return &Registry{
		logger:        logger,
		tracer:        tracer,
		store:         store,
		resolver:      resolver,
		loader:        opts.Loader,
		res:           res,
		newRunner:     newRunner,
		registrations: registrations,
		regErrors:     regErrors,
		bootstraps:    bootstraps,
		plugins:       make(map[string]*LoadedPlugin),
	}, nil
}

// lookup returns the loaded plugin for alias.
func (r *Registry) lookup(alias string) (*LoadedPlugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lp, ok := r.plugins[alias]
	return lp, ok
}

// PluginByID returns the loaded plugin with the given identity.
func (r *Registry) PluginByID(id string) (*LoadedPlugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, lp := range r.plugins {
		if lp.ID == id {
			return lp, true
		}
	}
	return nil, false
}

// Plugins returns the catalog of registered plugins in registration order,
// optionally filtered by capability type.
func (r *Registry) Plugins(types ...manifest.Type) []CatalogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []CatalogEntry
	for _, alias := range r.order {
		lp, ok := r.plugins[alias]
		if !ok {
			continue
		}
		if len(types) > 0 && !containsType(types, lp.Manifest.Type) {
			continue
		}
		out = append(out, CatalogEntry{
			Alias:       lp.Alias,
			ID:          lp.ID,
			Type:        lp.Manifest.Type,
			Name:        lp.Manifest.Name,
			DisplayName: lp.Manifest.DisplayName,
			Description: lp.Manifest.Description,
			Version:     lp.Manifest.Version,
		})
	}
	return out
}

// DeletePlugin removes a plugin: it invokes the destroy task, deletes the
// persisted bootstrap record transactionally, and drops the plugin from
// the index. Unknown aliases are a no-op.
func (r *Registry) DeletePlugin(ctx context.Context, alias string) error {
	lp, ok := r.lookup(alias)
	if !ok {
		return nil
	}

	inst := r.instantiate(lp)
	if err := inst.Destroy(ctx); err != nil {
		return &RegistrationError{Alias: alias, Path: lp.Path, Manifest: &lp.Manifest, Err: err}
	}

	err := r.store.Update(ctx, lp.ID, func(ctx context.Context, tx state.Txn) error {
		return tx.Delete(ctx)
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.plugins, alias)
	for i, a := range r.order {
		if a == alias {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.logger.Info("plugin deleted", "alias", alias, "id", lp.ID)
	return nil
}

// instantiate builds the capability-typed instance for a loaded plugin.
// Construction is pure and cheap; instances are not cached.
func (r *Registry) instantiate(lp *LoadedPlugin) instance.Instance {
	return instance.New(lp.Alias, lp.ID, lp.Manifest, lp.Runner, lp.Runner.Config(), r.res)
}

func containsType(types []manifest.Type, t manifest.Type) bool {
	for _, want := range types {
		if want == t {
			return true
		}
	}
	return false
}
