package registry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vectorhive/core/manifest"
	"github.com/vectorhive/core/state"
)

// Registration declares one plugin the host wants registered.
type Registration struct {
	// Alias is the unique human name for this plugin within the host.
	// Identity is derived from it, so re-declaring the same alias across
	// restarts addresses the same persisted bootstrap state.
	Alias string `yaml:"alias"`

	// Path locates the plugin module.
	Path string `yaml:"path"`

	// Config is the static configuration value.
	Config map[string]any `yaml:"config"`

	// ConfigFunc, when set, produces the configuration at load time and
	// takes precedence over Config.
	ConfigFunc func(ctx context.Context) (map[string]any, error) `yaml:"-"`
}

// ManifestLookup resolves another declaration's manifest by alias during
// configuration loading. It covers cross-plugin dependencies: all manifests
// are resolved in phase 1, before any plugin's config is finalized.
type ManifestLookup func(alias string) (manifest.Manifest, bool)

// LoaderFunc is the fallback configuration loader handed to a custom
// ConfigLoader.
type LoaderFunc func(ctx context.Context, reg Registration) (map[string]any, error)

// ConfigLoader resolves the effective configuration for one registration.
// When it returns a nil map without error, the registry falls back to the
// default loader.
type ConfigLoader func(ctx context.Context, reg Registration, mf manifest.Manifest, lookup ManifestLookup, fallback LoaderFunc) (map[string]any, error)

// DefaultConfigLoader takes the registration's computed or static config,
// defaulting to an empty object.
func DefaultConfigLoader(ctx context.Context, reg Registration) (map[string]any, error) {
	if reg.ConfigFunc != nil {
		cfg, err := reg.ConfigFunc(ctx)
		if err != nil {
			return nil, err
		}
		if cfg == nil {
			cfg = map[string]any{}
		}
		return cfg, nil
	}
	if reg.Config == nil {
		return map[string]any{}, nil
	}
	return reg.Config, nil
}

// resolvedManifest is a batch-cache entry. The path is recorded so that a
// duplicate alias declared with a different module path re-resolves instead
// of inheriting the other declaration's manifest.
type resolvedManifest struct {
	path string
	mf   manifest.Manifest
}

// Register runs two-phase registration over the batch of declarations and
// returns the aggregated per-plugin errors. A failure registering one
// plugin never stops processing of its siblings; callers decide whether
// any errors are fatal to the batch.
//
// Phase 1 resolves every declaration's manifest and caches it by alias for
// the duration of the batch, so that configuration loading for one plugin
// can look up another plugin's manifest. The cache dies with the batch: a
// later batch re-registering an alias from a different module path always
// sees that module's manifest. Phase 2 then fully registers each remaining
// declaration sequentially: resolve config, load, validate against the
// config schema, initialize, and run the transactional bootstrap check
// before inserting the plugin into the index.
func (r *Registry) Register(ctx context.Context, regs []Registration) []*RegistrationError {
	var regErrs []*RegistrationError
	manifests := make(map[string]resolvedManifest, len(regs))

	// Keyed by declaration index, not alias: duplicate aliases in one
	// batch are a last-wins scenario, and a failing duplicate must not
	// take a valid sibling declaration down with it.
	failed := make(map[int]bool, len(regs))

	for i, reg := range regs {
		if _, err := r.resolveManifest(ctx, reg, manifests); err != nil {
			failed[i] = true
			regErrs = append(regErrs, r.registrationError(reg, manifests, err))
		}
	}

	// Sequential by design: bounds peak resource use during startup and
	// keeps bootstrap-transaction ordering simple.
	for i, reg := range regs {
		if failed[i] {
			continue
		}
		if err := r.registerOne(ctx, reg, manifests); err != nil {
			regErrs = append(regErrs, r.registrationError(reg, manifests, err))
		}
	}
	return regErrs
}

func (r *Registry) registerOne(ctx context.Context, reg Registration, manifests map[string]resolvedManifest) error {
	ctx, span := r.tracer.Start(ctx, "registry.register",
		trace.WithAttributes(attribute.String("plugin.alias", reg.Alias)))
	defer span.End()

	err := r.doRegister(ctx, reg, manifests)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "registration failed")
		r.regErrors.Add(ctx, 1)
		r.logger.Warn("plugin registration failed", "alias", reg.Alias, "path", reg.Path, "error", err)
		return err
	}
	r.registrations.Add(ctx, 1)
	return nil
}

func (r *Registry) doRegister(ctx context.Context, reg Registration, manifests map[string]resolvedManifest) error {
	// Re-resolve; served from the batch cache when the cached entry came
	// from this declaration's module path.
	mf, err := r.resolveManifest(ctx, reg, manifests)
	if err != nil {
		return err
	}

	cfg, err := r.resolveConfig(ctx, reg, mf, r.batchLookup(manifests))
	if err != nil {
		return fmt.Errorf("resolve config: %w", err)
	}

	run := r.newRunner(reg.Path, cfg)
	if err := run.Load(ctx); err != nil {
		return err
	}

	if configSchema, err := run.Schema(ctx, manifest.SchemaConfig); err != nil {
		return err
	} else if configSchema != nil && !configSchema.IsZero() {
		normalized, issues := configSchema.Conform(cfg)
		if len(issues) > 0 {
			return &ConfigValidationError{Alias: reg.Alias, Issues: issues}
		}
		if m, ok := normalized.(map[string]any); ok {
			run.SetConfig(m)
			cfg = m
		}
	}

	if err := run.Initialize(ctx); err != nil {
		return err
	}

	id := IdentityFor(reg.Alias)
	lp := &LoadedPlugin{ID: id, Alias: reg.Alias, Path: reg.Path, Manifest: mf, Runner: run}
	inst := r.instantiate(lp)

	// First time this identity is ever seen, run the one-time bootstrap.
	// The record is written in the same transaction, after bootstrap
	// succeeds, so a failed bootstrap never leaves a record behind. If a
	// concurrent process wins the race, the commit conflicts, the
	// transaction retries, and the retry observes the record and skips
	// bootstrap.
	err = r.store.Update(ctx, id, func(ctx context.Context, tx state.Txn) error {
		rec, err := tx.Get(ctx)
		if err != nil {
			return err
		}
		if rec != nil {
			return nil
		}
		if err := inst.Bootstrap(ctx); err != nil {
			return &BootstrapError{Alias: reg.Alias, Err: err}
		}
		r.bootstraps.Add(ctx, 1)
		return tx.Put(ctx, state.Record{
			ID:        id,
			Alias:     reg.Alias,
			Manifest:  mf,
			CreatedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	if _, exists := r.plugins[reg.Alias]; !exists {
		r.order = append(r.order, reg.Alias)
	}
	// Same alias registered again: last registration wins.
	r.plugins[reg.Alias] = lp
	r.mu.Unlock()

	r.logger.Info("plugin registered",
		"alias", reg.Alias, "id", id, "type", mf.Type, "version", mf.Version)
	return nil
}

// resolveManifest loads the manifest for a declaration, caching it in the
// batch cache. A cached entry is reused only when it came from the same
// module path.
func (r *Registry) resolveManifest(ctx context.Context, reg Registration, manifests map[string]resolvedManifest) (manifest.Manifest, error) {
	if entry, ok := manifests[reg.Alias]; ok && entry.path == reg.Path {
		return entry.mf, nil
	}

	run := r.newRunner(reg.Path, nil)
	mf, err := run.Manifest(ctx)
	if err != nil {
		return manifest.Manifest{}, err
	}

	manifests[reg.Alias] = resolvedManifest{path: reg.Path, mf: mf}
	return mf, nil
}

// batchLookup builds the ManifestLookup handed to config loaders: the
// current batch's manifests first, already-registered plugins as fallback.
func (r *Registry) batchLookup(manifests map[string]resolvedManifest) ManifestLookup {
	return func(alias string) (manifest.Manifest, bool) {
		if entry, ok := manifests[alias]; ok {
			return entry.mf, true
		}
		if lp, ok := r.lookup(alias); ok {
			return lp.Manifest, true
		}
		return manifest.Manifest{}, false
	}
}

// resolveConfig determines the effective configuration: a custom loader
// when configured, with fallback to the default loader when it yields no
// usable value.
func (r *Registry) resolveConfig(ctx context.Context, reg Registration, mf manifest.Manifest, lookup ManifestLookup) (map[string]any, error) {
	if r.loader == nil {
		return DefaultConfigLoader(ctx, reg)
	}
	cfg, err := r.loader(ctx, reg, mf, lookup, DefaultConfigLoader)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return DefaultConfigLoader(ctx, reg)
	}
	return cfg, nil
}

func (r *Registry) registrationError(reg Registration, manifests map[string]resolvedManifest, err error) *RegistrationError {
	regErr := &RegistrationError{Alias: reg.Alias, Path: reg.Path, Err: err}
	if entry, ok := manifests[reg.Alias]; ok && entry.path == reg.Path {
		mf := entry.mf
		regErr.Manifest = &mf
	}
	return regErr
}
