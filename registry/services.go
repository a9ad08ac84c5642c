package registry

import (
	"context"
)

// services returns the loaded service-runtime plugins in registration
// order. Ordering follows registration order, not a dependency topology;
// hosts that need a dependency plugin up before its dependents must
// declare it earlier in the batch.
func (r *Registry) services() []*LoadedPlugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*LoadedPlugin
	for _, alias := range r.order {
		lp, ok := r.plugins[alias]
		if ok && lp.Manifest.IsService() {
			out = append(out, lp)
		}
	}
	return out
}

// StartServices starts every service-runtime plugin sequentially. The
// first failure aborts the whole startup sequence: a broken service
// plugin must not let the host come up partially initialized.
func (r *Registry) StartServices(ctx context.Context) error {
	for _, lp := range r.services() {
		inst := r.instantiate(lp)
		if err := inst.StartService(ctx); err != nil {
			return &ServiceStartError{Alias: lp.Alias, Err: err}
		}
		r.logger.Info("service plugin started", "alias", lp.Alias)
	}
	return nil
}

// StopServices stops every service-runtime plugin sequentially, best
// effort: a failing stopService is logged and swallowed so the remaining
// services still get their shutdown call.
func (r *Registry) StopServices(ctx context.Context) {
	for _, lp := range r.services() {
		inst := r.instantiate(lp)
		if err := inst.StopService(ctx); err != nil {
			r.logger.Warn("failed to stop service plugin", "alias", lp.Alias, "error", err)
			continue
		}
		r.logger.Info("service plugin stopped", "alias", lp.Alias)
	}
}
