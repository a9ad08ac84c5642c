// Package core is the plugin registry and runtime of the VectorHive
// content-indexing platform.
//
// The platform ingests content, parses it, vectorizes it, stores it, and
// serves retrieval and generation — every one of those capabilities is
// supplied by an independently-authored plugin. This module is the
// subsystem that discovers, validates, isolates, instantiates, and manages
// the lifecycle of those plugins. The HTTP layer, the indexing pipeline,
// and the generative templating engine are external collaborators that
// consume plugin instances through the registry's typed getters.
//
// # Core Concepts
//
//   - Manifest: a plugin's static self-description (identity, capability
//     type, runtime mode). See package manifest.
//   - Runner: the isolation boundary that loads a plugin module and
//     exposes a uniform task-invocation primitive. See package runner.
//   - Instance: a capability-typed façade restricting a loaded plugin's
//     callable surface to its declared capability. See package instance.
//   - Registry: the orchestrator running two-phase batch registration,
//     capability-indexed lookup, and service start/stop. See package
//     registry.
//   - State: the durable record marking that a plugin identity completed
//     its one-time bootstrap. See package state.
//
// # Getting Started
//
// Link plugin modules into the host, register their factories, and build
// a registry:
//
//	modules := runner.NewModules()
//	modules.Register("builtin/pdf", pdfModule)
//
//	reg, err := core.New(
//	    core.WithResolver(modules),
//	    core.WithStateStore(store),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	errs := reg.Register(ctx, declarations)
//	for _, e := range errs {
//	    slog.Warn("plugin failed to register", "alias", e.Alias, "error", e)
//	}
//
//	if err := reg.StartServices(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer reg.StopServices(ctx)
//
// Registration errors are per-plugin: one bad declaration never blocks its
// siblings, and the caller decides whether any error is fatal.
package core
