// Command corehost runs the VectorHive plugin host: it loads plugin
// declarations from a directory, registers them against a durable
// bootstrap-state backend, starts service-runtime plugins, and shuts them
// down on SIGINT/SIGTERM.
//
// Plugin modules themselves are linked into the binary at build time and
// registered with the module resolver; this skeleton ships with an empty
// resolver that product builds populate.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	core "github.com/vectorhive/core"
	"github.com/vectorhive/core/celconfig"
	"github.com/vectorhive/core/discovery"
	"github.com/vectorhive/core/registry"
	"github.com/vectorhive/core/runner"
)

// modules is the host's module resolver. Product builds link builtin
// plugin packages and register their factories here from init functions.
var modules = runner.NewModules()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "corehost",
		Short:         "VectorHive capability-plugin host",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to host config YAML")
	return cmd
}

func run(ctx context.Context, configPath string) error {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	store, err := openStore(cfg.State)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer core.CloseWithLog(store, logger, "state store")

	reg, err := core.New(
		core.WithLogger(logger),
		core.WithStateStore(store),
		core.WithResolver(modules),
		core.WithConfigLoader(celconfig.NewLoader()),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Watch {
		return runWatched(ctx, logger, reg, cfg.PluginsDir)
	}

	regs, err := discovery.Scan(cfg.PluginsDir)
	if err != nil {
		return err
	}
	registerBatch(ctx, logger, reg, regs)

	if err := reg.StartServices(ctx); err != nil {
		return err
	}
	logger.Info("corehost up", "plugins", len(reg.Plugins()))

	<-ctx.Done()
	logger.Info("shutting down")
	reg.StopServices(context.Background())
	return nil
}

// runWatched keeps registering declaration batches as the directory
// changes. Services are started after the first batch only; newly
// declared service plugins join on the next restart.
func runWatched(ctx context.Context, logger *slog.Logger, reg *registry.Registry, dir string) error {
	batches, err := discovery.Watch(ctx, dir, logger)
	if err != nil {
		return err
	}

	first := true
	for batch := range batches {
		registerBatch(ctx, logger, reg, batch)
		if first {
			first = false
			if err := reg.StartServices(ctx); err != nil {
				return err
			}
			logger.Info("corehost up", "plugins", len(reg.Plugins()))
		}
	}

	logger.Info("shutting down")
	reg.StopServices(context.Background())
	return nil
}

func registerBatch(ctx context.Context, logger *slog.Logger, reg *registry.Registry, regs []registry.Registration) {
	for _, regErr := range reg.Register(ctx, regs) {
		logger.Warn("plugin failed to register",
			"alias", regErr.Alias,
			"path", regErr.Path,
			"error", regErr.Err)
	}
}
