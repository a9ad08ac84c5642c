package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vectorhive/core/state"
)

// hostConfig is the corehost YAML configuration.
type hostConfig struct {
	// PluginsDir holds the plugin declaration files. Default "plugins.d".
	PluginsDir string `yaml:"plugins_dir"`

	// Watch re-registers declarations when the directory changes.
	Watch bool `yaml:"watch"`

	State stateConfig `yaml:"state"`
}

// stateConfig selects and configures the bootstrap-state backend.
type stateConfig struct {
	// Backend is one of "memory", "sqlite", "redis", "etcd".
	// Default "sqlite".
	Backend string `yaml:"backend"`

	// SQLitePath is the database file for the sqlite backend.
	// Default "corehost-state.db".
	SQLitePath string `yaml:"sqlite_path"`

	// RedisURL is the connection string for the redis backend.
	RedisURL string `yaml:"redis_url"`

	// EtcdEndpoints is the cluster for the etcd backend.
	EtcdEndpoints []string `yaml:"etcd_endpoints"`

	// EtcdNamespace is the etcd key prefix.
	EtcdNamespace string `yaml:"etcd_namespace"`
}

func loadConfig(path string) (*hostConfig, error) {
	cfg := &hostConfig{
		PluginsDir: "plugins.d",
		State:      stateConfig{Backend: "sqlite", SQLitePath: "corehost-state.db"},
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// openStore builds the configured state store.
func openStore(cfg stateConfig) (state.Store, error) {
	switch cfg.Backend {
	case "", "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = "corehost-state.db"
		}
		return state.NewSQLiteStore(path)
	case "memory":
		return state.NewMemoryStore(), nil
	case "redis":
		return state.NewRedisStore(state.RedisOptions{
			URL:            cfg.RedisURL,
			ConnectTimeout: 5 * time.Second,
		})
	case "etcd":
		return state.NewEtcdStore(state.EtcdOptions{
			Endpoints: cfg.EtcdEndpoints,
			Namespace: cfg.EtcdNamespace,
		})
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.Backend)
	}
}
