package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.PluginsDir != "plugins.d" {
		t.Errorf("unexpected plugins dir %q", cfg.PluginsDir)
	}
	if cfg.State.Backend != "sqlite" {
		t.Errorf("unexpected backend %q", cfg.State.Backend)
	}
	if cfg.Watch {
		t.Error("watch should default to off")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corehost.yaml")
	content := `
plugins_dir: /etc/vectorhive/plugins.d
watch: true
state:
  backend: redis
  redis_url: redis://cache:6379
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.PluginsDir != "/etc/vectorhive/plugins.d" {
		t.Errorf("unexpected plugins dir %q", cfg.PluginsDir)
	}
	if !cfg.Watch {
		t.Error("watch not parsed")
	}
	if cfg.State.Backend != "redis" || cfg.State.RedisURL != "redis://cache:6379" {
		t.Errorf("unexpected state config %+v", cfg.State)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	if _, err := openStore(stateConfig{Backend: "zookeeper"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
