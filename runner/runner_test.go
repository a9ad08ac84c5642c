package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/vectorhive/core/manifest"
	"github.com/vectorhive/core/schema"
)

func testManifest(typ manifest.Type) manifest.Manifest {
	return manifest.Manifest{
		Name:        "test-plugin",
		DisplayName: "Test Plugin",
		Description: "plugin used in tests",
		Version:     "1.0.0",
		Type:        typ,
	}
}

func TestModulesResolve(t *testing.T) {
	mods := NewModules()
	mod, err := NewBuilder(testManifest(manifest.TypeReranker)).Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	mods.Register("builtin/rerank", func() (Module, error) { return mod, nil })

	got, err := mods.Resolve("builtin/rerank")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got.Manifest().Name != "test-plugin" {
		t.Errorf("unexpected manifest name %s", got.Manifest().Name)
	}

	if _, err := mods.Resolve("builtin/missing"); err == nil {
		t.Error("expected error for unregistered path")
	}
}

func TestLocalManifest(t *testing.T) {
	mods := NewModules()
	mod, _ := NewBuilder(testManifest(manifest.TypeEnhancer)).Build()
	mods.Register("builtin/enhance", func() (Module, error) { return mod, nil })

	l := NewLocal("builtin/enhance", nil, mods)
	mf, err := l.Manifest(context.Background())
	if err != nil {
		t.Fatalf("manifest failed: %v", err)
	}
	if mf.Type != manifest.TypeEnhancer {
		t.Errorf("expected enhancer, got %s", mf.Type)
	}
}

func TestLocalManifestError(t *testing.T) {
	l := NewLocal("builtin/nope", nil, NewModules())
	_, err := l.Manifest(context.Background())
	var mfErr *ManifestError
	if !errors.As(err, &mfErr) {
		t.Fatalf("expected *ManifestError, got %T: %v", err, err)
	}
	if mfErr.Path != "builtin/nope" {
		t.Errorf("expected path in error, got %q", mfErr.Path)
	}
}

func TestLocalLoadIdempotent(t *testing.T) {
	loads := 0
	mod, _ := NewBuilder(testManifest(manifest.TypeFileParser)).
		OnLoad(func(ctx context.Context, config map[string]any) error {
			loads++
			return nil
		}).
		Build()
	mods := NewModules()
	mods.Register("builtin/parse", func() (Module, error) { return mod, nil })

	l := NewLocal("builtin/parse", map[string]any{"k": "v"}, mods)
	for i := 0; i < 3; i++ {
		if err := l.Load(context.Background()); err != nil {
			t.Fatalf("load %d failed: %v", i, err)
		}
	}
	if loads != 1 {
		t.Errorf("expected exactly one load, got %d", loads)
	}
}

func TestLocalInitializeError(t *testing.T) {
	cause := errors.New("connection refused")
	mod, _ := NewBuilder(testManifest(manifest.TypeDatabase)).
		OnInitialize(func(ctx context.Context) error { return cause }).
		Build()
	mods := NewModules()
	mods.Register("builtin/db", func() (Module, error) { return mod, nil })

	l := NewLocal("builtin/db", nil, mods)
	err := l.Initialize(context.Background())
	var initErr *InitializationError
	if !errors.As(err, &initErr) {
		t.Fatalf("expected *InitializationError, got %T", err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to survive")
	}
}

func TestLocalSchema(t *testing.T) {
	cfgSchema := schema.Object(map[string]schema.JSON{"apiKey": schema.String()}, "apiKey")
	mod, _ := NewBuilder(testManifest(manifest.TypeGenerative)).
		SetSchema(manifest.SchemaConfig, cfgSchema).
		Build()
	mods := NewModules()
	mods.Register("builtin/gen", func() (Module, error) { return mod, nil })

	l := NewLocal("builtin/gen", nil, mods)

	got, err := l.Schema(context.Background(), manifest.SchemaConfig)
	if err != nil {
		t.Fatalf("schema failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected config schema, got nil")
	}
	if got.Type != "object" {
		t.Errorf("expected object schema, got %s", got.Type)
	}

	absent, err := l.Schema(context.Background(), manifest.SchemaInput)
	if err != nil {
		t.Fatalf("schema failed: %v", err)
	}
	if absent != nil {
		t.Error("expected nil for undeclared schema kind")
	}
}

func TestRunTask(t *testing.T) {
	mod, _ := NewBuilder(testManifest(manifest.TypeReranker)).
		HandleTask("rerank", func(ctx context.Context, input map[string]any) (any, error) {
			return map[string]any{"order": []any{1, 0}}, nil
		}).
		Build()
	mods := NewModules()
	mods.Register("builtin/rerank", func() (Module, error) { return mod, nil })

	l := NewLocal("builtin/rerank", nil, mods)

	out, err := l.RunTask("rerank")(context.Background(), map[string]any{"query": "q"})
	if err != nil {
		t.Fatalf("rerank failed: %v", err)
	}
	if out == nil {
		t.Fatal("expected output")
	}

	_, err = l.RunTask("translate")(context.Background(), nil)
	if !errors.Is(err, ErrUnknownTask) {
		t.Errorf("expected ErrUnknownTask, got %v", err)
	}
}

func TestSetConfig(t *testing.T) {
	l := NewLocal("builtin/x", map[string]any{"a": 1}, NewModules())
	if l.Config()["a"] != 1 {
		t.Error("initial config lost")
	}
	l.SetConfig(map[string]any{"b": 2})
	if l.Config()["b"] != 2 {
		t.Error("replacement config not applied")
	}
	l.SetConfig(nil)
	if l.Config() == nil {
		t.Error("nil config should normalize to empty map")
	}
}
