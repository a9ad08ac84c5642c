package celconfig

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorhive/core/manifest"
	"github.com/vectorhive/core/registry"
)

func load(t *testing.T, reg registry.Registration, lookup registry.ManifestLookup) (map[string]any, error) {
	t.Helper()
	if lookup == nil {
		lookup = func(string) (manifest.Manifest, bool) { return manifest.Manifest{}, false }
	}
	loader := NewLoader()
	return loader(context.Background(), reg, manifest.Manifest{}, lookup, registry.DefaultConfigLoader)
}

func TestPassthroughWithoutExpressions(t *testing.T) {
	cfg, err := load(t, registry.Registration{
		Alias: "p",
		Config: map[string]any{
			"endpoint": "https://api.example.com",
			"retries":  3,
		},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg["endpoint"])
	assert.Equal(t, 3, cfg["retries"])
}

func TestEnvExpression(t *testing.T) {
	t.Setenv("VH_TEST_API_KEY", "sk-from-env")

	cfg, err := load(t, registry.Registration{
		Alias: "gen",
		Config: map[string]any{
			"apiKey": "cel:env['VH_TEST_API_KEY']",
			"plain":  "untouched",
		},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg["apiKey"])
	assert.Equal(t, "untouched", cfg["plain"])
}

func TestAliasAndPathVariables(t *testing.T) {
	cfg, err := load(t, registry.Registration{
		Alias: "minio",
		Path:  "builtin/minio",
		Config: map[string]any{
			"bucket": "cel:alias + '-content'",
			"module": "cel:path",
		},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "minio-content", cfg["bucket"])
	assert.Equal(t, "builtin/minio", cfg["module"])
}

func TestManifestLookup(t *testing.T) {
	lookup := func(alias string) (manifest.Manifest, bool) {
		if alias != "default-llm" {
			return manifest.Manifest{}, false
		}
		return manifest.Manifest{
			Name:    "openai-gpt",
			Version: "2.1.0",
			Type:    manifest.TypeGenerative,
		}, true
	}

	cfg, err := load(t, registry.Registration{
		Alias: "enhancer",
		Config: map[string]any{
			"model": "cel:manifest('default-llm').name",
		},
	}, lookup)
	require.NoError(t, err)
	assert.Equal(t, "openai-gpt", cfg["model"])
}

func TestManifestLookupUnknownAlias(t *testing.T) {
	_, err := load(t, registry.Registration{
		Alias: "enhancer",
		Config: map[string]any{
			"model": "cel:manifest('nobody').name",
		},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nobody")
}

func TestNestedExpressions(t *testing.T) {
	t.Setenv("VH_TEST_TOKEN", "t0k3n")

	cfg, err := load(t, registry.Registration{
		Alias: "p",
		Config: map[string]any{
			"auth": map[string]any{
				"token": "cel:env['VH_TEST_TOKEN']",
			},
			"hosts": []any{"static.example.com", "cel:alias + '.example.com'"},
		},
	}, nil)
	require.NoError(t, err)

	auth := cfg["auth"].(map[string]any)
	assert.Equal(t, "t0k3n", auth["token"])
	hosts := cfg["hosts"].([]any)
	assert.Equal(t, "static.example.com", hosts[0])
	assert.Equal(t, "p.example.com", hosts[1])
}

func TestCompileError(t *testing.T) {
	_, err := load(t, registry.Registration{
		Alias: "p",
		Config: map[string]any{
			"bad": "cel:env[",
		},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}
