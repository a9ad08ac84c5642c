// Package celconfig provides a config loader that resolves CEL expressions
// embedded in registration configuration.
//
// String values prefixed with "cel:" are compiled and evaluated at load
// time with the registering plugin's context available as variables:
//
//	alias          the declaration alias
//	path           the module path
//	env            process environment as map[string]string
//	manifest(a)    another declaration's manifest, by alias
//
// Example:
//
//	config:
//	  apiKey: "cel:env['OPENAI_API_KEY']"
//	  model:  "cel:manifest('default-llm').name"
//
// Values without the prefix pass through untouched. When a registration
// contains no expressions the loader defers to the fallback, so hosts can
// install it unconditionally.
package celconfig

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/vectorhive/core/manifest"
	"github.com/vectorhive/core/registry"
)

// Prefix marks a string config value as a CEL expression.
const Prefix = "cel:"

// NewLoader returns a registry.ConfigLoader resolving CEL expressions.
func NewLoader() registry.ConfigLoader {
	return func(ctx context.Context, reg registry.Registration, mf manifest.Manifest, lookup registry.ManifestLookup, fallback registry.LoaderFunc) (map[string]any, error) {
		cfg, err := fallback(ctx, reg)
		if err != nil {
			return nil, err
		}
		if !hasExpressions(cfg) {
			return cfg, nil
		}

		env, err := newEnv(lookup)
		if err != nil {
			return nil, fmt.Errorf("celconfig: build environment: %w", err)
		}
		vars := map[string]any{
			"alias": reg.Alias,
			"path":  reg.Path,
			"env":   environMap(),
		}

		resolved, err := resolveValue(env, vars, cfg)
		if err != nil {
			return nil, err
		}
		return resolved.(map[string]any), nil
	}
}

func newEnv(lookup registry.ManifestLookup) (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("alias", cel.StringType),
		cel.Variable("path", cel.StringType),
		cel.Variable("env", cel.MapType(cel.StringType, cel.StringType)),
		cel.Function("manifest",
			cel.Overload("manifest_string",
				[]*cel.Type{cel.StringType}, cel.DynType,
				cel.UnaryBinding(func(arg ref.Val) ref.Val {
					alias, ok := arg.Value().(string)
					if !ok {
						return types.NewErr("manifest() requires a string alias")
					}
					mf, found := lookup(alias)
					if !found {
						return types.NewErr("manifest(%q): unknown alias", alias)
					}
					return types.DefaultTypeAdapter.NativeToValue(manifestMap(mf))
				}))),
	)
}

// resolveValue walks the config tree and evaluates expression strings.
func resolveValue(env *cel.Env, vars map[string]any, value any) (any, error) {
	switch v := value.(type) {
	case string:
		if !strings.HasPrefix(v, Prefix) {
			return v, nil
		}
		return eval(env, vars, strings.TrimPrefix(v, Prefix))
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			resolved, err := resolveValue(env, vars, val)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			resolved, err := resolveValue(env, vars, val)
			if err != nil {
				return nil, fmt.Errorf("%d: %w", i, err)
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return value, nil
	}
}

func eval(env *cel.Env, vars map[string]any, src string) (any, error) {
	ast, issues := env.Compile(src)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("celconfig: compile %q: %w", src, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("celconfig: program %q: %w", src, err)
	}
	out, _, err := prg.Eval(vars)
	if err != nil {
		return nil, fmt.Errorf("celconfig: eval %q: %w", src, err)
	}
	return out.Value(), nil
}

func hasExpressions(value any) bool {
	switch v := value.(type) {
	case string:
		return strings.HasPrefix(v, Prefix)
	case map[string]any:
		for _, val := range v {
			if hasExpressions(val) {
				return true
			}
		}
	case []any:
		for _, val := range v {
			if hasExpressions(val) {
				return true
			}
		}
	}
	return false
}

func environMap() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			out[kv[:i]] = kv[i+1:]
		}
	}
	return out
}

func manifestMap(m manifest.Manifest) map[string]any {
	return map[string]any{
		"name":        m.Name,
		"displayName": m.DisplayName,
		"description": m.Description,
		"version":     m.Version,
		"type":        string(m.Type),
		"runtime":     string(m.Runtime),
	}
}
