package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorhive/core/manifest"
	"github.com/vectorhive/core/runner"
	"github.com/vectorhive/core/state"
)

// serviceModule builds a service-runtime plugin whose lifecycle hooks append
// to the shared event log.
func serviceModule(t *testing.T, mods *runner.Modules, path string, events *[]string, startErr, stopErr error) {
	t.Helper()
	registerModule(t, mods, moduleSpec{
		path:    path,
		typ:     manifest.TypeProvider,
		runtime: manifest.RuntimeService,
		tasks: map[string]runner.TaskHandler{
			manifest.TaskStartService: func(ctx context.Context, input map[string]any) (any, error) {
				if startErr != nil {
					return nil, startErr
				}
				*events = append(*events, "start:"+path)
				return nil, nil
			},
			manifest.TaskStopService: func(ctx context.Context, input map[string]any) (any, error) {
				if stopErr != nil {
					return nil, stopErr
				}
				*events = append(*events, "stop:"+path)
				return nil, nil
			},
		},
	})
}

func TestStartServicesOrderAndSkip(t *testing.T) {
	var events []string
	mods := runner.NewModules()
	serviceModule(t, mods, "svc/a", &events, nil, nil)
	registerModule(t, mods, moduleSpec{path: "task/b", typ: manifest.TypeReranker})
	serviceModule(t, mods, "svc/c", &events, nil, nil)

	r := newTestRegistry(t, mods, state.NewMemoryStore())
	ctx := context.Background()
	require.Empty(t, r.Register(ctx, []Registration{
		{Alias: "a", Path: "svc/a"},
		{Alias: "b", Path: "task/b"},
		{Alias: "c", Path: "svc/c"},
	}))

	require.NoError(t, r.StartServices(ctx))
	// Task-runtime plugins never receive service hooks.
	assert.Equal(t, []string{"start:svc/a", "start:svc/c"}, events)

	events = events[:0]
	r.StopServices(ctx)
	assert.Equal(t, []string{"stop:svc/a", "stop:svc/c"}, events)
}

func TestStartServicesFailFast(t *testing.T) {
	boom := errors.New("port already in use")
	var events []string
	mods := runner.NewModules()
	serviceModule(t, mods, "svc/a", &events, nil, nil)
	serviceModule(t, mods, "svc/b", &events, boom, nil)
	serviceModule(t, mods, "svc/c", &events, nil, nil)

	r := newTestRegistry(t, mods, state.NewMemoryStore())
	ctx := context.Background()
	require.Empty(t, r.Register(ctx, []Registration{
		{Alias: "a", Path: "svc/a"},
		{Alias: "b", Path: "svc/b"},
		{Alias: "c", Path: "svc/c"},
	}))

	err := r.StartServices(ctx)
	var startErr *ServiceStartError
	require.ErrorAs(t, err, &startErr)
	assert.Equal(t, "b", startErr.Alias)
	assert.ErrorIs(t, err, boom)

	// The failure aborts startup before later services are reached.
	assert.Equal(t, []string{"start:svc/a"}, events)
}

func TestStopServicesBestEffort(t *testing.T) {
	boom := errors.New("drain timeout")
	var events []string
	mods := runner.NewModules()
	serviceModule(t, mods, "svc/a", &events, nil, nil)
	serviceModule(t, mods, "svc/b", &events, nil, boom)
	serviceModule(t, mods, "svc/c", &events, nil, nil)

	r := newTestRegistry(t, mods, state.NewMemoryStore())
	ctx := context.Background()
	require.Empty(t, r.Register(ctx, []Registration{
		{Alias: "a", Path: "svc/a"},
		{Alias: "b", Path: "svc/b"},
		{Alias: "c", Path: "svc/c"},
	}))

	r.StopServices(ctx)
	// The middle failure is swallowed; the rest still stop.
	assert.Equal(t, []string{"stop:svc/a", "stop:svc/c"}, events)
}
