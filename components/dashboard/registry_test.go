package dashboard

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryHasBuiltInFeeds(t *testing.T) {
	reg := NewRegistry()
	defs := reg.Definitions()
	require.Len(t, defs, len(DefaultFeedDefinitions()))
	assert.True(t, sort.SliceIsSorted(defs, func(i, j int) bool { return defs[i].Code < defs[j].Code }))
	for _, def := range defs {
		_, ok := reg.Generator(def.Code)
		assert.True(t, ok, "generator for %s", def.Code)
	}
	def, ok := reg.DefinitionByPath("/audit-logs")
	require.True(t, ok)
	assert.Equal(t, FeedAuditLogs, def.Code)
}

func TestRegisterDefinitionDerivesPathAndName(t *testing.T) {
	reg := newEmptyRegistry()
	require.NoError(t, reg.RegisterDefinition(FeedDefinition{Code: " network.edge_latency "}))
	def, ok := reg.Definition("network.edge_latency")
	require.True(t, ok)
	assert.Equal(t, "/network/edge_latency", def.Path)
	assert.Equal(t, "Network Edge Latency", def.Name)

	require.NoError(t, reg.RegisterDefinition(FeedDefinition{Code: "custom", Path: "custom-path"}))
	def, _ = reg.Definition("custom")
	assert.Equal(t, "/custom-path", def.Path)
}

func TestRegisterDefinitionRejectsConflicts(t *testing.T) {
	reg := newEmptyRegistry()
	assert.Error(t, reg.RegisterDefinition(FeedDefinition{}))
	require.NoError(t, reg.RegisterDefinition(FeedDefinition{Code: "a", Path: "/shared"}))
	assert.Error(t, reg.RegisterDefinition(FeedDefinition{Code: "b", Path: "/shared"}))

	// moving a feed frees its old path
	require.NoError(t, reg.RegisterDefinition(FeedDefinition{Code: "a", Path: "/moved"}))
	require.NoError(t, reg.RegisterDefinition(FeedDefinition{Code: "b", Path: "/shared"}))
	_, ok := reg.DefinitionByPath("/moved")
	assert.True(t, ok)
}

func TestRegisterGeneratorValidation(t *testing.T) {
	reg := newEmptyRegistry()
	gen := GeneratorFunc(func(context.Context, FeedContext) (FeedData, error) { return FeedData{}, nil })
	assert.Error(t, reg.RegisterGenerator("", gen))
	assert.Error(t, reg.RegisterGenerator("missing", gen))
	require.NoError(t, reg.RegisterDefinition(FeedDefinition{Code: "present"}))
	assert.Error(t, reg.RegisterGenerator("present", nil))
	assert.NoError(t, reg.RegisterGenerator("present", gen))
}

func TestRegistryAppliesGlobalHooks(t *testing.T) {
	globalHookMu.Lock()
	saved := globalHooks
	globalHooks = nil
	globalHookMu.Unlock()
	t.Cleanup(func() {
		globalHookMu.Lock()
		globalHooks = saved
		globalHookMu.Unlock()
	})

	RegisterFeedHook(func(reg *Registry) error {
		if err := reg.RegisterDefinition(FeedDefinition{Code: "hooked.feed", Name: "Hooked"}); err != nil {
			return err
		}
		return reg.RegisterGenerator("hooked.feed", GeneratorFunc(func(context.Context, FeedContext) (FeedData, error) {
			return FeedData{"hooked": true}, nil
		}))
	})

	svc, _ := newTestService(Options{Registry: NewRegistry()})
	data, err := svc.FetchFeedByPath(context.Background(), ViewerContext{}, "/hooked/feed", nil)
	require.NoError(t, err)
	assert.Equal(t, true, data["hooked"])
}
