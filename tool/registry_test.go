package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func noopDef(name string) *Definition {
	return &Definition{
		Name:        name,
		Description: "test tool",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		Handler: func(ctx context.Context, call *Call) (string, error) {
			return "ok", nil
		},
	}
}

func TestNewRegistryPreservesOrder(t *testing.T) {
	registry, err := NewRegistry(noopDef("alpha"), noopDef("beta"), noopDef("gamma"))
	assert.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, registry.Names())

	defs := registry.ModelDefinitions()
	assert.Len(t, defs, 3)
	assert.Equal(t, "alpha", defs[0].Name)
	assert.Equal(t, "gamma", defs[2].Name)
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(noopDef("alpha"), noopDef("alpha"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNewRegistryRejectsEmptyName(t *testing.T) {
	_, err := NewRegistry(noopDef(""))
	assert.Error(t, err)
}

func TestNewRegistryRejectsNilHandler(t *testing.T) {
	def := noopDef("alpha")
	def.Handler = nil
	_, err := NewRegistry(def)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no handler")
}

func TestRegistryGetAndIsTerminal(t *testing.T) {
	terminal := noopDef("finish")
	terminal.Terminal = true

	registry, err := NewRegistry(noopDef("alpha"), terminal)
	assert.NoError(t, err)

	assert.NotNil(t, registry.Get("alpha"))
	assert.Nil(t, registry.Get("missing"))
	assert.True(t, registry.IsTerminal("finish"))
	assert.False(t, registry.IsTerminal("alpha"))
	assert.False(t, registry.IsTerminal("missing"))
}
