package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wintermute-agent/wintermute/core"
	"github.com/wintermute-agent/wintermute/logging"
)

func newTestDispatcher(t *testing.T, defs ...*Definition) *Dispatcher {
	t.Helper()
	registry, err := NewRegistry(defs...)
	assert.NoError(t, err)
	return NewDispatcher(registry, logging.NoOpLogger{})
}

func TestDispatchUnknownTool(t *testing.T) {
	d := newTestDispatcher(t, noopDef("alpha"))

	var actions []core.Action
	result, exit := d.Dispatch(context.Background(), "nope", map[string]any{"a": 1}, 1, &actions)

	assert.Equal(t, "Unknown tool: nope", result)
	assert.False(t, exit)
	// The action is recorded even though no handler ran.
	assert.Len(t, actions, 1)
	assert.Equal(t, "nope", actions[0].Tool)
}

func TestDispatchAppendsActionBeforeHandler(t *testing.T) {
	var seen int
	def := &Definition{
		Name:        "probe",
		Description: "records the action count it observes",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		Handler: func(ctx context.Context, call *Call) (string, error) {
			seen = len(*call.Actions)
			return "ok", nil
		},
	}
	d := newTestDispatcher(t, def)

	var actions []core.Action
	_, _ = d.Dispatch(context.Background(), "probe", nil, 1, &actions)
	assert.Equal(t, 1, seen)
}

func TestDispatchHandlerError(t *testing.T) {
	def := noopDef("boomer")
	def.Handler = func(ctx context.Context, call *Call) (string, error) {
		return "", NewError("boomer", "Boom")
	}
	d := newTestDispatcher(t, def)

	var actions []core.Action
	result, exit := d.Dispatch(context.Background(), "boomer", nil, 1, &actions)

	assert.Equal(t, "Tool error (boomer): Boom", result)
	assert.False(t, exit)
	assert.Len(t, actions, 1)
}

func TestDispatchRecoversPanic(t *testing.T) {
	def := noopDef("panicky")
	def.Handler = func(ctx context.Context, call *Call) (string, error) {
		panic("oh no")
	}
	d := newTestDispatcher(t, def)

	var actions []core.Action
	result, exit := d.Dispatch(context.Background(), "panicky", nil, 1, &actions)

	assert.Contains(t, result, "Tool error (panicky):")
	assert.Contains(t, result, "oh no")
	assert.False(t, exit)
}

func TestDispatchValidationFailure(t *testing.T) {
	def := noopDef("strict")
	def.InputSchema = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
		},
		"required": []string{"name"},
	}
	called := false
	def.Handler = func(ctx context.Context, call *Call) (string, error) {
		called = true
		return "ok", nil
	}
	d := newTestDispatcher(t, def)

	var actions []core.Action
	result, exit := d.Dispatch(context.Background(), "strict", map[string]any{}, 1, &actions)

	assert.Contains(t, result, "Tool error (strict):")
	assert.Contains(t, result, "name")
	assert.False(t, exit)
	assert.False(t, called)
	assert.Len(t, actions, 1)
}

func TestDispatchTerminalTool(t *testing.T) {
	terminal := noopDef("finish")
	terminal.Terminal = true
	d := newTestDispatcher(t, terminal)

	var actions []core.Action
	result, exit := d.Dispatch(context.Background(), "finish", nil, 1, &actions)

	assert.Equal(t, "ok", result)
	assert.True(t, exit)
}

func TestDispatchTerminalToolFailureDoesNotExit(t *testing.T) {
	terminal := noopDef("finish")
	terminal.Terminal = true
	terminal.Handler = func(ctx context.Context, call *Call) (string, error) {
		return "", NewError("finish", "persist failed")
	}
	d := newTestDispatcher(t, terminal)

	var actions []core.Action
	result, exit := d.Dispatch(context.Background(), "finish", nil, 1, &actions)

	assert.Equal(t, "Tool error (finish): persist failed", result)
	assert.False(t, exit)
}

func TestDispatchNilInputs(t *testing.T) {
	var got map[string]any
	def := noopDef("echo")
	def.Handler = func(ctx context.Context, call *Call) (string, error) {
		got = call.Inputs
		return "ok", nil
	}
	d := newTestDispatcher(t, def)

	var actions []core.Action
	_, _ = d.Dispatch(context.Background(), "echo", nil, 1, &actions)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCallAccessors(t *testing.T) {
	call := &Call{Inputs: map[string]any{
		"s": "text",
		"f": float64(7),
		"i": 3,
	}}
	assert.Equal(t, "text", call.String("s"))
	assert.Equal(t, "", call.String("missing"))
	assert.Equal(t, 7, call.Int("f", 0))
	assert.Equal(t, 3, call.Int("i", 0))
	assert.Equal(t, 9, call.Int("missing", 9))
}
