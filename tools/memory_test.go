package tools

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wintermute-agent/wintermute/core"
	"github.com/wintermute-agent/wintermute/store"
	"github.com/wintermute-agent/wintermute/store/db/sqlite"
	"github.com/wintermute-agent/wintermute/tool"
)

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	driver, err := sqlite.NewDB(filepath.Join(t.TempDir(), "test.db"))
	assert.NoError(t, err)
	st := store.New(driver)
	assert.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })

	deps := Deps{Store: st}
	deps.defaults()
	return deps
}

func call(t *testing.T, def *tool.Definition, inputs map[string]any) (string, error) {
	t.Helper()
	var actions []core.Action
	return def.Handler(context.Background(), &tool.Call{
		Inputs:    inputs,
		SessionID: 1,
		Actions:   &actions,
	})
}

func TestRememberAndRecall(t *testing.T) {
	deps := newTestDeps(t)

	result, err := call(t, rememberTool(deps), map[string]any{
		"category":   "interest",
		"content":    "Tidal patterns in the Bay of Fundy",
		"importance": float64(4),
	})
	assert.NoError(t, err)
	assert.Equal(t, "Memory saved (id=1).", result)

	result, err = call(t, recallTool(deps), map[string]any{"query": "tidal"})
	assert.NoError(t, err)
	assert.Contains(t, result, "[interest]")
	assert.Contains(t, result, "★★★★")
	assert.Contains(t, result, "Tidal patterns in the Bay of Fundy")
}

func TestRecallNoMatches(t *testing.T) {
	deps := newTestDeps(t)

	result, err := call(t, recallTool(deps), map[string]any{"query": "anything"})
	assert.NoError(t, err)
	assert.Equal(t, "No memories found matching that query.", result)
}

func TestDeleteMemoryHandler(t *testing.T) {
	deps := newTestDeps(t)

	_, err := call(t, rememberTool(deps), map[string]any{
		"category": "fact", "content": "disposable", "importance": float64(1),
	})
	assert.NoError(t, err)

	result, err := call(t, deleteMemoryTool(deps), map[string]any{"memory_id": float64(1)})
	assert.NoError(t, err)
	assert.Equal(t, "Memory 1 deleted.", result)

	result, err = call(t, deleteMemoryTool(deps), map[string]any{"memory_id": float64(1)})
	assert.NoError(t, err)
	assert.Equal(t, "No memory found with id 1.", result)
}

func TestListAndReadPosts(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()

	result, err := call(t, listPostsTool(deps), map[string]any{})
	assert.NoError(t, err)
	assert.Equal(t, "No posts published yet.", result)

	_, err = deps.Store.UpsertPost(ctx, &store.Post{
		Title: "First Light", Slug: "first-light", Content: "Hello.", SessionID: 1,
	})
	assert.NoError(t, err)

	result, err = call(t, listPostsTool(deps), map[string]any{})
	assert.NoError(t, err)
	assert.Contains(t, result, "First Light (slug: first-light)")

	result, err = call(t, readPostTool(deps), map[string]any{"slug": "first-light"})
	assert.NoError(t, err)
	assert.Equal(t, "# First Light\n\nHello.", result)

	result, err = call(t, readPostTool(deps), map[string]any{"slug": "nope"})
	assert.NoError(t, err)
	assert.Equal(t, "No post found with slug 'nope'.", result)
}

func TestSetReminderHandler(t *testing.T) {
	deps := newTestDeps(t)

	result, err := call(t, setReminderTool(deps), map[string]any{
		"date": "2026-09-15",
		"note": "revisit the tides draft",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Reminder set (id=1) for 2026-09-15: revisit the tides draft", result)

	due, err := deps.Store.ListDueReminders(context.Background(), "2026-09-15")
	assert.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestEndSessionHandler(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()

	session, err := deps.Store.CreateSession(ctx)
	assert.NoError(t, err)

	def := endSessionTool(deps)
	assert.True(t, def.Terminal)

	actions := []core.Action{{Tool: "noop", Inputs: map[string]any{}}}
	result, err := def.Handler(ctx, &tool.Call{
		Inputs:    map[string]any{"summary": "A quiet day."},
		SessionID: session.ID,
		Actions:   &actions,
	})
	assert.NoError(t, err)
	assert.Equal(t, "A quiet day.", result)

	ended, err := deps.Store.GetSession(ctx, session.ID)
	assert.NoError(t, err)
	assert.NotNil(t, ended.EndedAt)
	assert.Equal(t, "A quiet day.", *ended.Summary)

	persisted, err := ended.Actions()
	assert.NoError(t, err)
	assert.Len(t, persisted, 1)
}
