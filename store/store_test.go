package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wintermute-agent/wintermute/core"
	"github.com/wintermute-agent/wintermute/store"
	"github.com/wintermute-agent/wintermute/store/db/sqlite"
)

func newTestStore(t *testing.T, optFns ...func(o *store.Options)) *store.Store {
	t.Helper()
	driver, err := sqlite.NewDB(filepath.Join(t.TempDir(), "test.db"))
	assert.NoError(t, err)

	st := store.New(driver, optFns...)
	assert.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })
	return st
}

func TestCreateMemoryClampsImportance(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	high, err := st.CreateMemory(ctx, "fact", "overeager", 9)
	assert.NoError(t, err)
	assert.Equal(t, store.MaxImportance, high.Importance)

	low, err := st.CreateMemory(ctx, "fact", "undereager", -3)
	assert.NoError(t, err)
	assert.Equal(t, store.MinImportance, low.Importance)

	mid, err := st.CreateMemory(ctx, "fact", "calibrated", 3)
	assert.NoError(t, err)
	assert.Equal(t, 3, mid.Importance)
}

func TestSearchMemoriesEmptyStore(t *testing.T) {
	st := newTestStore(t)

	results, err := st.SearchMemories(context.Background(), "anything", 0)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchMemoriesSubstringFallback(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.CreateMemory(ctx, "interest", "Learning Go generics", 2)
	assert.NoError(t, err)
	_, err = st.CreateMemory(ctx, "goal", "Write about GO concurrency", 5)
	assert.NoError(t, err)
	_, err = st.CreateMemory(ctx, "fact", "Espresso is best at 93C", 4)
	assert.NoError(t, err)

	results, err := st.SearchMemories(ctx, "go", 0)
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	// Substring matching is case-insensitive and ranks by importance first.
	assert.Equal(t, "Write about GO concurrency", results[0].Content)
	assert.Equal(t, "Learning Go generics", results[1].Content)
}

func TestDeleteMemoryTwice(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	memory, err := st.CreateMemory(ctx, "fact", "ephemeral", 1)
	assert.NoError(t, err)

	deleted, err := st.DeleteMemory(ctx, memory.ID)
	assert.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = st.DeleteMemory(ctx, memory.ID)
	assert.NoError(t, err)
	assert.False(t, deleted)
}

func TestListMemoriesOrdering(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.CreateMemory(ctx, "fact", "first", 2)
	assert.NoError(t, err)
	_, err = st.CreateMemory(ctx, "fact", "second", 2)
	assert.NoError(t, err)
	_, err = st.CreateMemory(ctx, "fact", "third", 5)
	assert.NoError(t, err)

	memories, err := st.ListMemories(ctx, 0)
	assert.NoError(t, err)
	assert.Len(t, memories, 3)
	// Importance descending, then newest first within a tie.
	assert.Equal(t, "third", memories[0].Content)
	assert.Equal(t, "second", memories[1].Content)
	assert.Equal(t, "first", memories[2].Content)
}

func TestRemindersTriggerOnce(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.CreateReminder(ctx, "2026-01-10", "check on the garden")
	assert.NoError(t, err)
	_, err = st.CreateReminder(ctx, "2026-03-01", "not due yet")
	assert.NoError(t, err)

	due, err := st.ListDueReminders(ctx, "2026-01-15")
	assert.NoError(t, err)
	assert.Len(t, due, 1)
	assert.Equal(t, "check on the garden", due[0].Note)

	assert.NoError(t, st.MarkRemindersTriggered(ctx, []int64{due[0].ID}))

	// Triggered reminders never resurface.
	due, err = st.ListDueReminders(ctx, "2026-01-15")
	assert.NoError(t, err)
	assert.Empty(t, due)

	// Re-marking is a no-op, not an error.
	assert.NoError(t, st.MarkRemindersTriggered(ctx, []int64{1}))
	assert.NoError(t, st.MarkRemindersTriggered(ctx, nil))
}

func TestReminderDueBoundary(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.CreateReminder(ctx, "2026-02-01", "due today")
	assert.NoError(t, err)

	due, err := st.ListDueReminders(ctx, "2026-01-31")
	assert.NoError(t, err)
	assert.Empty(t, due)

	due, err = st.ListDueReminders(ctx, "2026-02-01")
	assert.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestPostUpsertBySlug(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.UpsertPost(ctx, &store.Post{
		Title: "First Light", Slug: "first-light", Content: "draft", SessionID: 1,
	})
	assert.NoError(t, err)

	_, err = st.UpsertPost(ctx, &store.Post{
		Title: "First Light", Slug: "first-light", Content: "final", SessionID: 2,
		TwitterURL: "https://twitter.com/x/status/1",
	})
	assert.NoError(t, err)

	posts, err := st.ListPosts(ctx, 0)
	assert.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, "final", posts[0].Content)
	assert.Equal(t, "https://twitter.com/x/status/1", posts[0].TwitterURL)

	post, err := st.GetPostBySlug(ctx, "first-light")
	assert.NoError(t, err)
	assert.NotNil(t, post)

	missing, err := st.GetPostBySlug(ctx, "absent")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEmailInsertIfAbsent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	email := &store.Email{
		MessageID: "msg-1", From: "a@example.com", Subject: "hello",
		Body: "original", ReceivedAt: "2026-01-01T00:00:00Z",
	}
	assert.NoError(t, st.UpsertEmail(ctx, email))

	// Re-ingesting the same message id never overwrites.
	dup := &store.Email{MessageID: "msg-1", From: "b@example.com", Subject: "changed", Body: "changed"}
	assert.NoError(t, st.UpsertEmail(ctx, dup))

	seen, err := st.SeenMessageIDs(ctx)
	assert.NoError(t, err)
	assert.Len(t, seen, 1)
	assert.Contains(t, seen, "msg-1")

	assert.NoError(t, st.MarkEmailReplied(ctx, "msg-1", "thanks for writing"))
}

func TestSessionLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first, err := st.IsFirstSession(ctx)
	assert.NoError(t, err)
	assert.True(t, first)

	session, err := st.CreateSession(ctx)
	assert.NoError(t, err)
	assert.NotEmpty(t, session.UID)
	assert.Nil(t, session.EndedAt)

	first, err = st.IsFirstSession(ctx)
	assert.NoError(t, err)
	assert.False(t, first)

	actions := []core.Action{
		{Tool: "web_search", Inputs: map[string]any{"query": "go"}},
		{Tool: "end_session", Inputs: map[string]any{"summary": "done"}},
	}
	assert.NoError(t, st.EndSession(ctx, session.ID, "Explored Go.", actions))

	ended, err := st.GetSession(ctx, session.ID)
	assert.NoError(t, err)
	assert.NotNil(t, ended.EndedAt)
	assert.Equal(t, "Explored Go.", *ended.Summary)

	decoded, err := ended.Actions()
	assert.NoError(t, err)
	assert.Len(t, decoded, 2)
	assert.Equal(t, "web_search", decoded[0].Tool)
}

func TestListRecentSessionsChronological(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, summary := range []string{"day one", "day two", "day three"} {
		session, err := st.CreateSession(ctx)
		assert.NoError(t, err)
		assert.NoError(t, st.EndSession(ctx, session.ID, summary, nil))
	}

	// An open session without a summary is excluded.
	_, err := st.CreateSession(ctx)
	assert.NoError(t, err)

	recent, err := st.ListRecentSessions(ctx, 2)
	assert.NoError(t, err)
	assert.Len(t, recent, 2)
	assert.Equal(t, "day two", *recent[0].Summary)
	assert.Equal(t, "day three", *recent[1].Summary)
}
