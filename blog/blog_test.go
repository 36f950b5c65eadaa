package blog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wintermute-agent/wintermute/store"
	"github.com/wintermute-agent/wintermute/store/db/sqlite"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello, World!", "hello-world"},
		{"  Spaces   everywhere  ", "spaces-everywhere"},
		{"snake_case_title", "snake-case-title"},
		{"Tides: a field diary", "tides-a-field-diary"},
		{"---dashes---", "dashes"},
		{strings.Repeat("long ", 30), strings.Trim(strings.Repeat("long-", 12), "-")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.title), "title: %q", tt.title)
	}
}

func newLocalPublisher(t *testing.T) (*Publisher, *store.Store) {
	t.Helper()
	driver, err := sqlite.NewDB(filepath.Join(t.TempDir(), "test.db"))
	assert.NoError(t, err)
	st := store.New(driver)
	assert.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })

	p := New(Config{LocalMode: true, LocalDir: t.TempDir()}, st, func(o *Options) {
		o.Clock = func() time.Time {
			return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
		}
	})
	return p, st
}

func TestPublishPostLocalMode(t *testing.T) {
	p, st := newLocalPublisher(t)
	ctx := context.Background()

	result, err := p.PublishPost(ctx, "First Light", "Hello from day one.", "An intro.", 1)
	assert.NoError(t, err)
	assert.Contains(t, result, "[LOCAL]")

	raw, err := os.ReadFile(filepath.Join(p.config.LocalDir, "posts", "2026-08-31-first-light.md"))
	assert.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "layout: post")
	assert.Contains(t, content, `title: "First Light"`)
	assert.Contains(t, content, "slug: first-light")
	assert.Contains(t, content, "Hello from day one.")

	post, err := st.GetPostBySlug(ctx, "first-light")
	assert.NoError(t, err)
	assert.NotNil(t, post)
	assert.Equal(t, "First Light", post.Title)
	assert.Empty(t, post.TwitterURL)
}

func TestUpdateAboutLocalMode(t *testing.T) {
	p, _ := newLocalPublisher(t)

	result, err := p.UpdateAbout(context.Background(), "I am an experiment.")
	assert.NoError(t, err)
	assert.Contains(t, result, "[LOCAL]")

	raw, err := os.ReadFile(filepath.Join(p.config.LocalDir, "about.md"))
	assert.NoError(t, err)
	assert.Equal(t, "I am an experiment.", string(raw))
}

func TestSessionLogMergesPerDay(t *testing.T) {
	p, _ := newLocalPublisher(t)
	ctx := context.Background()

	_, err := p.PublishPost(ctx, "First Light", "body", "summary", 7)
	assert.NoError(t, err)
	assert.NoError(t, p.PushSessionSummary(ctx, 7, "Shipped the first post."))

	raw, err := os.ReadFile(filepath.Join(p.config.LocalDir, "sessions.json"))
	assert.NoError(t, err)

	var entries []sessionLogEntry
	assert.NoError(t, json.Unmarshal(raw, &entries))
	// Both writes landed on the same date and merged into one entry.
	assert.Len(t, entries, 1)
	assert.Equal(t, "2026-08-31", entries[0].Date)
	assert.Equal(t, int64(7), entries[0].SessionID)
	assert.Equal(t, "First Light", entries[0].PostTitle)
	assert.Equal(t, "Shipped the first post.", entries[0].Summary)
}

func TestFrontMatterEscapesQuotes(t *testing.T) {
	fm := frontMatter(`A "quoted" title`, "2026-08-31 12:00:00 +0000", "a-quoted-title")
	assert.Contains(t, fm, `title: "A \"quoted\" title"`)
}
