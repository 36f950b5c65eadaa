package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/wintermute-agent/wintermute/tool"
)

func rememberTool(deps Deps) *tool.Definition {
	return &tool.Definition{
		Name: "remember",
		Description: "Save a memory for future sessions. Use this to persist interesting " +
			"facts, reflections, goals, or interests.",
		InputSchema: objectSchema(map[string]any{
			"category": stringProp("Memory category: 'interest', 'fact', 'reflection', 'goal', or 'identity'"),
			"content":  stringProp("The memory content"),
			"importance": map[string]any{
				"type":        "integer",
				"description": "Importance from 1 (low) to 5 (high)",
				"minimum":     1,
				"maximum":     5,
			},
		}, "category", "content", "importance"),
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			memory, err := deps.Store.CreateMemory(ctx,
				call.String("category"), call.String("content"), call.Int("importance", 3))
			if err != nil {
				return "", tool.WrapError("remember", err)
			}
			return fmt.Sprintf("Memory saved (id=%d).", memory.ID), nil
		},
	}
}

func recallTool(deps Deps) *tool.Definition {
	return &tool.Definition{
		Name:        "recall",
		Description: "Search your memory for relevant past notes, interests, or facts.",
		InputSchema: objectSchema(map[string]any{
			"query": stringProp("What to search for in memory"),
		}, "query"),
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			results, err := deps.Store.SearchMemories(ctx, call.String("query"), 0)
			if err != nil {
				return "", tool.WrapError("recall", err)
			}
			if len(results) == 0 {
				return "No memories found matching that query.", nil
			}
			lines := make([]string, 0, len(results))
			for _, r := range results {
				lines = append(lines, fmt.Sprintf("[id=%d] [%s] %s %s",
					r.ID, r.Category, strings.Repeat("★", r.Importance), r.Content))
			}
			return strings.Join(lines, "\n"), nil
		},
	}
}

func deleteMemoryTool(deps Deps) *tool.Definition {
	return &tool.Definition{
		Name: "delete_memory",
		Description: "Delete a memory by its ID. Use this to remove stale, incorrect, or " +
			"outdated memories. IDs are shown by recall.",
		InputSchema: objectSchema(map[string]any{
			"memory_id": intProp("The memory ID to delete"),
		}, "memory_id"),
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			id := int64(call.Int("memory_id", 0))
			deleted, err := deps.Store.DeleteMemory(ctx, id)
			if err != nil {
				return "", tool.WrapError("delete_memory", err)
			}
			if !deleted {
				return fmt.Sprintf("No memory found with id %d.", id), nil
			}
			return fmt.Sprintf("Memory %d deleted.", id), nil
		},
	}
}

func listPostsTool(deps Deps) *tool.Definition {
	return &tool.Definition{
		Name:        "list_posts",
		Description: "List all blog posts you have published, newest first. Returns title, slug, and date.",
		InputSchema: objectSchema(map[string]any{}),
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			posts, err := deps.Store.ListPosts(ctx, 0)
			if err != nil {
				return "", tool.WrapError("list_posts", err)
			}
			if len(posts) == 0 {
				return "No posts published yet.", nil
			}
			lines := make([]string, 0, len(posts))
			for _, p := range posts {
				lines = append(lines, fmt.Sprintf("[%s] %s (slug: %s)",
					p.PublishedAt.UTC().Format("2006-01-02"), p.Title, p.Slug))
			}
			return strings.Join(lines, "\n"), nil
		},
	}
}

func readPostTool(deps Deps) *tool.Definition {
	return &tool.Definition{
		Name:        "read_post",
		Description: "Read the full markdown content of one of your previously published posts by its slug.",
		InputSchema: objectSchema(map[string]any{
			"slug": stringProp("The post slug (from list_posts)"),
		}, "slug"),
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			slug := call.String("slug")
			post, err := deps.Store.GetPostBySlug(ctx, slug)
			if err != nil {
				return "", tool.WrapError("read_post", err)
			}
			if post == nil {
				return fmt.Sprintf("No post found with slug '%s'.", slug), nil
			}
			return fmt.Sprintf("# %s\n\n%s", post.Title, post.Content), nil
		},
	}
}

func setReminderTool(deps Deps) *tool.Definition {
	return &tool.Definition{
		Name: "set_reminder",
		Description: "Set a reminder note for a future date. The reminder will be injected " +
			"into your system prompt on or after the due date.",
		InputSchema: objectSchema(map[string]any{
			"date": stringProp("Due date in YYYY-MM-DD format"),
			"note": stringProp("What to remind yourself about"),
		}, "date", "note"),
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			reminder, err := deps.Store.CreateReminder(ctx, call.String("date"), call.String("note"))
			if err != nil {
				return "", tool.WrapError("set_reminder", err)
			}
			return fmt.Sprintf("Reminder set (id=%d) for %s: %s", reminder.ID, reminder.DueDate, reminder.Note), nil
		},
	}
}
