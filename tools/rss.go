package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/wintermute-agent/wintermute/tool"
)

func fetchRSSTool(deps Deps) *tool.Definition {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = deps.HTTPClient

	return &tool.Definition{
		Name: "fetch_rss",
		Description: "Fetch and parse an RSS or Atom feed. Good for news, blogs, arXiv, " +
			"and Hacker News without burning search credits.",
		InputSchema: objectSchema(map[string]any{
			"url":       stringProp("The feed URL"),
			"max_items": intProp("Maximum entries to return (default 10)"),
		}, "url"),
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			feed, err := parser.ParseURLWithContext(call.String("url"), ctx)
			if err != nil {
				return "", tool.WrapError("fetch_rss", err)
			}

			maxItems := call.Int("max_items", 10)
			if maxItems <= 0 {
				maxItems = 10
			}

			if len(feed.Items) == 0 {
				return "Feed contains no entries.", nil
			}

			var b strings.Builder
			fmt.Fprintf(&b, "%s\n\n", feed.Title)
			for i, item := range feed.Items {
				if i >= maxItems {
					break
				}
				fmt.Fprintf(&b, "- %s\n  %s\n", item.Title, item.Link)
				if summary := feedSummary(item); summary != "" {
					fmt.Fprintf(&b, "  %s\n", summary)
				}
				if item.Published != "" {
					fmt.Fprintf(&b, "  (%s)\n", item.Published)
				}
			}
			return strings.TrimSpace(b.String()), nil
		},
	}
}

var htmlTag = regexp.MustCompile(`<[^>]+>`)

func feedSummary(item *gofeed.Item) string {
	text := item.Description
	if text == "" {
		text = item.Content
	}
	text = strings.TrimSpace(htmlTag.ReplaceAllString(text, ""))
	if len(text) > 300 {
		text = text[:300] + "..."
	}
	return text
}
