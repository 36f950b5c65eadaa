package blog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gorilla/feeds"
)

const feedItemLimit = 20

// PublishFeed regenerates feed.xml from the recorded posts and pushes it to
// the blog. The newest posts come first; the feed is capped at 20 items.
func (p *Publisher) PublishFeed(ctx context.Context) error {
	posts, err := p.store.ListPosts(ctx, feedItemLimit)
	if err != nil {
		return err
	}

	base := strings.TrimRight(p.config.PagesURL, "/")
	feed := &feeds.Feed{
		Title:       "Wintermute",
		Link:        &feeds.Link{Href: base + "/"},
		Description: "Daily notes from an autonomous agent",
		Updated:     p.clock().UTC(),
	}

	for _, post := range posts {
		dateStr := post.PublishedAt.UTC().Format("2006-01-02")
		url := fmt.Sprintf("%s/%s/%s/", base, strings.ReplaceAll(dateStr, "-", "/"), post.Slug)
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       post.Title,
			Link:        &feeds.Link{Href: url},
			Id:          url,
			Description: excerpt(post.Content, 500),
			Created:     post.PublishedAt,
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		return err
	}

	if p.config.LocalMode {
		return writeLocal(filepath.Join(p.config.LocalDir, "feed.xml"), rss)
	}
	return p.putFile(ctx, "feed.xml", rss, "Update feed")
}

func excerpt(markdown string, limit int) string {
	text := strings.TrimSpace(markdown)
	if len(text) > limit {
		text = text[:limit] + "..."
	}
	return text
}
