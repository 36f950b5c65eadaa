package store

import (
	"context"
	"time"
)

// Post is one published blog post. Slug is the upsert key: publishing again
// with the same slug updates the existing row rather than duplicating.
type Post struct {
	ID          int64
	Title       string
	Slug        string
	Content     string
	SessionID   int64
	PublishedAt time.Time
	TwitterURL  string
	BlueskyURL  string
}

// FindPost filters post listings. Results are ordered newest first.
type FindPost struct {
	Slug  *string
	Limit *int
}

// UpsertPost saves a post, updating the existing row when the slug is taken.
func (s *Store) UpsertPost(ctx context.Context, post *Post) (*Post, error) {
	if post.PublishedAt.IsZero() {
		post.PublishedAt = time.Now().UTC()
	}
	return s.driver.UpsertPost(ctx, post)
}

// ListPosts returns published posts, newest first.
func (s *Store) ListPosts(ctx context.Context, limit int) ([]*Post, error) {
	find := &FindPost{}
	if limit > 0 {
		find.Limit = &limit
	}
	return s.driver.ListPosts(ctx, find)
}

// GetPostBySlug returns one post by slug, or nil when absent.
func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*Post, error) {
	list, err := s.driver.ListPosts(ctx, &FindPost{Slug: &slug})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}
