package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/wintermute-agent/wintermute/store"
)

func (d *DB) UpsertPost(ctx context.Context, upsert *store.Post) (*store.Post, error) {
	stmt := `INSERT INTO posts (title, slug, content_md, session_id, published_at, twitter_url, bluesky_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			content_md = excluded.content_md,
			published_at = excluded.published_at,
			twitter_url = excluded.twitter_url,
			bluesky_url = excluded.bluesky_url
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt,
		upsert.Title,
		upsert.Slug,
		upsert.Content,
		upsert.SessionID,
		formatTime(upsert.PublishedAt),
		nullString(upsert.TwitterURL),
		nullString(upsert.BlueskyURL),
	).Scan(&upsert.ID); err != nil {
		return nil, errors.Wrapf(err, "failed to upsert post %q", upsert.Slug)
	}
	return upsert, nil
}

func (d *DB) ListPosts(ctx context.Context, find *store.FindPost) ([]*store.Post, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.Slug; v != nil {
		where, args = append(where, "slug = ?"), append(args, *v)
	}

	query := `
		SELECT id, title, slug, content_md, session_id, published_at, twitter_url, bluesky_url
		FROM posts
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY id DESC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query posts")
	}
	defer rows.Close()

	list := make([]*store.Post, 0)
	for rows.Next() {
		var post store.Post
		var publishedAt string
		var twitterURL, blueskyURL sql.NullString
		if err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Slug,
			&post.Content,
			&post.SessionID,
			&publishedAt,
			&twitterURL,
			&blueskyURL,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan post")
		}
		if post.PublishedAt, err = parseTime(publishedAt); err != nil {
			return nil, errors.Wrap(err, "failed to parse published_at")
		}
		post.TwitterURL = twitterURL.String
		post.BlueskyURL = blueskyURL.String
		list = append(list, &post)
	}
	return list, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
