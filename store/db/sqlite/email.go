package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/wintermute-agent/wintermute/store"
)

func (d *DB) UpsertEmail(ctx context.Context, upsert *store.Email) error {
	// Insert-if-absent keyed by message_id; re-ingesting a message is a no-op.
	stmt := `INSERT INTO emails (message_id, from_addr, subject, body, received_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO NOTHING`
	if _, err := d.db.ExecContext(ctx, stmt,
		upsert.MessageID,
		upsert.From,
		upsert.Subject,
		upsert.Body,
		upsert.ReceivedAt,
	); err != nil {
		return errors.Wrapf(err, "failed to upsert email %q", upsert.MessageID)
	}
	return nil
}

func (d *DB) ListEmails(ctx context.Context, find *store.FindEmail) ([]*store.Email, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.MessageID; v != nil {
		where, args = append(where, "message_id = ?"), append(args, *v)
	}

	query := `
		SELECT id, message_id, from_addr, subject, body, received_at, replied_at, reply_body
		FROM emails
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY id DESC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query emails")
	}
	defer rows.Close()

	list := make([]*store.Email, 0)
	for rows.Next() {
		var email store.Email
		var repliedAt, replyBody sql.NullString
		if err := rows.Scan(
			&email.ID,
			&email.MessageID,
			&email.From,
			&email.Subject,
			&email.Body,
			&email.ReceivedAt,
			&repliedAt,
			&replyBody,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan email")
		}
		if email.RepliedAt, err = parseNullTime(repliedAt); err != nil {
			return nil, errors.Wrap(err, "failed to parse replied_at")
		}
		email.ReplyBody = replyBody.String
		list = append(list, &email)
	}
	return list, rows.Err()
}

func (d *DB) MarkEmailReplied(ctx context.Context, messageID, replyBody string, repliedAt time.Time) error {
	stmt := `UPDATE emails SET replied_at = ?, reply_body = ? WHERE message_id = ?`
	if _, err := d.db.ExecContext(ctx, stmt, formatTime(repliedAt), replyBody, messageID); err != nil {
		return errors.Wrapf(err, "failed to mark email %q replied", messageID)
	}
	return nil
}
