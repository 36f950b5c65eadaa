package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/wintermute-agent/wintermute/store"
)

func (d *DB) CreateSession(ctx context.Context, create *store.Session) (*store.Session, error) {
	stmt := `INSERT INTO sessions (uid, started_at, actions_json) VALUES (?, ?, ?) RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID,
		formatTime(create.StartedAt),
		create.ActionsJSON,
	).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}
	return create, nil
}

func (d *DB) UpdateSession(ctx context.Context, update *store.UpdateSession) error {
	set, args := []string{}, []any{}
	if v := update.EndedAt; v != nil {
		set, args = append(set, "ended_at = ?"), append(args, formatTime(*v))
	}
	if v := update.Summary; v != nil {
		set, args = append(set, "summary = ?"), append(args, *v)
	}
	if v := update.ActionsJSON; v != nil {
		set, args = append(set, "actions_json = ?"), append(args, *v)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, update.ID)

	stmt := `UPDATE sessions SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrapf(err, "failed to update session %d", update.ID)
	}
	return nil
}

func (d *DB) ListSessions(ctx context.Context, find *store.FindSession) ([]*store.Session, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if find.SummaryOnly {
		where = append(where, "summary IS NOT NULL")
	}

	query := `
		SELECT id, uid, started_at, ended_at, summary, actions_json
		FROM sessions
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY id DESC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query sessions")
	}
	defer rows.Close()

	list := make([]*store.Session, 0)
	for rows.Next() {
		var session store.Session
		var startedAt string
		var endedAt, summary sql.NullString
		if err := rows.Scan(
			&session.ID,
			&session.UID,
			&startedAt,
			&endedAt,
			&summary,
			&session.ActionsJSON,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan session")
		}
		if session.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, errors.Wrap(err, "failed to parse started_at")
		}
		if session.EndedAt, err = parseNullTime(endedAt); err != nil {
			return nil, errors.Wrap(err, "failed to parse ended_at")
		}
		if summary.Valid {
			session.Summary = &summary.String
		}
		list = append(list, &session)
	}
	return list, rows.Err()
}

func (d *DB) CountSessions(ctx context.Context) (int, error) {
	var count int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count sessions")
	}
	return count, nil
}
