package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/wintermute-agent/wintermute/store"
)

func (d *DB) CreateReminder(ctx context.Context, create *store.Reminder) (*store.Reminder, error) {
	stmt := `INSERT INTO reminders (due_date, note, created_at) VALUES (?, ?, ?) RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.DueDate,
		create.Note,
		formatTime(create.CreatedAt),
	).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create reminder")
	}
	return create, nil
}

func (d *DB) ListReminders(ctx context.Context, find *store.FindReminder) ([]*store.Reminder, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.DueOnOrBefore; v != nil {
		where, args = append(where, "due_date <= ?"), append(args, *v)
	}
	if find.UntriggeredOnly {
		where = append(where, "triggered_at IS NULL")
	}

	query := `
		SELECT id, due_date, note, created_at, triggered_at
		FROM reminders
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY due_date ASC, id ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query reminders")
	}
	defer rows.Close()

	list := make([]*store.Reminder, 0)
	for rows.Next() {
		var reminder store.Reminder
		var createdAt string
		var triggeredAt sql.NullString
		if err := rows.Scan(
			&reminder.ID,
			&reminder.DueDate,
			&reminder.Note,
			&createdAt,
			&triggeredAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan reminder")
		}
		if reminder.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, errors.Wrap(err, "failed to parse created_at")
		}
		if reminder.TriggeredAt, err = parseNullTime(triggeredAt); err != nil {
			return nil, errors.Wrap(err, "failed to parse triggered_at")
		}
		list = append(list, &reminder)
	}
	return list, rows.Err()
}

func (d *DB) MarkRemindersTriggered(ctx context.Context, ids []int64, triggeredAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	marks := make([]string, 0, len(ids))
	args := []any{formatTime(triggeredAt)}
	for _, id := range ids {
		marks = append(marks, "?")
		args = append(args, id)
	}

	// Guarding on triggered_at IS NULL makes re-marking a no-op, keeping the
	// original trigger time.
	stmt := `UPDATE reminders SET triggered_at = ?
		WHERE id IN (` + strings.Join(marks, ", ") + `) AND triggered_at IS NULL`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return errors.Wrap(err, "failed to mark reminders triggered")
	}
	return nil
}
