package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/wintermute-agent/wintermute/store"
)

func (d *DB) CreateMemory(ctx context.Context, create *store.Memory) (*store.Memory, error) {
	stmt := `INSERT INTO memories (category, content, importance, created_at)
		VALUES (?, ?, ?, ?) RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.Category,
		create.Content,
		create.Importance,
		formatTime(create.CreatedAt),
	).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create memory")
	}
	return create, nil
}

func (d *DB) ListMemories(ctx context.Context, find *store.FindMemory) ([]*store.Memory, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if len(find.IDs) > 0 {
		marks := make([]string, 0, len(find.IDs))
		for _, id := range find.IDs {
			marks = append(marks, "?")
			args = append(args, id)
		}
		where = append(where, "id IN ("+strings.Join(marks, ", ")+")")
	}
	if v := find.Search; v != nil {
		pattern := "%" + *v + "%"
		where, args = append(where, "(content LIKE ? OR category LIKE ?)"), append(args, pattern, pattern)
	}

	query := `
		SELECT id, category, content, importance, created_at
		FROM memories
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY importance DESC, id DESC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query memories")
	}
	defer rows.Close()

	list := make([]*store.Memory, 0)
	for rows.Next() {
		var memory store.Memory
		var createdAt string
		if err := rows.Scan(
			&memory.ID,
			&memory.Category,
			&memory.Content,
			&memory.Importance,
			&createdAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan memory")
		}
		if memory.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, errors.Wrap(err, "failed to parse created_at")
		}
		list = append(list, &memory)
	}
	return list, rows.Err()
}

func (d *DB) DeleteMemory(ctx context.Context, id int64) (bool, error) {
	result, err := d.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return false, errors.Wrapf(err, "failed to delete memory %d", id)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to read rows affected")
	}
	return affected > 0, nil
}
