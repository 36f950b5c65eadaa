package sqlite

import (
	"context"

	"github.com/pkg/errors"

	"github.com/wintermute-agent/wintermute/store"
)

func (d *DB) UpsertMemoryEmbedding(ctx context.Context, upsert *store.MemoryEmbedding) error {
	stmt := `INSERT INTO memory_embedding (memory_id, embedding, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(memory_id) DO UPDATE SET
			embedding = excluded.embedding,
			updated_at = excluded.updated_at`
	if _, err := d.db.ExecContext(ctx, stmt,
		upsert.MemoryID,
		encodeVector(upsert.Embedding),
		formatTime(upsert.UpdatedAt),
	); err != nil {
		return errors.Wrapf(err, "failed to upsert embedding for memory %d", upsert.MemoryID)
	}
	return nil
}

func (d *DB) ListMemoryEmbeddings(ctx context.Context) ([]*store.MemoryEmbedding, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT memory_id, embedding, updated_at FROM memory_embedding`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query embeddings")
	}
	defer rows.Close()

	list := make([]*store.MemoryEmbedding, 0)
	for rows.Next() {
		var entry store.MemoryEmbedding
		var blob []byte
		var updatedAt string
		if err := rows.Scan(&entry.MemoryID, &blob, &updatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan embedding")
		}
		entry.Embedding = decodeVector(blob)
		if entry.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to parse updated_at")
		}
		list = append(list, &entry)
	}
	return list, rows.Err()
}

func (d *DB) DeleteMemoryEmbedding(ctx context.Context, memoryID int64) error {
	if _, err := d.db.ExecContext(ctx,
		`DELETE FROM memory_embedding WHERE memory_id = ?`, memoryID); err != nil {
		return errors.Wrapf(err, "failed to delete embedding for memory %d", memoryID)
	}
	return nil
}

func (d *DB) CountMemoryEmbeddings(ctx context.Context) (int, error) {
	var count int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memory_embedding`).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count embeddings")
	}
	return count, nil
}

func (d *DB) FindMemoriesWithoutEmbedding(ctx context.Context) ([]*store.Memory, error) {
	query := `
		SELECT m.id, m.category, m.content, m.importance, m.created_at
		FROM memories m
		LEFT JOIN memory_embedding e ON e.memory_id = m.id
		WHERE e.memory_id IS NULL
		ORDER BY m.id ASC`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query memories without embedding")
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
