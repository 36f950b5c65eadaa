// Package sqlite implements store.Driver on the pure-Go modernc.org/sqlite
// driver. Timestamps are stored as RFC 3339 text; embeddings as little-endian
// float32 blobs.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"math"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/wintermute-agent/wintermute/store"
)

// DB holds the SQLite connection and implements store.Driver.
type DB struct {
	db *sql.DB
}

// NewDB opens (creating if necessary) the database at dsn.
func NewDB(dsn string) (store.Driver, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %q", dsn)
	}
	// SQLite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY between the short-lived scoped statements.
	db.SetMaxOpenConns(1)
	return &DB{db: db}, nil
}

// GetDB returns the raw database handle.
func (d *DB) GetDB() *sql.DB {
	return d.db
}

// Close closes the database handle.
func (d *DB) Close() error {
	return d.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uid TEXT NOT NULL,
	started_at TEXT NOT NULL,
	ended_at TEXT,
	summary TEXT,
	actions_json TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS memories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	category TEXT NOT NULL,
	content TEXT NOT NULL,
	importance INTEGER NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS memory_embedding (
	memory_id INTEGER PRIMARY KEY,
	embedding BLOB NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	content_md TEXT NOT NULL,
	session_id INTEGER NOT NULL,
	published_at TEXT NOT NULL,
	twitter_url TEXT,
	bluesky_url TEXT
);

CREATE TABLE IF NOT EXISTS emails (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	message_id TEXT NOT NULL UNIQUE,
	from_addr TEXT NOT NULL,
	subject TEXT NOT NULL,
	body TEXT NOT NULL,
	received_at TEXT NOT NULL,
	replied_at TEXT,
	reply_body TEXT
);

CREATE TABLE IF NOT EXISTS reminders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	due_date TEXT NOT NULL,
	note TEXT NOT NULL,
	created_at TEXT NOT NULL,
	triggered_at TEXT
);
`

// Migrate creates the schema. Safe to call repeatedly.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to migrate schema")
	}
	return nil
}

// formatTime renders a timestamp for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// formatNullTime renders an optional timestamp for storage.
func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

// parseTime reads a stored timestamp, tolerating sub-second precision.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
	}
	return t, err
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// encodeVector serializes an embedding as little-endian float32 bytes.
func encodeVector(vector []float32) []byte {
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeVector deserializes an embedding blob.
func decodeVector(buf []byte) []float32 {
	vector := make([]float32, len(buf)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vector
}
