// Package store implements durable persistence for the agent: sessions,
// memories, posts, emails and reminders, plus a derived semantic index over
// memory content. The relational rows are always the source of truth; the
// semantic index is best-effort and can be rebuilt from them at any time.
package store

import (
	"context"

	"github.com/wintermute-agent/wintermute/logging"
)

// Embedder turns text into an embedding vector. The store only depends on
// this narrow interface so tests can substitute a deterministic fake and the
// process can run without any embedding provider at all (substring fallback).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store is the façade over a database driver. It owns the write/read policies
// (importance clamping, two-phase memory writes, semantic-vs-substring recall)
// while the driver owns SQL.
type Store struct {
	driver   Driver
	embedder Embedder
	logger   logging.Logger
}

// Options configures optional Store collaborators.
type Options struct {
	// Embedder powers the semantic index. Nil disables semantic recall.
	Embedder Embedder
	// Logger receives warnings for swallowed best-effort failures.
	Logger logging.Logger
}

// New creates a Store on top of the given driver.
func New(driver Driver, optFns ...func(o *Options)) *Store {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{
		driver:   driver,
		embedder: opts.Embedder,
		logger:   opts.Logger,
	}
}

// Migrate creates the schema if it does not exist. Safe to call repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.driver.Close()
}

// GetDriver exposes the raw driver for maintenance commands.
func (s *Store) GetDriver() Driver {
	return s.driver
}
