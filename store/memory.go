package store

import (
	"context"
	"time"
)

// Memory importance bounds; values outside are clamped on write.
const (
	MinImportance = 1
	MaxImportance = 5
)

// Memory is one durable fact the agent chose to keep across sessions. It has
// two representations: this relational row (source of truth) and a derived
// entry in the semantic index keyed by the same id.
type Memory struct {
	ID         int64
	Category   string
	Content    string
	Importance int
	CreatedAt  time.Time
}

// FindMemory filters memory listings. Results are always ordered importance
// descending, then id descending (most recent first).
type FindMemory struct {
	ID  *int64
	IDs []int64
	// Search matches content or category case-insensitively (substring).
	Search *string
	Limit  *int
}

// MemorySearchResult is one recall hit with its similarity score. Substring
// fallback hits carry a score of zero.
type MemorySearchResult struct {
	*Memory
	Score float64
}

// CreateMemory clamps importance into [1,5], inserts the relational row, then
// writes the semantic index entry. The index write is explicitly fallible:
// a failure is logged and swallowed, leaving the row authoritative and the
// index repairable via RebuildEmbeddings.
func (s *Store) CreateMemory(ctx context.Context, category, content string, importance int) (*Memory, error) {
	memory, err := s.driver.CreateMemory(ctx, &Memory{
		Category:   category,
		Content:    content,
		Importance: clampImportance(importance),
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if s.embedder != nil {
		if err := s.indexMemory(ctx, memory); err != nil {
			s.logger.Warn("semantic index write failed; memory kept, index stale",
				"memory_id", memory.ID, "error", err)
		}
	}

	return memory, nil
}

// SearchMemories recalls memories for a free-text query. When the semantic
// index has entries and an embedder is configured, hits are ranked by cosine
// similarity of the query embedding; otherwise it falls back to a
// case-insensitive substring match ranked by importance then recency.
// An empty store yields an empty slice, never an error.
func (s *Store) SearchMemories(ctx context.Context, query string, limit int) ([]*MemorySearchResult, error) {
	if limit <= 0 {
		limit = 20
	}

	if s.embedder != nil {
		indexed, err := s.driver.CountMemoryEmbeddings(ctx)
		if err != nil {
			return nil, err
		}
		if indexed > 0 {
			results, err := s.semanticSearch(ctx, query, limit)
			if err == nil {
				return results, nil
			}
			s.logger.Warn("semantic search failed; falling back to substring match",
				"query", query, "error", err)
		}
	}

	memories, err := s.driver.ListMemories(ctx, &FindMemory{Search: &query, Limit: &limit})
	if err != nil {
		return nil, err
	}
	results := make([]*MemorySearchResult, 0, len(memories))
	for _, m := range memories {
		results = append(results, &MemorySearchResult{Memory: m})
	}
	return results, nil
}

// ListMemories returns the top memories by importance then recency. Used to
// seed the system prompt; deliberately independent of the semantic index so
// prompt content stays deterministic.
func (s *Store) ListMemories(ctx context.Context, limit int) ([]*Memory, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.driver.ListMemories(ctx, &FindMemory{Limit: &limit})
}

// GetMemory returns one memory by id, or nil when absent.
func (s *Store) GetMemory(ctx context.Context, id int64) (*Memory, error) {
	list, err := s.driver.ListMemories(ctx, &FindMemory{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// DeleteMemory removes the relational row; that outcome is authoritative and
// returned to the caller. The semantic index entry is deleted best-effort: a
// failure there is logged and swallowed.
func (s *Store) DeleteMemory(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.driver.DeleteMemory(ctx, id)
	if err != nil {
		return false, err
	}

	if err := s.driver.DeleteMemoryEmbedding(ctx, id); err != nil {
		s.logger.Warn("semantic index delete failed; row already gone, index stale",
			"memory_id", id, "error", err)
	}

	return deleted, nil
}

func clampImportance(v int) int {
	if v < MinImportance {
		return MinImportance
	}
	if v > MaxImportance {
		return MaxImportance
	}
	return v
}
