package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

// MemoryEmbedding is one semantic index entry, keyed by the memory id it was
// derived from.
type MemoryEmbedding struct {
	MemoryID  int64
	Embedding []float32
	UpdatedAt time.Time
}

// indexMemory writes (or rewrites) the index entry for a memory.
func (s *Store) indexMemory(ctx context.Context, memory *Memory) error {
	vector, err := s.embedder.Embed(ctx, memory.Content)
	if err != nil {
		return fmt.Errorf("embed memory %d: %w", memory.ID, err)
	}
	return s.driver.UpsertMemoryEmbedding(ctx, &MemoryEmbedding{
		MemoryID:  memory.ID,
		Embedding: vector,
		UpdatedAt: time.Now().UTC(),
	})
}

// semanticSearch ranks indexed memories by cosine similarity against the
// query embedding and resolves the top hits back to their relational rows.
func (s *Store) semanticSearch(ctx context.Context, query string, limit int) ([]*MemorySearchResult, error) {
	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	entries, err := s.driver.ListMemoryEmbeddings(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []*MemorySearchResult{}, nil
	}

	type scored struct {
		memoryID int64
		score    float64
	}
	ranked := make([]scored, 0, len(entries))
	for _, e := range entries {
		ranked = append(ranked, scored{
			memoryID: e.MemoryID,
			score:    cosineSimilarity(queryVector, e.Embedding),
		})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	ids := make([]int64, 0, len(ranked))
	scores := make(map[int64]float64, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.memoryID)
		scores[r.memoryID] = r.score
	}

	memories, err := s.driver.ListMemories(ctx, &FindMemory{IDs: ids})
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*Memory, len(memories))
	for _, m := range memories {
		byID[m.ID] = m
	}

	// Preserve similarity order; skip index entries whose row vanished
	// (possible after a best-effort delete left the index stale).
	results := make([]*MemorySearchResult, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			results = append(results, &MemorySearchResult{Memory: m, Score: scores[id]})
		}
	}
	return results, nil
}

// RebuildEmbeddings repairs the semantic index from the relational rows,
// embedding every memory that has no index entry. Returns how many entries
// were written.
func (s *Store) RebuildEmbeddings(ctx context.Context) (int, error) {
	if s.embedder == nil {
		return 0, fmt.Errorf("no embedder configured")
	}
	missing, err := s.driver.FindMemoriesWithoutEmbedding(ctx)
	if err != nil {
		return 0, err
	}
	rebuilt := 0
	for _, memory := range missing {
		if err := s.indexMemory(ctx, memory); err != nil {
			return rebuilt, err
		}
		rebuilt++
	}
	return rebuilt, nil
}

// cosineSimilarity returns the cosine of the angle between two vectors, or 0
// when either has no magnitude or the dimensions disagree.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
