package store_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wintermute-agent/wintermute/store"
)

// axisEmbedder maps texts onto fixed axes by keyword so cosine ranking is
// deterministic in tests.
type axisEmbedder struct {
	fail bool
}

func (e *axisEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.fail {
		return nil, fmt.Errorf("embedding service down")
	}
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "cooking"):
		return []float32{1, 0, 0}, nil
	case strings.Contains(lower, "chess"):
		return []float32{0, 1, 0}, nil
	default:
		return []float32{0, 0, 1}, nil
	}
}

func TestSemanticRecallRanksBySimilarity(t *testing.T) {
	st := newTestStore(t, func(o *store.Options) {
		o.Embedder = &axisEmbedder{}
	})
	ctx := context.Background()

	_, err := st.CreateMemory(ctx, "interest", "I enjoy cooking pasta", 1)
	assert.NoError(t, err)
	_, err = st.CreateMemory(ctx, "interest", "Studying chess openings", 5)
	assert.NoError(t, err)

	results, err := st.SearchMemories(ctx, "what do I know about cooking?", 0)
	assert.NoError(t, err)
	assert.NotEmpty(t, results)
	// Similarity wins over importance on the semantic path.
	assert.Equal(t, "I enjoy cooking pasta", results[0].Content)
	assert.Greater(t, results[0].Score, 0.9)
}

func TestCreateMemorySurvivesIndexFailure(t *testing.T) {
	embedder := &axisEmbedder{fail: true}
	st := newTestStore(t, func(o *store.Options) {
		o.Embedder = embedder
	})
	ctx := context.Background()

	// The relational row is authoritative; a failed index write is swallowed.
	memory, err := st.CreateMemory(ctx, "fact", "cooking is chemistry", 3)
	assert.NoError(t, err)
	assert.NotZero(t, memory.ID)

	// With an empty index, recall falls back to substring matching.
	results, err := st.SearchMemories(ctx, "cooking", 0)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Zero(t, results[0].Score)
}

func TestRebuildEmbeddingsRepairsIndex(t *testing.T) {
	embedder := &axisEmbedder{fail: true}
	st := newTestStore(t, func(o *store.Options) {
		o.Embedder = embedder
	})
	ctx := context.Background()

	_, err := st.CreateMemory(ctx, "fact", "cooking is chemistry", 3)
	assert.NoError(t, err)
	_, err = st.CreateMemory(ctx, "fact", "chess is calculation", 3)
	assert.NoError(t, err)

	embedder.fail = false
	rebuilt, err := st.RebuildEmbeddings(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, rebuilt)

	// A second rebuild has nothing left to do.
	rebuilt, err = st.RebuildEmbeddings(ctx)
	assert.NoError(t, err)
	assert.Zero(t, rebuilt)

	results, err := st.SearchMemories(ctx, "cooking", 0)
	assert.NoError(t, err)
	assert.NotEmpty(t, results)
	assert.Equal(t, "cooking is chemistry", results[0].Content)
}

func TestDeleteMemoryLeavesIndexBestEffort(t *testing.T) {
	st := newTestStore(t, func(o *store.Options) {
		o.Embedder = &axisEmbedder{}
	})
	ctx := context.Background()

	memory, err := st.CreateMemory(ctx, "fact", "cooking note", 3)
	assert.NoError(t, err)

	deleted, err := st.DeleteMemory(ctx, memory.ID)
	assert.NoError(t, err)
	assert.True(t, deleted)

	// A stale index entry (if any) must not resurrect the deleted row.
	results, err := st.SearchMemories(ctx, "cooking", 0)
	assert.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, memory.ID, r.ID)
	}
}
