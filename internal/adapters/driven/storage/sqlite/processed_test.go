package sqlite

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/intrafact/internal/core/domain"
)

func TestProcessedIndex_CommitAndGet(t *testing.T) {
	ctx := context.Background()
	idx := setupTestStore(t).ProcessedIndex()

	_, err := idx.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rec := domain.ProcessedRecord{
		ContentHash: "abc",
		DocumentID:  "doc-1",
		FileName:    "notes.md",
		FilePath:    "/data/raw/notes.md",
		ChunkCount:  4,
		StoredAt:    time.Date(2026, 3, 4, 5, 6, 7, 890, time.UTC),
	}
	require.NoError(t, idx.Commit(ctx, rec))

	got, err := idx.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, rec.DocumentID, got.DocumentID)
	assert.Equal(t, rec.FileName, got.FileName)
	assert.Equal(t, rec.FilePath, got.FilePath)
	assert.Equal(t, rec.ChunkCount, got.ChunkCount)
	assert.True(t, rec.StoredAt.Equal(got.StoredAt))

	ok, err := idx.Has(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = idx.Has(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProcessedIndex_CommitIsInsertOnly(t *testing.T) {
	ctx := context.Background()
	idx := setupTestStore(t).ProcessedIndex()

	require.NoError(t, idx.Commit(ctx, domain.ProcessedRecord{ContentHash: "h", DocumentID: "first"}))
	err := idx.Commit(ctx, domain.ProcessedRecord{ContentHash: "h", DocumentID: "second"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	got, err := idx.Get(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, "first", got.DocumentID)
}

func TestProcessedIndex_EmptyHash(t *testing.T) {
	idx := setupTestStore(t).ProcessedIndex()
	err := idx.Commit(context.Background(), domain.ProcessedRecord{DocumentID: "d"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProcessedIndex_ZeroStoredAtIsStamped(t *testing.T) {
	ctx := context.Background()
	idx := setupTestStore(t).ProcessedIndex()

	before := time.Now().Add(-time.Second)
	require.NoError(t, idx.Commit(ctx, domain.ProcessedRecord{ContentHash: "h"}))

	got, err := idx.Get(ctx, "h")
	require.NoError(t, err)
	assert.True(t, got.StoredAt.After(before))
}

func TestProcessedIndex_ListOldestFirst(t *testing.T) {
	ctx := context.Background()
	idx := setupTestStore(t).ProcessedIndex()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// Fractions that would misorder under a trimmed layout.
	require.NoError(t, idx.Commit(ctx, domain.ProcessedRecord{ContentHash: "late", StoredAt: base.Add(150 * time.Millisecond)}))
	require.NoError(t, idx.Commit(ctx, domain.ProcessedRecord{ContentHash: "early", StoredAt: base.Add(100 * time.Millisecond)}))
	require.NoError(t, idx.Commit(ctx, domain.ProcessedRecord{ContentHash: "first", StoredAt: base}))

	list, err := idx.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0].ContentHash)
	assert.Equal(t, "early", list[1].ContentHash)
	assert.Equal(t, "late", list[2].ContentHash)

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestProcessedIndex_ConcurrentCommitSameHash(t *testing.T) {
	ctx := context.Background()
	idx := setupTestStore(t).ProcessedIndex()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if idx.Commit(ctx, domain.ProcessedRecord{ContentHash: "same"}) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}
