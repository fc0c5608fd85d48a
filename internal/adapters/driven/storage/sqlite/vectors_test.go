package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
)

func vectorBatch(ids []string, vecs [][]float32) driven.UpsertBatch {
	b := driven.UpsertBatch{IDs: ids, Vectors: vecs}
	for i, id := range ids {
		b.Documents = append(b.Documents, "text of "+id)
		b.Metadatas = append(b.Metadatas, map[string]any{
			domain.MetaFileName:   id + ".txt",
			domain.MetaParentID:   "parent",
			domain.MetaChunkIndex: i,
		})
	}
	return b
}

func TestVectorIndex_UpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	idx := setupTestStore(t).VectorIndex()

	require.NoError(t, idx.Upsert(ctx, vectorBatch(
		[]string{"a", "b", "c"},
		[][]float32{{1, 0}, {0, 1}, {-1, 0}},
	)))

	resp, err := idx.Query(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, resp.IDs, 1)
	assert.Equal(t, []string{"a", "b", "c"}, resp.IDs[0])
	assert.Equal(t, "text of a", resp.Documents[0][0])
	assert.InDelta(t, 0, resp.Distances[0][0], 1e-6)
	assert.InDelta(t, 1, resp.Distances[0][1], 1e-6)
	assert.InDelta(t, 2, resp.Distances[0][2], 1e-6)

	meta := resp.Metadatas[0][0]
	assert.Equal(t, "a.txt", meta[domain.MetaFileName])
	assert.Equal(t, "parent", meta[domain.MetaParentID])
	// JSON numbers come back as float64.
	assert.Equal(t, float64(0), meta[domain.MetaChunkIndex])
}

func TestVectorIndex_QueryLimit(t *testing.T) {
	ctx := context.Background()
	idx := setupTestStore(t).VectorIndex()

	var ids []string
	var vecs [][]float32
	for i := 0; i < 10; i++ {
		ids = append(ids, fmt.Sprintf("v%d", i))
		vecs = append(vecs, []float32{1, float32(i)})
	}
	require.NoError(t, idx.Upsert(ctx, vectorBatch(ids, vecs)))

	resp, err := idx.Query(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"v0", "v1", "v2"}, resp.IDs[0])

	resp, err = idx.Query(ctx, []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, resp.IDs[0])
}

func TestVectorIndex_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	idx := setupTestStore(t).VectorIndex()

	require.NoError(t, idx.Upsert(ctx, vectorBatch([]string{"a"}, [][]float32{{1, 0}})))
	b := vectorBatch([]string{"a"}, [][]float32{{0, 1}})
	b.Documents[0] = "updated"
	require.NoError(t, idx.Upsert(ctx, b))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	resp, err := idx.Query(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"updated"}, resp.Documents[0])
	assert.InDelta(t, 0, resp.Distances[0][0], 1e-6)
}

func TestVectorIndex_InvalidBatches(t *testing.T) {
	ctx := context.Background()
	idx := setupTestStore(t).VectorIndex()

	err := idx.Upsert(ctx, driven.UpsertBatch{IDs: []string{"a"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = idx.Upsert(ctx, vectorBatch([]string{"a"}, [][]float32{{}}))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, idx.Upsert(ctx, driven.UpsertBatch{}))
}

func TestVectorIndex_DimensionMismatchSkipped(t *testing.T) {
	ctx := context.Background()
	idx := setupTestStore(t).VectorIndex()

	require.NoError(t, idx.Upsert(ctx, vectorBatch(
		[]string{"small", "large"},
		[][]float32{{1, 0}, {1, 0, 0}},
	)))

	resp, err := idx.Query(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"small"}, resp.IDs[0])
}

func TestVectorIndex_Delete(t *testing.T) {
	ctx := context.Background()
	idx := setupTestStore(t).VectorIndex()

	require.NoError(t, idx.Upsert(ctx, vectorBatch(
		[]string{"a", "b", "c"},
		[][]float32{{1, 0}, {0, 1}, {1, 1}},
	)))
	require.NoError(t, idx.Delete(ctx, []string{"a", "c", "unknown"}))
	require.NoError(t, idx.Delete(ctx, nil))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	resp, err := idx.Query(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, resp.IDs[0])
}

func TestVectorIndex_DeleteManyIDs(t *testing.T) {
	ctx := context.Background()
	idx := setupTestStore(t).VectorIndex()

	var ids []string
	var vecs [][]float32
	for i := 0; i < 1200; i++ {
		ids = append(ids, fmt.Sprintf("id-%04d", i))
		vecs = append(vecs, []float32{1, 0})
	}
	require.NoError(t, idx.Upsert(ctx, vectorBatch(ids, vecs)))
	require.NoError(t, idx.Delete(ctx, ids))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestVectorIndex_SharedAcrossHandles(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	require.NoError(t, store.VectorIndex().Upsert(ctx, vectorBatch([]string{"a"}, [][]float32{{1}})))
	require.NoError(t, store.VectorIndex().Close())

	n, err := store.VectorIndex().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
