package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/custodia-labs/intrafact/internal/adapters/driven/vector/vecmath"
	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

type vectorEntry struct {
	vector   []float32
	norm     float64
	document string
	metadata map[string]any
}

// VectorIndex is an in-memory brute-force cosine index.
// Contents are lost when the process exits.
type VectorIndex struct {
	mu      sync.RWMutex
	entries map[string]vectorEntry
	order   []string
}

// NewVectorIndex creates an empty in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{entries: make(map[string]vectorEntry)}
}

// Upsert writes the batch, overwriting existing IDs.
func (v *VectorIndex) Upsert(ctx context.Context, batch driven.UpsertBatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if batch.Len() < 0 {
		return fmt.Errorf("%w: upsert arrays differ in length", domain.ErrInvalidInput)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for i, id := range batch.IDs {
		if _, exists := v.entries[id]; !exists {
			v.order = append(v.order, id)
		}
		vec := append([]float32(nil), batch.Vectors[i]...)
		v.entries[id] = vectorEntry{
			vector:   vec,
			norm:     vecmath.Norm(vec),
			document: batch.Documents[i],
			metadata: maps.Clone(batch.Metadatas[i]),
		}
	}
	return nil
}

// Query returns up to k entries nearest to vector.
func (v *VectorIndex) Query(ctx context.Context, vector []float32, k int) (*driven.QueryResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	qNorm := vecmath.Norm(vector)
	scored := make([]vecmath.Scored, 0, len(v.order))
	for i, id := range v.order {
		e := v.entries[id]
		if len(e.vector) != len(vector) {
			continue
		}
		scored = append(scored, vecmath.Scored{
			Index:    i,
			Distance: vecmath.CosineDistanceWithNorms(vector, e.vector, qNorm, e.norm),
		})
	}

	top := vecmath.TopK(scored, k)
	resp := &driven.QueryResponse{
		IDs:       [][]string{make([]string, 0, len(top))},
		Documents: [][]string{make([]string, 0, len(top))},
		Metadatas: [][]map[string]any{make([]map[string]any, 0, len(top))},
		Distances: [][]float64{make([]float64, 0, len(top))},
	}
	for _, s := range top {
		id := v.order[s.Index]
		e := v.entries[id]
		resp.IDs[0] = append(resp.IDs[0], id)
		resp.Documents[0] = append(resp.Documents[0], e.document)
		resp.Metadatas[0] = append(resp.Metadatas[0], maps.Clone(e.metadata))
		resp.Distances[0] = append(resp.Distances[0], s.Distance)
	}
	return resp, nil
}

// Delete removes entries by ID. Unknown IDs are ignored.
func (v *VectorIndex) Delete(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	removed := false
	for _, id := range ids {
		if _, ok := v.entries[id]; ok {
			delete(v.entries, id)
			removed = true
		}
	}
	if !removed {
		return nil
	}
	order := v.order[:0]
	for _, id := range v.order {
		if _, ok := v.entries[id]; ok {
			order = append(order, id)
		}
	}
	v.order = order
	return nil
}

// Count returns the number of stored entries.
func (v *VectorIndex) Count(_ context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries), nil
}

// Close is a no-op.
func (v *VectorIndex) Close() error {
	return nil
}
