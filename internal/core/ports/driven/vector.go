package driven

import "context"

// VectorIndex stores chunk vectors with their text and metadata, and
// answers nearest-neighbour queries.
//
// Implementations must be safe for concurrent use: many readers, and
// writers that are serialised internally.
type VectorIndex interface {
	// Upsert writes the batch. Existing IDs are overwritten.
	Upsert(ctx context.Context, batch UpsertBatch) error

	// Query returns up to k nearest entries to vector.
	Query(ctx context.Context, vector []float32, k int) (*QueryResponse, error)

	// Delete removes entries by ID. Unknown IDs are ignored.
	Delete(ctx context.Context, ids []string) error

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// UpsertBatch holds parallel arrays, one position per chunk.
type UpsertBatch struct {
	IDs       []string
	Vectors   [][]float32
	Documents []string
	Metadatas []map[string]any
}

// Len returns the number of entries, or -1 if the arrays disagree.
func (b UpsertBatch) Len() int {
	n := len(b.IDs)
	if len(b.Vectors) != n || len(b.Documents) != n || len(b.Metadatas) != n {
		return -1
	}
	return n
}

// QueryResponse is the raw index answer: one inner list per query vector,
// parallel by position. Any container may be absent or shorter than IDs.
// Distances are cosine distances, lower is closer.
type QueryResponse struct {
	IDs       [][]string
	Documents [][]string
	Metadatas [][]map[string]any
	Distances [][]float64
}
