package driven

import (
	"context"

	"github.com/custodia-labs/intrafact/internal/core/domain"
)

// ProcessedIndex is the durable map from content hash to ProcessedRecord.
// It is the only source of truth for deduplication.
type ProcessedIndex interface {
	// Get returns the record for hash, or domain.ErrNotFound.
	Get(ctx context.Context, hash string) (*domain.ProcessedRecord, error)

	// Has reports whether a record exists for hash.
	Has(ctx context.Context, hash string) (bool, error)

	// Commit inserts the record if no record exists for its hash.
	// Returns domain.ErrAlreadyExists otherwise. Safe for concurrent use.
	Commit(ctx context.Context, record domain.ProcessedRecord) error

	// List returns all records, oldest first.
	List(ctx context.Context) ([]domain.ProcessedRecord, error)

	// Count returns the number of records.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
