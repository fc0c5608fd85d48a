package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/intrafact/internal/core/domain"
)

// Status summarises what has been indexed.
type Status struct {
	// Documents is the number of processed records.
	Documents int

	// Chunks is the number of entries in the vector index.
	Chunks int

	// LastIngested is the time of the newest processed record, zero if none.
	LastIngested time.Time

	// Recent holds the newest processed records, newest first.
	Recent []domain.ProcessedRecord

	// EmbeddingModel and LLMModel name the configured models.
	EmbeddingModel string
	LLMModel       string
}

// StatusService reports on the index.
type StatusService interface {
	// Status returns counts and the most recent records.
	Status(ctx context.Context, recent int) (*Status, error)
}
