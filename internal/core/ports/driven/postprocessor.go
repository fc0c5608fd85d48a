package driven

import (
	"context"

	"github.com/custodia-labs/intrafact/internal/core/domain"
)

// PostProcessor turns an admitted document into chunks, or refines the
// chunks produced by an earlier stage.
type PostProcessor interface {
	// Name is the key used in PipelineConfig and in log lines.
	Name() string

	// Process receives nil chunks when it is the first stage. Returned
	// chunks must carry ParentID, a contiguous ChunkIndex from 0 and a
	// copy of the document metadata.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline runs the configured stages in order.
type PostProcessorPipeline interface {
	// Process returns the chunks left after the last stage.
	// A document with no content yields no chunks and no error.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
