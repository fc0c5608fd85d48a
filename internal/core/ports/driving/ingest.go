package driving

import (
	"context"

	"github.com/custodia-labs/intrafact/internal/core/domain"
)

// IngestService loads local files into the vector index.
type IngestService interface {
	// Ingest processes every file under paths. Directories are expanded.
	// Per-file failures are reported in the result, not returned as an error.
	Ingest(ctx context.Context, paths []string) (*domain.IngestReport, error)

	// IngestFile processes a single file.
	IngestFile(ctx context.Context, path string) domain.FileResult
}
