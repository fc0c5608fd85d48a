package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
	"github.com/custodia-labs/intrafact/internal/core/ports/driving"
)

// Ensure StatusService implements the interface.
var _ driving.StatusService = (*StatusService)(nil)

// StatusService reports what has been indexed.
type StatusService struct {
	processed driven.ProcessedIndex
	index     driven.VectorIndex
	embedder  driven.EmbeddingService
	llm       driven.LLMService
}

// NewStatusService creates a status service. embedder and llm are optional
// and only used for their model names.
func NewStatusService(
	processed driven.ProcessedIndex,
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
) *StatusService {
	return &StatusService{
		processed: processed,
		index:     index,
		embedder:  embedder,
		llm:       llm,
	}
}

// Status returns document and chunk counts and the newest records.
func (s *StatusService) Status(ctx context.Context, recent int) (*driving.Status, error) {
	records, err := s.processed.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processed records: %w", err)
	}
	chunks, err := s.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count vectors: %w", err)
	}

	status := &driving.Status{
		Documents: len(records),
		Chunks:    chunks,
	}
	if len(records) > 0 {
		status.LastIngested = records[len(records)-1].StoredAt
	}

	newest := slices.Clone(records)
	slices.Reverse(newest)
	if recent >= 0 && len(newest) > recent {
		newest = newest[:recent]
	}
	status.Recent = newest

	if s.embedder != nil {
		status.EmbeddingModel = s.embedder.ModelName()
	}
	if s.llm != nil {
		status.LLMModel = s.llm.ModelName()
	}
	return status, nil
}
