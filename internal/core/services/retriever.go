package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
	"github.com/custodia-labs/intrafact/internal/core/ports/driving"
	"github.com/custodia-labs/intrafact/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// Retriever embeds a query and returns the nearest chunks.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	timeout  time.Duration
}

// NewRetriever creates a retriever. timeout bounds each adapter call.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex, timeout time.Duration) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		timeout:  timeout,
	}
}

// Retrieve returns up to limit results, most relevant first.
// A blank query or non-positive limit returns no results without calling
// any adapter.
func (r *Retriever) Retrieve(ctx context.Context, query string, limit int) ([]domain.QueryResult, error) {
	logger.Section("Retrieve")
	if strings.TrimSpace(query) == "" || limit <= 0 {
		logger.Debug("Nothing to retrieve: query=%q limit=%d", query, limit)
		return []domain.QueryResult{}, nil
	}
	if r.embedder == nil || r.index == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, domain.ErrEmbeddingUnavailable)
	}

	embedCtx, cancel := adapterContext(ctx, r.timeout)
	vector, err := r.embedder.Embed(embedCtx, query)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrRetrieval, err)
	}
	logger.Debug("Query embedding: %d dimensions", len(vector))

	queryCtx, cancel := adapterContext(ctx, r.timeout)
	resp, err := r.index.Query(queryCtx, vector, limit)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: query index: %w", domain.ErrRetrieval, err)
	}

	results := flattenResponse(resp)
	if len(results) > limit {
		results = results[:limit]
	}
	logger.Debug("Retrieved %d results", len(results))
	return results, nil
}

// flattenResponse turns the nested parallel arrays of a QueryResponse into
// a flat list, keeping the index's order. Containers that are absent or
// shorter than IDs yield zero values: empty content, nil metadata and a
// distance of 0.
func flattenResponse(resp *driven.QueryResponse) []domain.QueryResult {
	results := []domain.QueryResult{}
	if resp == nil {
		return results
	}

	for q, ids := range resp.IDs {
		for i, id := range ids {
			results = append(results, domain.QueryResult{
				ID:       id,
				Content:  at(resp.Documents, q, i),
				Metadata: at(resp.Metadatas, q, i),
				Score:    at(resp.Distances, q, i),
			})
		}
	}
	return results
}

// at returns nested[q][i] or the zero value when either index is out of range.
func at[T any](nested [][]T, q, i int) T {
	var zero T
	if q >= len(nested) || i >= len(nested[q]) {
		return zero
	}
	return nested[q][i]
}
