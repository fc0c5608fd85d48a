// Package cache decorates an embedding service with an expiring LRU
// of single-text embeddings. Repeated questions skip the provider.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
	"github.com/custodia-labs/intrafact/internal/logger"
)

// DefaultTTL bounds how long a cached embedding is reused.
const DefaultTTL = 30 * time.Minute

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService caches Embed results. EmbedBatch is passed through
// since ingestion rarely repeats a chunk.
type EmbeddingService struct {
	next  driven.EmbeddingService
	cache *expirable.LRU[string, []float32]
}

// Wrap returns next decorated with a cache of the given size, or next
// itself when size or ttl is not positive.
func Wrap(next driven.EmbeddingService, size int, ttl time.Duration) driven.EmbeddingService {
	if next == nil || size <= 0 || ttl <= 0 {
		return next
	}
	return &EmbeddingService{
		next:  next,
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

// Embed returns a cached vector when the same model embedded text before.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	key := s.next.ModelName() + "\x00" + text
	if cached, ok := s.cache.Get(key); ok {
		logger.Debug("embedding cache hit")
		return clone(cached), nil
	}

	vec, err := s.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, clone(vec))
	return vec, nil
}

// EmbedBatch delegates without caching.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return s.next.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped service's dimensions.
func (s *EmbeddingService) Dimensions() int { return s.next.Dimensions() }

// ModelName returns the wrapped service's model name.
func (s *EmbeddingService) ModelName() string { return s.next.ModelName() }

// Ping checks the wrapped service.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

// Len returns the number of cached embeddings.
func (s *EmbeddingService) Len() int { return s.cache.Len() }

// Close purges the cache and closes the wrapped service.
func (s *EmbeddingService) Close() error {
	s.cache.Purge()
	return s.next.Close()
}

func clone(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
