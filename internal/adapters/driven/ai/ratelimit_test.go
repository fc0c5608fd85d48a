package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
)

type stubEmbedder struct{ calls int }

func (s *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	s.calls++
	return []float32{1}, nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	return make([][]float32, len(texts)), nil
}

func (s *stubEmbedder) Dimensions() int            { return 1 }
func (s *stubEmbedder) ModelName() string          { return "stub" }
func (s *stubEmbedder) Ping(context.Context) error { return nil }
func (s *stubEmbedder) Close() error               { return nil }

type stubLLM struct{ calls int }

func (s *stubLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	s.calls++
	return "ok", nil
}

func (s *stubLLM) ModelName() string          { return "stub-llm" }
func (s *stubLLM) Ping(context.Context) error { return nil }
func (s *stubLLM) Close() error               { return nil }

func TestRateLimit_Disabled(t *testing.T) {
	emb := &stubEmbedder{}
	llm := &stubLLM{}

	assert.Same(t, emb, WithEmbeddingRateLimit(emb, domain.RateLimitSettings{}))
	assert.Same(t, llm, WithLLMRateLimit(llm, domain.RateLimitSettings{Burst: 3}))
	assert.Nil(t, WithEmbeddingRateLimit(nil, domain.RateLimitSettings{RequestsPerSecond: 1}))
}

func TestRateLimit_Embedding(t *testing.T) {
	emb := &stubEmbedder{}
	svc := WithEmbeddingRateLimit(emb, domain.RateLimitSettings{RequestsPerSecond: 20, Burst: 1})

	start := time.Now()
	for range 3 {
		_, err := svc.Embed(context.Background(), "q")
		require.NoError(t, err)
	}
	// Burst 1 at 20/s: the 2nd and 3rd calls wait about 50ms each.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	assert.Equal(t, 3, emb.calls)

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "stub", svc.ModelName())
	assert.Equal(t, 1, svc.Dimensions())
}

func TestRateLimit_LLMCancelled(t *testing.T) {
	llm := &stubLLM{}
	svc := WithLLMRateLimit(llm, domain.RateLimitSettings{RequestsPerSecond: 0.001, Burst: 1})

	reply, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)

	// The bucket is empty and refills far beyond the deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.Chat(ctx, nil, driven.ChatOptions{})
	assert.Error(t, err)
	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, "stub-llm", svc.ModelName())
}

func TestNewLimiter_MinimumBurst(t *testing.T) {
	limiter := newLimiter(domain.RateLimitSettings{RequestsPerSecond: 1})
	require.NotNil(t, limiter)
	assert.Equal(t, 1, limiter.Burst())
}
