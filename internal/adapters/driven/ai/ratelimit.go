package ai

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
)

// Ensure the decorators implement the interfaces.
var (
	_ driven.EmbeddingService = (*rateLimitedEmbedding)(nil)
	_ driven.LLMService       = (*rateLimitedLLM)(nil)
)

// newLimiter returns a token bucket for the settings, or nil when limiting is off.
func newLimiter(cfg domain.RateLimitSettings) *rate.Limiter {
	if !cfg.Enabled() {
		return nil
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
}

// rateLimitedEmbedding waits for a token before every provider call.
type rateLimitedEmbedding struct {
	next    driven.EmbeddingService
	limiter *rate.Limiter
}

// WithEmbeddingRateLimit wraps svc so calls respect cfg. Returns svc unchanged when disabled.
func WithEmbeddingRateLimit(svc driven.EmbeddingService, cfg domain.RateLimitSettings) driven.EmbeddingService {
	limiter := newLimiter(cfg)
	if svc == nil || limiter == nil {
		return svc
	}
	return &rateLimitedEmbedding{next: svc, limiter: limiter}
}

func (r *rateLimitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.Embed(ctx, text)
}

func (r *rateLimitedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.EmbedBatch(ctx, texts)
}

func (r *rateLimitedEmbedding) Dimensions() int                { return r.next.Dimensions() }
func (r *rateLimitedEmbedding) ModelName() string              { return r.next.ModelName() }
func (r *rateLimitedEmbedding) Ping(ctx context.Context) error { return r.next.Ping(ctx) }
func (r *rateLimitedEmbedding) Close() error                   { return r.next.Close() }

// rateLimitedLLM waits for a token before every chat call.
type rateLimitedLLM struct {
	next    driven.LLMService
	limiter *rate.Limiter
}

// WithLLMRateLimit wraps svc so calls respect cfg. Returns svc unchanged when disabled.
func WithLLMRateLimit(svc driven.LLMService, cfg domain.RateLimitSettings) driven.LLMService {
	limiter := newLimiter(cfg)
	if svc == nil || limiter == nil {
		return svc
	}
	return &rateLimitedLLM{next: svc, limiter: limiter}
}

func (r *rateLimitedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.next.Chat(ctx, messages, opts)
}

func (r *rateLimitedLLM) ModelName() string              { return r.next.ModelName() }
func (r *rateLimitedLLM) Ping(ctx context.Context) error { return r.next.Ping(ctx) }
func (r *rateLimitedLLM) Close() error                   { return r.next.Close() }
