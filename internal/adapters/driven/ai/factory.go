// Package ai provides factory functions for creating AI service and
// vector index adapters from settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	embedcache "github.com/custodia-labs/intrafact/internal/adapters/driven/embedding/cache"
	ollamaembed "github.com/custodia-labs/intrafact/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/intrafact/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/custodia-labs/intrafact/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/intrafact/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/intrafact/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/intrafact/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/intrafact/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
	"github.com/custodia-labs/intrafact/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of adapter initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	VectorIndex      driven.VectorIndex
	ProcessedIndex   driven.ProcessedIndex
	Warnings         []string // Non-fatal issues; the affected service is nil.

	store *sqlite.Store
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.VectorIndex != nil {
		r.VectorIndex.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
	if r.ProcessedIndex != nil {
		r.ProcessedIndex.Close()
	}
	if r.store != nil {
		r.store.Close()
	}
}

// Initialise creates every driven adapter the services need.
//
// Storage failures are fatal. A provider that cannot be created is left nil
// and reported in Warnings so commands that do not need it still run.
// The embedding service is wrapped with the query cache and the rate
// limiter; the LLM service with the rate limiter.
func Initialise(settings *domain.AppSettings) (*InitResult, error) {
	result := &InitResult{}

	if settings.VectorIndex.Backend == domain.VectorBackendMemory {
		result.VectorIndex = memory.NewVectorIndex()
		result.ProcessedIndex = memory.NewProcessedIndex()
	} else {
		store, err := sqlite.NewStore(settings.Paths.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		result.store = store
		result.ProcessedIndex = store.ProcessedIndex()

		index, err := CreateVectorIndex(&settings.VectorIndex, store, settings.AdapterTimeout)
		if err != nil {
			result.Close()
			return nil, err
		}
		result.VectorIndex = index
	}

	embedder, err := CreateEmbeddingService(&settings.Embedding, settings.AdapterTimeout)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
	case embedder == nil:
		result.Warnings = append(result.Warnings, "embedding provider not configured")
	default:
		embedder = WithEmbeddingRateLimit(embedder, settings.RateLimit)
		result.EmbeddingService = embedcache.Wrap(embedder, settings.QueryCacheSize, embedcache.DefaultTTL)
	}

	llm, err := CreateLLMService(&settings.LLM, settings.AdapterTimeout)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
	case llm == nil:
		result.Warnings = append(result.Warnings, "LLM provider not configured")
	default:
		result.LLMService = WithLLMRateLimit(llm, settings.RateLimit)
	}

	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}
	return result, nil
}

// CreateVectorIndex creates the vector index selected by settings.
// The memory backend needs no store; the sqlite backend requires one.
func CreateVectorIndex(
	settings *domain.VectorIndexSettings,
	store *sqlite.Store,
	timeout time.Duration,
) (driven.VectorIndex, error) {
	switch settings.Backend {
	case domain.VectorBackendMemory:
		return memory.NewVectorIndex(), nil
	case domain.VectorBackendSQLite, "":
		if store == nil {
			return nil, fmt.Errorf("%w: sqlite backend needs a store", domain.ErrVectorIndexUnavailable)
		}
		return store.VectorIndex(), nil
	case domain.VectorBackendQdrant:
		index, err := qdrant.New(qdrant.Config{
			URL:        settings.URL,
			APIKey:     settings.APIKey,
			Collection: settings.Collection,
			Timeout:    timeout,
		})
		if err != nil {
			return nil, err
		}
		return index, nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", domain.ErrVectorIndexUnavailable, settings.Backend)
	}
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings, timeout time.Duration) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	dims := domain.EmbeddingDimensions()[settings.Model]

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Timeout:    timeout,
			Dimensions: dims,
		}), nil
	case domain.AIProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", domain.ErrEmbeddingUnavailable, settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings, timeout time.Duration) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		}), nil
	case domain.AIProviderOpenAI, domain.AIProviderOpenRouter:
		baseURL := settings.BaseURL
		if baseURL == "" && settings.Provider == domain.AIProviderOpenRouter {
			baseURL = domain.DefaultOpenRouterBaseURL
		}
		svc, err := openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: baseURL,
			Model:   settings.Model,
			Timeout: timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", domain.ErrLLMUnavailable, settings.Provider)
	}
}

// Ping checks every created provider and returns their errors joined.
func (r *InitResult) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	var errs []error
	if r.EmbeddingService != nil {
		if err := r.EmbeddingService.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err))
		}
	}
	if r.LLMService != nil {
		if err := r.LLMService.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err))
		}
	}
	return errors.Join(errs...)
}
