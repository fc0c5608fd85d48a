package services

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
	"github.com/custodia-labs/intrafact/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyRawDir            = "paths.raw_dir"
	keyDataDir           = "paths.data_dir"
	keyChunkSize         = "chunking.chunk_size"
	keyChunkOverlap      = "chunking.overlap"
	keyIngestWorkers     = "ingest.workers"
	keyIngestBatchSize   = "ingest.batch_size"
	keyIngestRecursive   = "ingest.recursive"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyVectorBackend     = "vector_index.backend"
	keyVectorURL         = "vector_index.url"
	keyVectorCollection  = "vector_index.collection"
	keyVectorAPIKey      = "vector_index.api_key"
	keyTopK              = "query.top_k"
	keyRouterTemperature = "query.router_temperature"
	keyRouterMaxTokens   = "query.router_max_tokens"
	keyAnswerTemperature = "query.answer_temperature"
	keyAnswerMaxTokens   = "query.answer_max_tokens"
	keyAdapterTimeout    = "timeouts.adapter"
	keyRateLimitRPS      = "rate_limit.requests_per_second"
	keyRateLimitBurst    = "rate_limit.burst"
	keyQueryCache        = "cache.query_embeddings"
)

// Environment variables that override the file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvOpenRouterAPIKey = "OPENROUTER_API_KEY"
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
	EnvLLMModel         = "LLM_MODEL"
	EnvRawDir           = "INTRAFACT_RAW_DIR"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindBool
	kindSeconds
	kindProvider
	kindBackend
)

var settingKinds = map[string]settingKind{
	keyRawDir:            kindString,
	keyDataDir:           kindString,
	keyChunkSize:         kindInt,
	keyChunkOverlap:      kindInt,
	keyIngestWorkers:     kindInt,
	keyIngestBatchSize:   kindInt,
	keyIngestRecursive:   kindBool,
	keyEmbedProvider:     kindProvider,
	keyEmbedModel:        kindString,
	keyEmbedBaseURL:      kindString,
	keyEmbedAPIKey:       kindString,
	keyLLMProvider:       kindProvider,
	keyLLMModel:          kindString,
	keyLLMBaseURL:        kindString,
	keyLLMAPIKey:         kindString,
	keyVectorBackend:     kindBackend,
	keyVectorURL:         kindString,
	keyVectorCollection:  kindString,
	keyVectorAPIKey:      kindString,
	keyTopK:              kindInt,
	keyRouterTemperature: kindFloat,
	keyRouterMaxTokens:   kindInt,
	keyAnswerTemperature: kindFloat,
	keyAnswerMaxTokens:   kindInt,
	keyAdapterTimeout:    kindSeconds,
	keyRateLimitRPS:      kindFloat,
	keyRateLimitBurst:    kindInt,
	keyQueryCache:        kindInt,
}

// SettingsService manages application settings.
// Values come from defaults, then the config file, then the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service reading the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// SetEnvLookup replaces the environment lookup. A nil lookup disables
// environment overrides.
func (s *SettingsService) SetEnvLookup(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	s.lookupEnv = lookup
}

// Get returns the effective settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Paths: domain.PathSettings{
			RawDir:  s.getString(keyRawDir, d.Paths.RawDir),
			DataDir: s.getString(keyDataDir, d.Paths.DataDir),
		},
		Chunking: domain.ChunkingSettings{
			ChunkSize: s.getInt(keyChunkSize, d.Chunking.ChunkSize),
			Overlap:   s.getInt(keyChunkOverlap, d.Chunking.Overlap),
		},
		Ingest: domain.IngestSettings{
			Workers:   s.getInt(keyIngestWorkers, d.Ingest.Workers),
			BatchSize: s.getInt(keyIngestBatchSize, d.Ingest.BatchSize),
			Recursive: s.getBool(keyIngestRecursive, d.Ingest.Recursive),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:    s.getString(keyLLMModel, d.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		VectorIndex: domain.VectorIndexSettings{
			Backend:    s.getBackend(keyVectorBackend, d.VectorIndex.Backend),
			URL:        s.configStore.GetString(keyVectorURL),
			Collection: s.getString(keyVectorCollection, d.VectorIndex.Collection),
			APIKey:     s.configStore.GetString(keyVectorAPIKey),
		},
		Query: domain.QuerySettings{
			TopK:              s.getInt(keyTopK, d.Query.TopK),
			RouterTemperature: s.getFloat(keyRouterTemperature, d.Query.RouterTemperature),
			RouterMaxTokens:   s.getInt(keyRouterMaxTokens, d.Query.RouterMaxTokens),
			AnswerTemperature: s.getFloat(keyAnswerTemperature, d.Query.AnswerTemperature),
			AnswerMaxTokens:   s.getInt(keyAnswerMaxTokens, d.Query.AnswerMaxTokens),
		},
		RateLimit: domain.RateLimitSettings{
			RequestsPerSecond: s.getFloat(keyRateLimitRPS, d.RateLimit.RequestsPerSecond),
			Burst:             s.getInt(keyRateLimitBurst, d.RateLimit.Burst),
		},
		AdapterTimeout: time.Duration(s.getInt(keyAdapterTimeout, int(d.AdapterTimeout/time.Second))) * time.Second,
		QueryCacheSize: s.getInt(keyQueryCache, d.QueryCacheSize),
	}

	if settings.LLM.Provider == domain.AIProviderOpenRouter && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = domain.DefaultOpenRouterBaseURL
	}

	s.applyEnv(settings)
	return settings, nil
}

// applyEnv overrides file values with the environment.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if v, ok := s.env(EnvRawDir); ok {
		settings.Paths.RawDir = v
	}
	if v, ok := s.env(EnvLLMModel); ok {
		settings.LLM.Model = v
	}

	switch settings.LLM.Provider {
	case domain.AIProviderOpenRouter:
		if v, ok := s.env(EnvOpenRouterAPIKey); ok {
			settings.LLM.APIKey = v
		}
	case domain.AIProviderOpenAI:
		if v, ok := s.env(EnvOpenAIAPIKey); ok {
			settings.LLM.APIKey = v
		}
	}
	if settings.Embedding.Provider == domain.AIProviderOpenAI {
		if v, ok := s.env(EnvOpenAIAPIKey); ok {
			settings.Embedding.APIKey = v
		}
	}
}

func (s *SettingsService) env(name string) (string, bool) {
	v, ok := s.lookupEnv(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Set parses value according to key and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseSetting(kind, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	return s.configStore.Set(key, parsed)
}

func parseSetting(kind settingKind, value string) (any, error) {
	switch kind {
	case kindInt, kindSeconds:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("expected an integer, got %q", value)
		}
		if n < 0 {
			return nil, fmt.Errorf("must not be negative, got %d", n)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("expected a number, got %q", value)
		}
		return f, nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("expected true or false, got %q", value)
		}
		return b, nil
	case kindProvider:
		p := domain.AIProvider(strings.ToLower(value))
		if !p.IsValid() {
			return nil, fmt.Errorf("unknown provider %q", value)
		}
		return string(p), nil
	case kindBackend:
		b := domain.VectorBackend(strings.ToLower(value))
		if !b.IsValid() {
			return nil, fmt.Errorf("unknown vector backend %q", value)
		}
		return string(b), nil
	default:
		return value, nil
	}
}

// Keys returns every supported configuration key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Validate checks that the settings can run ingestion and queries.
// Every problem found is reported.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if err := settings.Chunking.Validate(); err != nil {
		errs = append(errs, err)
	}
	if settings.Ingest.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, keyIngestWorkers))
	}
	if settings.Ingest.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, keyIngestBatchSize))
	}
	if settings.Query.TopK <= 0 {
		errs = append(errs, fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, keyTopK))
	}
	if !settings.Embedding.IsConfigured() {
		errs = append(errs, fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider))
	}
	if !settings.LLM.IsConfigured() {
		errs = append(errs, fmt.Errorf("%w: llm provider %q needs an API key",
			domain.ErrLLMUnavailable, settings.LLM.Provider))
	}
	if settings.VectorIndex.Backend == domain.VectorBackendQdrant && settings.VectorIndex.URL == "" {
		errs = append(errs, fmt.Errorf("%w: %s is required for qdrant",
			domain.ErrVectorIndexUnavailable, keyVectorURL))
	}
	return errors.Join(errs...)
}

// Helper methods for reading config with defaults. A key that is present
// in the file wins even when its value is zero.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(key string, defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(key))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
