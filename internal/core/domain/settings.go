package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderOpenRouter is the OpenRouter OpenAI-compatible gateway.
	AIProviderOpenRouter AIProvider = "openrouter"
)

// DefaultOpenRouterBaseURL is the OpenRouter API root.
const DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderOpenRouter:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderOpenRouter
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderOpenRouter:
		return "OpenRouter (cloud)"
	default:
		return unknownDescription
	}
}

// VectorBackend selects the vector index implementation.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendSQLite stores vectors in the local SQLite database.
	VectorBackendSQLite VectorBackend = "sqlite"

	// VectorBackendMemory keeps vectors in process memory only.
	VectorBackendMemory VectorBackend = "memory"

	// VectorBackendQdrant uses a Qdrant collection over HTTP.
	VectorBackendQdrant VectorBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendSQLite, VectorBackendMemory, VectorBackendQdrant:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// PathSettings locates input documents and local state.
type PathSettings struct {
	// RawDir is the default directory ingested when no paths are given.
	RawDir string

	// DataDir holds the SQLite database.
	DataDir string
}

// ChunkingSettings configures the sliding-window chunker.
type ChunkingSettings struct {
	// ChunkSize is the target window length in characters.
	ChunkSize int

	// Overlap is the minimum number of characters carried into the next window.
	Overlap int
}

// Validate returns ErrChunkConfig unless 0 <= Overlap < ChunkSize.
func (c ChunkingSettings) Validate() error {
	if c.ChunkSize <= 0 || c.Overlap < 0 || c.Overlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_size=%d overlap=%d", ErrChunkConfig, c.ChunkSize, c.Overlap)
	}
	return nil
}

// IngestSettings configures the ingestion worker pool.
type IngestSettings struct {
	// Workers bounds the number of files processed concurrently.
	Workers int

	// BatchSize bounds the number of chunks per embedding call.
	BatchSize int

	// Recursive descends into subdirectories.
	Recursive bool
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderOpenRouter {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/OpenRouter).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorIndexSettings holds vector index configuration.
type VectorIndexSettings struct {
	// Backend selects the implementation.
	Backend VectorBackend

	// URL is the server address for remote backends.
	URL string

	// Collection is the collection name for remote backends.
	Collection string

	// APIKey authenticates against remote backends.
	APIKey string
}

// QuerySettings configures routing, retrieval and generation.
type QuerySettings struct {
	// TopK is the number of chunks retrieved for grounding.
	TopK int

	// RouterTemperature is the sampling temperature of the routing call.
	RouterTemperature float64

	// RouterMaxTokens caps the routing reply.
	RouterMaxTokens int

	// AnswerTemperature is the sampling temperature of the answer call.
	AnswerTemperature float64

	// AnswerMaxTokens caps the answer. Zero leaves it to the provider.
	AnswerMaxTokens int
}

// RateLimitSettings throttles calls to remote AI providers.
type RateLimitSettings struct {
	// RequestsPerSecond is the sustained rate. Zero disables limiting.
	RequestsPerSecond float64

	// Burst is the bucket size.
	Burst int
}

// Enabled reports whether rate limiting is active.
func (r RateLimitSettings) Enabled() bool {
	return r.RequestsPerSecond > 0
}

// AppSettings holds all application settings.
type AppSettings struct {
	Paths       PathSettings
	Chunking    ChunkingSettings
	Ingest      IngestSettings
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	VectorIndex VectorIndexSettings
	Query       QuerySettings
	RateLimit   RateLimitSettings

	// AdapterTimeout bounds every call to an external collaborator.
	AdapterTimeout time.Duration

	// QueryCacheSize is the number of query embeddings kept in memory. Zero disables caching.
	QueryCacheSize int
}

// DefaultAppSettings returns settings with sensible defaults.
// API keys are left empty and normally come from the environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Paths: PathSettings{
			RawDir:  "data/raw",
			DataDir: "",
		},
		Chunking: ChunkingSettings{
			ChunkSize: 500,
			Overlap:   50,
		},
		Ingest: IngestSettings{
			Workers:   4,
			BatchSize: 64,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    "all-minilm",
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenRouter,
			Model:    "google/gemma-3n-e4b-it:free",
			BaseURL:  DefaultOpenRouterBaseURL,
		},
		VectorIndex: VectorIndexSettings{
			Backend:    VectorBackendSQLite,
			Collection: "rag_collection",
		},
		Query: QuerySettings{
			TopK:              5,
			RouterTemperature: 0.1,
			RouterMaxTokens:   5,
			AnswerTemperature: 0.3,
		},
		AdapterTimeout: 60 * time.Second,
		QueryCacheSize: 256,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderOpenRouter,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:     "llama3.2",
		AIProviderOpenAI:     "gpt-4o-mini",
		AIProviderOpenRouter: "google/gemma-3n-e4b-it:free",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFor returns a pipeline running only the chunker with the given settings.
func PipelineConfigFor(c ChunkingSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": c.ChunkSize,
				"overlap":    c.Overlap,
			},
		},
	}
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfigFor(DefaultAppSettings().Chunking)
}
