package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no extractor handles the declared file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// Ingestion Errors.

	// ErrExtraction indicates a file could not be read or decoded.
	ErrExtraction = errors.New("extraction failed")

	// ErrEmptyContent indicates extracted text is empty or whitespace only.
	ErrEmptyContent = errors.New("empty content")

	// ErrDuplicateContent indicates the content hash is already processed.
	ErrDuplicateContent = errors.New("duplicate content")

	// ErrChunkConfig indicates invalid chunk size or overlap.
	// It is raised at construction, never per document.
	ErrChunkConfig = errors.New("invalid chunk configuration")

	// ErrEmbedding indicates the embedding call failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndexWrite indicates the vector index rejected a write.
	ErrIndexWrite = errors.New("vector index write failed")

	// Query Errors.

	// ErrRouter indicates the routing call failed.
	ErrRouter = errors.New("routing failed")

	// ErrRetrieval indicates query embedding or index lookup failed.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGeneration indicates the answer generation call failed.
	ErrGeneration = errors.New("generation failed")
)
