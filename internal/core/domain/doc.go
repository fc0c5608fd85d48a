// Package domain defines the core business entities for intrafact.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Extracted text plus file metadata
//   - Document: An admitted document with a fresh identifier
//   - Chunk: An overlapping text window of a document
//   - ProcessedRecord: Proof that a content hash is fully indexed
//   - QueryResult: A flattened retrieval hit
//   - Answer: The outcome of one routed query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
