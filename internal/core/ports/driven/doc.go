// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - Extractor: Turns file bytes into plain text
//   - ExtractorRegistry: Selects an extractor by declared file type
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndex: Stores chunk vectors and answers nearest-neighbour queries
//   - ProcessedIndex: Durable map from content hash to ProcessedRecord
//   - LLMService: Chat completion for routing and answering
//   - PostProcessor: Chunking pipeline stages
//   - ConfigStore: Application configuration
//
// Every method that may block takes a context.Context. Callers bound
// each call with a deadline; a deadline hit is an ordinary failure.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
