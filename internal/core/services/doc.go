// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The write path is IngestService: extraction, the admission Gate,
// chunking, embedding, vector upsert and finally the processed-index
// commit. The read path is Answerer, which routes a query and either
// grounds the answer through the Retriever or answers directly.
package services
