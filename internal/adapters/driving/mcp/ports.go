package mcp

import (
	"github.com/custodia-labs/intrafact/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer routes and answers questions.
	Answer driving.AnswerService

	// Retrieval returns the chunks closest to a query.
	Retrieval driving.RetrievalService

	// Status reports index counts. Optional.
	Status driving.StatusService

	// Ingest loads files into the index. Optional; the ingest tool is
	// only registered when set.
	Ingest driving.IngestService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
