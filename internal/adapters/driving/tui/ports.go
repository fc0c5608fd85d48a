// Package tui provides the interactive chat interface for intrafact.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/intrafact/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer routes and answers questions.
	Answer driving.AnswerService

	// Status reports index counts for the header. Optional.
	Status driving.StatusService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(answer driving.AnswerService, status driving.StatusService) *Ports {
	return &Ports{
		Answer: answer,
		Status: status,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
