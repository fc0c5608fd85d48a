package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
	"github.com/custodia-labs/intrafact/internal/logger"
)

// Decision is the Gate's verdict on a raw document.
type Decision int

// Possible gate decisions.
const (
	// AdmitNew means the content has not been indexed before.
	AdmitNew Decision = iota
	// AdmitDuplicate means a processed record exists for the content hash.
	AdmitDuplicate
	// AdmitEmpty means the text is empty or whitespace only.
	AdmitEmpty
)

// String returns the string representation.
func (d Decision) String() string {
	switch d {
	case AdmitNew:
		return "new"
	case AdmitDuplicate:
		return "duplicate"
	case AdmitEmpty:
		return "empty"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Admission is the result of Gate.Admit.
type Admission struct {
	Decision Decision

	// Document is set for AdmitNew.
	Document *domain.Document

	// Existing is set for AdmitDuplicate.
	Existing *domain.ProcessedRecord

	// ContentHash is the hash the decision was made on.
	ContentHash string
}

// Gate decides whether extracted text should enter the index.
// It reads the processed index and never writes it.
type Gate struct {
	processed driven.ProcessedIndex
	newID     func() string
}

// NewGate creates a gate backed by the processed index.
func NewGate(processed driven.ProcessedIndex) *Gate {
	return &Gate{
		processed: processed,
		newID:     uuid.NewString,
	}
}

// Admit classifies raw. The hash is always computed from raw.Text, so a
// stale hash in the metadata cannot let changed content through.
func (g *Gate) Admit(ctx context.Context, raw *domain.RawDocument) (Admission, error) {
	if raw == nil {
		return Admission{}, fmt.Errorf("%w: nil raw document", domain.ErrInvalidInput)
	}

	hash := domain.ContentHash(raw.Text)
	if strings.TrimSpace(raw.Text) == "" {
		logger.Debug("gate: %s is empty", raw.Metadata.FileName)
		return Admission{Decision: AdmitEmpty, ContentHash: hash}, nil
	}

	existing, err := g.processed.Get(ctx, hash)
	switch {
	case err == nil:
		logger.Debug("gate: %s duplicates %s", raw.Metadata.FileName, existing.FileName)
		return Admission{Decision: AdmitDuplicate, Existing: existing, ContentHash: hash}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return Admission{}, fmt.Errorf("check processed index: %w", err)
	}

	meta := raw.Metadata
	meta.ContentHash = hash
	doc := &domain.Document{
		ID:       g.newID(),
		Content:  raw.Text,
		Metadata: meta.Map(),
	}
	return Admission{Decision: AdmitNew, Document: doc, ContentHash: hash}, nil
}
