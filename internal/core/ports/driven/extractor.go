package driven

import (
	"context"

	"github.com/custodia-labs/intrafact/internal/core/domain"
)

// Extractor turns the bytes of one file type into plain text.
type Extractor interface {
	// SupportedTypes returns the declared file types handled, e.g. "txt", "pdf".
	SupportedTypes() []string

	// Extract decodes content into text.
	Extract(ctx context.Context, content []byte) (string, error)
}

// ExtractorRegistry reads files and dispatches them to an Extractor
// by declared type (the lower-cased extension).
type ExtractorRegistry interface {
	// Extract reads the file at path and returns its text and metadata.
	// Unknown types fail with domain.ErrUnsupportedType, unreadable
	// files with domain.ErrExtraction.
	Extract(ctx context.Context, path string) (*domain.RawDocument, error)

	// Register adds an extractor. Later registrations win for shared types.
	Register(extractor Extractor)

	// SupportedTypes returns all declared types that can be extracted.
	SupportedTypes() []string
}
