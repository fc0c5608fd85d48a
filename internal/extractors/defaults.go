package extractors

import (
	"github.com/custodia-labs/intrafact/internal/extractors/docx"
	"github.com/custodia-labs/intrafact/internal/extractors/eml"
	"github.com/custodia-labs/intrafact/internal/extractors/html"
	"github.com/custodia-labs/intrafact/internal/extractors/markdown"
	"github.com/custodia-labs/intrafact/internal/extractors/pdf"
	"github.com/custodia-labs/intrafact/internal/extractors/plaintext"
)

// DefaultRegistry returns a registry with every built-in extractor.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(docx.New())
	r.Register(pdf.New())
	r.Register(eml.New())
	return r
}
