// Package html extracts readable text from HTML pages.
//
// Pages are converted to Markdown first so headings, lists and tables keep
// their line structure, then the Markdown syntax is stripped. If conversion
// fails the page is sanitised down to bare text instead.
package html

import (
	"context"
	stdhtml "html"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"

	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
	"github.com/custodia-labs/intrafact/internal/extractors/markdown"
	"github.com/custodia-labs/intrafact/internal/extractors/plaintext"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles HTML documents.
type Extractor struct {
	converter *converter.Converter
	policy    *bluemonday.Policy
}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{
		converter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		policy: bluemonday.StrictPolicy(),
	}
}

// SupportedTypes returns the declared file types this extractor handles.
func (e *Extractor) SupportedTypes() []string {
	return []string{"html", "htm", "xhtml"}
}

// Extract converts an HTML page to plain text.
func (e *Extractor) Extract(ctx context.Context, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	page, err := plaintext.Decode(content)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(page) == "" {
		return "", nil
	}

	md, err := e.converter.ConvertString(page)
	if err == nil && strings.TrimSpace(md) != "" {
		return markdown.Strip(md), nil
	}
	return e.sanitise(page), nil
}

var (
	invisible    = regexp.MustCompile(`(?is)<(script|style|noscript|head|svg)[^>]*>.*?</(script|style|noscript|head|svg)>`)
	blockClose   = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>|<br\s*/?>|<hr\s*/?>`)
	multiSpaces  = regexp.MustCompile(`[ \t]+`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

// sanitise drops every tag and keeps block boundaries as newlines.
func (e *Extractor) sanitise(page string) string {
	page = invisible.ReplaceAllString(page, "")
	page = blockClose.ReplaceAllString(page, "\n")
	text := stdhtml.UnescapeString(e.policy.Sanitize(page))

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(multiSpaces.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	return strings.TrimSpace(multiNewline.ReplaceAllString(text, "\n\n"))
}
