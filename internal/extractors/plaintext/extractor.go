// Package plaintext extracts text files, tolerating common encodings.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text and source files.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedTypes returns the declared file types this extractor handles.
func (e *Extractor) SupportedTypes() []string {
	return []string{
		"txt", "text", "log", "csv", "tsv",
		"json", "yaml", "yml", "toml", "xml", "ini",
		"go", "py", "rs", "java", "c", "h", "cpp", "rb", "sh", "sql",
		"js", "ts", "jsx", "tsx", "css",
		"rst", "tex",
	}
}

// Extract decodes content as text.
func (e *Extractor) Extract(ctx context.Context, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return Decode(content)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode returns content as UTF-8.
//
// A UTF-8 or UTF-16 byte order mark selects that encoding and is removed.
// Without one, valid UTF-8 is used as is and anything else is read as
// Windows-1252, which maps every byte. Content with NUL bytes and no BOM
// is treated as binary.
func Decode(content []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), content)
	if err != nil {
		return "", fmt.Errorf("%w: decode: %w", domain.ErrExtraction, err)
	}

	hadBOM := !bytes.Equal(out, content)
	if !hadBOM && bytes.IndexByte(content, 0) >= 0 {
		return "", fmt.Errorf("%w: binary content", domain.ErrExtraction)
	}
	if utf8.Valid(out) {
		return string(out), nil
	}

	out, _, err = transform.Bytes(charmap.Windows1252.NewDecoder(), bytes.TrimPrefix(content, utf8BOM))
	if err != nil {
		return "", fmt.Errorf("%w: decode windows-1252: %w", domain.ErrExtraction, err)
	}
	return string(out), nil
}
