package extractors

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// DefaultMaxFileSize bounds the files the registry will read.
const DefaultMaxFileSize = 64 << 20

// sniffedTypes maps detected MIME types to declared file types for
// files whose extension is missing or unknown.
var sniffedTypes = map[string]string{
	"application/pdf": "pdf",
	"message/rfc822":  "eml",
	"text/html":       "html",
	"text/plain":      "txt",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
}

// Registry dispatches files to extractors by declared type.
type Registry struct {
	mu          sync.RWMutex
	extractors  map[string]driven.Extractor
	maxFileSize int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors:  make(map[string]driven.Extractor),
		maxFileSize: DefaultMaxFileSize,
	}
}

// SetMaxFileSize changes the largest file the registry will read.
func (r *Registry) SetMaxFileSize(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maxFileSize = n
}

// Register adds an extractor for all of its supported types.
func (r *Registry) Register(extractor driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range extractor.SupportedTypes() {
		r.extractors[strings.ToLower(t)] = extractor
	}
}

// SupportedTypes returns all registered declared types, sorted.
func (r *Registry) SupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.extractors))
	for t := range r.extractors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Supports reports whether path has an extension some extractor handles.
func (r *Registry) Supports(path string) bool {
	_, ok := r.lookup(DeclaredType(path))
	return ok
}

// Extract reads path and returns its text with file metadata.
func (r *Registry) Extract(ctx context.Context, path string) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", domain.ErrExtraction, path)
	}

	r.mu.RLock()
	limit := r.maxFileSize
	r.mu.RUnlock()
	if limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", domain.ErrExtraction, path, limit)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, path, err)
	}

	fileType := DeclaredType(path)
	extractor, ok := r.lookup(fileType)
	if !ok {
		fileType = sniff(content)
		extractor, ok = r.lookup(fileType)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filepath.Base(path))
		}
	}

	text, err := extractor.Extract(ctx, content)
	if err != nil {
		if errors.Is(err, domain.ErrExtraction) || errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrExtraction, path, err)
	}

	return &domain.RawDocument{
		Text: text,
		Metadata: domain.RawMetadata{
			FileName:    filepath.Base(path),
			FilePath:    path,
			FileType:    fileType,
			SourceType:  domain.SourceTypeLocalFile,
			FileSize:    info.Size(),
			ContentHash: domain.ContentHash(text),
		},
	}, nil
}

func (r *Registry) lookup(fileType string) (driven.Extractor, bool) {
	if fileType == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.extractors[fileType]
	return e, ok
}

// DeclaredType returns the lower-cased extension of path without the dot.
func DeclaredType(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// sniff guesses a declared type from content.
func sniff(content []byte) string {
	for m := mimetype.Detect(content); m != nil; m = m.Parent() {
		mime := m.String()
		if i := strings.IndexByte(mime, ';'); i >= 0 {
			mime = mime[:i]
		}
		if t, ok := sniffedTypes[mime]; ok {
			return t
		}
	}
	return ""
}
