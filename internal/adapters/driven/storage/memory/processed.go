package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
)

// Ensure ProcessedIndex implements the interface.
var _ driven.ProcessedIndex = (*ProcessedIndex)(nil)

// ProcessedIndex is an in-memory processed index for tests and
// throwaway sessions.
type ProcessedIndex struct {
	mu      sync.RWMutex
	records map[string]domain.ProcessedRecord
	order   []string
}

// NewProcessedIndex creates an empty processed index.
func NewProcessedIndex() *ProcessedIndex {
	return &ProcessedIndex{records: make(map[string]domain.ProcessedRecord)}
}

// Get returns the record for hash, or domain.ErrNotFound.
func (p *ProcessedIndex) Get(_ context.Context, hash string) (*domain.ProcessedRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	r, ok := p.records[hash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

// Has reports whether a record exists for hash.
func (p *ProcessedIndex) Has(_ context.Context, hash string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.records[hash]
	return ok, nil
}

// Commit inserts record unless one exists for its hash.
func (p *ProcessedIndex) Commit(ctx context.Context, record domain.ProcessedRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record.ContentHash == "" {
		return domain.ErrInvalidInput
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.records[record.ContentHash]; ok {
		return domain.ErrAlreadyExists
	}
	p.records[record.ContentHash] = record
	p.order = append(p.order, record.ContentHash)
	return nil
}

// List returns all records in commit order.
func (p *ProcessedIndex) List(_ context.Context) ([]domain.ProcessedRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.ProcessedRecord, 0, len(p.order))
	for _, h := range p.order {
		out = append(out, p.records[h])
	}
	return out, nil
}

// Count returns the number of records.
func (p *ProcessedIndex) Count(_ context.Context) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.records), nil
}

// Close is a no-op.
func (p *ProcessedIndex) Close() error {
	return nil
}
