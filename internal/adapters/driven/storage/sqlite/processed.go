package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
)

// processedIndex implements driven.ProcessedIndex.
type processedIndex struct {
	store *Store
}

var _ driven.ProcessedIndex = (*processedIndex)(nil)

// timeLayout is fixed width so that stored_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const processedColumns = `content_hash, document_id, file_name, file_path, chunk_count, stored_at`

// Get returns the record for hash, or domain.ErrNotFound.
func (p *processedIndex) Get(ctx context.Context, hash string) (*domain.ProcessedRecord, error) {
	row := p.store.db.QueryRowContext(ctx,
		`SELECT `+processedColumns+` FROM processed_records WHERE content_hash = ?`, hash)

	rec, err := scanProcessed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying processed record: %w", err)
	}
	return rec, nil
}

// Has reports whether a record exists for hash.
func (p *processedIndex) Has(ctx context.Context, hash string) (bool, error) {
	var one int
	err := p.store.db.QueryRowContext(ctx,
		`SELECT 1 FROM processed_records WHERE content_hash = ?`, hash).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying processed record: %w", err)
	}
	return true, nil
}

// Commit inserts the record if no record exists for its hash.
// The primary key makes this atomic across connections and processes.
func (p *processedIndex) Commit(ctx context.Context, rec domain.ProcessedRecord) error {
	if rec.ContentHash == "" {
		return fmt.Errorf("%w: empty content hash", domain.ErrInvalidInput)
	}
	if rec.StoredAt.IsZero() {
		rec.StoredAt = time.Now()
	}

	res, err := p.store.db.ExecContext(ctx, `
		INSERT INTO processed_records (`+processedColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_hash) DO NOTHING
	`, rec.ContentHash, rec.DocumentID, rec.FileName, rec.FilePath, rec.ChunkCount,
		rec.StoredAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("inserting processed record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking processed insert: %w", err)
	}
	if n == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

// List returns all records, oldest first.
func (p *processedIndex) List(ctx context.Context) ([]domain.ProcessedRecord, error) {
	rows, err := p.store.db.QueryContext(ctx,
		`SELECT `+processedColumns+` FROM processed_records ORDER BY stored_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying processed records: %w", err)
	}
	defer rows.Close()

	var records []domain.ProcessedRecord
	for rows.Next() {
		rec, err := scanProcessed(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning processed record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Count returns the number of records.
func (p *processedIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM processed_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting processed records: %w", err)
	}
	return n, nil
}

// Close is a no-op; the Store owns the connection.
func (p *processedIndex) Close() error {
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProcessed(row scanner) (*domain.ProcessedRecord, error) {
	var rec domain.ProcessedRecord
	var storedAt string
	if err := row.Scan(&rec.ContentHash, &rec.DocumentID, &rec.FileName, &rec.FilePath,
		&rec.ChunkCount, &storedAt); err != nil {
		return nil, err
	}
	t, err := time.Parse(timeLayout, storedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing stored_at %q: %w", storedAt, err)
	}
	rec.StoredAt = t
	return &rec, nil
}
