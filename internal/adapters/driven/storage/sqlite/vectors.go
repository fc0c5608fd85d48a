package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/intrafact/internal/adapters/driven/vector/vecmath"
	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
)

// vectorIndex implements driven.VectorIndex with a full scan per query.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Upsert writes the batch in one transaction, overwriting existing IDs.
func (v *vectorIndex) Upsert(ctx context.Context, batch driven.UpsertBatch) error {
	n := batch.Len()
	if n < 0 {
		return fmt.Errorf("%w: upsert arrays differ in length", domain.ErrInvalidInput)
	}
	if n == 0 {
		return nil
	}

	v.store.writeMu.Lock()
	defer v.store.writeMu.Unlock()

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (id, parent_id, document, metadata, dimensions, norm, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			parent_id = excluded.parent_id,
			document = excluded.document,
			metadata = excluded.metadata,
			dimensions = excluded.dimensions,
			norm = excluded.norm,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for i, id := range batch.IDs {
		vec := batch.Vectors[i]
		if len(vec) == 0 {
			return fmt.Errorf("%w: empty vector for %s", domain.ErrInvalidInput, id)
		}
		meta := batch.Metadatas[i]
		if meta == nil {
			meta = map[string]any{}
		}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshalling metadata for %s: %w", id, err)
		}
		parentID, _ := meta[domain.MetaParentID].(string)

		if _, err := stmt.ExecContext(ctx, id, parentID, batch.Documents[i], string(metaJSON),
			len(vec), vecmath.Norm(vec), vecmath.Encode(vec)); err != nil {
			return fmt.Errorf("upserting vector %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// Query scans every vector of matching dimension and returns the k nearest.
func (v *vectorIndex) Query(ctx context.Context, vector []float32, k int) (*driven.QueryResponse, error) {
	resp := &driven.QueryResponse{
		IDs:       [][]string{{}},
		Documents: [][]string{{}},
		Metadatas: [][]map[string]any{{}},
		Distances: [][]float64{{}},
	}
	if k <= 0 || len(vector) == 0 {
		return resp, nil
	}

	rows, err := v.store.db.QueryContext(ctx,
		`SELECT id, norm, embedding FROM vectors WHERE dimensions = ?`, len(vector))
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	qNorm := vecmath.Norm(vector)
	var ids []string
	var scored []vecmath.Scored
	for rows.Next() {
		var (
			id   string
			norm float64
			blob []byte
		)
		if err := rows.Scan(&id, &norm, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		scored = append(scored, vecmath.Scored{
			Index:    len(ids),
			Distance: vecmath.CosineDistanceWithNorms(vector, vecmath.Decode(blob), qNorm, norm),
		})
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	for _, s := range vecmath.TopK(scored, k) {
		doc, meta, err := v.load(ctx, ids[s.Index])
		if err != nil {
			return nil, err
		}
		resp.IDs[0] = append(resp.IDs[0], ids[s.Index])
		resp.Documents[0] = append(resp.Documents[0], doc)
		resp.Metadatas[0] = append(resp.Metadatas[0], meta)
		resp.Distances[0] = append(resp.Distances[0], s.Distance)
	}
	return resp, nil
}

// load fetches the text and metadata of one entry.
func (v *vectorIndex) load(ctx context.Context, id string) (string, map[string]any, error) {
	var doc, metaJSON string
	err := v.store.db.QueryRowContext(ctx,
		`SELECT document, metadata FROM vectors WHERE id = ?`, id).Scan(&doc, &metaJSON)
	if err != nil {
		return "", nil, fmt.Errorf("loading vector %s: %w", id, err)
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
		return "", nil, fmt.Errorf("unmarshalling metadata for %s: %w", id, err)
	}
	return doc, meta, nil
}

// Delete removes entries by ID. Unknown IDs are ignored.
func (v *vectorIndex) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	v.store.writeMu.Lock()
	defer v.store.writeMu.Unlock()

	const chunk = 500
	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for start := 0; start < len(ids); start += chunk {
		part := ids[start:min(start+chunk, len(ids))]
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(part)), ",")
		args := make([]any, len(part))
		for i, id := range part {
			args[i] = id
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM vectors WHERE id IN (`+placeholders+`)`, args...); err != nil {
			return fmt.Errorf("deleting vectors: %w", err)
		}
	}
	return tx.Commit()
}

// Count returns the number of stored entries.
func (v *vectorIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := v.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vectors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting vectors: %w", err)
	}
	return n, nil
}

// Close is a no-op; the Store owns the connection.
func (v *vectorIndex) Close() error {
	return nil
}
