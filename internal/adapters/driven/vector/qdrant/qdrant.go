// Package qdrant implements driven.VectorIndex against the Qdrant REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
	"github.com/custodia-labs/intrafact/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Payload keys written with every point.
const (
	payloadDocument = "document"
	payloadMetadata = "metadata"
)

// errCollectionMissing is returned by calls against a collection that does
// not exist yet.
var errCollectionMissing = errors.New("collection does not exist")

// Config configures the Qdrant client.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	// Timeout bounds each HTTP request. Defaults to 15s.
	Timeout time.Duration
}

// Index is a minimal REST client for one Qdrant collection using cosine
// distance. The collection is created on first upsert, sized to the
// vectors being written.
type Index struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client

	mu    sync.Mutex
	ready bool
}

// New creates a Qdrant index client.
func New(cfg Config) (*Index, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: qdrant url is required", domain.ErrVectorIndexUnavailable)
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("%w: qdrant collection is required", domain.ErrVectorIndexUnavailable)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Index{
		url:        strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// Upsert writes the batch as points. Chunk IDs are UUIDs, which Qdrant
// accepts as point IDs.
func (x *Index) Upsert(ctx context.Context, batch driven.UpsertBatch) error {
	n := batch.Len()
	if n < 0 {
		return fmt.Errorf("%w: upsert arrays differ in length", domain.ErrInvalidInput)
	}
	if n == 0 {
		return nil
	}
	if err := x.ensureCollection(ctx, len(batch.Vectors[0])); err != nil {
		return err
	}

	points := make([]point, n)
	for i, id := range batch.IDs {
		meta := batch.Metadatas[i]
		if meta == nil {
			meta = map[string]any{}
		}
		points[i] = point{
			ID:     id,
			Vector: batch.Vectors[i],
			Payload: map[string]any{
				payloadDocument: batch.Documents[i],
				payloadMetadata: meta,
			},
		}
	}

	return x.do(ctx, http.MethodPut, x.collectionPath("/points?wait=true"), upsertRequest{Points: points}, nil)
}

// Query returns up to k nearest points. Qdrant reports cosine similarity,
// which is converted to distance as 1 - similarity.
func (x *Index) Query(ctx context.Context, vector []float32, k int) (*driven.QueryResponse, error) {
	resp := &driven.QueryResponse{
		IDs:       [][]string{{}},
		Documents: [][]string{{}},
		Metadatas: [][]map[string]any{{}},
		Distances: [][]float64{{}},
	}
	if k <= 0 || len(vector) == 0 {
		return resp, nil
	}

	var out struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	err := x.do(ctx, http.MethodPost, x.collectionPath("/points/search"), searchRequest{
		Vector:      vector,
		Limit:       k,
		WithPayload: true,
	}, &out)
	if errors.Is(err, errCollectionMissing) {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}

	for _, r := range out.Result {
		doc, _ := r.Payload[payloadDocument].(string)
		meta, _ := r.Payload[payloadMetadata].(map[string]any)
		resp.IDs[0] = append(resp.IDs[0], fmt.Sprint(r.ID))
		resp.Documents[0] = append(resp.Documents[0], doc)
		resp.Metadatas[0] = append(resp.Metadatas[0], meta)
		resp.Distances[0] = append(resp.Distances[0], 1-r.Score)
	}
	return resp, nil
}

// Delete removes points by ID. Unknown IDs are ignored.
func (x *Index) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := x.do(ctx, http.MethodPost, x.collectionPath("/points/delete?wait=true"), deleteRequest{Points: ids}, nil)
	if errors.Is(err, errCollectionMissing) {
		return nil
	}
	return err
}

// Count returns the exact number of points in the collection.
func (x *Index) Count(ctx context.Context) (int, error) {
	var out struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	err := x.do(ctx, http.MethodPost, x.collectionPath("/points/count"), map[string]any{"exact": true}, &out)
	if errors.Is(err, errCollectionMissing) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return out.Result.Count, nil
}

// Close releases idle connections.
func (x *Index) Close() error {
	x.client.CloseIdleConnections()
	return nil
}

// ensureCollection creates the collection unless it exists.
func (x *Index) ensureCollection(ctx context.Context, dimensions int) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.ready {
		return nil
	}
	if dimensions <= 0 {
		return fmt.Errorf("%w: empty vector", domain.ErrInvalidInput)
	}

	err := x.do(ctx, http.MethodGet, x.collectionPath(""), nil, nil)
	switch {
	case err == nil:
		x.ready = true
		return nil
	case !errors.Is(err, errCollectionMissing):
		return err
	}

	logger.Info("Creating qdrant collection %s (%d dimensions)", x.collection, dimensions)
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimensions,
			"distance": "Cosine",
		},
	}
	if err := x.do(ctx, http.MethodPut, x.collectionPath(""), body, nil); err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	x.ready = true
	return nil
}

func (x *Index) collectionPath(suffix string) string {
	return x.url + "/collections/" + x.collection + suffix
}

// do sends body as JSON and decodes the reply into out when non-nil.
// A 404 maps to errCollectionMissing.
func (x *Index) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding qdrant request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("creating qdrant request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if x.apiKey != "" {
		req.Header.Set("api-key", x.apiKey)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errCollectionMissing
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("qdrant %s %s: %s: %s", method, url, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding qdrant response: %w", err)
	}
	return nil
}

type point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

type upsertRequest struct {
	Points []point `json:"points"`
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type deleteRequest struct {
	Points []string `json:"points"`
}
