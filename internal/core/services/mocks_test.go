package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder returns a deterministic vector derived from the text length.
type mockEmbedder struct {
	mu       sync.Mutex
	calls    int
	batches  [][]string
	err      error
	failOn   int // fail the n-th EmbedBatch call (1-based); 0 never fails
	short    bool
	emptyVec bool
	delay    time.Duration
}

func (m *mockEmbedder) vector(text string) []float32 {
	return []float32{float32(len(text)), 1}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.batches = append(m.batches, append([]string(nil), texts...))
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil && (m.failOn == 0 || m.failOn == m.calls) {
		return nil, m.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		if m.emptyVec {
			out = append(out, nil)
			continue
		}
		out = append(out, m.vector(t))
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return 2 }
func (m *mockEmbedder) ModelName() string { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return m.err }
func (m *mockEmbedder) Close() error { return nil }

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// recordingIndex wraps a real index and can fail upserts or queries.
type recordingIndex struct {
	driven.VectorIndex

	mu        sync.Mutex
	upserts   int
	failAfter int // fail upserts after this many succeeded; -1 never fails
	upsertErr error
	deleted   []string
	queryErr  error
	response  *driven.QueryResponse
}

func (r *recordingIndex) Upsert(ctx context.Context, batch driven.UpsertBatch) error {
	r.mu.Lock()
	if r.upsertErr != nil && r.failAfter >= 0 && r.upserts >= r.failAfter {
		r.mu.Unlock()
		return r.upsertErr
	}
	r.upserts++
	r.mu.Unlock()
	return r.VectorIndex.Upsert(ctx, batch)
}

func (r *recordingIndex) Query(ctx context.Context, vector []float32, k int) (*driven.QueryResponse, error) {
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	if r.response != nil {
		return r.response, nil
	}
	return r.VectorIndex.Query(ctx, vector, k)
}

func (r *recordingIndex) Delete(ctx context.Context, ids []string) error {
	r.mu.Lock()
	r.deleted = append(r.deleted, ids...)
	r.mu.Unlock()
	return r.VectorIndex.Delete(ctx, ids)
}

// failingProcessed wraps a processed index and overrides Get or Commit.
type failingProcessed struct {
	driven.ProcessedIndex

	getErr    error
	commitErr error
	commits   int
	mu        sync.Mutex
}

func (f *failingProcessed) Get(ctx context.Context, hash string) (*domain.ProcessedRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.ProcessedIndex.Get(ctx, hash)
}

func (f *failingProcessed) Commit(ctx context.Context, rec domain.ProcessedRecord) error {
	f.mu.Lock()
	f.commits++
	f.mu.Unlock()
	if f.commitErr != nil {
		return f.commitErr
	}
	return f.ProcessedIndex.Commit(ctx, rec)
}

// mockLLM answers by matching prompt content.
type mockLLM struct {
	mu       sync.Mutex
	route    string
	routeErr error
	answer   string
	err      error
	prompts  []string
	opts     []driven.ChatOptions
}

func (m *mockLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prompt := messages[len(messages)-1].Content
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if strings.Contains(prompt, "query router") {
		return m.route, m.routeErr
	}
	if m.err != nil {
		return "", m.err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", ctx.Err()
	}
	return m.answer, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error { return nil }

// mockRetriever returns canned results.
type mockRetriever struct {
	results []domain.QueryResult
	err     error
	limits  []int
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string, limit int) ([]domain.QueryResult, error) {
	m.limits = append(m.limits, limit)
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// mockPromptStore serves prompts from a map.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}
