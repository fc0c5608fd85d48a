package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driving"
)

type mockIngestService struct {
	paths  []string
	report *domain.IngestReport
	err    error
}

func (m *mockIngestService) Ingest(_ context.Context, paths []string) (*domain.IngestReport, error) {
	m.paths = paths
	if m.err != nil {
		return nil, m.err
	}
	if m.report == nil {
		return &domain.IngestReport{}, nil
	}
	return m.report, nil
}

func (m *mockIngestService) IngestFile(_ context.Context, path string) domain.FileResult {
	return domain.FileResult{Path: path, Outcome: domain.OutcomeProcessed, Chunks: 1}
}

type mockRetrievalService struct {
	query   string
	limit   int
	results []domain.QueryResult
	err     error
}

func (m *mockRetrievalService) Retrieve(_ context.Context, query string, limit int) ([]domain.QueryResult, error) {
	m.query = query
	m.limit = limit
	return m.results, m.err
}

type mockAnswerService struct {
	query  string
	answer domain.Answer
}

func (m *mockAnswerService) Answer(_ context.Context, query string) domain.Answer {
	m.query = query
	return m.answer
}

type mockStatusService struct {
	recent int
	status *driving.Status
	err    error
}

func (m *mockStatusService) Status(_ context.Context, recent int) (*driving.Status, error) {
	m.recent = recent
	return m.status, m.err
}

type mockSettingsService struct {
	settings    domain.AppSettings
	set         map[string]string
	setErr      error
	validateErr error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.set == nil {
		m.set = make(map[string]string)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"chunking.chunk_size", "llm.model"}
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	ingest    *mockIngestService
	retrieval *mockRetrievalService
	answer    *mockAnswerService
	status    *mockStatusService
	settings  *mockSettingsService
}

func testQueryResults() []domain.QueryResult {
	return []domain.QueryResult{
		{
			ID:       "doc1_0",
			Content:  "The VPN must be enabled\nbefore connecting.",
			Score:    0.12,
			Metadata: map[string]any{domain.MetaFileName: "it-guide.md"},
		},
		{ID: "doc2_4", Content: "Laptops are issued on day one.", Score: 0.34},
	}
}

// setupTestServices installs mock services and returns a cleanup function
// restoring the previous services and flag values.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		ingest:    &mockIngestService{},
		retrieval: &mockRetrievalService{results: testQueryResults()},
		answer: &mockAnswerService{answer: domain.Answer{
			Text:    "Enable the VPN first.",
			Route:   domain.RouteRetrieve,
			Sources: testQueryResults()[:1],
		}},
		status: &mockStatusService{status: &driving.Status{
			Documents:      3,
			Chunks:         42,
			LastIngested:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			EmbeddingModel: "all-minilm",
			LLMModel:       "google/gemma-3n-e4b-it:free",
			Recent: []domain.ProcessedRecord{
				{ContentHash: "abcdef0123456789", FileName: "it-guide.md", ChunkCount: 7},
			},
		}},
		settings: &mockSettingsService{settings: domain.DefaultAppSettings()},
	}

	oldIngest, oldRetrieval, oldAnswer := ingestService, retrievalService, answerService
	oldStatus, oldSettings, oldClose, oldBootstrap := statusService, settingsService, closeServices, bootstrap
	oldPing := pingServices

	SetServices(&Services{
		Ingest:    ts.ingest,
		Retrieval: ts.retrieval,
		Answer:    ts.answer,
		Status:    ts.status,
		Settings:  ts.settings,
	})
	bootstrap = nil

	return ts, func() {
		ingestService, retrievalService, answerService = oldIngest, oldRetrieval, oldAnswer
		statusService, settingsService, closeServices, bootstrap = oldStatus, oldSettings, oldClose, oldBootstrap
		pingServices = oldPing
		resetFlags()
	}
}

// resetFlags restores package-level flag variables between tests.
func resetFlags() {
	ingestQuiet = false
	askSources = false
	askJSON = false
	retrieveLimit = 5
	retrieveJSON = false
	statusRecent = 10
	statusCheck = false
	mcpIngest = false
	configPath = ""
	verbose = false
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
