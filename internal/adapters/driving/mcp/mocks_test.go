package mcp

import (
	"context"

	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driving"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer  domain.Answer
	queries []string
}

func (m *mockAnswerService) Answer(_ context.Context, query string) domain.Answer {
	m.queries = append(m.queries, query)
	return m.answer
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.QueryResult
	err     error
	limits  []int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string, limit int) ([]domain.QueryResult, error) {
	m.limits = append(m.limits, limit)
	return m.results, m.err
}

// mockStatusService is a mock implementation of driving.StatusService.
type mockStatusService struct {
	status *driving.Status
	err    error
	recent []int
}

func (m *mockStatusService) Status(_ context.Context, recent int) (*driving.Status, error) {
	m.recent = append(m.recent, recent)
	return m.status, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	report *domain.IngestReport
	err    error
	paths  []string
}

func (m *mockIngestService) Ingest(_ context.Context, paths []string) (*domain.IngestReport, error) {
	m.paths = paths
	return m.report, m.err
}

func (m *mockIngestService) IngestFile(_ context.Context, path string) domain.FileResult {
	return domain.FileResult{Path: path, Outcome: domain.OutcomeProcessed}
}

func validPorts() *Ports {
	return &Ports{
		Answer:    &mockAnswerService{},
		Retrieval: &mockRetrievalService{},
	}
}
