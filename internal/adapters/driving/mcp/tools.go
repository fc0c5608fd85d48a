package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/intrafact/internal/core/domain"
)

// defaultRetrieveLimit applies when the caller gives no limit.
const defaultRetrieveLimit = 5

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query string `json:"query" jsonschema:"the question to answer from the indexed documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string         `json:"answer"`
	Route    string         `json:"route"`
	Degraded bool           `json:"degraded"`
	Sources  []ResultOutput `json:"sources,omitempty"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the text to find similar chunks for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of chunks to return (default 5)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results []ResultOutput `json:"results"`
	Count   int            `json:"count"`
}

// ResultOutput represents a single retrieved chunk.
type ResultOutput struct {
	ID       string  `json:"id"`
	FileName string  `json:"file_name,omitempty"`
	Distance float64 `json:"distance"`
	Content  string  `json:"content"`
}

// StatusInput is the input schema for the status tool.
type StatusInput struct {
	Recent int `json:"recent,omitempty" jsonschema:"number of recently ingested files to list (default 5)"`
}

// StatusOutput is the output schema for the status tool.
type StatusOutput struct {
	Documents      int      `json:"documents"`
	Chunks         int      `json:"chunks"`
	LastIngested   string   `json:"last_ingested,omitempty"`
	Recent         []string `json:"recent,omitempty"`
	EmbeddingModel string   `json:"embedding_model,omitempty"`
	LLMModel       string   `json:"llm_model,omitempty"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Paths []string `json:"paths" jsonschema:"files or directories to ingest"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	Processed  int      `json:"processed"`
	Duplicates int      `json:"duplicates"`
	Empty      int      `json:"empty"`
	Failed     int      `json:"failed"`
	Chunks     int      `json:"chunks"`
	Errors     []string `json:"errors,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question, grounded in the indexed documents when relevant",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the indexed chunks most similar to a query",
	}, s.handleRetrieve)

	if s.ports.Status != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "status",
			Description: "Report how many documents and chunks are indexed",
		}, s.handleStatus)
	}

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest",
			Description: "Ingest local files or directories into the index",
		}, s.handleIngest)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, AskOutput{}, errors.New("query is required")
	}

	answer := s.ports.Answer.Answer(ctx, input.Query)
	return nil, AskOutput{
		Answer:   answer.Text,
		Route:    answer.Route.String(),
		Degraded: answer.Degraded,
		Sources:  toResultOutputs(answer.Sources),
	}, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultRetrieveLimit
	}

	results, err := s.ports.Retrieval.Retrieve(ctx, input.Query, limit)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	return nil, RetrieveOutput{
		Results: toResultOutputs(results),
		Count:   len(results),
	}, nil
}

// handleStatus handles the status tool invocation.
func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	recent := input.Recent
	if recent <= 0 {
		recent = 5
	}

	status, err := s.ports.Status.Status(ctx, recent)
	if err != nil {
		return nil, StatusOutput{}, fmt.Errorf("reading status: %w", err)
	}

	output := StatusOutput{
		Documents:      status.Documents,
		Chunks:         status.Chunks,
		EmbeddingModel: status.EmbeddingModel,
		LLMModel:       status.LLMModel,
	}
	if !status.LastIngested.IsZero() {
		output.LastIngested = status.LastIngested.UTC().Format("2006-01-02T15:04:05Z")
	}
	for _, rec := range status.Recent {
		output.Recent = append(output.Recent, rec.FileName)
	}
	return nil, output, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	report, err := s.ports.Ingest.Ingest(ctx, input.Paths)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	output := IngestOutput{
		Processed:  report.Count(domain.OutcomeProcessed),
		Duplicates: report.Count(domain.OutcomeDuplicate),
		Empty:      report.Count(domain.OutcomeEmpty),
		Failed:     report.Count(domain.OutcomeFailed) + report.Count(domain.OutcomeUnreadable),
		Chunks:     report.Chunks(),
	}
	for _, f := range report.Files {
		if f.Err != nil {
			output.Errors = append(output.Errors, fmt.Sprintf("%s: %v", f.Path, f.Err))
		}
	}
	return nil, output, nil
}

func toResultOutputs(results []domain.QueryResult) []ResultOutput {
	if len(results) == 0 {
		return nil
	}
	out := make([]ResultOutput, len(results))
	for i, r := range results {
		out[i] = ResultOutput{
			ID:       r.ID,
			FileName: r.FileName(),
			Distance: r.Score,
			Content:  r.Content,
		}
	}
	return out
}
