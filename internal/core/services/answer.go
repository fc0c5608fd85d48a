package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driven"
	"github.com/custodia-labs/intrafact/internal/core/ports/driving"
	"github.com/custodia-labs/intrafact/internal/logger"
)

// Ensure Answerer implements the interfaces.
var (
	_ driving.AnswerService   = (*Answerer)(nil)
	_ driven.PromptStoreAware = (*Answerer)(nil)
)

// ContextSeparator joins retrieved chunks in the grounded prompt.
const ContextSeparator = "\n\n---\n\n"

// errorPrefix labels answer text that reports a failure.
const errorPrefix = "[error] could not generate an answer: "

// QueryOptions tunes routing, retrieval and generation.
type QueryOptions struct {
	TopK              int
	RouterTemperature float64
	RouterMaxTokens   int
	AnswerTemperature float64
	AnswerMaxTokens   int
	// Timeout bounds each model call.
	Timeout time.Duration
}

// QueryOptionsFrom derives options from application settings.
func QueryOptionsFrom(s *domain.AppSettings) QueryOptions {
	return QueryOptions{
		TopK:              s.Query.TopK,
		RouterTemperature: s.Query.RouterTemperature,
		RouterMaxTokens:   s.Query.RouterMaxTokens,
		AnswerTemperature: s.Query.AnswerTemperature,
		AnswerMaxTokens:   s.Query.AnswerMaxTokens,
		Timeout:           s.AdapterTimeout,
	}
}

// DefaultQueryOptions returns the options of the default settings.
func DefaultQueryOptions() QueryOptions {
	defaults := domain.DefaultAppSettings()
	return QueryOptionsFrom(&defaults)
}

// Answerer routes a query and generates an answer, grounded in retrieved
// chunks or direct. It always returns text.
//
//	START -> ROUTING -> RETRIEVING -> GROUNDED_PROMPT -> GENERATING -> DONE
//	                 \-> DIRECT_PROMPT ---------------/
type Answerer struct {
	llm       driven.LLMService
	retriever driving.RetrievalService
	prompts   driven.PromptStore
	opts      QueryOptions
}

// NewAnswerer creates an answerer.
func NewAnswerer(llm driven.LLMService, retriever driving.RetrievalService, opts QueryOptions) *Answerer {
	if opts.TopK <= 0 {
		opts.TopK = DefaultQueryOptions().TopK
	}
	return &Answerer{
		llm:       llm,
		retriever: retriever,
		opts:      opts,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (a *Answerer) SetPromptStore(store driven.PromptStore) {
	a.prompts = store
}

// Answer routes query, builds the prompt and generates the answer.
func (a *Answerer) Answer(ctx context.Context, query string) domain.Answer {
	logger.Section("Answer")
	query = strings.TrimSpace(query)
	if query == "" {
		return degraded(domain.RouteDirect, nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput))
	}

	route := a.Route(ctx, query)
	logger.Info("Route: %s", route)

	var (
		prompt  string
		sources []domain.QueryResult
	)
	switch route {
	case domain.RouteDirect:
		prompt = fmt.Sprintf(a.template(driven.PromptDirectAnswer), query)
	default:
		sources = a.retrieve(ctx, query)
		prompt = fmt.Sprintf(a.template(driven.PromptGroundedAnswer), buildContext(sources), query)
	}

	text, err := a.generate(ctx, prompt)
	if err != nil {
		logger.Warn("generation failed: %v", err)
		return degraded(route, sources, err)
	}
	return domain.Answer{Text: text, Route: route, Sources: sources}
}

// Route asks the model whether query needs the documents. Anything other
// than a clear DIRECT, including errors, routes to retrieval.
func (a *Answerer) Route(ctx context.Context, query string) domain.Route {
	if a.llm == nil {
		logger.Warn("router: %v, defaulting to retrieval", domain.ErrLLMUnavailable)
		return domain.RouteRetrieve
	}

	ctx, cancel := adapterContext(ctx, a.opts.Timeout)
	defer cancel()

	reply, err := a.llm.Chat(ctx, []driven.ChatMessage{{
		Role:    driven.RoleUser,
		Content: fmt.Sprintf(a.template(driven.PromptRoute), query),
	}}, driven.ChatOptions{
		Temperature: a.opts.RouterTemperature,
		MaxTokens:   a.opts.RouterMaxTokens,
	})
	if err != nil {
		logger.Warn("router: %v, defaulting to retrieval", fmt.Errorf("%w: %w", domain.ErrRouter, err))
		return domain.RouteRetrieve
	}

	return parseRoute(reply)
}

// parseRoute maps a router reply to a route. SEARCH wins over DIRECT.
func parseRoute(reply string) domain.Route {
	decision := strings.ToUpper(reply)
	switch {
	case strings.Contains(decision, "SEARCH"):
		return domain.RouteRetrieve
	case strings.Contains(decision, "DIRECT"):
		return domain.RouteDirect
	default:
		logger.Debug("router: ambiguous reply %q, defaulting to retrieval", reply)
		return domain.RouteRetrieve
	}
}

func (a *Answerer) retrieve(ctx context.Context, query string) []domain.QueryResult {
	if a.retriever == nil {
		logger.Warn("retrieval unavailable, answering without context")
		return nil
	}
	results, err := a.retriever.Retrieve(ctx, query, a.opts.TopK)
	if err != nil {
		logger.Warn("retrieval failed, answering without context: %v", err)
		return nil
	}
	return results
}

func (a *Answerer) generate(ctx context.Context, prompt string) (string, error) {
	if a.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	ctx, cancel := adapterContext(ctx, a.opts.Timeout)
	defer cancel()

	text, err := a.llm.Chat(ctx, []driven.ChatMessage{{
		Role:    driven.RoleUser,
		Content: prompt,
	}}, driven.ChatOptions{
		Temperature: a.opts.AnswerTemperature,
		MaxTokens:   a.opts.AnswerMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty reply", domain.ErrGeneration)
	}
	return text, nil
}

// template loads a prompt from the store, falling back to the built-in one.
func (a *Answerer) template(name string) string {
	if a.prompts != nil {
		if p, err := a.prompts.Load(name); err == nil && p != "" {
			return p
		}
	}
	p, _ := driven.BuiltinPrompt(name)
	return p
}

// buildContext joins the retrieved chunk texts, or returns the
// no-documents placeholder.
func buildContext(results []domain.QueryResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if text := strings.TrimSpace(r.Content); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return domain.NoRelevantDocuments
	}
	return strings.Join(parts, ContextSeparator)
}

func degraded(route domain.Route, sources []domain.QueryResult, err error) domain.Answer {
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "the model did not respond in time"
	}
	return domain.Answer{
		Text:     errorPrefix + msg,
		Route:    route,
		Sources:  sources,
		Degraded: true,
	}
}
