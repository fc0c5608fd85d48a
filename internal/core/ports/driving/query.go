package driving

import (
	"context"

	"github.com/custodia-labs/intrafact/internal/core/domain"
)

// RetrievalService finds the chunks closest to a query.
type RetrievalService interface {
	// Retrieve returns up to limit results, most relevant first.
	Retrieve(ctx context.Context, query string, limit int) ([]domain.QueryResult, error)
}

// AnswerService routes a query and produces an answer.
type AnswerService interface {
	// Answer never fails: errors become a labelled message in the Answer text.
	Answer(ctx context.Context, query string) domain.Answer
}
