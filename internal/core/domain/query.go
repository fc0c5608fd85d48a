package domain

import "strings"

// NoRelevantDocuments is the context used when retrieval yields nothing.
const NoRelevantDocuments = "No relevant documents found."

// QueryResult is a single retrieval hit.
type QueryResult struct {
	// ID is the chunk ID.
	ID string

	// Content is the chunk text.
	Content string

	// Metadata is the metadata stored with the chunk.
	Metadata map[string]any

	// Score is the cosine distance to the query, in [0, 2].
	// Lower is closer. A backend that reports no distance yields 0.
	Score float64
}

// FileName returns the originating file name, if recorded.
func (r QueryResult) FileName() string {
	n, _ := r.Metadata[MetaFileName].(string)
	return n
}

// Snippet returns the content with whitespace collapsed, truncated to at most n runes.
// n <= 0 means no limit.
func (r QueryResult) Snippet(n int) string {
	flat := strings.Join(strings.Fields(r.Content), " ")
	runes := []rune(flat)
	if n <= 0 || len(runes) <= n {
		return flat
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// Route is the router's decision for a query.
type Route string

// Available routes.
const (
	// RouteRetrieve grounds the answer in retrieved documents.
	RouteRetrieve Route = "search"

	// RouteDirect answers from the model alone.
	RouteDirect Route = "direct"
)

// String returns the string representation.
func (r Route) String() string {
	return string(r)
}

// Answer is the outcome of one query.
type Answer struct {
	// Text is always non-empty: either the model output or a labelled error.
	Text string

	// Route is the path the query took.
	Route Route

	// Sources are the results the answer was grounded in.
	Sources []QueryResult

	// Degraded is true when Text is an error message rather than an answer.
	Degraded bool
}
