package driven

import "sort"

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used by the query pipeline.
const (
	// PromptRoute asks the model to classify a query as SEARCH or DIRECT.
	// The template expects one %s placeholder for the query.
	PromptRoute = "route"

	// PromptGroundedAnswer answers strictly from retrieved context.
	// The template expects %s (context) then %s (query).
	PromptGroundedAnswer = "grounded_answer"

	// PromptDirectAnswer answers without retrieved context.
	// The template expects one %s placeholder for the query.
	PromptDirectAnswer = "direct_answer"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service uses its built-in prompts.
	SetPromptStore(store PromptStore)
}

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var builtinPrompts = map[string]string{
	PromptRoute: `You are a query router for a document question-answering system.
Decide whether answering the question below requires searching the user's documents.
Reply with exactly one word: SEARCH if the documents are needed, DIRECT if it is general knowledge or conversation.

Question: %s
Decision:`,

	PromptGroundedAnswer: `Answer the question using only the context below.
If the answer is not contained in the context, reply exactly "I don't know."

Context:
%s

Question: %s
Answer:`,

	PromptDirectAnswer: `You are a helpful assistant. Answer the following question politely and directly.

Question: %s
Answer:`,
}

// BuiltinPrompt returns the built-in template for name.
func BuiltinPrompt(name string) (string, bool) {
	p, ok := builtinPrompts[name]
	return p, ok
}

// BuiltinPromptNames returns the names of all built-in templates, sorted.
func BuiltinPromptNames() []string {
	names := make([]string, 0, len(builtinPrompts))
	for name := range builtinPrompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
