package chat

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/intrafact/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/intrafact/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/intrafact/internal/core/domain"
)

// MockAnswerService implements driving.AnswerService for testing.
type MockAnswerService struct {
	mu      sync.Mutex
	queries []string
	answer  domain.Answer
}

func (m *MockAnswerService) Answer(_ context.Context, query string) domain.Answer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	return m.answer
}

func groundedAnswer() domain.Answer {
	return domain.Answer{
		Text:  "Paris is the capital.",
		Route: domain.RouteRetrieve,
		Sources: []domain.QueryResult{
			{ID: "geo_0", Content: "Paris is the capital of France.", Metadata: map[string]any{domain.MetaFileName: "geo.md"}},
		},
	}
}

func typeQuery(v *View, q string) *View {
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(q)})
	return v
}

// collect runs a command and flattens batches into their messages.
func collect(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			if c != nil {
				out = append(out, c())
			}
		}
		return out
	}
	return []tea.Msg{msg}
}

func findAnswer(msgs []tea.Msg) (messages.AnswerCompleted, bool) {
	for _, m := range msgs {
		if a, ok := m.(messages.AnswerCompleted); ok {
			return a, true
		}
	}
	return messages.AnswerCompleted{}, false
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, &MockAnswerService{})
	require.NotNil(t, v)

	assert.Empty(t, v.Turns())
	assert.False(t, v.Thinking())
	assert.False(t, v.ShowingSources())
	assert.NotNil(t, v.Init())
	assert.Contains(t, v.View(), "Ask anything")
}

func TestView_SubmitAsksAndRecordsAnswer(t *testing.T) {
	svc := &MockAnswerService{answer: groundedAnswer()}
	v := typeQuery(NewView(nil, nil, svc), "capital of France?")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, v.Thinking())
	assert.Empty(t, v.Input().Value())
	assert.Equal(t, status.StateThinking, v.Bar().State())
	require.Len(t, v.Turns(), 1)
	assert.True(t, v.Turns()[0].Pending)

	done, ok := findAnswer(collect(t, cmd))
	require.True(t, ok)
	assert.Equal(t, "capital of France?", done.Query)
	assert.Equal(t, []string{"capital of France?"}, svc.queries)

	v, _ = v.Update(done)
	assert.False(t, v.Thinking())
	assert.False(t, v.Turns()[0].Pending)
	assert.Equal(t, "Paris is the capital.", v.Turns()[0].Answer.Text)
	assert.Len(t, v.Sources(), 1)
	assert.Equal(t, domain.RouteRetrieve, v.Bar().Route())
	assert.Contains(t, v.View(), "Paris is the capital.")
}

func TestView_SubmitIgnoresBlankQuery(t *testing.T) {
	svc := &MockAnswerService{}
	v := typeQuery(NewView(nil, nil, svc), "   ")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, v.Thinking())
	assert.Empty(t, v.Turns())
}

func TestView_SubmitIgnoredWhileThinking(t *testing.T) {
	svc := &MockAnswerService{answer: groundedAnswer()}
	v := typeQuery(NewView(nil, nil, svc), "first")
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	v = typeQuery(v, "second")
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Len(t, v.Turns(), 1)
}

func TestView_MissingAnswerService(t *testing.T) {
	v := typeQuery(NewView(nil, nil, nil), "hello")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(messages.ErrorOccurred)
	require.True(t, ok)
	assert.ErrorIs(t, msg.Err, ErrNoAnswerService)

	v, _ = v.Update(msg)
	assert.Equal(t, status.StateError, v.Bar().State())
}

func TestView_RendersDegradedAnswer(t *testing.T) {
	v := NewView(nil, nil, &MockAnswerService{})
	v.SetDimensions(100, 30)

	v, _ = v.Update(messages.AnswerCompleted{
		Query:  "q",
		Answer: domain.Answer{Text: "[LLM unavailable] timeout", Route: domain.RouteRetrieve, Degraded: true},
	})

	assert.Contains(t, v.View(), "[LLM unavailable] timeout")
	assert.Contains(t, v.View(), "degraded")
}

func TestView_ToggleSources(t *testing.T) {
	v := NewView(nil, nil, &MockAnswerService{})
	v.SetDimensions(100, 30)
	v, _ = v.Update(messages.AnswerCompleted{Query: "q", Answer: groundedAnswer()})

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, v.ShowingSources())
	assert.Contains(t, v.View(), "[1] geo.md")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, v.ShowingSources())
	assert.NotContains(t, v.View(), "[1] geo.md")
}

func TestView_Clear(t *testing.T) {
	v := NewView(nil, nil, &MockAnswerService{})
	v, _ = v.Update(messages.AnswerCompleted{Query: "q", Answer: groundedAnswer()})
	v.turns = append(v.turns, Turn{Query: "q", Answer: groundedAnswer()})

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.Empty(t, v.Turns())
	assert.Empty(t, v.Sources())
	assert.Empty(t, v.Bar().Route())
}

func TestView_SpinnerTickIgnoredWhenIdle(t *testing.T) {
	v := NewView(nil, nil, &MockAnswerService{})

	_, cmd := v.Update(v.spinner.Tick())

	assert.Nil(t, cmd)
}

func TestView_SetDimensions(t *testing.T) {
	v := NewView(nil, nil, &MockAnswerService{})

	v.SetDimensions(120, 40)

	assert.Equal(t, 118, v.viewport.Width)
	assert.Greater(t, v.viewport.Height, 3)
	assert.Equal(t, 120, v.Bar().Width())
}
