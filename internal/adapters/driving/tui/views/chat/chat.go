// Package chat provides the question and answer view.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/intrafact/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/intrafact/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/intrafact/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/intrafact/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/intrafact/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/intrafact/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driving"
)

// Turn is one question and, once it arrives, its answer.
type Turn struct {
	Query   string
	Answer  domain.Answer
	Pending bool
}

// View is the chat view: a scrolling transcript above a question input.
type View struct {
	ctx      context.Context
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	answer   driving.AnswerService
	input    *input.QueryInput
	sources  *list.SourceList
	bar      *status.Bar
	spinner  spinner.Model
	viewport viewport.Model

	turns       []Turn
	showSources bool
	thinking    bool

	width  int
	height int
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, answer driving.AnswerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	return &View{
		ctx:      context.Background(),
		styles:   s,
		keymap:   km,
		answer:   answer,
		input:    input.NewQueryInput(s),
		sources:  list.NewSourceList(s),
		bar:      status.NewBar(s, km),
		spinner:  sp,
		viewport: viewport.New(80, 10),
		width:    80,
		height:   24,
	}
}

// WithContext sets the context used for answer calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.handleAnswerCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.thinking = false
		v.bar.SetState(status.StateError)
		if msg.Err != nil {
			v.bar.SetMessage(msg.Err.Error())
		}
		return v, nil

	case spinner.TickMsg:
		if !v.thinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.refresh()
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()

	switch {
	case keymap.Matches(k, v.keymap.Submit):
		return v, v.submit()

	case keymap.Matches(k, v.keymap.ScrollUp), keymap.Matches(k, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case keymap.Matches(k, v.keymap.Sources):
		v.showSources = !v.showSources
		v.layout()
		return v, nil

	case keymap.Matches(k, v.keymap.Clear):
		if v.thinking {
			return v, nil
		}
		v.turns = nil
		v.sources.SetSources(nil)
		v.bar.Clear()
		v.refresh()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit starts answering the typed question. One question is in flight at a time.
func (v *View) submit() tea.Cmd {
	query := strings.TrimSpace(v.input.Value())
	if query == "" || v.thinking {
		return nil
	}
	if v.answer == nil {
		return func() tea.Msg { return messages.ErrorOccurred{Err: ErrNoAnswerService} }
	}

	v.thinking = true
	v.turns = append(v.turns, Turn{Query: query, Pending: true})
	v.input.Reset()
	v.bar.SetState(status.StateThinking)
	v.refresh()

	return tea.Batch(v.spinner.Tick, v.ask(query))
}

func (v *View) ask(query string) tea.Cmd {
	answer := v.answer
	ctx := v.ctx
	return func() tea.Msg {
		return messages.AnswerCompleted{
			Query:  query,
			Answer: answer.Answer(ctx, query),
		}
	}
}

func (v *View) handleAnswerCompleted(msg messages.AnswerCompleted) {
	v.thinking = false
	for i := len(v.turns) - 1; i >= 0; i-- {
		if v.turns[i].Pending && v.turns[i].Query == msg.Query {
			v.turns[i].Answer = msg.Answer
			v.turns[i].Pending = false
			break
		}
	}
	v.sources.SetSources(msg.Answer.Sources)
	v.bar.SetAnswer(msg.Answer)
	v.refresh()
}

// refresh re-renders the transcript and keeps the newest turn in view.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Ask anything. Questions about your documents are answered from them.")
	}

	wrap := lipgloss.NewStyle().Width(v.viewport.Width)
	parts := make([]string, 0, len(v.turns)*2)
	for _, t := range v.turns {
		parts = append(parts, v.styles.Question.Render("> "+t.Query))
		if t.Pending {
			parts = append(parts, v.spinner.View()+v.styles.Muted.Render(" thinking"))
			continue
		}
		parts = append(parts, wrap.Render(v.renderAnswer(t.Answer)))
	}
	return strings.Join(parts, "\n\n")
}

func (v *View) renderAnswer(a domain.Answer) string {
	switch {
	case a.Degraded:
		return v.styles.Degraded.Render(a.Text)
	case a.Route == domain.RouteRetrieve:
		label := v.styles.Grounded.Render(fmt.Sprintf("[search, %d sources]", len(a.Sources)))
		return label + "\n" + v.styles.Normal.Render(a.Text)
	default:
		return v.styles.Direct.Render("[direct]") + "\n" + v.styles.Normal.Render(a.Text)
	}
}

// View renders the chat view.
func (v *View) View() string {
	sections := []string{v.viewport.View()}
	if v.showSources {
		sections = append(sections, v.styles.Border.Width(v.contentWidth()).Render(v.sources.View()))
	}
	sections = append(sections, v.input.View(), v.bar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.sources.SetWidth(width)
	v.bar.SetWidth(width)
	v.layout()
}

// layout sizes the transcript to the space left by the input, status bar and sources.
func (v *View) layout() {
	reserved := lipgloss.Height(v.input.View()) + 1
	if v.showSources {
		reserved += lipgloss.Height(v.styles.Border.Render(v.sources.View()))
	}
	v.viewport.Width = v.contentWidth()
	v.viewport.Height = max(3, v.height-reserved)
	v.refresh()
}

func (v *View) contentWidth() int {
	return max(20, v.width-2)
}

// Turns returns the transcript.
func (v *View) Turns() []Turn {
	return v.turns
}

// Thinking reports whether a question is in flight.
func (v *View) Thinking() bool {
	return v.thinking
}

// ShowingSources reports whether the sources panel is visible.
func (v *View) ShowingSources() bool {
	return v.showSources
}

// Sources returns the sources of the last answer.
func (v *View) Sources() []domain.QueryResult {
	return v.sources.Sources()
}

// Bar returns the status bar.
func (v *View) Bar() *status.Bar {
	return v.bar
}

// Input returns the question input.
func (v *View) Input() *input.QueryInput {
	return v.input
}
