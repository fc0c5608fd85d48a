package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/intrafact/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/intrafact/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/intrafact/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/intrafact/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/intrafact/internal/core/ports/driving"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	// chatView holds the transcript and question input.
	chatView *chat.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// status is the index summary shown in the header.
	status *driving.Status

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has received its first window size.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		chatView:    chat.NewView(s, km, ports.Answer),
		currentView: messages.ViewChat,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("intrafact"),
		a.chatView.Init(),
		a.loadStatus(),
	)
}

// loadStatus fetches the header summary when a status service is wired.
func (a *App) loadStatus() tea.Cmd {
	if a.ports.Status == nil {
		return nil
	}
	svc := a.ports.Status
	ctx := a.ctx
	return func() tea.Msg {
		st, err := svc.Status(ctx, 0)
		return messages.StatusLoaded{Status: st, Err: err}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		k := msg.String()
		if keymap.Matches(k, a.keymap.Quit) {
			return a, tea.Quit
		}

		if a.currentView == messages.ViewHelp {
			if keymap.Matches(k, a.keymap.Back) || keymap.Matches(k, a.keymap.Help) {
				a.currentView = messages.ViewChat
			}
			return a, nil
		}

		if keymap.Matches(k, a.keymap.Help) {
			a.currentView = messages.ViewHelp
			return a, nil
		}

		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.StatusLoaded:
		a.status = msg.Status
		a.err = msg.Err
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewChat {
			return a, a.chatView.Input().Focus()
		}
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Spinner ticks and cursor blinks belong to the chat view.
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	if a.currentView == messages.ViewHelp {
		return a.viewHelp()
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.header(), a.chatView.View())
}

// header renders the title line with the index summary.
func (a *App) header() string {
	title := a.styles.Title.Render("intrafact")
	if a.status == nil {
		return title
	}
	summary := fmt.Sprintf("  %d documents, %d chunks | embed: %s | llm: %s",
		a.status.Documents, a.status.Chunks, a.status.EmbeddingModel, a.status.LLMModel)
	return title + a.styles.Muted.Render(summary)
}

// viewHelp renders the help view from the keymap.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Muted.Render("Answers tagged [search] are grounded in your documents; [direct] answers are not."))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Muted.Render("[esc] back to chat"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Status returns the loaded index summary, nil until loaded.
func (a *App) Status() *driving.Status {
	return a.status
}

// Err returns the last error.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has initialised.
func (a *App) Ready() bool {
	return a.ready
}

// ChatView returns the chat view.
func (a *App) ChatView() *chat.View {
	return a.chatView
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	// One line for the header.
	a.chatView.SetDimensions(width, height-1)
}
