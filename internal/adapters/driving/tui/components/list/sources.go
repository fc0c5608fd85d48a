// Package list provides list components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/intrafact/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/intrafact/internal/core/domain"
)

const snippetLength = 160

// SourceList renders the chunks an answer was grounded in.
type SourceList struct {
	styles  *styles.Styles
	sources []domain.QueryResult
	width   int
}

// NewSourceList creates a new source list component.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &SourceList{
		styles: s,
		width:  80,
	}
}

// Init initialises the list.
func (l *SourceList) Init() tea.Cmd {
	return nil
}

// Update handles list messages.
func (l *SourceList) Update(msg tea.Msg) (*SourceList, tea.Cmd) {
	return l, nil
}

// View renders one entry per source with a single-line snippet.
func (l *SourceList) View() string {
	if len(l.sources) == 0 {
		return l.styles.Muted.Render("No sources.")
	}

	var b strings.Builder
	for i, r := range l.sources {
		name := r.FileName()
		if name == "" {
			name = r.ID
		}
		b.WriteString(l.styles.Subtitle.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		b.WriteString(l.styles.Muted.Render(fmt.Sprintf("  distance=%.3f", r.Score)))
		b.WriteString("\n    ")
		b.WriteString(l.styles.Normal.Render(r.Snippet(l.snippetWidth())))
		if i < len(l.sources)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (l *SourceList) snippetWidth() int {
	w := l.width - 6
	if w <= 0 || w > snippetLength {
		return snippetLength
	}
	return w
}

// SetSources replaces the listed sources.
func (l *SourceList) SetSources(sources []domain.QueryResult) {
	l.sources = sources
}

// Sources returns the listed sources.
func (l *SourceList) Sources() []domain.QueryResult {
	return l.sources
}

// Len returns the number of listed sources.
func (l *SourceList) Len() int {
	return len(l.sources)
}

// SetWidth sets the available width.
func (l *SourceList) SetWidth(width int) {
	l.width = width
}
