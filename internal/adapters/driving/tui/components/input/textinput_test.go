package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQueryInput(t *testing.T) {
	q := NewQueryInput(nil)
	require.NotNil(t, q)

	assert.True(t, q.Focused())
	assert.Empty(t, q.Value())
	assert.Equal(t, 50, q.Width())
	assert.NotNil(t, q.Init())
}

func TestQueryInput_Typing(t *testing.T) {
	q := NewQueryInput(nil)

	q, _ = q.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})
	assert.Equal(t, "hi", q.Value())

	q.Reset()
	assert.Empty(t, q.Value())
}

func TestQueryInput_FocusAndBlur(t *testing.T) {
	q := NewQueryInput(nil)

	q.Blur()
	assert.False(t, q.Focused())
	q.Focus()
	assert.True(t, q.Focused())
}

func TestQueryInput_SetWidthHasMinimum(t *testing.T) {
	q := NewQueryInput(nil)

	q.SetWidth(10)
	assert.Equal(t, 10, q.Width())
	assert.Equal(t, 20, q.textinput.Width)

	q.SetWidth(100)
	assert.Equal(t, 88, q.textinput.Width)
}

func TestQueryInput_View(t *testing.T) {
	q := NewQueryInput(nil)
	q.SetValue("what is x")

	assert.Contains(t, q.View(), "Ask:")
}
