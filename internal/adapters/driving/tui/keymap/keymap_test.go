package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.True(t, Matches("enter", km.Submit))
	assert.True(t, Matches("tab", km.Sources))
	assert.True(t, Matches("ctrl+l", km.Clear))
	assert.True(t, Matches("pgup", km.ScrollUp))
	assert.True(t, Matches("pgdown", km.ScrollDown))
	assert.True(t, Matches("esc", km.Back))
}

func TestMatches_PrintableKeysAreFreeForTyping(t *testing.T) {
	km := DefaultKeyMap()

	for _, r := range []string{"q", "j", "k", "?", "n"} {
		for _, b := range []struct {
			name string
			ok   bool
		}{
			{"quit", Matches(r, km.Quit)},
			{"help", Matches(r, km.Help)},
			{"sources", Matches(r, km.Sources)},
			{"clear", Matches(r, km.Clear)},
		} {
			assert.False(t, b.ok, "%q bound to %s", r, b.name)
		}
	}
}

func TestHelp(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 4)
	full := km.FullHelp()
	assert.Len(t, full, 3)
	for _, group := range full {
		assert.NotEmpty(t, group)
	}
}
