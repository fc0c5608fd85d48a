package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/intrafact/internal/core/domain"
)

func TestAskCmd_JoinsArgs(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, nil, "ask", "how", "do", "I", "connect?")

	require.NoError(t, err)
	assert.Equal(t, "how do I connect?", ts.answer.query)
	assert.Contains(t, out, "Enable the VPN first.")
	assert.NotContains(t, out, "Sources:")
}

func TestAskCmd_ReadsPipedStdin(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, strings.NewReader("  what is the VPN policy?\n"), "ask")

	require.NoError(t, err)
	assert.Equal(t, "what is the VPN policy?", ts.answer.query)
}

func TestAskCmd_EmptyQuestion(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, strings.NewReader("   "), "ask")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = execute(t, nil, "ask", " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAskCmd_Sources(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, nil, "ask", "--sources", "vpn?")

	require.NoError(t, err)
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "[1] it-guide.md (distance 0.120)")
	assert.Contains(t, out, "The VPN must be enabled before connecting.")
}

func TestAskCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, nil, "ask", "--json", "vpn?")
	require.NoError(t, err)

	var got answerJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Enable the VPN first.", got.Answer)
	assert.Equal(t, "search", got.Route)
	assert.False(t, got.Degraded)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "it-guide.md", got.Sources[0].FileName)
}

func TestAskCmd_DegradedAnswerStillPrinted(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.answer.answer = domain.Answer{
		Text:     "[error] could not generate an answer: timeout",
		Route:    domain.RouteDirect,
		Degraded: true,
	}

	out, err := execute(t, nil, "ask", "hello")

	require.NoError(t, err)
	assert.Contains(t, out, "[error] could not generate an answer: timeout")
}

func TestAskCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	answerService = nil

	_, err := execute(t, nil, "ask", "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "answer service not configured")
}
