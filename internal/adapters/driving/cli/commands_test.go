package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPServeCmd_Flags(t *testing.T) {
	port := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "0", port.DefValue)
	assert.Equal(t, "p", port.Shorthand)
	assert.NotNil(t, mcpServeCmd.Flags().Lookup("allow-ingest"))
}

func TestMCPServeCmd_RequiresAnswerService(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	answerService = nil

	_, err := execute(t, nil, "mcp", "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "answer service is required")
}

func TestChatCmd_RequiresAnswerService(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	answerService = nil

	_, err := execute(t, nil, "chat")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "answer service not configured")
}

func TestWatchCmd_Flags(t *testing.T) {
	assert.NotNil(t, watchCmd.Flags().Lookup("recursive"))
	assert.NotNil(t, watchCmd.Flags().Lookup("debounce"))
	assert.NotNil(t, watchCmd.Flags().Lookup("initial"))
}

func TestWatchCmd_MissingDirectory(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, nil, "watch", "/definitely/not/here")

	require.Error(t, err)
}
