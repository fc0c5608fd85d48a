package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/intrafact/internal/core/domain"
)

func TestRootCmd_HasCommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"ingest", "ask", "retrieve", "watch", "status", "chat", "mcp", "settings", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
}

func TestSetup_BootstrapsWithConfigPath(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	var gotPath string
	closed := false
	SetBootstrap(func(_ context.Context, path string) (*Services, error) {
		gotPath = path
		return &Services{
			Status:   ts.status,
			Settings: ts.settings,
			Close: func() error {
				closed = true
				return nil
			},
		}, nil
	})

	out, err := execute(t, nil, "--config", "/tmp/intrafact-test.toml", "status")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/intrafact-test.toml", gotPath)
	assert.Contains(t, out, "Documents: 3")
	assert.True(t, closed)
}

func TestSetup_BootstrapFailure(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	boom := errors.New("open store: locked")
	SetBootstrap(func(_ context.Context, _ string) (*Services, error) {
		return nil, boom
	})

	_, err := execute(t, nil, "status")

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestSetup_SettingsSurviveBootstrapFailure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	SetBootstrap(func(_ context.Context, _ string) (*Services, error) {
		return &Services{Settings: ts.settings}, domain.ErrVectorIndexUnavailable
	})

	_, err := execute(t, nil, "settings", "set", "vector_index.backend", "sqlite")

	require.NoError(t, err)
	assert.Equal(t, "sqlite", ts.settings.set["vector_index.backend"])
}

func TestTeardown_ReportsCloseError(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	closeServices = func() error { return errors.New("flush failed") }

	err := teardown(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flush failed")

	// Closing twice is a no-op.
	assert.NoError(t, teardown(rootCmd, nil))
}

func TestHasAnnotation_InheritedFromParent(t *testing.T) {
	assert.True(t, hasAnnotation(settingsSetCmd, annotationSettingsOnly))
	assert.True(t, hasAnnotation(versionCmd, annotationStandalone))
	assert.False(t, hasAnnotation(askCmd, annotationStandalone))
}
