package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/intrafact/internal/core/domain"
)

func TestRetrieveCmd_Use(t *testing.T) {
	assert.Equal(t, "retrieve [query]", retrieveCmd.Use)
}

func TestRetrieveCmd_RequiresQuery(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, nil, "retrieve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestRetrieveCmd_Table(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, nil, "retrieve", "-n", "2", "vpn")

	require.NoError(t, err)
	assert.Equal(t, "vpn", ts.retrieval.query)
	assert.Equal(t, 2, ts.retrieval.limit)
	assert.Contains(t, out, "[1] it-guide.md (distance 0.120)")
	assert.Contains(t, out, "[2] doc2_4 (distance 0.340)")
}

func TestRetrieveCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, nil, "retrieve", "--json", "vpn")
	require.NoError(t, err)

	var got []resultJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "doc1_0", got[0].ID)
	assert.InDelta(t, 0.12, got[0].Distance, 1e-9)
	assert.Empty(t, got[1].FileName)
}

func TestRetrieveCmd_NoResults(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.retrieval.results = nil

	out, err := execute(t, nil, "retrieve", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestRetrieveCmd_InvalidLimit(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, nil, "retrieve", "--limit", "0", "x")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRetrieveCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	ts.retrieval.err = errors.Join(domain.ErrRetrieval, errors.New("index closed"))

	_, err := execute(t, nil, "retrieve", "x")

	assert.ErrorIs(t, err, domain.ErrRetrieval)
}
