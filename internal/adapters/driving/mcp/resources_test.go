package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/intrafact/internal/core/domain"
	"github.com/custodia-labs/intrafact/internal/core/ports/driving"
)

func newReadRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	stored := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)
	status := &mockStatusService{status: &driving.Status{
		Recent: []domain.ProcessedRecord{{
			ContentHash: "abc",
			DocumentID:  "doc-1",
			FileName:    "notes.md",
			FilePath:    "/data/raw/notes.md",
			ChunkCount:  4,
			StoredAt:    stored,
		}},
	}}
	ports := validPorts()
	ports.Status = status
	server, err := NewServer(ports)
	require.NoError(t, err)

	res, err := server.handleDocumentsResource(context.Background(), newReadRequest("intrafact://documents"))
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, "application/json", res.Contents[0].MIMEType)
	assert.Equal(t, []int{recentLimit}, status.recent)

	var docs []documentInfo
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "doc-1", docs[0].ID)
	assert.Equal(t, 4, docs[0].Chunks)
	assert.Equal(t, "2026-05-02T08:00:00Z", docs[0].StoredAt)
}

func TestServer_handleDocumentsResource_Error(t *testing.T) {
	ports := validPorts()
	ports.Status = &mockStatusService{err: errors.New("db closed")}
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, err = server.handleDocumentsResource(context.Background(), newReadRequest("intrafact://documents"))
	assert.Error(t, err)
}

func TestServer_ListsDocumentsResource(t *testing.T) {
	ports := validPorts()
	ports.Status = &mockStatusService{status: &driving.Status{}}
	session := connect(t, ports)
	res, err := session.ListResources(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, res.Resources, 1)
	assert.Equal(t, "intrafact://documents", res.Resources[0].URI)
}
