package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for intrafact resources.
	uriScheme = "intrafact://"

	// recentLimit caps the records listed by the documents resource.
	recentLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Status == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "Recently ingested documents, newest first",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)
}

// documentInfo is one entry of the documents resource.
type documentInfo struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	FilePath    string `json:"file_path"`
	ContentHash string `json:"content_hash"`
	Chunks      int    `json:"chunks"`
	StoredAt    string `json:"stored_at"`
}

// handleDocumentsResource returns the newest processed records.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	status, err := s.ports.Status.Status(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("reading status: %w", err)
	}

	infos := make([]documentInfo, len(status.Recent))
	for i, rec := range status.Recent {
		infos[i] = documentInfo{
			ID:          rec.DocumentID,
			FileName:    rec.FileName,
			FilePath:    rec.FilePath,
			ContentHash: rec.ContentHash,
			Chunks:      rec.ChunkCount,
			StoredAt:    rec.StoredAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
