package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHash_Deterministic(t *testing.T) {
	a := ContentHash("hello world")
	b := ContentHash("hello world")

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", a)
}

func TestContentHash_DiffersOnContent(t *testing.T) {
	assert.NotEqual(t, ContentHash("hello world"), ContentHash("hello world "))
}

func TestRawMetadata_Map(t *testing.T) {
	meta := RawMetadata{
		FileName:    "notes.txt",
		FilePath:    "/data/raw/notes.txt",
		FileType:    "txt",
		SourceType:  SourceTypeLocalFile,
		FileSize:    42,
		ContentHash: "abc",
	}

	m := meta.Map()

	assert.Equal(t, "notes.txt", m[MetaFileName])
	assert.Equal(t, "/data/raw/notes.txt", m[MetaFilePath])
	assert.Equal(t, "txt", m[MetaFileType])
	assert.Equal(t, "local_file", m[MetaSourceType])
	assert.Equal(t, int64(42), m[MetaFileSize])
	assert.Equal(t, "abc", m[MetaContentHash])
}

func TestDocument_Accessors(t *testing.T) {
	doc := &Document{
		ID:       "doc-1",
		Metadata: map[string]any{MetaContentHash: "h1", MetaFileName: "a.md"},
	}

	assert.Equal(t, "h1", doc.ContentHash())
	assert.Equal(t, "a.md", doc.FileName())

	var nilDoc *Document
	assert.Empty(t, nilDoc.ContentHash())
	assert.Empty(t, nilDoc.FileName())
}

func TestChunkMetadata_CopiesParent(t *testing.T) {
	parent := map[string]any{MetaFileName: "a.txt"}

	meta := ChunkMetadata(parent, "doc-1", 3)

	assert.Equal(t, "a.txt", meta[MetaFileName])
	assert.Equal(t, "doc-1", meta[MetaParentID])
	assert.Equal(t, 3, meta[MetaChunkIndex])

	meta[MetaFileName] = "changed"
	assert.Equal(t, "a.txt", parent[MetaFileName])
	_, leaked := parent[MetaParentID]
	assert.False(t, leaked)
}

func TestChunk_HasEmbedding(t *testing.T) {
	c := Chunk{ID: "c1"}
	assert.False(t, c.HasEmbedding())

	c.Embedding = []float32{0.1}
	require.True(t, c.HasEmbedding())
}
