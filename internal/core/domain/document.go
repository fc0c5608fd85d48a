package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"maps"
)

// SourceTypeLocalFile marks documents read from the local filesystem.
const SourceTypeLocalFile = "local_file"

// Metadata keys shared by documents, chunks and index entries.
const (
	MetaFileName    = "file_name"
	MetaFilePath    = "file_path"
	MetaFileType    = "file_type"
	MetaSourceType  = "source_type"
	MetaFileSize    = "file_size"
	MetaContentHash = "content_hash"
	MetaParentID    = "parent_id"
	MetaChunkIndex  = "chunk_index"
)

// RawMetadata describes the file a RawDocument was extracted from.
type RawMetadata struct {
	// FileName is the base name of the file.
	FileName string

	// FilePath is the path the file was read from.
	FilePath string

	// FileType is the declared type, usually the lower-cased extension without dot.
	FileType string

	// SourceType is always SourceTypeLocalFile for now.
	SourceType string

	// FileSize is the size of the file in bytes.
	FileSize int64

	// ContentHash is the SHA-256 hex digest of Text.
	ContentHash string
}

// RawDocument is the output of extraction, before admission.
// It is immutable once created.
type RawDocument struct {
	// Text is the extracted plain text.
	Text string

	// Metadata describes the origin of the text.
	Metadata RawMetadata
}

// Map returns the metadata as a generic map for documents and index entries.
func (m RawMetadata) Map() map[string]any {
	return map[string]any{
		MetaFileName:    m.FileName,
		MetaFilePath:    m.FilePath,
		MetaFileType:    m.FileType,
		MetaSourceType:  m.SourceType,
		MetaFileSize:    m.FileSize,
		MetaContentHash: m.ContentHash,
	}
}

// ContentHash returns the SHA-256 hex digest of text.
// Identical text always yields the identical hash.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Document is an admitted document awaiting chunking.
type Document struct {
	// ID is a fresh UUID assigned at admission.
	ID string

	// Content is the full extracted text.
	Content string

	// Metadata carries the RawMetadata fields plus anything added later.
	Metadata map[string]any
}

// ContentHash returns the content hash recorded in the metadata.
func (d *Document) ContentHash() string {
	if d == nil {
		return ""
	}
	h, _ := d.Metadata[MetaContentHash].(string)
	return h
}

// FileName returns the file name recorded in the metadata.
func (d *Document) FileName() string {
	if d == nil {
		return ""
	}
	n, _ := d.Metadata[MetaFileName].(string)
	return n
}

// Chunk is a contiguous window of a document's text.
type Chunk struct {
	// ID is a fresh UUID.
	ID string

	// ParentID is the ID of the Document this chunk came from.
	ParentID string

	// ChunkIndex is the emission order within the parent, starting at 0.
	ChunkIndex int

	// Content is the window text.
	Content string

	// Metadata is a copy of the parent metadata plus parent_id and chunk_index.
	Metadata map[string]any

	// Embedding is nil until the chunk has been embedded.
	Embedding []float32
}

// HasEmbedding reports whether the chunk has been embedded.
func (c *Chunk) HasEmbedding() bool {
	return c.Embedding != nil
}

// ChunkMetadata copies parent metadata and stamps the chunk's lineage on it.
// The parent map is never modified.
func ChunkMetadata(parent map[string]any, parentID string, index int) map[string]any {
	meta := make(map[string]any, len(parent)+2)
	maps.Copy(meta, parent)
	meta[MetaParentID] = parentID
	meta[MetaChunkIndex] = index
	return meta
}
