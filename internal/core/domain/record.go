package domain

import "time"

// ProcessedRecord proves that every chunk of a document is in the vector index.
// A record is written once and never updated.
type ProcessedRecord struct {
	// ContentHash is the unique key.
	ContentHash string

	// DocumentID is the ID the document was admitted under.
	DocumentID string

	// FileName is the name of the first file seen with this content.
	FileName string

	// FilePath is where that file was read from.
	FilePath string

	// ChunkCount is the number of chunks indexed.
	ChunkCount int

	// StoredAt is when the record was committed.
	StoredAt time.Time
}

// IngestOutcome is the per-file result of an ingestion run.
type IngestOutcome string

// Possible ingestion outcomes.
const (
	// OutcomeProcessed means the file was chunked, indexed and recorded.
	OutcomeProcessed IngestOutcome = "processed"

	// OutcomeDuplicate means the content hash was already recorded.
	OutcomeDuplicate IngestOutcome = "duplicate"

	// OutcomeEmpty means the extracted text was blank.
	OutcomeEmpty IngestOutcome = "empty"

	// OutcomeUnreadable means extraction failed.
	OutcomeUnreadable IngestOutcome = "unreadable"

	// OutcomeFailed means embedding, indexing or recording failed.
	OutcomeFailed IngestOutcome = "failed"
)

// String returns the string representation.
func (o IngestOutcome) String() string {
	return string(o)
}

// FileResult is the outcome for a single ingested file.
type FileResult struct {
	// Path is the file path.
	Path string

	// Outcome is what happened to the file.
	Outcome IngestOutcome

	// DocumentID is set when the file was processed.
	DocumentID string

	// Chunks is the number of chunks indexed.
	Chunks int

	// Err holds the failure for unreadable and failed outcomes.
	Err error
}

// IngestReport summarises an ingestion run.
type IngestReport struct {
	// Files holds one entry per file, sorted by path, followed by paths
	// that could not be read at all.
	Files []FileResult
}

// Count returns how many files ended with the given outcome.
func (r *IngestReport) Count(o IngestOutcome) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, f := range r.Files {
		if f.Outcome == o {
			n++
		}
	}
	return n
}

// Chunks returns the total number of chunks indexed during the run.
func (r *IngestReport) Chunks() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, f := range r.Files {
		n += f.Chunks
	}
	return n
}
