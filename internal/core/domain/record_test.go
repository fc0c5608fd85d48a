package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIngestReport_Counts(t *testing.T) {
	report := &IngestReport{Files: []FileResult{
		{Path: "a", Outcome: OutcomeProcessed, Chunks: 3},
		{Path: "b", Outcome: OutcomeDuplicate},
		{Path: "c", Outcome: OutcomeProcessed, Chunks: 2},
		{Path: "d", Outcome: OutcomeFailed, Err: errors.New("boom")},
	}}

	assert.Equal(t, 2, report.Count(OutcomeProcessed))
	assert.Equal(t, 1, report.Count(OutcomeDuplicate))
	assert.Equal(t, 0, report.Count(OutcomeEmpty))
	assert.Equal(t, 1, report.Count(OutcomeFailed))
	assert.Equal(t, 5, report.Chunks())
}

func TestIngestReport_Nil(t *testing.T) {
	var report *IngestReport
	assert.Equal(t, 0, report.Count(OutcomeProcessed))
	assert.Equal(t, 0, report.Chunks())
}

func TestQueryResult_FileName(t *testing.T) {
	r := QueryResult{Metadata: map[string]any{MetaFileName: "guide.pdf"}}
	assert.Equal(t, "guide.pdf", r.FileName())
	assert.Empty(t, QueryResult{}.FileName())
}
