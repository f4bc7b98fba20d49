package schema_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/metaconscious/CodeModificationAnalyzer/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisErrorIs(t *testing.T) {
	cause := errors.New("connection refused")
	err := schema.NewAnalysisError(schema.CloneFailure, cause, "failed to clone %s", "https://example.com/r.git")
	wrapped := fmt.Errorf("analyze: %w", err)

	assert.ErrorIs(t, wrapped, schema.ErrCloneFailure)
	assert.ErrorIs(t, wrapped, cause)
	assert.NotErrorIs(t, wrapped, schema.ErrInvalidRepository)
	assert.Equal(t, "CloneFailure: failed to clone https://example.com/r.git", err.Error())

	ae, ok := schema.AsAnalysisError(wrapped)
	require.True(t, ok)
	assert.Equal(t, schema.CloneFailure, ae.Kind)

	_, ok = schema.AsAnalysisError(cause)
	assert.False(t, ok)
}

func TestCredentialsString(t *testing.T) {
	assert.Equal(t, "none", schema.Credentials{}.String())
	assert.Equal(t, "token(***)", schema.Credentials{Token: "ghp_secret"}.String())
	assert.Equal(t, "bob:***", schema.Credentials{Username: "bob", Password: "hunter2"}.String())
	assert.NotContains(t, fmt.Sprintf("%v", schema.Credentials{Username: "bob", Password: "hunter2"}), "hunter2")
	assert.True(t, schema.Credentials{}.Empty())
}

func TestCommitRecordTotals(t *testing.T) {
	c := schema.CommitRecord{Files: []schema.FileChange{
		{Path: "a.py", Insertions: 10, Deletions: 2},
		{Path: "b.py", Insertions: 5},
	}}
	assert.Equal(t, schema.ChangeStats{Insertions: 15, Deletions: 2}, c.Totals())
	assert.Equal(t, 17, c.Totals().Total())
}

func TestNewHistoryRecord(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	req := schema.AnalysisRequest{AuthorPattern: "alice", StartDate: &start, Files: []string{"a.py", "*.go"}}
	fs := schema.NewFileStats()
	fs.Add("a.py", 3, 1)
	res := &schema.AnalysisResult{Repository: "/repo", Branch: "main", TotalCommits: 2, LinesAdded: 3, LinesDeleted: 1, TotalLinesModified: 4, FileStats: fs}

	rec := schema.NewHistoryRecord("run-1", req, res, start, start.Add(1500*time.Millisecond))
	assert.Equal(t, int64(1500), rec.RunDurationMs)
	require.NotNil(t, rec.StartDate)
	assert.Equal(t, "2024-01-01", *rec.StartDate)
	assert.Nil(t, rec.EndDate)
	require.NotNil(t, rec.FileFilters)
	assert.Equal(t, "a.py,*.go", *rec.FileFilters)
	assert.Equal(t, 1, rec.FilesTouched)

	files := schema.NewHistoryFileRecords("run-1", res)
	require.Len(t, files, 1)
	assert.Equal(t, schema.HistoryFileRecord{RunID: "run-1", FilePath: "a.py", Insertions: 3, Deletions: 1}, files[0])
}

func TestBranchOrDefault(t *testing.T) {
	assert.Equal(t, "main", schema.AnalysisRequest{}.BranchOrDefault())
	assert.Equal(t, "dev", schema.AnalysisRequest{Branch: "dev"}.BranchOrDefault())
}
