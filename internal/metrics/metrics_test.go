package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

func TestNewRecorder(t *testing.T) {
	registry := prometheus.NewRegistry()
	r := NewRecorder(registry)
	assert.Same(t, registry, r.Registry())

	assert.NotNil(t, NewRecorder(nil).Registry(), "a nil registry gets a private one")
}

func TestRecorder_ObserveResult(t *testing.T) {
	r := NewRecorder(nil)
	for range 4 {
		r.CommitScanned()
	}
	r.ObserveResult(&schema.AnalysisResult{TotalCommits: 3, LinesAdded: 15, LinesDeleted: 5, TotalLinesModified: 20}, 1500*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(r.analysesTotal.WithLabelValues("success", "")))
	assert.Equal(t, float64(4), testutil.ToFloat64(r.commitsScanned))
	assert.Equal(t, float64(3), testutil.ToFloat64(r.commitsMatched))
	assert.Equal(t, float64(15), testutil.ToFloat64(r.linesAdded))
	assert.Equal(t, float64(5), testutil.ToFloat64(r.linesDeleted))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorder_ObserveError(t *testing.T) {
	r := NewRecorder(nil)
	r.ObserveError(schema.NewAnalysisError(schema.CloneFailure, nil, "Failed to clone"), time.Second)
	r.ObserveError(errors.New("boom"), time.Second)

	assert.Equal(t, float64(1), testutil.ToFloat64(r.analysesTotal.WithLabelValues("error", "CloneFailure")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.analysesTotal.WithLabelValues("error", "Error")))
	assert.Zero(t, testutil.ToFloat64(r.commitsMatched))
}

func TestRecorder_WriteToTextfile(t *testing.T) {
	r := NewRecorder(nil)
	r.ObserveResult(&schema.AnalysisResult{TotalCommits: 2, LinesAdded: 7}, 200*time.Millisecond)

	path := filepath.Join(t.TempDir(), "codemod.prom")
	require.NoError(t, r.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "# TYPE codemod_analyses_total counter")
	assert.Contains(t, out, "codemod_commits_matched_total 2")
	assert.Contains(t, out, "codemod_lines_added_total 7")
	assert.Contains(t, out, "codemod_analysis_duration_seconds_count 1")
	assert.NotContains(t, out, "go_goroutines")
}

func TestRecorder_WriteToTextfile_BadDir(t *testing.T) {
	err := NewRecorder(nil).WriteToTextfile(filepath.Join(t.TempDir(), "missing", "codemod.prom"))
	assert.ErrorContains(t, err, "failed to write metrics file")
}
