package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/history"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/repotest"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

func jsonConfig(t *testing.T, source string) *contract.Config {
	t.Helper()
	dir := t.TempDir()
	return &contract.Config{
		Source:           source,
		Author:           "alice",
		Branch:           schema.DefaultBranch,
		Engine:           schema.GoGitEngine,
		Output:           schema.JSONOut,
		OutputFile:       filepath.Join(dir, "result.json"),
		ResultLimit:      contract.DefaultResultLimit,
		HistoryBackend:   schema.SQLiteBackend,
		HistoryDBConnect: filepath.Join(dir, "history.db"),
		MetricsFile:      filepath.Join(dir, "codemod.prom"),
	}
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestRunOnce_Success(t *testing.T) {
	fixture := repotest.AuthorFixture(t)
	c := jsonConfig(t, fixture.Dir)

	require.NoError(t, runOnce(context.Background(), c))

	doc := readJSON(t, c.OutputFile)
	assert.Equal(t, float64(3), doc["total_commits"])
	assert.Equal(t, float64(20), doc["total_lines_modified"])

	store, err := history.NewStore(c.HistoryBackend, c.HistoryDBConnect)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	runs, err := store.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "alice", runs[0].AuthorPattern)
	assert.Equal(t, 20, runs[0].TotalLinesModified)

	metrics, err := os.ReadFile(c.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `codemod_analyses_total{kind="",status="success"} 1`)
	assert.Contains(t, string(metrics), "codemod_commits_scanned_total 4")
	assert.Contains(t, string(metrics), "codemod_commits_matched_total 3")
}

func TestRunOnce_FailureIsRendered(t *testing.T) {
	c := jsonConfig(t, filepath.Join(t.TempDir(), "missing"))

	err := runOnce(context.Background(), c)
	require.ErrorIs(t, err, ErrAnalysisFailed)

	doc := readJSON(t, c.OutputFile)
	body, ok := doc["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "InvalidRepository", body["kind"])

	metrics, err := os.ReadFile(c.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `codemod_analyses_total{kind="InvalidRepository",status="error"} 1`)

	store, err := history.NewStore(c.HistoryBackend, c.HistoryDBConnect)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	runs, err := store.ListRuns(0)
	require.NoError(t, err)
	assert.Empty(t, runs, "failed runs are not recorded")
}

func TestApplyTokenSecret(t *testing.T) {
	prev := resolveToken
	t.Cleanup(func() { resolveToken = prev })

	t.Run("resolved", func(t *testing.T) {
		resolveToken = func(_ context.Context, name string) (string, error) {
			assert.Equal(t, "ci/github", name)
			return "s3cr3t", nil
		}
		c := &contract.Config{TokenSecret: "ci/github"}
		require.NoError(t, applyTokenSecret(context.Background(), c))
		assert.Equal(t, "s3cr3t", c.Credentials.Token)
		assert.Empty(t, c.TokenSecret)
	})

	t.Run("failure", func(t *testing.T) {
		resolveToken = func(context.Context, string) (string, error) {
			return "", errors.New("access denied")
		}
		err := applyTokenSecret(context.Background(), &contract.Config{TokenSecret: "ci/github"})
		assert.ErrorContains(t, err, "failed to resolve --token-secret")
	})

	t.Run("no secret", func(t *testing.T) {
		resolveToken = func(context.Context, string) (string, error) {
			t.Fatal("must not be called")
			return "", nil
		}
		assert.NoError(t, applyTokenSecret(context.Background(), &contract.Config{}))
	})
}
