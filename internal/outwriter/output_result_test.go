package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/parquet"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func strPtr(s string) *string { return &s }

func sampleResult() *schema.AnalysisResult {
	fs := schema.NewFileStats()
	fs.Add("src/app.py", 1200, 34) // 1234
	fs.Add("b.py", 5, 0)           // 5, tie with README.md, seen first
	fs.Add("README.md", 3, 2)      // 5
	fs.Add("lib/util.go", 40, 10)  // 50
	return &schema.AnalysisResult{
		Author:             "alice",
		Repository:         "/srv/repo",
		Branch:             "main",
		RequestedBranch:    "main",
		TotalCommits:       3,
		LinesAdded:         1248,
		LinesDeleted:       46,
		TotalLinesModified: 1294,
		FileStats:          fs,
		FirstCommitDate:    strPtr("2024-02-01"),
		LastCommitDate:     strPtr("2024-04-20"),
		Languages: []schema.LanguageStat{
			{Language: "Python", Files: 2, ChangeStats: schema.ChangeStats{Insertions: 1205, Deletions: 34}},
		},
	}
}

func textConfig() *contract.Config {
	return &contract.Config{Output: schema.TextOut, ResultLimit: contract.DefaultResultLimit, Width: 200}
}

func TestWriteTextResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTextResult(&buf, sampleResult(), textConfig(), 0))
	out := buf.String()

	assert.Contains(t, out, "Author: alice\n")
	assert.Contains(t, out, "Repository: /srv/repo\n")
	assert.Contains(t, out, "Branch: main\n")
	assert.Contains(t, out, "Total commits: 3\n")
	assert.Contains(t, out, "First commit: 2024-02-01\n")
	assert.Contains(t, out, "Last commit: 2024-04-20\n")
	assert.Contains(t, out, "  Lines added:   1,248\n")
	assert.Contains(t, out, "  Lines deleted: 46\n")
	assert.Contains(t, out, "  Total changes: 1,294\n")
	assert.Contains(t, out, "Top 10 Most Modified Files:\n")
	assert.Contains(t, out, " 1. src/app.py (1,234 changes: +1,200 -34)\n")
	assert.Contains(t, out, " 2. lib/util.go (50 changes: +40 -10)\n")
	assert.Contains(t, out, " 3. b.py (5 changes: +5 -0)\n")
	assert.Contains(t, out, " 4. README.md (5 changes: +3 -2)\n")
	assert.Contains(t, out, "Python")
	assert.NotContains(t, out, "Analysis completed")
	assert.NotContains(t, out, "\x1b[", "colors are off")
}

func TestWriteTextResult_Limit(t *testing.T) {
	cfg := textConfig()
	cfg.ResultLimit = 2
	var buf bytes.Buffer
	require.NoError(t, writeTextResult(&buf, sampleResult(), cfg, 1500*time.Microsecond))
	out := buf.String()

	assert.Contains(t, out, "Top 2 Most Modified Files:")
	assert.Contains(t, out, " 2. lib/util.go")
	assert.NotContains(t, out, " 3. ")
	assert.Contains(t, out, "Analysis completed in 2ms.")
}

func TestWriteTextResult_FallbackAndEmpty(t *testing.T) {
	r := &schema.AnalysisResult{
		Author:          "nobody",
		Repository:      "repo",
		Branch:          "master",
		RequestedBranch: "feature-x",
		BranchFallback:  true,
		FileStats:       schema.NewFileStats(),
	}
	var buf bytes.Buffer
	require.NoError(t, writeTextResult(&buf, r, textConfig(), 0))
	out := buf.String()

	assert.Contains(t, out, "Branch: master (requested 'feature-x' not found)")
	assert.Contains(t, out, "Total commits: 0")
	assert.NotContains(t, out, "First commit")
	assert.NotContains(t, out, "Most Modified Files")
	assert.NotContains(t, out, "Languages")
}

func TestWriteTextResult_TruncatesPaths(t *testing.T) {
	fs := schema.NewFileStats()
	fs.Add(strings.Repeat("d/", 40)+"deep.go", 1, 1)
	cfg := textConfig()
	cfg.Width = 60
	var buf bytes.Buffer
	require.NoError(t, writeTextResult(&buf, &schema.AnalysisResult{FileStats: fs}, cfg, 0))
	assert.Contains(t, buf.String(), "...")
	assert.Contains(t, buf.String(), "deep.go (2 changes")
}

func TestWriteJSONResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, sampleResult()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "alice", got["author"])
	assert.Equal(t, float64(1294), got["total_lines_modified"])
	assert.Equal(t, "2024-02-01", got["first_commit_date"])
	files, ok := got["file_stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"insertions": float64(3), "deletions": float64(2)}, files["README.md"])
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \""), "two-space indent")
}

func TestWriteYAMLResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeYAML(&buf, sampleResult()))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "alice", got["author"])
	assert.Equal(t, 3, got["total_commits"])
	assert.Contains(t, buf.String(), "src/app.py:")
}

func TestWriteCSVResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSVResult(&buf, sampleResult()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"rank", "path", "insertions", "deletions", "total"}, records[0])
	assert.Equal(t, []string{"1", "src/app.py", "1200", "34", "1234"}, records[1])
	assert.Equal(t, []string{"4", "README.md", "3", "2", "5"}, records[4])
}

func TestWriteHTMLResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeHTMLResult(&buf, sampleResult(), 3))
	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "echarts")
	assert.Contains(t, out, "src/app.py")
	assert.NotContains(t, out, "README.md", "only the top entries are charted")
}

func TestPrintResult_ToFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "out.json")
		cfg := &contract.Config{Output: schema.JSONOut, OutputFile: path, ResultLimit: 10}
		require.NoError(t, NewOutWriter().WriteResult(sampleResult(), cfg, 0))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"author": "alice"`)
	})

	t.Run("parquet", func(t *testing.T) {
		path := filepath.Join(dir, "out.parquet")
		cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: path, ResultLimit: 10}
		require.NoError(t, PrintResult(sampleResult(), cfg, 0))
		rows, err := parquet.ReadFile[parquet.FileChange](path)
		require.NoError(t, err)
		assert.Len(t, rows, 4)
	})

	t.Run("text", func(t *testing.T) {
		path := filepath.Join(dir, "out.txt")
		cfg := textConfig()
		cfg.OutputFile = path
		require.NoError(t, PrintResult(sampleResult(), cfg, 0))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), " 1. src/app.py")
	})
}

func TestPrintError(t *testing.T) {
	analysisErr := schema.NewAnalysisError(schema.InvalidRepository, nil, "Invalid Git repository: %s", "/nope")

	t.Run("json document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "err.json")
		cfg := &contract.Config{Output: schema.JSONOut, OutputFile: path}
		require.NoError(t, NewOutWriter().WriteError(analysisErr, cfg))

		var got map[string]map[string]string
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, "InvalidRepository", got["error"]["kind"])
		assert.Equal(t, "Invalid Git repository: /nope", got["error"]["message"])
	})

	t.Run("yaml document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "err.yaml")
		cfg := &contract.Config{Output: schema.YAMLOut, OutputFile: path}
		require.NoError(t, PrintError(errors.New("boom"), cfg))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "kind: Error")
		assert.Contains(t, string(data), "message: boom")
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeTextError(&buf, analysisErr, false))
		assert.Equal(t, "\nError: Invalid Git repository: /nope\n", buf.String())
	})

	t.Run("kind without message", func(t *testing.T) {
		doc := newErrorDoc(schema.ErrNoBranchesAvailable)
		assert.Equal(t, "NoBranchesAvailable", doc.Error.Message)
	})
}

func TestGetMaxPathWidth(t *testing.T) {
	assert.Equal(t, 15, GetMaxPathWidth(&contract.Config{Width: 40}))
	assert.Equal(t, 60, GetMaxPathWidth(&contract.Config{Width: 100}))
	assert.Equal(t, 100, GetMaxPathWidth(&contract.Config{Width: 400}))
}
