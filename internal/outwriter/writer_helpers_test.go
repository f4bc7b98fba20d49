package outwriter

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int{"added": 3, "deleted": 1}))
	assert.Equal(t, "{\n  \"added\": 3,\n  \"deleted\": 1\n}\n", buf.String())

	err := writeJSON(&buf, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	err := writeYAML(&buf, map[string]any{
		"author": "alice",
		"files":  []string{"a.go", "b.go"},
	})
	require.NoError(t, err)
	assert.Equal(t, "author: alice\nfiles:\n  - a.go\n  - b.go\n", buf.String())
}

func TestWriteCSVWithHeader(t *testing.T) {
	rows := [][]string{
		{"main.go", "12", "4"},
		{"docs/a, b.md", "1", "0"},
	}

	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"file", "added", "deleted"}, func(w *csv.Writer) error {
		return w.WriteAll(rows)
	})
	require.NoError(t, err)
	assert.Equal(t, "file,added,deleted\nmain.go,12,4\n\"docs/a, b.md\",1,0\n", buf.String())

	buf.Reset()
	err = writeCSVWithHeader(&buf, []string{"file"}, func(*csv.Writer) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestWriteWithFile(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.json")
		err := writeWithFile(path, func(w io.Writer) error {
			return writeJSON(w, []string{"main.go"})
		}, "Wrote report")
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[\n  \"main.go\"\n]\n", string(content))
	})

	t.Run("writer error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.txt")
		err := writeWithFile(path, func(io.Writer) error { return assert.AnError }, "Wrote report")
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("missing directory", func(t *testing.T) {
		err := writeWithFile(filepath.Join(t.TempDir(), "missing", "report.txt"), func(io.Writer) error {
			return nil
		}, "Wrote report")
		assert.Error(t, err)
	})
}
