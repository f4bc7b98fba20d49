package schema_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/metaconscious/CodeModificationAnalyzer/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFileStatsAdd(t *testing.T) {
	fs := schema.NewFileStats()
	fs.Add("a.py", 10, 2)
	fs.Add("b.py", 5, 0)
	fs.Add("a.py", 0, 3)

	assert.Equal(t, 2, fs.Len())
	assert.Equal(t, []string{"a.py", "b.py"}, fs.Paths())

	a, ok := fs.Get("a.py")
	require.True(t, ok)
	assert.Equal(t, schema.ChangeStats{Insertions: 10, Deletions: 5}, a)

	_, ok = fs.Get("missing.py")
	assert.False(t, ok)

	assert.Equal(t, schema.ChangeStats{Insertions: 15, Deletions: 5}, fs.Sum())
}

func TestFileStatsZeroValue(t *testing.T) {
	var fs schema.FileStats
	fs.Add("x", 1, 1)
	assert.Equal(t, 1, fs.Len())

	var nilStats *schema.FileStats
	assert.Equal(t, 0, nilStats.Len())
	assert.Empty(t, nilStats.Entries())
	assert.Empty(t, nilStats.Top(10))
}

func TestFileStatsTop(t *testing.T) {
	fs := schema.NewFileStats()
	fs.Add("small", 1, 0)
	fs.Add("tie-first", 5, 5)
	fs.Add("big", 50, 0)
	fs.Add("tie-second", 10, 0)

	top := fs.Top(3)
	require.Len(t, top, 3)
	assert.Equal(t, "big", top[0].Path)
	assert.Equal(t, "tie-first", top[1].Path)
	assert.Equal(t, "tie-second", top[2].Path)

	assert.Len(t, fs.Top(0), 4)
	assert.Len(t, fs.Top(100), 4)
}

func TestFileStatsJSON(t *testing.T) {
	fs := schema.NewFileStats()
	fs.Add("z.go", 3, 1)
	fs.Add("a.go", 2, 0)

	data, err := json.Marshal(fs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"z.go":{"insertions":3,"deletions":1},"a.go":{"insertions":2,"deletions":0}}`, string(data))
	assert.Less(t, strings.Index(string(data), "z.go"), strings.Index(string(data), "a.go"), "encounter order is kept")

	var back schema.FileStats
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"z.go", "a.go"}, back.Paths())

	empty, err := json.Marshal(schema.NewFileStats())
	require.NoError(t, err)
	assert.Equal(t, "{}", string(empty))
}

func TestFileStatsYAML(t *testing.T) {
	fs := schema.NewFileStats()
	fs.Add("b.py", 5, 0)

	data, err := yaml.Marshal(fs)
	require.NoError(t, err)

	var decoded map[string]map[string]int
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, 5, decoded["b.py"]["insertions"])
	assert.Equal(t, 0, decoded["b.py"]["deletions"])
}
