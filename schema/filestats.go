package schema

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FileStat is a single FileStats entry.
type FileStat struct {
	Path string `json:"path" yaml:"path"`
	ChangeStats `yaml:",inline"`
}

// FileStats maps a file path to its accumulated change counts.
// It also remembers the order in which paths were first seen so ranking ties are stable.
type FileStats struct {
	order []string
	stats map[string]*ChangeStats
}

// NewFileStats returns an empty FileStats.
func NewFileStats() *FileStats {
	return &FileStats{stats: make(map[string]*ChangeStats)}
}

// Add inserts the path with zeroed counters if it is new, then adds the given counts.
func (fs *FileStats) Add(path string, insertions, deletions int) {
	if fs.stats == nil {
		fs.stats = make(map[string]*ChangeStats)
	}
	s, ok := fs.stats[path]
	if !ok {
		s = &ChangeStats{}
		fs.stats[path] = s
		fs.order = append(fs.order, path)
	}
	s.Insertions += insertions
	s.Deletions += deletions
}

// Get returns the counters for path.
func (fs *FileStats) Get(path string) (ChangeStats, bool) {
	if fs == nil || fs.stats == nil {
		return ChangeStats{}, false
	}
	s, ok := fs.stats[path]
	if !ok {
		return ChangeStats{}, false
	}
	return *s, true
}

// Len returns the number of distinct paths.
func (fs *FileStats) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.order)
}

// Paths returns the paths in first-encounter order.
func (fs *FileStats) Paths() []string {
	if fs == nil {
		return nil
	}
	return append([]string(nil), fs.order...)
}

// Entries returns all entries in first-encounter order.
func (fs *FileStats) Entries() []FileStat {
	if fs == nil {
		return nil
	}
	out := make([]FileStat, 0, len(fs.order))
	for _, p := range fs.order {
		out = append(out, FileStat{Path: p, ChangeStats: *fs.stats[p]})
	}
	return out
}

// Sum returns the totals over every entry.
func (fs *FileStats) Sum() ChangeStats {
	var sum ChangeStats
	for _, e := range fs.Entries() {
		sum.Insertions += e.Insertions
		sum.Deletions += e.Deletions
	}
	return sum
}

// Top returns at most n entries ordered by total change descending.
// Entries with equal totals keep their first-encounter order. n <= 0 returns all entries.
func (fs *FileStats) Top(n int) []FileStat {
	entries := fs.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total() > entries[j].Total()
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// MarshalJSON renders the stats as an object keyed by path, in first-encounter order.
func (fs *FileStats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range fs.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Path)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(e.ChangeStats)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keyed by path. Key order of the document is kept.
func (fs *FileStats) UnmarshalJSON(data []byte) error {
	*fs = FileStats{stats: make(map[string]*ChangeStats)}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil { // opening brace
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		path, _ := tok.(string)
		var s ChangeStats
		if err := dec.Decode(&s); err != nil {
			return err
		}
		fs.Add(path, s.Insertions, s.Deletions)
	}
	_, err := dec.Token()
	return err
}

// MarshalYAML renders the stats as a mapping keyed by path, in first-encounter order.
func (fs *FileStats) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range fs.Entries() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.Path},
			&yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
				{Kind: yaml.ScalarNode, Value: "insertions"},
				{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(e.Insertions)},
				{Kind: yaml.ScalarNode, Value: "deletions"},
				{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(e.Deletions)},
			}},
		)
	}
	return node, nil
}
