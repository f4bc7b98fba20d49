// Package agg has aggregation logic for per-author change statistics.
package agg

import (
	"strings"

	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// fileFilter is a single user-supplied path filter.
type fileFilter struct {
	raw      string
	wildcard bool
	needle   string // raw with every '*' removed, used for wildcard containment
}

// Aggregator accumulates line counts over a stream of matched commits.
// The zero value is not usable; call New.
type Aggregator struct {
	filters []fileFilter
	added   int
	deleted int
	files   *schema.FileStats
}

// New returns an Aggregator restricted to the given file filters. With no filters
// every changed file counts. A filter containing '*' is a wildcard and matches any path
// that contains the filter text with '*' removed; other filters must equal the path.
// Filters are applied independently, so a file matched by two filters counts twice.
func New(filters []string) *Aggregator {
	a := &Aggregator{files: schema.NewFileStats()}
	for _, f := range filters {
		a.filters = append(a.filters, fileFilter{
			raw:      f,
			wildcard: strings.Contains(f, "*"),
			needle:   strings.ReplaceAll(f, "*", ""),
		})
	}
	return a
}

// Add folds one commit into the running totals.
func (a *Aggregator) Add(commit schema.CommitRecord) {
	if len(a.filters) == 0 {
		for _, fc := range commit.Files {
			a.add(fc)
		}
		return
	}
	for _, f := range a.filters {
		for _, fc := range commit.Files {
			if f.matches(fc.Path) {
				a.add(fc)
			}
		}
	}
}

// Totals returns the global added and deleted line counts.
func (a *Aggregator) Totals() schema.ChangeStats {
	return schema.ChangeStats{Insertions: a.added, Deletions: a.deleted}
}

// FileStats returns the per-file statistics in first-encounter order.
func (a *Aggregator) FileStats() *schema.FileStats {
	return a.files
}

func (a *Aggregator) add(fc schema.FileChange) {
	a.added += fc.Insertions
	a.deleted += fc.Deletions
	a.files.Add(fc.Path, fc.Insertions, fc.Deletions)
}

func (f fileFilter) matches(path string) bool {
	if f.wildcard {
		return strings.Contains(path, f.needle)
	}
	return path == f.raw
}
