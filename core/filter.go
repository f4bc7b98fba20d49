package core

import (
	"iter"
	"regexp"
	"time"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// CommitFilter selects commits by author name and committer date.
type CommitFilter struct {
	pattern *regexp.Regexp
	start   *time.Time // inclusive, start of day
	end     *time.Time // exclusive, start of the day after the end date
}

// NewCommitFilter compiles the author pattern case-insensitively. The pattern is searched
// for anywhere in the author name. Either date may be nil for an open bound; both bounds
// cover whole days.
func NewCommitFilter(pattern string, start, end *time.Time) (*CommitFilter, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, schema.NewAnalysisError(schema.InvalidAuthorPattern, err, "Invalid author pattern %q: %v", pattern, err)
	}
	f := &CommitFilter{pattern: re}
	if start != nil {
		s := contract.StartOfDay(*start)
		f.start = &s
	}
	if end != nil {
		e := contract.StartOfNextDay(*end)
		f.end = &e
	}
	return f, nil
}

// Match reports whether the commit passes both the author and date checks.
func (f *CommitFilter) Match(c schema.CommitRecord) bool {
	if f.start != nil && c.When.Before(*f.start) {
		return false
	}
	if f.end != nil && !c.When.Before(*f.end) {
		return false
	}
	return f.pattern.MatchString(c.Author)
}

// Filter lazily keeps the matching commits of seq in their original order.
// Errors from seq are passed through and end the sequence.
func (f *CommitFilter) Filter(seq iter.Seq2[schema.CommitRecord, error]) iter.Seq2[schema.CommitRecord, error] {
	return func(yield func(schema.CommitRecord, error) bool) {
		for c, err := range seq {
			if err != nil {
				yield(c, err)
				return
			}
			if f.Match(c) && !yield(c, nil) {
				return
			}
		}
	}
}
