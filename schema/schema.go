// Package schema has the request, record and result models shared by all parts of codemod.
package schema

import "time"

// DefaultBranch is the branch requested when none is given.
const DefaultBranch = "main"

// Credentials holds optional authentication for remote sources.
// They are only ever used to build the clone URL and must never be logged.
type Credentials struct {
	Token    string
	Username string
	Password string
}

// Empty reports whether no credential was supplied.
func (c Credentials) Empty() bool {
	return c.Token == "" && c.Username == "" && c.Password == ""
}

// String keeps credentials out of formatted output.
func (c Credentials) String() string {
	switch {
	case c.Token != "":
		return "token(***)"
	case c.Username != "":
		return c.Username + ":***"
	default:
		return "none"
	}
}

// AnalysisRequest describes one analysis to run.
type AnalysisRequest struct {
	Source        string     // Local path or remote URL
	AuthorPattern string     // Case-insensitive regular expression searched in author names
	Branch        string     // Requested branch, defaults to DefaultBranch
	StartDate     *time.Time // Inclusive lower bound (day granularity), nil means unbounded
	EndDate       *time.Time // Inclusive upper bound (day granularity), nil means unbounded
	Files         []string   // Ordered exact paths or wildcard patterns containing '*'
	Credentials   Credentials
}

// BranchOrDefault returns the requested branch or DefaultBranch.
func (r AnalysisRequest) BranchOrDefault() string {
	if r.Branch == "" {
		return DefaultBranch
	}
	return r.Branch
}

// ChangeStats is an insertion/deletion pair.
type ChangeStats struct {
	Insertions int `json:"insertions" yaml:"insertions"`
	Deletions  int `json:"deletions" yaml:"deletions"`
}

// Total returns insertions plus deletions.
func (s ChangeStats) Total() int {
	return s.Insertions + s.Deletions
}

// FileChange is the per-file change of a single commit.
type FileChange struct {
	Path       string
	Insertions int
	Deletions  int
}

// CommitRecord is a single commit as yielded by a GitClient.
type CommitRecord struct {
	ID     string
	Author string
	When   time.Time
	Files  []FileChange
}

// Totals returns the summed insertions and deletions over all files of the commit.
func (c CommitRecord) Totals() ChangeStats {
	var s ChangeStats
	for _, f := range c.Files {
		s.Insertions += f.Insertions
		s.Deletions += f.Deletions
	}
	return s
}

// Branch is a branch name as listed by a GitClient together with the ref it resolves to.
type Branch struct {
	Name string
	Ref  string
}
