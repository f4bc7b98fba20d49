package schema

// DateLayout is the layout used for every date rendered in a result.
const DateLayout = "2006-01-02"

// LanguageStat is the change volume attributed to one detected language.
type LanguageStat struct {
	Language string `json:"language" yaml:"language"`
	Files    int    `json:"files" yaml:"files"`
	ChangeStats `yaml:",inline"`
}

// AnalysisResult is the outcome of one analysis.
// TotalLinesModified is always LinesAdded + LinesDeleted.
type AnalysisResult struct {
	Author             string         `json:"author" yaml:"author"`
	Repository         string         `json:"repository" yaml:"repository"`
	Branch             string         `json:"branch" yaml:"branch"`
	RequestedBranch    string         `json:"requested_branch" yaml:"requested_branch"`
	BranchFallback     bool           `json:"branch_fallback" yaml:"branch_fallback"`
	TotalCommits       int            `json:"total_commits" yaml:"total_commits"`
	LinesAdded         int            `json:"lines_added" yaml:"lines_added"`
	LinesDeleted       int            `json:"lines_deleted" yaml:"lines_deleted"`
	TotalLinesModified int            `json:"total_lines_modified" yaml:"total_lines_modified"`
	FileStats          *FileStats     `json:"file_stats" yaml:"file_stats"`
	FirstCommitDate    *string        `json:"first_commit_date,omitempty" yaml:"first_commit_date,omitempty"`
	LastCommitDate     *string        `json:"last_commit_date,omitempty" yaml:"last_commit_date,omitempty"`
	Languages          []LanguageStat `json:"languages,omitempty" yaml:"languages,omitempty"`
}

// HasDates reports whether both commit dates are present.
func (r *AnalysisResult) HasDates() bool {
	return r.FirstCommitDate != nil && r.LastCommitDate != nil
}
