package schema

import (
	"strings"
	"time"
)

// HistoryRecord is a row of the codemod_analysis_runs table.
type HistoryRecord struct {
	RunID              string    `json:"run_id"`
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	RunDurationMs      int64     `json:"run_duration_ms"`
	Repository         string    `json:"repository"`
	Branch             string    `json:"branch"`
	AuthorPattern      string    `json:"author_pattern"`
	StartDate          *string   `json:"start_date,omitempty"`
	EndDate            *string   `json:"end_date,omitempty"`
	FileFilters        *string   `json:"file_filters,omitempty"`
	TotalCommits       int       `json:"total_commits"`
	LinesAdded         int       `json:"lines_added"`
	LinesDeleted       int       `json:"lines_deleted"`
	TotalLinesModified int       `json:"total_lines_modified"`
	FilesTouched       int       `json:"files_touched"`
}

// HistoryFileRecord is a row of the codemod_run_files table.
type HistoryFileRecord struct {
	RunID      string `json:"run_id"`
	FilePath   string `json:"file_path"`
	Insertions int    `json:"insertions"`
	Deletions  int    `json:"deletions"`
}

// NewHistoryRecord derives a history row from a finished analysis.
func NewHistoryRecord(runID string, req AnalysisRequest, res *AnalysisResult, start, end time.Time) HistoryRecord {
	rec := HistoryRecord{
		RunID:              runID,
		StartTime:          start,
		EndTime:            end,
		RunDurationMs:      end.Sub(start).Milliseconds(),
		Repository:         res.Repository,
		Branch:             res.Branch,
		AuthorPattern:      req.AuthorPattern,
		TotalCommits:       res.TotalCommits,
		LinesAdded:         res.LinesAdded,
		LinesDeleted:       res.LinesDeleted,
		TotalLinesModified: res.TotalLinesModified,
		FilesTouched:       res.FileStats.Len(),
	}
	if req.StartDate != nil {
		s := req.StartDate.Format(DateLayout)
		rec.StartDate = &s
	}
	if req.EndDate != nil {
		s := req.EndDate.Format(DateLayout)
		rec.EndDate = &s
	}
	if len(req.Files) > 0 {
		s := strings.Join(req.Files, ",")
		rec.FileFilters = &s
	}
	return rec
}

// NewHistoryFileRecords flattens the result's FileStats into history rows.
func NewHistoryFileRecords(runID string, res *AnalysisResult) []HistoryFileRecord {
	entries := res.FileStats.Entries()
	out := make([]HistoryFileRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryFileRecord{RunID: runID, FilePath: e.Path, Insertions: e.Insertions, Deletions: e.Deletions})
	}
	return out
}
