// Package parquet provides data structures and functions for exporting change
// statistics and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/metaconscious/CodeModificationAnalyzer/schema"
	"github.com/parquet-go/parquet-go"
)

// FileChange is one file of an analysis result.
type FileChange struct {
	// Author is the pattern the analysis was run with
	Author string `parquet:"author,snappy,dict"`

	// Repository identifies the analyzed repository
	Repository string `parquet:"repository,snappy,dict"`

	// Branch is the branch that was actually traversed
	Branch string `parquet:"branch,snappy,dict"`

	// FilePath is the path relative to the repository root
	FilePath string `parquet:"file_path,snappy"`

	Insertions int64 `parquet:"insertions,snappy"`
	Deletions  int64 `parquet:"deletions,snappy"`
	Total      int64 `parquet:"total,snappy"`
}

// AnalysisRun maps to the codemod_analysis_runs table.
type AnalysisRun struct {
	RunID              string    `parquet:"run_id,snappy"`
	StartTime          time.Time `parquet:"start_time,snappy"`
	EndTime            time.Time `parquet:"end_time,snappy"`
	RunDurationMs      int64     `parquet:"run_duration_ms,snappy"`
	Repository         string    `parquet:"repository,snappy,dict"`
	Branch             string    `parquet:"branch,snappy,dict"`
	AuthorPattern      string    `parquet:"author_pattern,snappy,dict"`
	StartDate          *string   `parquet:"start_date,optional,snappy"`
	EndDate            *string   `parquet:"end_date,optional,snappy"`
	FileFilters        *string   `parquet:"file_filters,optional,snappy"`
	TotalCommits       int32     `parquet:"total_commits,snappy"`
	LinesAdded         int64     `parquet:"lines_added,snappy"`
	LinesDeleted       int64     `parquet:"lines_deleted,snappy"`
	TotalLinesModified int64     `parquet:"total_lines_modified,snappy"`
	FilesTouched       int32     `parquet:"files_touched,snappy"`
}

// RunFile maps to the codemod_run_files table.
type RunFile struct {
	RunID      string `parquet:"run_id,snappy,dict"`
	FilePath   string `parquet:"file_path,snappy"`
	Insertions int64  `parquet:"insertions,snappy"`
	Deletions  int64  `parquet:"deletions,snappy"`
}

// ConvertResult flattens a result into one row per file, in first-encounter order.
func ConvertResult(res *schema.AnalysisResult) []FileChange {
	entries := res.FileStats.Entries()
	rows := make([]FileChange, len(entries))
	for i, e := range entries {
		rows[i] = FileChange{
			Author:     res.Author,
			Repository: res.Repository,
			Branch:     res.Branch,
			FilePath:   e.Path,
			Insertions: int64(e.Insertions),
			Deletions:  int64(e.Deletions),
			Total:      int64(e.Total()),
		}
	}
	return rows
}

// ConvertHistoryRecords converts stored runs for Parquet export.
func ConvertHistoryRecords(records []schema.HistoryRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, r := range records {
		result[i] = AnalysisRun{
			RunID:              r.RunID,
			StartTime:          r.StartTime,
			EndTime:            r.EndTime,
			RunDurationMs:      r.RunDurationMs,
			Repository:         r.Repository,
			Branch:             r.Branch,
			AuthorPattern:      r.AuthorPattern,
			StartDate:          r.StartDate,
			EndDate:            r.EndDate,
			FileFilters:        r.FileFilters,
			TotalCommits:       int32(r.TotalCommits),
			LinesAdded:         int64(r.LinesAdded),
			LinesDeleted:       int64(r.LinesDeleted),
			TotalLinesModified: int64(r.TotalLinesModified),
			FilesTouched:       int32(r.FilesTouched),
		}
	}
	return result
}

// ConvertHistoryFileRecords converts stored file rows for Parquet export.
func ConvertHistoryFileRecords(records []schema.HistoryFileRecord) []RunFile {
	result := make([]RunFile, len(records))
	for i, r := range records {
		result[i] = RunFile{
			RunID:      r.RunID,
			FilePath:   r.FilePath,
			Insertions: int64(r.Insertions),
			Deletions:  int64(r.Deletions),
		}
	}
	return result
}

// Write encodes rows into w. The schema is derived from the struct tags of T.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile writes rows to a new Parquet file at outputPath.
func WriteFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// ReadFile loads every row of a Parquet file written by WriteFile.
func ReadFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}
	return rows, nil
}
