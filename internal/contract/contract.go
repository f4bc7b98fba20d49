// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"iter"
	"time"

	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// GitClient defines the read-only operations the analysis engine needs from a version-control engine.
// This allows the core analysis logic to be tested without a real repository.
type GitClient interface {
	// Name identifies the engine for logging.
	Name() string

	// Validate checks that repoPath is a readable repository and returns its root directory.
	Validate(ctx context.Context, repoPath string) (string, error)

	// Clone performs a full clone of url into the existing, empty directory dir.
	Clone(ctx context.Context, url string, dir string) error

	// RemoteURL returns the URL of the "origin" remote, or an empty string when there is none.
	RemoteURL(ctx context.Context, repoPath string) (string, error)

	// ListBranches returns local branches in sorted order, followed by origin
	// remote-tracking branches that have no local counterpart.
	ListBranches(ctx context.Context, repoPath string) ([]schema.Branch, error)

	// CountCommits returns the number of commits reachable from ref.
	CountCommits(ctx context.Context, repoPath string, ref string) (int, error)

	// Commits streams the history reachable from ref, newest first, with per-file change counts.
	// Iteration stops at the first error, which is yielded as the final element.
	Commits(ctx context.Context, repoPath string, ref string) iter.Seq2[schema.CommitRecord, error]
}

// ProgressReporter observes traversal progress. It never affects results.
type ProgressReporter interface {
	Start(total int)
	Increment()
	Done()
}

// HistoryStore defines the interface for recording analysis runs.
type HistoryStore interface {
	// RecordRun stores a finished analysis run and its per-file stats.
	RecordRun(record schema.HistoryRecord, files []schema.HistoryFileRecord) error

	// ListRuns returns at most limit runs, newest first. limit <= 0 returns all.
	ListRuns(limit int) ([]schema.HistoryRecord, error)

	// ListRunFiles returns the per-file stats of every stored run.
	ListRunFiles() ([]schema.HistoryFileRecord, error)

	// Clear deletes runs that started before the cutoff. A zero cutoff deletes everything.
	Clear(before time.Time) (int64, error)

	// GetStatus returns status information about the history store.
	GetStatus() (schema.HistoryStatus, error)

	// Close closes the underlying connection.
	Close() error
}
