// Package core has the analysis engine: it locates a repository, resolves the branch,
// filters the commit stream and assembles per-author change statistics.
package core

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/metaconscious/CodeModificationAnalyzer/core/agg"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/logger"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// Options tune a single analysis run.
type Options struct {
	// Progress observes the traversal. When set, commits are counted up front,
	// which costs a second pass over the history.
	Progress contract.ProgressReporter

	// OnCommit is called for every commit read from the branch, matched or not.
	OnCommit func()
}

// Analyze runs one analysis. The author pattern is validated before the repository is
// touched, and any temporary clone is removed before Analyze returns.
func Analyze(ctx context.Context, req schema.AnalysisRequest, client contract.GitClient, opts Options) (*schema.AnalysisResult, error) {
	start := time.Now()

	filter, err := NewCommitFilter(req.AuthorPattern, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	loc, err := Locate(ctx, client, req.Source, req.Credentials)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := loc.Close(); err != nil {
			contract.LogWarn("Failed to remove temporary clone", err)
		}
	}()

	branches, err := client.ListBranches(ctx, loc.Path)
	if err != nil {
		return nil, schema.NewAnalysisError(schema.InvalidRepository, err, "Cannot list branches of %s", loc.Identifier)
	}
	resolution, err := ResolveBranch(branches, req.BranchOrDefault())
	if err != nil {
		return nil, err
	}
	if resolution.Fallback {
		contract.LogWarn("Branch fallback", errors.New(resolution.Reason))
	}

	commits := client.Commits(ctx, loc.Path, resolution.Branch.Ref)
	if opts.Progress != nil {
		total, err := client.CountCommits(ctx, loc.Path, resolution.Branch.Ref)
		if err != nil {
			logger.For("core").Debug("commit count unavailable", "error", err)
		}
		opts.Progress.Start(total)
		defer opts.Progress.Done()
		commits = tap(commits, opts.Progress.Increment)
	}
	if opts.OnCommit != nil {
		commits = tap(commits, opts.OnCommit)
	}

	aggregator := agg.New(req.Files)
	var builder resultBuilder
	for c, err := range filter.Filter(commits) {
		if err != nil {
			return nil, fmt.Errorf("failed to read history of %s: %w", loc.Identifier, err)
		}
		builder.observe(c)
		aggregator.Add(c)
	}

	res := builder.build(req.AuthorPattern, loc.Identifier, resolution, aggregator.Totals(), aggregator.FileStats())
	logger.For("core").Debug("analysis finished",
		"repository", res.Repository,
		"branch", res.Branch,
		"engine", client.Name(),
		"commits", res.TotalCommits,
		"duration", time.Since(start),
	)
	return res, nil
}

// tap calls fn for every element of seq before passing it on.
func tap(seq iter.Seq2[schema.CommitRecord, error], fn func()) iter.Seq2[schema.CommitRecord, error] {
	return func(yield func(schema.CommitRecord, error) bool) {
		for c, err := range seq {
			if err == nil {
				fn()
			}
			if !yield(c, err) {
				return
			}
		}
	}
}
