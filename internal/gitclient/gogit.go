package gitclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/logger"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/remote"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// GoGitClient implements GitClient in-process with go-git.
type GoGitClient struct{}

var _ GitClient = &GoGitClient{} // Compile-time check

// NewGoGitClient creates a new go-git backed client.
func NewGoGitClient() *GoGitClient {
	return &GoGitClient{}
}

// Name implements the GitClient interface.
func (c *GoGitClient) Name() string {
	return string(schema.GoGitEngine)
}

// Validate implements the GitClient interface.
func (c *GoGitClient) Validate(_ context.Context, repoPath string) (string, error) {
	repo, err := c.open(repoPath)
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if errors.Is(err, gogit.ErrIsBareRepository) {
		return filepath.Abs(repoPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

// Clone implements the GitClient interface.
func (c *GoGitClient) Clone(ctx context.Context, url string, dir string) error {
	logger.For("gitclient").Debug("cloning", "url", remote.Redact(url), "dir", dir)
	_, err := gogit.PlainCloneContext(ctx, dir, false, &gogit.CloneOptions{
		URL:        url,
		NoCheckout: true,
		Tags:       gogit.NoTags,
	})
	if err != nil {
		return fmt.Errorf("failed to clone repository: %w", err)
	}
	return nil
}

// RemoteURL implements the GitClient interface.
func (c *GoGitClient) RemoteURL(_ context.Context, repoPath string) (string, error) {
	repo, err := c.open(repoPath)
	if err != nil {
		return "", err
	}
	origin, err := repo.Remote("origin")
	if errors.Is(err, gogit.ErrRemoteNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read origin remote: %w", err)
	}
	if urls := origin.Config().URLs; len(urls) > 0 {
		return urls[0], nil
	}
	return "", nil
}

// ListBranches implements the GitClient interface.
func (c *GoGitClient) ListBranches(_ context.Context, repoPath string) ([]schema.Branch, error) {
	repo, err := c.open(repoPath)
	if err != nil {
		return nil, err
	}
	refs, err := repo.References()
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}
	defer refs.Close()

	var local, remoteRefs []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name()
		switch {
		case name.IsBranch():
			local = append(local, name.String())
		case name.IsRemote() && strings.HasPrefix(name.String(), "refs/remotes/origin/"):
			if ref.Type() != plumbing.SymbolicReference {
				remoteRefs = append(remoteRefs, name.String())
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk references: %w", err)
	}
	return contract.MergeBranchRefs(local, remoteRefs), nil
}

// CountCommits implements the GitClient interface.
func (c *GoGitClient) CountCommits(ctx context.Context, repoPath string, ref string) (int, error) {
	commits, err := c.log(repoPath, ref)
	if err != nil {
		return 0, err
	}
	defer commits.Close()

	count := 0
	err = commits.ForEach(func(*object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

// Commits implements the GitClient interface. Commits are visited newest first by
// committer time; each is diffed against its first parent, without rename detection.
func (c *GoGitClient) Commits(ctx context.Context, repoPath string, ref string) iter.Seq2[schema.CommitRecord, error] {
	return func(yield func(schema.CommitRecord, error) bool) {
		commits, err := c.log(repoPath, ref)
		if err != nil {
			yield(schema.CommitRecord{}, err)
			return
		}
		defer commits.Close()

		for {
			if err := ctx.Err(); err != nil {
				yield(schema.CommitRecord{}, err)
				return
			}
			commit, err := commits.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(schema.CommitRecord{}, fmt.Errorf("failed to iterate commits: %w", err))
				return
			}

			record, err := toRecord(ctx, commit)
			if err != nil {
				yield(schema.CommitRecord{}, err)
				return
			}
			if !yield(record, nil) {
				return
			}
		}
	}
}

func (c *GoGitClient) open(repoPath string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(repoPath, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", repoPath, err)
	}
	return repo, nil
}

func (c *GoGitClient) log(repoPath string, ref string) (object.CommitIter, error) {
	repo, err := c.open(repoPath)
	if err != nil {
		return nil, err
	}
	resolved, err := repo.Reference(plumbing.ReferenceName(ref), true)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", ref, err)
	}
	commits, err := repo.Log(&gogit.LogOptions{From: resolved.Hash(), Order: gogit.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("failed to get commit log: %w", err)
	}
	return commits, nil
}

func toRecord(ctx context.Context, commit *object.Commit) (schema.CommitRecord, error) {
	stats, err := commit.StatsContext(ctx)
	if err != nil {
		return schema.CommitRecord{}, fmt.Errorf("failed to diff commit %s: %w", commit.Hash, err)
	}
	record := schema.CommitRecord{
		ID:     commit.Hash.String(),
		Author: commit.Author.Name,
		When:   commit.Committer.When,
		Files:  make([]schema.FileChange, 0, len(stats)),
	}
	for _, s := range stats {
		record.Files = append(record.Files, schema.FileChange{Path: s.Name, Insertions: s.Addition, Deletions: s.Deletion})
	}
	return record, nil
}
