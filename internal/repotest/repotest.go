// Package repotest builds throwaway git repositories for tests.
package repotest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is a non-bare repository rooted in a test temp dir.
type Repo struct {
	Dir  string
	Repo *gogit.Repository
	t    testing.TB
}

// New initializes an empty repository whose HEAD points at branch.
func New(t testing.TB, branch string) *Repo {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInitWithOptions(dir, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(branch)},
	})
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	return &Repo{Dir: dir, Repo: repo, t: t}
}

// Write creates or replaces a file in the worktree.
func (r *Repo) Write(path, content string) {
	r.t.Helper()
	full := filepath.Join(r.Dir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.t.Fatalf("failed to write %s: %v", path, err)
	}
}

// Remove deletes a file from the worktree.
func (r *Repo) Remove(path string) {
	r.t.Helper()
	if err := os.Remove(filepath.Join(r.Dir, filepath.FromSlash(path))); err != nil {
		r.t.Fatalf("failed to remove %s: %v", path, err)
	}
}

// Commit stages every change and commits it. The author and committer share name and time.
func (r *Repo) Commit(author string, when time.Time, msg string) plumbing.Hash {
	r.t.Helper()
	wt, err := r.Repo.Worktree()
	if err != nil {
		r.t.Fatalf("failed to get worktree: %v", err)
	}
	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		r.t.Fatalf("failed to stage changes: %v", err)
	}
	sig := &object.Signature{
		Name:  author,
		Email: strings.ToLower(strings.ReplaceAll(author, " ", ".")) + "@example.com",
		When:  when,
	}
	hash, err := wt.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig, AllowEmptyCommits: true})
	if err != nil {
		r.t.Fatalf("failed to commit: %v", err)
	}
	return hash
}

// Branch creates a branch pointing at HEAD without switching to it.
func (r *Repo) Branch(name string) {
	r.t.Helper()
	head, err := r.Repo.Head()
	if err != nil {
		r.t.Fatalf("failed to resolve HEAD: %v", err)
	}
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), head.Hash())
	if err := r.Repo.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("failed to create branch %s: %v", name, err)
	}
}

// Lines returns n distinct newline-terminated lines labelled with prefix, numbered from start.
func Lines(prefix string, start, n int) string {
	var b strings.Builder
	for i := start; i < start+n; i++ {
		fmt.Fprintf(&b, "%s %d\n", prefix, i)
	}
	return b.String()
}

// Day returns noon local time on the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.Local)
}

// AuthorFixture builds the reference history used across packages, on branch "main":
//
//	2024-01-10 Bob   adds a.py (100 lines)
//	2024-02-01 Alice a.py +10 -2
//	2024-03-15 Alice adds b.py (+5)
//	2024-04-20 Alice a.py -3
//
// Alice totals 3 commits, +15 -5. Bob totals 1 commit, +100.
func AuthorFixture(t testing.TB) *Repo {
	t.Helper()
	r := New(t, "main")

	r.Write("a.py", Lines("line", 1, 100))
	r.Commit("Bob", Day(2024, time.January, 10), "add a.py")

	r.Write("a.py", Lines("line", 3, 98)+Lines("alice", 1, 10))
	r.Commit("Alice", Day(2024, time.February, 1), "rework a.py")

	r.Write("b.py", Lines("b", 1, 5))
	r.Commit("Alice", Day(2024, time.March, 15), "add b.py")

	r.Write("a.py", Lines("line", 3, 98)+Lines("alice", 1, 7))
	r.Commit("Alice", Day(2024, time.April, 20), "trim a.py")
	return r
}
