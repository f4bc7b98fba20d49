package contract

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/logger"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/remote"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// commitMarker starts every commit header emitted by Commits.
const commitMarker = "\x1e"

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// GitError reports a failed git invocation. Args are redacted before they are stored.
type GitError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *GitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("git %s failed (exit %d): %s", strings.Join(e.Args, " "), e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("git %s failed: %v", strings.Join(e.Args, " "), e.Err)
}

// Unwrap returns the underlying exec error.
func (e *GitError) Unwrap() error {
	return e.Err
}

// Name implements the GitClient interface.
func (c *LocalGitClient) Name() string {
	return string(schema.GitEngine)
}

// Run executes a git command in repoPath and returns its stdout.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	cmd := c.command(ctx, repoPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, newGitError(args, err, stderr.String())
	}
	return out, nil
}

// Validate implements the GitClient interface. A bare repository has no work tree,
// so its git directory is returned instead.
func (c *LocalGitClient) Validate(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "--is-bare-repository")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(string(out)) == "true" {
		out, err = c.Run(ctx, repoPath, "rev-parse", "--absolute-git-dir")
	} else {
		out, err = c.Run(ctx, repoPath, "rev-parse", "--show-toplevel")
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Clone implements the GitClient interface.
func (c *LocalGitClient) Clone(ctx context.Context, url string, dir string) error {
	_, err := c.Run(ctx, "", "clone", "--quiet", "--no-checkout", url, dir)
	return err
}

// RemoteURL implements the GitClient interface.
func (c *LocalGitClient) RemoteURL(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "config", "--get", "remote.origin.url")
	if err != nil {
		var gitErr *GitError
		// git config exits 1 when the key is missing.
		if errors.As(err, &gitErr) && gitErr.ExitCode == 1 {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ListBranches implements the GitClient interface.
func (c *LocalGitClient) ListBranches(ctx context.Context, repoPath string) ([]schema.Branch, error) {
	out, err := c.Run(ctx, repoPath, "for-each-ref", "--format=%(refname)", "refs/heads", "refs/remotes/origin")
	if err != nil {
		return nil, err
	}

	var local, remoteRefs []string
	for line := range strings.Lines(string(out)) {
		ref := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(ref, "refs/heads/"):
			local = append(local, ref)
		case strings.HasPrefix(ref, "refs/remotes/origin/") && ref != "refs/remotes/origin/HEAD":
			remoteRefs = append(remoteRefs, ref)
		}
	}
	return MergeBranchRefs(local, remoteRefs), nil
}

// CountCommits implements the GitClient interface.
func (c *LocalGitClient) CountCommits(ctx context.Context, repoPath string, ref string) (int, error) {
	out, err := c.Run(ctx, repoPath, "rev-list", "--count", ref, "--")
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(out)))
}

// Commits implements the GitClient interface. History is streamed from a single
// "git log --numstat" subprocess, newest first by committer date. Merge commits are
// diffed against their first parent.
func (c *LocalGitClient) Commits(ctx context.Context, repoPath string, ref string) iter.Seq2[schema.CommitRecord, error] {
	args := []string{
		"log",
		"--numstat",
		"--no-renames",
		"--diff-merges=first-parent",
		"--pretty=format:" + commitMarker + "%H%n%an%n%cI",
		ref,
		"--",
	}

	return func(yield func(schema.CommitRecord, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		cmd := c.command(ctx, repoPath, args...)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			yield(schema.CommitRecord{}, fmt.Errorf("failed to open stdout pipe: %w", err))
			return
		}
		if err := cmd.Start(); err != nil {
			yield(schema.CommitRecord{}, newGitError(args, err, ""))
			return
		}

		stopped := false
		for commit, err := range ParseLog(stdout) {
			if err != nil {
				yield(schema.CommitRecord{}, err)
				stopped = true
				break
			}
			if !yield(commit, nil) {
				stopped = true
				break
			}
		}
		if stopped {
			cancel()
			_, _ = io.Copy(io.Discard, stdout)
			_ = cmd.Wait()
			return
		}
		if err := cmd.Wait(); err != nil {
			yield(schema.CommitRecord{}, newGitError(args, err, stderr.String()))
			return
		}
		logger.For("contract").Debug("git log finished", "ref", ref, "code", cmd.ProcessState.ExitCode())
	}
}

// ParseLog turns the output of the git log invocation used by Commits into commit records.
func ParseLog(r io.Reader) iter.Seq2[schema.CommitRecord, error] {
	return func(yield func(schema.CommitRecord, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

		var commit schema.CommitRecord
		header := -1 // lines of the current header still expected
		started := false

		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, commitMarker):
				if started && !yield(commit, nil) {
					return
				}
				commit = schema.CommitRecord{ID: strings.TrimPrefix(line, commitMarker)}
				started = true
				header = 2
			case header == 2:
				commit.Author = line
				header--
			case header == 1:
				when, err := time.Parse(time.RFC3339, strings.TrimSpace(line))
				if err != nil {
					yield(commit, fmt.Errorf("invalid commit date %q in %s: %w", line, commit.ID, err))
					return
				}
				commit.When = when
				header--
			case line == "":
				continue
			default:
				change, err := parseNumstat(line)
				if err != nil {
					yield(commit, err)
					return
				}
				commit.Files = append(commit.Files, change)
			}
		}
		if err := scanner.Err(); err != nil {
			yield(commit, fmt.Errorf("error while scanning: %w", err))
			return
		}
		if started {
			yield(commit, nil)
		}
	}
}

// MergeBranchRefs orders local branches by name, then appends origin remote-tracking
// branches that have no local branch of the same name.
func MergeBranchRefs(localRefs, remoteRefs []string) []schema.Branch {
	seen := make(map[string]struct{}, len(localRefs))
	branches := make([]schema.Branch, 0, len(localRefs)+len(remoteRefs))

	sort.Strings(localRefs)
	for _, ref := range localRefs {
		name := strings.TrimPrefix(ref, "refs/heads/")
		seen[name] = struct{}{}
		branches = append(branches, schema.Branch{Name: name, Ref: ref})
	}

	sort.Strings(remoteRefs)
	for _, ref := range remoteRefs {
		name := strings.TrimPrefix(ref, "refs/remotes/origin/")
		if _, ok := seen[name]; ok || name == "HEAD" {
			continue
		}
		seen[name] = struct{}{}
		branches = append(branches, schema.Branch{Name: name, Ref: ref})
	}
	return branches
}

// parseNumstat parses "ins<TAB>del<TAB>path". Binary files report "-" and count as zero.
func parseNumstat(line string) (schema.FileChange, error) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) != 3 {
		return schema.FileChange{}, fmt.Errorf("malformed numstat line %q", line)
	}
	ins, err := parseLinesChanged(parts[0])
	if err != nil {
		return schema.FileChange{}, err
	}
	del, err := parseLinesChanged(parts[1])
	if err != nil {
		return schema.FileChange{}, err
	}
	path := parts[2]
	if strings.HasPrefix(path, `"`) {
		if unquoted, err := strconv.Unquote(path); err == nil {
			path = unquoted
		}
	}
	return schema.FileChange{Path: path, Insertions: ins, Deletions: del}, nil
}

func parseLinesChanged(s string) (int, error) {
	if s == "-" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("could not parse %q as a line count: %w", s, err)
	}
	return n, nil
}

func (c *LocalGitClient) command(ctx context.Context, repoPath string, args ...string) *exec.Cmd {
	fullArgs := []string{"-c", "core.quotepath=off"}
	if repoPath != "" {
		fullArgs = append(fullArgs, "-C", repoPath)
	}
	fullArgs = append(fullArgs, args...)

	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	logger.For("contract").Debug("running subprocess", "args", redactArgs(fullArgs))
	return cmd
}

func newGitError(args []string, err error, stderr string) *GitError {
	gitErr := &GitError{Args: redactArgs(args), ExitCode: -1, Stderr: strings.TrimSpace(stderr), Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		gitErr.ExitCode = exitErr.ExitCode()
	}
	return gitErr
}

func redactArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = remote.Redact(a)
	}
	return out
}
