package contract

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/repotest"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfGitNotAvailable skips the test if git binary is not found in PATH
func skipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

const sampleLog = "\x1eaaa111\nAlice Smith\n2024-04-20T12:00:00+02:00\n\n0\t3\ta.py\n" +
	"\x1ebbb222\nBob\n2024-03-15T08:30:00Z\n\n5\t0\tsrc/b.py\n-\t-\tlogo.png\n2\t1\t\"sp\\303\\251cial.txt\"\n" +
	"\x1eccc333\n\n2024-01-01T00:00:00Z\n"

func TestParseLog(t *testing.T) {
	var commits []schema.CommitRecord
	for c, err := range ParseLog(strings.NewReader(sampleLog)) {
		require.NoError(t, err)
		commits = append(commits, c)
	}
	require.Len(t, commits, 3)

	assert.Equal(t, "aaa111", commits[0].ID)
	assert.Equal(t, "Alice Smith", commits[0].Author)
	assert.Equal(t, "2024-04-20", commits[0].When.Format(schema.DateLayout))
	_, offset := commits[0].When.Zone()
	assert.Equal(t, 2*60*60, offset, "commit time zone is kept")
	assert.Equal(t, []schema.FileChange{{Path: "a.py", Deletions: 3}}, commits[0].Files)

	assert.Equal(t, []schema.FileChange{
		{Path: "src/b.py", Insertions: 5},
		{Path: "logo.png"},
		{Path: "spécial.txt", Insertions: 2, Deletions: 1},
	}, commits[1].Files)

	assert.Empty(t, commits[2].Author)
	assert.Empty(t, commits[2].Files)
}

func TestParseLogErrors(t *testing.T) {
	for name, input := range map[string]string{
		"bad date":    "\x1eaaa\nAlice\nyesterday\n",
		"bad numstat": "\x1eaaa\nAlice\n2024-01-01T00:00:00Z\nnot numstat\n",
		"bad count":   "\x1eaaa\nAlice\n2024-01-01T00:00:00Z\nx\t1\ta.py\n",
	} {
		t.Run(name, func(t *testing.T) {
			var lastErr error
			for _, err := range ParseLog(strings.NewReader(input)) {
				lastErr = err
			}
			assert.Error(t, lastErr)
		})
	}
}

func TestParseLogEmpty(t *testing.T) {
	for range ParseLog(strings.NewReader("")) {
		t.Fatal("no commits expected")
	}
}

func TestMergeBranchRefs(t *testing.T) {
	branches := MergeBranchRefs(
		[]string{"refs/heads/main", "refs/heads/feature"},
		[]string{"refs/remotes/origin/main", "refs/remotes/origin/HEAD", "refs/remotes/origin/develop"},
	)
	assert.Equal(t, []schema.Branch{
		{Name: "feature", Ref: "refs/heads/feature"},
		{Name: "main", Ref: "refs/heads/main"},
		{Name: "develop", Ref: "refs/remotes/origin/develop"},
	}, branches)

	assert.Empty(t, MergeBranchRefs(nil, nil))
}

func TestGitErrorRedactsArgs(t *testing.T) {
	err := newGitError([]string{"clone", "https://tok@example.com/r.git", "/tmp/x"}, errors.New("exit status 128"), "fatal: nope\n")
	assert.NotContains(t, err.Error(), "tok@")
	assert.Contains(t, err.Error(), "fatal: nope")
	assert.Equal(t, -1, err.ExitCode)
}

func TestMockGitClientCommits(t *testing.T) {
	mockClient := new(MockGitClient)
	ctx := context.Background()
	records := []schema.CommitRecord{{ID: "1"}, {ID: "2"}}
	mockClient.On("Commits", ctx, "/repo", "refs/heads/main").Return(records, errors.New("boom")).Once()

	var ids []string
	var lastErr error
	for c, err := range mockClient.Commits(ctx, "/repo", "refs/heads/main") {
		if err != nil {
			lastErr = err
			continue
		}
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"1", "2"}, ids)
	assert.EqualError(t, lastErr, "boom")
	mockClient.AssertExpectations(t)
}

func TestLocalGitClientBareRepository(t *testing.T) {
	skipIfGitNotAvailable(t)

	fixture := repotest.AuthorFixture(t)
	bare := filepath.Join(t.TempDir(), "bare.git")
	out, err := exec.Command("git", "clone", "--bare", "--quiet", fixture.Dir, bare).CombinedOutput()
	require.NoError(t, err, string(out))

	client := NewLocalGitClient()
	root, err := client.Validate(context.Background(), bare)
	require.NoError(t, err)
	assert.Equal(t, "bare.git", filepath.Base(root))

	branches, err := client.ListBranches(context.Background(), bare)
	require.NoError(t, err)
	assert.Equal(t, []schema.Branch{{Name: "main", Ref: "refs/heads/main"}}, branches)
}

func TestLocalGitClient(t *testing.T) {
	skipIfGitNotAvailable(t)

	fixture := repotest.AuthorFixture(t)
	fixture.Branch("dev")
	client := NewLocalGitClient()
	ctx := context.Background()

	assert.Equal(t, "git", client.Name())

	root, err := client.Validate(ctx, fixture.Dir)
	require.NoError(t, err)
	assert.NotEmpty(t, root)

	_, err = client.Validate(ctx, t.TempDir())
	var gitErr *GitError
	assert.ErrorAs(t, err, &gitErr)

	branches, err := client.ListBranches(ctx, fixture.Dir)
	require.NoError(t, err)
	assert.Equal(t, []schema.Branch{
		{Name: "dev", Ref: "refs/heads/dev"},
		{Name: "main", Ref: "refs/heads/main"},
	}, branches)

	count, err := client.CountCommits(ctx, fixture.Dir, "refs/heads/main")
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	url, err := client.RemoteURL(ctx, fixture.Dir)
	require.NoError(t, err)
	assert.Empty(t, url)

	var commits []schema.CommitRecord
	for c, err := range client.Commits(ctx, fixture.Dir, "refs/heads/main") {
		require.NoError(t, err)
		commits = append(commits, c)
	}
	require.Len(t, commits, 4)
	assert.Equal(t, "Alice", commits[0].Author)
	assert.Equal(t, repotest.Day(2024, time.April, 20).Unix(), commits[0].When.Unix())
	assert.Equal(t, "Bob", commits[3].Author)
	assert.Equal(t, []schema.FileChange{{Path: "a.py", Insertions: 100}}, commits[3].Files)
}

func TestLocalGitClientClone(t *testing.T) {
	skipIfGitNotAvailable(t)

	fixture := repotest.AuthorFixture(t)
	fixture.Branch("release")
	client := NewLocalGitClient()
	ctx := context.Background()

	dir := t.TempDir()
	require.NoError(t, client.Clone(ctx, fixture.Dir, dir))

	url, err := client.RemoteURL(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, fixture.Dir, url)

	branches, err := client.ListBranches(ctx, dir)
	require.NoError(t, err)
	assert.Contains(t, branches, schema.Branch{Name: "release", Ref: "refs/remotes/origin/release"})
}

func TestLocalGitClientStopsEarly(t *testing.T) {
	skipIfGitNotAvailable(t)

	fixture := repotest.AuthorFixture(t)
	seen := 0
	for _, err := range NewLocalGitClient().Commits(context.Background(), fixture.Dir, "refs/heads/main") {
		require.NoError(t, err)
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}
