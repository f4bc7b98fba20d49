package contract

import (
	"context"
	"iter"

	"github.com/metaconscious/CodeModificationAnalyzer/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a testify mock for the GitClient type.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Name implements the GitClient interface.
func (m *MockGitClient) Name() string {
	return "mock"
}

// Validate implements the GitClient interface.
func (m *MockGitClient) Validate(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	root, _ := ret.Get(0).(string)
	return root, ret.Error(1)
}

// Clone implements the GitClient interface.
func (m *MockGitClient) Clone(ctx context.Context, url string, dir string) error {
	ret := m.Called(ctx, url, dir)
	return ret.Error(0)
}

// RemoteURL implements the GitClient interface.
func (m *MockGitClient) RemoteURL(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	url, _ := ret.Get(0).(string)
	return url, ret.Error(1)
}

// ListBranches implements the GitClient interface.
func (m *MockGitClient) ListBranches(ctx context.Context, repoPath string) ([]schema.Branch, error) {
	ret := m.Called(ctx, repoPath)
	branches, _ := ret.Get(0).([]schema.Branch)
	return branches, ret.Error(1)
}

// CountCommits implements the GitClient interface.
func (m *MockGitClient) CountCommits(ctx context.Context, repoPath string, ref string) (int, error) {
	ret := m.Called(ctx, repoPath, ref)
	return ret.Int(0), ret.Error(1)
}

// Commits implements the GitClient interface. The mock is programmed with a
// []schema.CommitRecord and an optional error yielded after the records.
func (m *MockGitClient) Commits(ctx context.Context, repoPath string, ref string) iter.Seq2[schema.CommitRecord, error] {
	ret := m.Called(ctx, repoPath, ref)
	commits, _ := ret.Get(0).([]schema.CommitRecord)
	err := ret.Error(1)
	return func(yield func(schema.CommitRecord, error) bool) {
		for _, c := range commits {
			if !yield(c, nil) {
				return
			}
		}
		if err != nil {
			yield(schema.CommitRecord{}, err)
		}
	}
}
