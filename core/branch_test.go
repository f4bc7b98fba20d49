package core

import (
	"testing"

	"github.com/metaconscious/CodeModificationAnalyzer/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func branchList(names ...string) []schema.Branch {
	out := make([]schema.Branch, 0, len(names))
	for _, n := range names {
		out = append(out, schema.Branch{Name: n, Ref: "refs/heads/" + n})
	}
	return out
}

func TestResolveBranch(t *testing.T) {
	tests := []struct {
		name      string
		branches  []schema.Branch
		requested string
		want      string
		fallback  bool
	}{
		{"exact match", branchList("feature-x", "main"), "feature-x", "feature-x", false},
		{"falls back to master", branchList("develop", "master"), "feature-x", "master", true},
		{"main before master", branchList("master", "main"), "feature-x", "main", true},
		{"develop before dev", branchList("dev", "develop", "zeta"), "nope", "develop", true},
		{"dev", branchList("alpha", "dev"), "nope", "dev", true},
		{"first listed branch", branchList("release", "alpha"), "nope", "release", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ResolveBranch(tt.branches, tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Branch.Name)
			assert.Equal(t, tt.fallback, res.Fallback)
			assert.Equal(t, tt.requested, res.Requested)
			if tt.fallback {
				assert.Contains(t, res.Reason, tt.requested)
				assert.Contains(t, res.Reason, tt.want)
			} else {
				assert.Empty(t, res.Reason)
			}
		})
	}
}

func TestResolveBranchNoBranches(t *testing.T) {
	_, err := ResolveBranch(nil, "main")
	require.ErrorIs(t, err, schema.ErrNoBranchesAvailable)
	assert.Contains(t, err.Error(), "'main'")
}
