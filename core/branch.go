package core

import (
	"fmt"

	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// fallbackBranches are tried in order when the requested branch does not exist.
var fallbackBranches = []string{"main", "master", "develop", "dev"}

// BranchResolution records which branch an analysis actually ran on.
type BranchResolution struct {
	Requested string
	Branch    schema.Branch
	Fallback  bool
	Reason    string
}

// ResolveBranch picks the branch to analyze. The requested branch wins when it exists;
// otherwise the first existing name from main, master, develop, dev is used, then the
// first listed branch. An empty list fails with NoBranchesAvailable.
func ResolveBranch(branches []schema.Branch, requested string) (BranchResolution, error) {
	res := BranchResolution{Requested: requested}

	if b, ok := findBranch(branches, requested); ok {
		res.Branch = b
		return res, nil
	}
	if len(branches) == 0 {
		return res, schema.NewAnalysisError(schema.NoBranchesAvailable, nil,
			"Branch '%s' not found and no branches exist in repository", requested)
	}

	res.Fallback = true
	for _, name := range fallbackBranches {
		if b, ok := findBranch(branches, name); ok {
			res.Branch = b
			res.Reason = fmt.Sprintf("branch '%s' not found, using '%s' instead", requested, name)
			return res, nil
		}
	}
	res.Branch = branches[0]
	res.Reason = fmt.Sprintf("branch '%s' not found, using first available branch '%s'", requested, res.Branch.Name)
	return res, nil
}

func findBranch(branches []schema.Branch, name string) (schema.Branch, bool) {
	for _, b := range branches {
		if b.Name == name {
			return b, true
		}
	}
	return schema.Branch{}, false
}
