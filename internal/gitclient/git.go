// Package gitclient selects and implements the version-control engines behind contract.GitClient.
package gitclient

import (
	"fmt"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// GitClient defines the read-only repository operations used by the analysis engine.
type GitClient = contract.GitClient

// New returns the client for the given engine.
func New(engine schema.Engine) (GitClient, error) {
	switch engine {
	case schema.GoGitEngine, "":
		return NewGoGitClient(), nil
	case schema.GitEngine:
		return contract.NewLocalGitClient(), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", engine)
	}
}
