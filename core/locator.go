package core

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/contract"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/logger"
	"github.com/metaconscious/CodeModificationAnalyzer/internal/remote"
	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// Location is a readable repository on disk. Remote sources live in a temporary clone
// that Close removes.
type Location struct {
	Path       string // directory to read history from
	Identifier string // absolute local path, or the source URL without credentials
	Remote     bool

	tempDir string
}

// Close releases the temporary clone, if any. It is safe to call more than once.
func (l *Location) Close() error {
	if l == nil || l.tempDir == "" {
		return nil
	}
	dir := l.tempDir
	l.tempDir = ""
	logger.For("core").Debug("removing temporary clone", "dir", dir)
	return os.RemoveAll(dir)
}

// Locate turns a source into a readable repository. Local paths must exist and be
// repositories. Remote sources are cloned into a fresh temporary directory, which is
// removed again when the clone fails.
func Locate(ctx context.Context, client contract.GitClient, source string, creds schema.Credentials) (*Location, error) {
	if remote.IsRemote(source) {
		return locateRemote(ctx, client, source, creds)
	}
	return locateLocal(ctx, client, source)
}

func locateLocal(ctx context.Context, client contract.GitClient, source string) (*Location, error) {
	if _, err := os.Stat(source); err != nil {
		return nil, schema.NewAnalysisError(schema.InvalidRepository, err, "Repository path does not exist: %s", source)
	}
	root, err := client.Validate(ctx, source)
	if err != nil {
		return nil, schema.NewAnalysisError(schema.InvalidRepository, err, "Not a valid git repository: %s", source)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return &Location{Path: root, Identifier: abs}, nil
}

func locateRemote(ctx context.Context, client contract.GitClient, source string, creds schema.Credentials) (*Location, error) {
	redacted := remote.Redact(source)
	secrets := remote.Secrets(creds)

	cloneURL, err := remote.AuthenticatedURL(source, creds)
	if err != nil {
		return nil, schema.NewAnalysisError(schema.CloneFailure, nil, "Cannot clone %s: %s", redacted, remote.Scrub(err.Error(), secrets...))
	}

	dir, err := os.MkdirTemp("", "codemod-clone-"+uuid.NewString()+"-*")
	if err != nil {
		return nil, schema.NewAnalysisError(schema.CloneFailure, err, "Cannot create a temporary directory for %s", redacted)
	}

	logger.For("core").Debug("cloning repository", "source", redacted, "engine", client.Name(), "dir", dir)
	if err := client.Clone(ctx, cloneURL, dir); err != nil {
		rmErr := os.RemoveAll(dir)
		msg := remote.Scrub(err.Error(), secrets...)
		if rmErr != nil {
			msg = msg + "; " + rmErr.Error()
		}
		// Clone errors may carry the credentialed URL; only scrubbed text leaves here.
		return nil, schema.NewAnalysisError(schema.CloneFailure, ctx.Err(), "Failed to clone %s: %s", redacted, msg)
	}

	return &Location{Path: dir, Identifier: redacted, Remote: true, tempDir: dir}, nil
}
