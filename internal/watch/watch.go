// Package watch re-runs work when the history of a local repository changes.
// It watches HEAD, packed-refs and the refs tree of the git directory with fsnotify.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/logger"
)

// DefaultDebounce is the quiet period after the last ref change before a run starts.
const DefaultDebounce = 500 * time.Millisecond

// Watcher observes the refs of one repository.
type Watcher struct {
	gitDir   string
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// New prepares a watcher for the repository rooted at repoPath. Both worktrees
// (with a .git directory) and bare repositories are accepted.
func New(repoPath string, debounce time.Duration) (*Watcher, error) {
	gitDir, err := findGitDir(repoPath)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w := &Watcher{gitDir: gitDir, debounce: debounce, watcher: fw}
	if err := w.addPaths(); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// GitDir returns the watched git directory.
func (w *Watcher) GitDir() string {
	return w.gitDir
}

// Run blocks until ctx is cancelled, calling fn once per burst of ref changes.
// Calls never overlap. An error from fn is logged and watching continues.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	log := logger.For("watch")
	log.Debug("watching repository", "git_dir", w.gitDir, "debounce", w.debounce)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if event.Has(fsnotify.Create) && w.isRefsDir(event.Name) {
				if err := w.addTree(event.Name); err != nil {
					log.Warn("failed to watch new refs directory", "path", event.Name, "error", err)
				}
			}
			if !w.isRelevant(event) {
				continue
			}
			log.Debug("ref change detected", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := fn(ctx); err != nil {
				log.Error("re-analysis failed", "error", err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			log.Warn("file watcher error", "error", err)
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) addPaths() error {
	if err := w.watcher.Add(w.gitDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.gitDir, err)
	}
	refs := filepath.Join(w.gitDir, "refs")
	if _, err := os.Stat(refs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return w.addTree(refs)
}

// addTree watches dir and every directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		return nil
	})
}

// isRelevant reports whether an event moves a ref. Lock files and chmod-only
// events are ignored.
func (w *Watcher) isRelevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod || strings.HasSuffix(event.Name, ".lock") {
		return false
	}
	rel, err := filepath.Rel(w.gitDir, event.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	switch rel {
	case "HEAD", "packed-refs":
		return true
	}
	return strings.HasPrefix(rel, "refs/")
}

func (w *Watcher) isRefsDir(path string) bool {
	rel, err := filepath.Rel(w.gitDir, path)
	if err != nil || !strings.HasPrefix(filepath.ToSlash(rel), "refs/") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// findGitDir resolves the git directory of a worktree, a linked worktree or a bare repository.
func findGitDir(repoPath string) (string, error) {
	dotGit := filepath.Join(repoPath, ".git")
	info, err := os.Stat(dotGit)
	switch {
	case err == nil && info.IsDir():
		return dotGit, nil
	case err == nil:
		data, err := os.ReadFile(dotGit)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", dotGit, err)
		}
		target, ok := strings.CutPrefix(strings.TrimSpace(string(data)), "gitdir:")
		if !ok {
			return "", fmt.Errorf("%s is not a gitdir file", dotGit)
		}
		target = strings.TrimSpace(target)
		if !filepath.IsAbs(target) {
			target = filepath.Join(repoPath, target)
		}
		return target, nil
	}

	if _, err := os.Stat(filepath.Join(repoPath, "HEAD")); err == nil {
		return repoPath, nil
	}
	return "", fmt.Errorf("%s is not a git repository", repoPath)
}
