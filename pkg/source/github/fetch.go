package github

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/autoclouddeploy/archmap/pkg/errors"
	"github.com/autoclouddeploy/archmap/pkg/integrations"
)

// CloneFunc clones a repository URL into dest. It exists so tests can swap
// out the real git invocation.
type CloneFunc func(ctx context.Context, cloneURL, dest string) error

// Fetcher searches GitHub and materializes matching repositories as shallow
// local clones.
type Fetcher struct {
	api    *Client
	clone  CloneFunc
	logger *log.Logger
}

// NewFetcher creates a Fetcher backed by the given API client.
// Pass nil for logger to disable logging.
func NewFetcher(api *Client, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Fetcher{
		api:    api,
		clone:  GitClone,
		logger: logger,
	}
}

// SetCloneFunc replaces the clone implementation. Intended for tests.
func (f *Fetcher) SetCloneFunc(fn CloneFunc) {
	if fn != nil {
		f.clone = fn
	}
}

// FetchOptions configures a Fetch run.
type FetchOptions struct {
	// Query is the GitHub repository search query.
	Query string

	// Limit caps the number of repositories to clone.
	Limit int

	// Dir is the directory that receives the clones. Created if missing.
	Dir string
}

// Fetch searches for repositories and shallow-clones each match into
// opts.Dir. Repositories whose target directory already exists are skipped,
// so repeated runs resume where they left off. Clone failures are logged and
// skipped; Fetch only fails when the search itself fails or the target
// directory cannot be created.
func (f *Fetcher) Fetch(ctx context.Context, opts FetchOptions) ([]LocalRepo, error) {
	if opts.Query == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "search query is required")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create clone directory %s", opts.Dir)
	}

	f.logger.Info("searching github", "query", opts.Query, "limit", opts.Limit)
	repos, err := f.api.Search(ctx, opts.Query, opts.Limit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "github search failed")
	}

	var cloned []LocalRepo
	for _, repo := range repos {
		if ctx.Err() != nil {
			return cloned, ctx.Err()
		}

		dest := filepath.Join(opts.Dir, RepoDirName(repo.FullName))
		if _, err := os.Stat(dest); err == nil {
			f.logger.Info("repository already cloned, skipping", "repo", repo.FullName)
			continue
		}

		cloneURL := integrations.NormalizeRepoURL(repo.CloneURL)
		f.logger.Info("cloning repository", "repo", repo.FullName, "dest", dest)
		if err := f.clone(ctx, cloneURL, dest); err != nil {
			f.logger.Warn("clone failed, skipping", "repo", repo.FullName, "error", err)
			_ = os.RemoveAll(dest)
			continue
		}
		cloned = append(cloned, LocalRepo{FullName: repo.FullName, Path: dest})
	}

	f.logger.Info("fetch complete", "cloned", len(cloned), "found", len(repos))
	return cloned, nil
}

// GitClone performs a shallow clone of cloneURL into dest using the git
// binary. Depth 1 keeps dataset builds fast on large repositories.
func GitClone(ctx context.Context, cloneURL, dest string) error {
	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", cloneURL, dest)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git clone %s: %w: %s", cloneURL, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// RepoDirName converts an "owner/repo" full name into a filesystem-safe
// directory name.
func RepoDirName(fullName string) string {
	return strings.ReplaceAll(fullName, "/", "_")
}

// ReadmePath locates the README.md of a local clone.
// Returns an error with code FILE_NOT_FOUND when the clone has none.
func ReadmePath(repoPath string) (string, error) {
	path := filepath.Join(repoPath, "README.md")
	if _, err := os.Stat(path); err != nil {
		return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "no README.md in %s", repoPath)
	}
	return path, nil
}
