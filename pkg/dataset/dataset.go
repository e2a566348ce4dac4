// Package dataset assembles training pairs from real Terraform repositories.
//
// A pair is a directory named after the repository (owner_repo) holding three
// files: code.tf with the validated, concatenated Terraform sources,
// diagram.xml with a generated draw.io rendition of that code, and
// instruction.json with a structured description distilled from the README.
//
// [Builder.Build] produces pairs from freshly fetched repositories.
// [Unifier.Unify] walks an existing dataset directory and fills in whichever
// of the three files is missing. Both treat per-repository failures as skips,
// never as a reason to abort the run.
package dataset

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/autoclouddeploy/archmap/pkg/errors"
	"github.com/autoclouddeploy/archmap/pkg/genai"
	"github.com/autoclouddeploy/archmap/pkg/source/github"
	"github.com/autoclouddeploy/archmap/pkg/terraform"
)

// Pair file names inside a dataset directory.
const (
	CodeFile        = "code.tf"
	DiagramFile     = "diagram.xml"
	InstructionFile = "instruction.json"
)

// Fetcher fetches repositories into a local working directory.
// [github.Fetcher] is the production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, opts github.FetchOptions) ([]github.LocalRepo, error)
}

// Validator validates the Terraform configuration under a directory.
// [terraform.Validator] is the production implementation.
type Validator interface {
	Validate(ctx context.Context, dir string) (*terraform.Result, error)
}

// Builder turns fetched repositories into dataset pairs.
type Builder struct {
	fetcher   Fetcher
	validator Validator
	gen       genai.Generator
	logger    *log.Logger
}

// NewBuilder creates a Builder. Pass nil for logger to disable logging.
func NewBuilder(fetcher Fetcher, validator Validator, gen genai.Generator, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Builder{
		fetcher:   fetcher,
		validator: validator,
		gen:       gen,
		logger:    logger,
	}
}

// BuildOptions configures a dataset build run.
type BuildOptions struct {
	// Query is the GitHub search query selecting candidate repositories.
	Query string

	// Limit caps how many repositories are fetched. Zero means the
	// fetcher's default.
	Limit int

	// WorkDir receives the cloned repositories. When empty, a temporary
	// directory is created and removed when the build finishes.
	WorkDir string

	// OutDir receives the pair directories. Required.
	OutDir string

	// Delay is the pause between repositories, to stay under model API
	// rate limits. Zero means no pause.
	Delay time.Duration
}

// BuildStats summarizes a build run.
type BuildStats struct {
	Fetched int `json:"fetched"`
	Pairs   int `json:"pairs"`
	Skipped int `json:"skipped"`
}

// Build fetches repositories matching opts.Query and produces one pair
// directory per repository that survives README processing, Terraform
// validation, and diagram generation. Repositories failing any step are
// logged and skipped.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) (*BuildStats, error) {
	if opts.OutDir == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "output directory is required")
	}
	if b.gen == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "generator is required")
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", opts.OutDir)
	}

	workDir := opts.WorkDir
	if workDir == "" {
		tmp, err := os.MkdirTemp("", "archmap-repos-")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create working directory")
		}
		defer os.RemoveAll(tmp)
		workDir = tmp
	}

	repos, err := b.fetcher.Fetch(ctx, github.FetchOptions{
		Query: opts.Query,
		Limit: opts.Limit,
		Dir:   workDir,
	})
	if err != nil {
		return nil, err
	}

	stats := &BuildStats{Fetched: len(repos)}
	for i, repo := range repos {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if opts.Delay > 0 && i > 0 {
			time.Sleep(opts.Delay)
		}

		b.logger.Info("processing repository", "repo", repo.FullName, "index", i+1, "total", len(repos))
		if err := b.buildPair(ctx, repo, opts.OutDir); err != nil {
			b.logger.Warn("skipping repository", "repo", repo.FullName, "err", err)
			stats.Skipped++
			continue
		}
		stats.Pairs++
	}

	b.logger.Info("build finished", "fetched", stats.Fetched, "pairs", stats.Pairs, "skipped", stats.Skipped)
	return stats, nil
}

func (b *Builder) buildPair(ctx context.Context, repo github.LocalRepo, outDir string) error {
	readmePath, err := github.ReadmePath(repo.Path)
	if err != nil {
		return err
	}
	readme, err := os.ReadFile(readmePath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read README for %s", repo.FullName)
	}

	instruction, err := genai.InstructionFromReadme(ctx, b.gen, repo.FullName, string(readme))
	if err != nil {
		return err
	}

	result, err := b.validator.Validate(ctx, repo.Path)
	if err != nil {
		return err
	}
	if !result.Valid {
		return errors.New(errors.ErrCodeValidation, "terraform validation failed for %s", repo.FullName)
	}

	pairDir := filepath.Join(outDir, github.RepoDirName(repo.FullName))
	if err := os.MkdirAll(pairDir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", pairDir)
	}
	if err := os.WriteFile(filepath.Join(pairDir, InstructionFile), []byte(instruction), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(pairDir, CodeFile), []byte(result.Source), 0o644); err != nil {
		return err
	}

	// The diagram is the most failure-prone artifact. A pair without one is
	// still usable and Unify can backfill it later.
	xml, err := genai.DiagramFromTerraform(ctx, b.gen, result.Source)
	if err != nil {
		b.logger.Warn("diagram generation failed, pair kept without diagram",
			"repo", repo.FullName, "err", err)
		return nil
	}
	return os.WriteFile(filepath.Join(pairDir, DiagramFile), []byte(xml), 0o644)
}
