// Package terraform combines and validates Terraform configurations.
//
// Validation shells out to the terraform binary (init + validate), so a
// working installation is required for [Validator.Validate]. Combination is
// pure file handling and always available.
package terraform

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/autoclouddeploy/archmap/pkg/errors"
	"github.com/autoclouddeploy/archmap/pkg/observability"
)

// CombineFiles walks root and concatenates every .tf file into one string.
// Each file is preceded by a comment marking its origin, relative to root.
// Directories named .terraform are skipped because they hold provider
// plugins, not configuration.
//
// Returns an error with code NOT_FOUND when the tree has no .tf files.
func CombineFiles(root string) (string, error) {
	fsys, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", root)
	}

	var blocks []string
	walkErr := filepath.WalkDir(fsys, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".terraform" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".tf") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(fsys, path)
		if err != nil {
			rel = path
		}
		blocks = append(blocks, fmt.Sprintf("# --- From: %s ---", rel), string(data))
		return nil
	})
	if walkErr != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, walkErr, "walk %s", root)
	}
	if len(blocks) == 0 {
		return "", errors.New(errors.ErrCodeNotFound, "no .tf files found in %s", root)
	}
	return strings.Join(blocks, "\n\n"), nil
}

// Result holds the outcome of validating a Terraform configuration.
type Result struct {
	// Valid reports whether terraform validate accepted the configuration.
	Valid bool `json:"valid"`

	// Source is the combined .tf content that was validated.
	Source string `json:"source,omitempty"`

	// Diagnostics carries terraform's output when validation failed.
	Diagnostics string `json:"diagnostics,omitempty"`
}

// commandRunner executes a command in dir and returns its combined output.
// Swapped out in tests.
type commandRunner func(ctx context.Context, dir string, name string, args ...string) ([]byte, error)

// Validator runs terraform init and terraform validate against a directory.
type Validator struct {
	// Binary is the terraform executable. Defaults to "terraform".
	Binary string

	logger *log.Logger
	run    commandRunner
}

// NewValidator creates a Validator.
// Pass nil for logger to disable logging.
func NewValidator(logger *log.Logger) *Validator {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Validator{
		Binary: "terraform",
		logger: logger,
		run:    runCommand,
	}
}

// Validate combines the .tf files under dir and runs terraform init and
// terraform validate there. A failing init or validate yields a Result with
// Valid false and the tool's output as diagnostics; only environmental
// problems (no .tf files, missing binary) produce an error.
func (v *Validator) Validate(ctx context.Context, dir string) (*Result, error) {
	start := time.Now()
	observability.Pipeline().OnValidateStart(ctx)

	result, err := v.validate(ctx, dir)
	valid := result != nil && result.Valid
	observability.Pipeline().OnValidateComplete(ctx, valid, time.Since(start), err)
	return result, err
}

func (v *Validator) validate(ctx context.Context, dir string) (*Result, error) {
	source, err := CombineFiles(dir)
	if err != nil {
		return nil, err
	}

	if _, err := exec.LookPath(v.Binary); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "terraform binary not found")
	}

	v.logger.Info("running terraform init", "dir", dir)
	if out, err := v.run(ctx, dir, v.Binary, "init", "-no-color", "-input=false"); err != nil {
		v.logger.Warn("terraform init failed", "dir", dir)
		return &Result{Valid: false, Source: source, Diagnostics: string(out)}, nil
	}

	v.logger.Info("running terraform validate", "dir", dir)
	if out, err := v.run(ctx, dir, v.Binary, "validate", "-no-color"); err != nil {
		v.logger.Warn("terraform validate failed", "dir", dir)
		return &Result{Valid: false, Source: source, Diagnostics: string(out)}, nil
	}

	return &Result{Valid: true, Source: source}, nil
}

func runCommand(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}
