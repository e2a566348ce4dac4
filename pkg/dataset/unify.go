package dataset

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/autoclouddeploy/archmap/pkg/errors"
	"github.com/autoclouddeploy/archmap/pkg/genai"
	"github.com/autoclouddeploy/archmap/pkg/pipeline"
)

// Converter turns diagram XML into a structured document.
// [pipeline.Runner] is the production implementation.
type Converter interface {
	Convert(ctx context.Context, data []byte, opts pipeline.Options) (*pipeline.Result, error)
}

// Unifier fills in missing pair files across an existing dataset directory.
type Unifier struct {
	gen       genai.Generator
	converter Converter
	logger    *log.Logger
}

// NewUnifier creates a Unifier. gen may be nil, in which case missing
// diagrams are left missing. Pass nil for logger to disable logging.
func NewUnifier(gen genai.Generator, converter Converter, logger *log.Logger) *Unifier {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Unifier{gen: gen, converter: converter, logger: logger}
}

// UnifyStats summarizes a unification run.
type UnifyStats struct {
	Scanned      int      `json:"scanned"`
	Diagrams     int      `json:"diagrams"`
	Instructions int      `json:"instructions"`
	Failed       []string `json:"failed,omitempty"`
}

// Unify walks the pair directories under dir and generates whichever files
// are missing: diagram.xml from code.tf when a generator is available, then
// instruction.json from diagram.xml. Directories where generation fails are
// recorded in the returned stats and left for a later run.
func (u *Unifier) Unify(ctx context.Context, dir string) (*UnifyStats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read dataset directory %s", dir)
	}

	stats := &UnifyStats{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		stats.Scanned++
		pairDir := filepath.Join(dir, entry.Name())
		u.logger.Info("verifying pair", "dir", entry.Name())

		if err := u.unifyPair(ctx, pairDir, stats); err != nil {
			u.logger.Warn("unification failed", "dir", entry.Name(), "err", err)
			stats.Failed = append(stats.Failed, entry.Name())
		}
	}

	u.logger.Info("unification finished",
		"scanned", stats.Scanned, "diagrams", stats.Diagrams,
		"instructions", stats.Instructions, "failed", len(stats.Failed))
	return stats, nil
}

func (u *Unifier) unifyPair(ctx context.Context, pairDir string, stats *UnifyStats) error {
	codePath := filepath.Join(pairDir, CodeFile)
	xmlPath := filepath.Join(pairDir, DiagramFile)
	jsonPath := filepath.Join(pairDir, InstructionFile)

	if !fileExists(xmlPath) && fileExists(codePath) && u.gen != nil {
		code, err := os.ReadFile(codePath)
		if err != nil {
			return err
		}
		xml, err := genai.DiagramFromTerraform(ctx, u.gen, string(code))
		if err != nil {
			return err
		}
		if err := os.WriteFile(xmlPath, []byte(xml), 0o644); err != nil {
			return err
		}
		stats.Diagrams++
	}

	if fileExists(jsonPath) || !fileExists(xmlPath) {
		return nil
	}

	data, err := os.ReadFile(xmlPath)
	if err != nil {
		return err
	}
	result, err := u.converter.Convert(ctx, data, pipeline.Options{})
	if err != nil {
		return err
	}
	doc, err := json.MarshalIndent(result.Document, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(jsonPath, doc, 0o644); err != nil {
		return err
	}
	stats.Instructions++
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
