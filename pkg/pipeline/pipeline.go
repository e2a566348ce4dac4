// Package pipeline provides the core conversion pipeline for archmap.
//
// This package implements the complete decode → resolve → assemble pipeline
// that can be used by CLI, API, and dataset components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Decode: Parse the draw.io XML and extract labeled vertices and edges
//  2. Resolve: Assign every element its tightest enclosing parent
//  3. Assemble: Emit the versioned hierarchical document
//
// Results are cached by source content hash, so converting the same diagram
// twice is a cache hit regardless of which entry point asked first.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Convert(ctx, xmlData, pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc := result.Document
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/autoclouddeploy/archmap/pkg/diagram"
)

// Options contains configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Refresh bypasses the cache and recomputes the document.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults applies defaults for the pipeline.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the converted hierarchical document.
	Document *diagram.Document

	// ContentHash is the hash of the source diagram bytes.
	ContentHash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the result came from cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ElementCount    int
	RootCount       int
	ConnectionCount int
	DecodeTime      time.Duration
	ResolveTime     time.Duration
	AssembleTime    time.Duration
}

// CacheInfo tracks cache hits for the pipeline.
type CacheInfo struct {
	DocumentHit bool // Whether the document came from cache
}
