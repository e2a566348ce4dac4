package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/autoclouddeploy/archmap/pkg/cache"
	"github.com/autoclouddeploy/archmap/pkg/diagram"
	"github.com/autoclouddeploy/archmap/pkg/errors"
	"github.com/autoclouddeploy/archmap/pkg/observability"
)

// Runner executes the conversion pipeline with caching support.
// It can be shared across requests (API) or used once (CLI).
type Runner struct {
	// Cache stores converted documents. If nil, a NullCache is used.
	Cache cache.Cache

	// Keyer generates cache keys. If nil, a DefaultKeyer is used.
	Keyer cache.Keyer

	// Logger receives pipeline progress. If nil, logging is disabled.
	Logger *log.Logger
}

// NewRunner creates a pipeline runner.
// Nil arguments are replaced with safe defaults.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Convert runs the full decode → resolve → assemble pipeline on raw diagram
// bytes. Converted documents are cached by content hash; pass Options.Refresh
// to bypass the cache.
func (r *Runner) Convert(ctx context.Context, data []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnConvertStart(ctx, len(data))

	result, err := r.convert(ctx, data, opts)

	elements := 0
	if result != nil {
		elements = result.Stats.ElementCount
	}
	observability.Pipeline().OnConvertComplete(ctx, elements, time.Since(start), err)

	return result, err
}

func (r *Runner) convert(ctx context.Context, data []byte, opts Options) (*Result, error) {
	hash := cache.Hash(data)
	key := r.Keyer.DocumentKey(hash)

	result := &Result{ContentHash: hash}

	// Try cache first
	if !opts.Refresh {
		cached, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			opts.Logger.Warn("document cache read failed", "error", err)
		}
		if hit {
			var doc diagram.Document
			if err := json.Unmarshal(cached, &doc); err == nil {
				observability.Cache().OnCacheHit(ctx, "document")
				result.Document = &doc
				result.CacheInfo.DocumentHit = true
				fillStats(&result.Stats, &doc)
				opts.Logger.Info("document loaded from cache", "hash", hash[:12])
				return result, nil
			}
			// Corrupt entry, fall through to recompute
			_ = r.Cache.Delete(ctx, key)
		}
		observability.Cache().OnCacheMiss(ctx, "document")
	}

	// Stage 1: Decode
	decodeStart := time.Now()
	model, err := diagram.DecodeBytes(data)
	result.Stats.DecodeTime = time.Since(decodeStart)
	if err != nil {
		return result, errors.Wrap(errors.ErrCodeParse, err, "decode diagram")
	}
	opts.Logger.Info("diagram decoded",
		"name", model.Name,
		"elements", len(model.Elements),
		"duration", result.Stats.DecodeTime)

	// Stage 2: Resolve containment
	resolveStart := time.Now()
	diagram.ResolveParents(model.Elements)
	result.Stats.ResolveTime = time.Since(resolveStart)
	opts.Logger.Info("containment resolved", "duration", result.Stats.ResolveTime)

	// Stage 3: Assemble document
	assembleStart := time.Now()
	doc := diagram.Assemble(model)
	result.Stats.AssembleTime = time.Since(assembleStart)
	opts.Logger.Info("document assembled",
		"roots", len(doc.Architecture),
		"connections", len(doc.Connections),
		"duration", result.Stats.AssembleTime)

	result.Document = doc
	fillStats(&result.Stats, doc)

	// Store in cache for next time
	if encoded, err := json.Marshal(doc); err == nil {
		if err := r.Cache.Set(ctx, key, encoded, cache.TTLDocument); err != nil {
			opts.Logger.Warn("document cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "document", len(encoded))
		}
	}

	return result, nil
}

// Close releases the runner's resources.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger propagates the runner's logger into options when the caller
// did not set one.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil && r.Logger != nil {
		opts.Logger = r.Logger
	}
}

// fillStats derives document-level counts from an assembled document.
func fillStats(s *Stats, doc *diagram.Document) {
	s.RootCount = len(doc.Architecture)
	s.ConnectionCount = len(doc.Connections)
	s.ElementCount = 0
	for _, root := range doc.Architecture {
		root.Walk(func(*diagram.Element) { s.ElementCount++ })
	}
}
