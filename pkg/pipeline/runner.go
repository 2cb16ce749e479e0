package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/survfit/pkg/cache"
	"github.com/matzehuels/survfit/pkg/curve"
	"github.com/matzehuels/survfit/pkg/export"
	"github.com/matzehuels/survfit/pkg/figure"
	curveio "github.com/matzehuels/survfit/pkg/io"
	"github.com/matzehuels/survfit/pkg/observability"
)

// Runner executes pipeline runs against a cache.
//
// A Runner holds no per-run state; concurrent Execute calls with different
// options are safe as long as the cache is.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// ArtifactTTL bounds how long rendered outputs stay cached. Zero
	// selects cache.TTLArtifact.
	ArtifactTTL time.Duration
}

// NewRunner returns a runner. A nil cache disables caching, a nil keyer
// selects the default keyer and a nil logger selects log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs estimate → build → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	res := &Result{Name: opts.Name(), Recipe: opts.Recipe}
	logger := r.logger(opts)

	start := time.Now()
	m, hit, err := r.EstimateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	res.Model = m
	res.Stats.Strata = m.Len()
	res.Stats.EstimateTime = time.Since(start)
	res.CacheInfo.ModelHit = hit
	logger.Info("estimated curves",
		"strata", m.Len(),
		"cached", hit,
		"duration", res.Stats.EstimateTime)

	start = time.Now()
	fig, err := r.Build(ctx, m, opts)
	if err != nil {
		return nil, err
	}
	res.Figure = fig
	res.Stats.Panels = fig.Len()
	res.Stats.BuildTime = time.Since(start)
	logger.Info("built figure",
		"panels", fig.Len(),
		"id", fig.ID(),
		"duration", res.Stats.BuildTime)

	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, fig, opts)
	if err != nil {
		return nil, err
	}
	res.Artifacts = artifacts
	res.Stats.RenderTime = time.Since(start)
	res.CacheInfo.RenderHit = hit
	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", res.Stats.RenderTime)

	return res, nil
}

// EstimateWithCacheInfo returns the recipe's curve model and whether it
// came from the cache. Estimation errors are returned unchanged.
func (r *Runner) EstimateWithCacheInfo(ctx context.Context, opts Options) (*curve.Model, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	req := opts.Recipe.Request()
	key := r.Keyer.ModelKey(datasetDigest(opts.DataRoot, req.Dataset), cache.ModelKeyOpts{
		Kind:       string(opts.Recipe.Kind()),
		Formula:    req.Formula,
		Adjustment: req.Adjustment,
		Estimator:  estimatorID(opts),
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if m, err := curveio.ReadJSON(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "model")
				return m, true, nil
			}
		} else if err != nil {
			r.logger(opts).Warn("cache read failed", "key", key, "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, "model")
	}

	est := opts.Estimator
	if est == nil {
		est = curveio.FileEstimator{Root: opts.DataRoot, Kind: opts.Recipe.Kind()}
	}
	start := time.Now()
	observability.Pipeline().OnEstimateStart(ctx, req.Dataset)
	m, err := curve.Estimate(ctx, est, req)
	strata := 0
	if m != nil {
		strata = m.Len()
	}
	observability.Pipeline().OnEstimateComplete(ctx, req.Dataset, strata, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := curveio.WriteJSON(m, &buf); err == nil {
		r.store(ctx, opts, key, "model", buf.Bytes(), cache.TTLModel)
	}
	return m, false, nil
}

// Estimate is EstimateWithCacheInfo without the cache hit flag.
func (r *Runner) Estimate(ctx context.Context, opts Options) (*curve.Model, error) {
	m, _, err := r.EstimateWithCacheInfo(ctx, opts)
	return m, err
}

// Build resolves the recipe's assembly over m. Builds are cheap and never
// cached; the figure ID they produce keys the artifact cache.
func (r *Runner) Build(ctx context.Context, m *curve.Model, opts Options) (*figure.Figure, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	name := opts.Name()
	start := time.Now()
	observability.Pipeline().OnBuildStart(ctx, name)

	fig, err := r.build(m, opts)
	panels := 0
	if fig != nil {
		panels = fig.Len()
	}
	observability.Pipeline().OnBuildComplete(ctx, name, panels, time.Since(start), err)
	return fig, err
}

func (r *Runner) build(m *curve.Model, opts Options) (*figure.Figure, error) {
	a, err := opts.Recipe.Assembly(m)
	if err != nil {
		return nil, err
	}
	bopts, err := opts.Recipe.BuildOptions()
	if err != nil {
		return nil, err
	}
	return a.Build(bopts...)
}

// RenderWithCacheInfo encodes fig in every requested format and reports
// whether all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, fig *figure.Figure, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(fig.ID(), opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		allCached = false

		data, err := export.Encode(fig, opts.ExportOptions(format))
		if err != nil {
			observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		r.store(ctx, opts, key, "artifact", data, r.artifactTTL())
	}

	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, allCached, nil
}

// Render is RenderWithCacheInfo without the cache hit flag.
func (r *Runner) Render(ctx context.Context, fig *figure.Figure, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, fig, opts)
	return artifacts, err
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// estimatorID names the estimator in model keys. The default file
// estimator keeps the empty ID.
func estimatorID(opts Options) string {
	switch {
	case opts.EstimatorID != "":
		return opts.EstimatorID
	case opts.Estimator == nil:
		return ""
	default:
		return fmt.Sprintf("%T", opts.Estimator)
	}
}

func (r *Runner) artifactTTL() time.Duration {
	if r.ArtifactTTL > 0 {
		return r.ArtifactTTL
	}
	return cache.TTLArtifact
}

// Close closes the runner's cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// store writes to the cache. Cache failures never fail a run.
func (r *Runner) store(ctx context.Context, opts Options, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.logger(opts).Warn("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// datasetDigest hashes the dataset file's content, falling back to its
// name when it cannot be read (for example with a remote estimator).
func datasetDigest(root, dataset string) string {
	path := dataset
	if root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	if data, err := os.ReadFile(path); err == nil {
		return cache.Hash(data)
	}
	return cache.Hash([]byte(dataset))
}
