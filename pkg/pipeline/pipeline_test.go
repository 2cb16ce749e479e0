package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/survfit/pkg/cache"
	"github.com/matzehuels/survfit/pkg/curve"
	"github.com/matzehuels/survfit/pkg/errors"
	curveio "github.com/matzehuels/survfit/pkg/io"
	"github.com/matzehuels/survfit/pkg/recipe"
)

const trialCSV = `time,n.risk,n.event,n.censor,estimate,conf.low,conf.high,strata
0,10,0,0,1,1,1,Control
2,10,2,1,0.8,0.6,0.95,Control
4,7,3,0,0.5,0.3,0.7,Control
0,12,0,0,1,1,1,Treated
3,12,1,0,0.9,0.8,1,Treated
`

const trialRecipe = `
name  = "trial-km"
title = "Overall survival"

[data]
path    = "trial.csv"
formula = "Surv(time, status) ~ arm"

[overlays]
censor = true

[[risk_table]]
title = "Number at risk"

[output]
formats = ["svg", "json"]
`

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.ttls[key] = ttl
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

// writeTrial writes the recipe and its data to a temp dir and returns the
// recipe path.
func writeTrial(t *testing.T, recipeText string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "trial.csv"), []byte(trialCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "trial.toml")
	if err := os.WriteFile(path, []byte(recipeText), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// countingEstimator counts estimations served from disk.
func countingEstimator(root string, calls *int) curve.Estimator {
	return curve.EstimatorFunc(func(ctx context.Context, req curve.Request) (*curve.Model, error) {
		*calls++
		return curveio.FileEstimator{Root: root, Kind: curve.KindSurvival}.Estimate(ctx, req)
	})
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	path := writeTrial(t, trialRecipe)
	opts := Options{RecipePath: path}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if len(opts.Formats) != 2 || opts.Formats[0] != "svg" || opts.Formats[1] != "json" {
		t.Errorf("Formats = %v, want recipe formats", opts.Formats)
	}
	if opts.DPI != 300 {
		t.Errorf("DPI = %v, want 300", opts.DPI)
	}
	if opts.DataRoot != filepath.Dir(path) {
		t.Errorf("DataRoot = %q", opts.DataRoot)
	}
	if opts.Logger != nil {
		t.Error("Logger should stay nil so the runner's logger applies")
	}
	if opts.Name() != "trial-km" {
		t.Errorf("Name() = %q", opts.Name())
	}
}

func TestOptionsOverrides(t *testing.T) {
	rec, err := recipe.Parse([]byte(trialRecipe))
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Recipe: rec, Formats: []string{"png"}, DPI: 150}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != "png" || opts.DPI != 150 {
		t.Errorf("overrides lost: %v @ %v", opts.Formats, opts.DPI)
	}
}

func TestOptionsValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no recipe", Options{}, errors.ErrCodeInvalidInput},
		{"missing file", Options{RecipePath: filepath.Join(t.TempDir(), "none.toml")}, errors.ErrCodeFileNotFound},
		{"bad format", Options{RecipePath: writeTrial(t, trialRecipe), Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"negative dpi", Options{RecipePath: writeTrial(t, trialRecipe), DPI: -1}, errors.ErrCodeConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{RecipePath: writeTrial(t, trialRecipe)}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	first := opts
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Recipe != first.Recipe || len(opts.Formats) != len(first.Formats) {
		t.Error("second call changed options")
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	path := writeTrial(t, trialRecipe)
	r := NewRunner(nil, nil, nil)

	res, err := r.Execute(ctx, Options{RecipePath: path})
	if err != nil {
		t.Fatal(err)
	}
	if res.Name != "trial-km" {
		t.Errorf("Name = %q", res.Name)
	}
	if res.Stats.Strata != 2 || res.Stats.Panels != 2 {
		t.Errorf("stats = %+v, want 2 strata and 2 panels", res.Stats)
	}
	if !bytes.HasPrefix(res.Artifacts["svg"], []byte("<svg")) {
		t.Errorf("svg artifact = %.40q", res.Artifacts["svg"])
	}
	if !bytes.Contains(res.Artifacts["json"], []byte(res.Figure.ID())) {
		t.Error("json artifact does not carry the figure id")
	}
	if res.CacheInfo.ModelHit || res.CacheInfo.RenderHit {
		t.Errorf("null cache reported hits: %+v", res.CacheInfo)
	}
}

func TestExecuteCaching(t *testing.T) {
	ctx := context.Background()
	path := writeTrial(t, trialRecipe)
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	calls := 0
	est := countingEstimator(filepath.Dir(path), &calls)

	first, err := r.Execute(ctx, Options{RecipePath: path, Estimator: est})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.ModelHit || first.CacheInfo.RenderHit {
		t.Errorf("first run hit the cache: %+v", first.CacheInfo)
	}

	second, err := r.Execute(ctx, Options{RecipePath: path, Estimator: est})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.ModelHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run missed the cache: %+v", second.CacheInfo)
	}
	if calls != 1 {
		t.Errorf("estimator called %d times, want 1", calls)
	}
	if second.Figure.ID() != first.Figure.ID() {
		t.Error("cached model built a different figure")
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached svg differs")
	}

	if _, err := r.Execute(ctx, Options{RecipePath: path, Estimator: est, Refresh: true}); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("refresh did not re-estimate: %d calls", calls)
	}
}

func TestExecuteLogsThroughOptionsLogger(t *testing.T) {
	var runnerLog, runLog bytes.Buffer
	r := NewRunner(nil, nil, log.New(&runnerLog))
	opts := Options{RecipePath: writeTrial(t, trialRecipe), Logger: log.New(&runLog).With("request_id", "abc")}
	if _, err := r.Execute(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	for _, msg := range []string{"estimated curves", "built figure", "rendered outputs", "request_id=abc"} {
		if !strings.Contains(runLog.String(), msg) {
			t.Errorf("run log missing %q:\n%s", msg, runLog.String())
		}
	}
	if runnerLog.Len() != 0 {
		t.Errorf("runner logger should be unused, got %q", runnerLog.String())
	}
}

func TestModelCacheSeparatesEstimators(t *testing.T) {
	ctx := context.Background()
	path := writeTrial(t, trialRecipe)
	r := NewRunner(newMemCache(), nil, nil)

	if _, hit, err := r.EstimateWithCacheInfo(ctx, Options{RecipePath: path}); err != nil || hit {
		t.Fatalf("file estimator: hit=%v err=%v", hit, err)
	}

	calls := 0
	custom := Options{RecipePath: path, Estimator: countingEstimator(filepath.Dir(path), &calls)}
	if _, hit, err := r.EstimateWithCacheInfo(ctx, custom); err != nil || hit {
		t.Fatalf("custom estimator reused the file estimator's model: hit=%v err=%v", hit, err)
	}
	if calls != 1 {
		t.Errorf("custom estimator calls = %d, want 1", calls)
	}

	named := Options{RecipePath: path, Estimator: countingEstimator(filepath.Dir(path), &calls), EstimatorID: "other"}
	if _, hit, err := r.EstimateWithCacheInfo(ctx, named); err != nil || hit {
		t.Fatalf("estimator with its own ID reused a model: hit=%v err=%v", hit, err)
	}
}

func TestRunnerArtifactTTL(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
		want time.Duration
	}{
		{"default", 0, cache.TTLArtifact},
		{"configured", time.Hour, time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newMemCache()
			r := NewRunner(c, nil, nil)
			r.ArtifactTTL = tt.ttl
			if _, err := r.Execute(context.Background(), Options{RecipePath: writeTrial(t, trialRecipe)}); err != nil {
				t.Fatal(err)
			}
			if len(c.ttls) == 0 {
				t.Fatal("nothing was cached")
			}
			for key, ttl := range c.ttls {
				want := tt.want
				if strings.HasPrefix(key, "model:") {
					want = cache.TTLModel
				}
				if ttl != want {
					t.Errorf("ttl for %s = %v, want %v", key, ttl, want)
				}
			}
		})
	}
}

func TestExecuteRecipeEditRerenders(t *testing.T) {
	ctx := context.Background()
	path := writeTrial(t, trialRecipe)
	r := NewRunner(newMemCache(), nil, nil)

	first, err := r.Execute(ctx, Options{RecipePath: path})
	if err != nil {
		t.Fatal(err)
	}

	rec, _ := recipe.Load(path)
	rec.Title = "Progression-free survival"
	second, err := r.Execute(ctx, Options{Recipe: rec, DataRoot: filepath.Dir(path)})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.ModelHit {
		t.Error("title change should not re-estimate")
	}
	if second.CacheInfo.RenderHit {
		t.Error("title change should re-render")
	}
	if second.Figure.ID() == first.Figure.ID() {
		t.Error("title change kept the figure id")
	}
}

func TestExecuteEstimationError(t *testing.T) {
	path := writeTrial(t, trialRecipe)
	failing := curve.EstimatorFunc(func(context.Context, curve.Request) (*curve.Model, error) {
		return nil, errors.New(errors.ErrCodeEstimation, "model did not converge")
	})
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{RecipePath: path, Estimator: failing})
	if !errors.Is(err, errors.ErrCodeEstimation) {
		t.Errorf("error = %v, want ESTIMATION", err)
	}
}

func TestExecuteLayoutError(t *testing.T) {
	path := writeTrial(t, "facet = true\n"+trialRecipe)
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{RecipePath: path})
	if !errors.Is(err, errors.ErrCodeLayout) {
		t.Errorf("error = %v, want LAYOUT", err)
	}
}

func TestResultSave(t *testing.T) {
	path := writeTrial(t, trialRecipe)
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{RecipePath: path})
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := res.Save(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "trial-km.json"), filepath.Join(dir, "trial-km.svg")}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Error(err)
		}
	}
}

func TestRunnerFileCache(t *testing.T) {
	ctx := context.Background()
	path := writeTrial(t, trialRecipe)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, cache.NewScopedKeyer(nil, "test:"), nil)
	defer r.Close()

	if _, err := r.Execute(ctx, Options{RecipePath: path}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Execute(ctx, Options{RecipePath: path})
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheInfo.ModelHit || !res.CacheInfo.RenderHit {
		t.Errorf("file cache missed: %+v", res.CacheInfo)
	}
}
