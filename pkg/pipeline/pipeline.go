// Package pipeline runs figure recipes end to end.
//
// A run has three stages:
//
//  1. Estimate: obtain the curve model for the recipe's data section
//  2. Build: translate the recipe into an assembly and resolve it
//  3. Render: encode the resolved figure in each requested format
//
// Estimated models and rendered artifacts are cached. Models are keyed by
// the dataset's content and the estimation request; artifacts by the
// figure's content-derived ID and the output settings, so editing a
// recipe only re-renders when the resolved figure actually changes.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    RecipePath: "figures/lung-km.toml",
//	    Formats:    []string{"svg", "png"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// The CLI, the preview server and tests all go through [Runner].
package pipeline

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/survfit/pkg/cache"
	"github.com/matzehuels/survfit/pkg/curve"
	"github.com/matzehuels/survfit/pkg/errors"
	"github.com/matzehuels/survfit/pkg/export"
	"github.com/matzehuels/survfit/pkg/figure"
	"github.com/matzehuels/survfit/pkg/recipe"
)

// DefaultFormat is rendered when neither options nor recipe name formats.
const DefaultFormat = export.FormatSVG

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	export.FormatSVG:  true,
	export.FormatPNG:  true,
	export.FormatPDF:  true,
	export.FormatJSON: true,
}

// Options configures one pipeline run.
type Options struct {
	// RecipePath is the TOML recipe to run. Ignored when Recipe is set.
	RecipePath string
	// Recipe is an already decoded recipe.
	Recipe *recipe.Recipe
	// DataRoot resolves relative data paths. Defaults to the recipe's
	// directory, or the working directory for in-memory recipes.
	DataRoot string

	// Output overrides for the recipe's [output] section.
	Formats  []string
	DPI      float64
	WidthIn  float64
	HeightIn float64

	// Refresh skips cache reads. Fresh results are still written back.
	Refresh bool

	// Estimator supplies curve models. Defaults to reading precomputed
	// tables from DataRoot.
	Estimator curve.Estimator
	// EstimatorID separates cached models of different estimators. Empty
	// means the estimator's type name.
	EstimatorID string

	// Logger receives the run's stage logs. Nil means the runner's logger.
	Logger *log.Logger

	validated bool
}

// Result is the output of a pipeline run.
type Result struct {
	// Name identifies the figure: the recipe name, or the recipe file's
	// base name.
	Name   string
	Recipe *recipe.Recipe
	Model  *curve.Model
	Figure *figure.Figure

	// Artifacts holds the encoded outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats records sizes and stage timings.
type Stats struct {
	Strata       int
	Panels       int
	EstimateTime time.Duration
	BuildTime    time.Duration
	RenderTime   time.Duration
}

// CacheInfo records which stages were served from cache.
type CacheInfo struct {
	ModelHit  bool
	RenderHit bool // every requested artifact was cached
}

// ValidateFormat checks that format is supported. Formats are lower case.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be one of: %s)", format, strings.Join(export.Formats, ", "))
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults loads the recipe if needed, checks the output
// settings and fills in defaults. Calling it again is a no-op.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Recipe == nil {
		if o.RecipePath == "" {
			return errors.New(errors.ErrCodeInvalidInput, "a recipe or recipe path is required")
		}
		rec, err := recipe.Load(o.RecipePath)
		if err != nil {
			return err
		}
		o.Recipe = rec
	}
	if o.DataRoot == "" && o.RecipePath != "" {
		o.DataRoot = filepath.Dir(o.RecipePath)
	}

	out := o.Recipe.Output
	if len(o.Formats) == 0 {
		o.Formats = out.Formats
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.DPI == 0 {
		o.DPI = out.DPI
	}
	if o.DPI == 0 {
		o.DPI = export.DefaultDPI
	}
	if o.WidthIn == 0 && o.HeightIn == 0 {
		o.WidthIn, o.HeightIn = out.WidthIn, out.HeightIn
	}
	if o.DPI < 0 || o.WidthIn < 0 || o.HeightIn < 0 {
		return errors.Configuration("output DPI and size cannot be negative")
	}
	o.validated = true
	return nil
}

// Name returns the figure name for the options' recipe.
func (o *Options) Name() string {
	if o.Recipe != nil && o.Recipe.Name != "" {
		return o.Recipe.Name
	}
	if o.RecipePath != "" {
		base := filepath.Base(o.RecipePath)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return "figure"
}

// ExportOptions returns the export settings for format.
func (o *Options) ExportOptions(format string) export.Options {
	return export.Options{Format: format, DPI: o.DPI, WidthIn: o.WidthIn, HeightIn: o.HeightIn}
}

// ArtifactKeyOpts returns the cache key options for format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, WidthIn: o.WidthIn, HeightIn: o.HeightIn}
	if format == export.FormatPNG {
		k.DPI = o.DPI
	}
	return k
}
