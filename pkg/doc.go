// Package pkg provides the core libraries for survfit figure assembly.
//
// # Overview
//
// survfit turns estimated survival and cumulative incidence curves into
// publication figures: a curve panel with optional overlays, stacked over
// aligned risk tables that share the panel's time axis. The pkg directory is
// organized into three main areas:
//
//  1. Domain logic (curves, scales, plot specs, risk tables, figures)
//  2. Output (rendering, raster conversion, composition)
//  3. Orchestration and infrastructure (recipes, pipeline, cache, config)
//
// # Architecture
//
// The typical data flow through survfit:
//
//	curve table (CSV/JSON)
//	         ↓
//	    [io] package (read a curve model)
//	         ↓
//	    [assembly] package (record plot ops and risk tables)
//	         ↓
//	    [figure] package (resolved, aligned panels)
//	         ↓
//	    [render] / [export] packages (SVG, PNG, PDF, JSON)
//
// # Quick Start
//
// Read a curve table and render a figure with one risk table:
//
//	import (
//	    "github.com/matzehuels/survfit/pkg/assembly"
//	    "github.com/matzehuels/survfit/pkg/curve"
//	    curveio "github.com/matzehuels/survfit/pkg/io"
//	    "github.com/matzehuels/survfit/pkg/render"
//	    "github.com/matzehuels/survfit/pkg/risktable"
//	)
//
//	model, _ := curveio.Import("lung.csv", curve.KindSurvival)
//	fig, _ := assembly.New(model).
//	    AddCensorMarks().
//	    AddRiskTable(risktable.Spec{Stats: []risktable.Statistic{risktable.Stat(curve.KeyNRisk)}}).
//	    Build()
//	svg := render.SVG(fig)
//
// # Main Packages
//
// ## Domain Logic
//
// [curve] - Estimated curve models, strata, records and the statistic keys
// risk tables read from them.
//
// [scale] - Axis scale requests and their resolution into limits, breaks and
// labels. Resolved axes are shared between aligned panels.
//
// [plot] - The curve panel specification and the ops that edit it
// (overlays, scales, labels, legend, facets).
//
// [risktable] - Risk table specs, statistic templates and table evaluation
// at the break times of the primary panel.
//
// [assembly] - Immutable builder that collects ops and risk tables and
// resolves them into a [figure.Figure] in one pass.
//
// [figure] - The resolved figure: panels, proportions, placements and a
// content-derived ID.
//
// ## Output
//
// [compose] - Grids and stacks of figures, rendered as one document.
//
// [render] - SVG and JSON writers plus raster conversion.
//
// [export] - Format selection, physical size and DPI handling for saved
// files.
//
// ## Orchestration
//
// [recipe] - TOML figure recipes.
//
// [pipeline] - Recipe to artifacts (estimate, build, render) with model and
// artifact caching. Used by the CLI and the preview server.
//
// [cache] - File, Redis and null caches plus the key derivation for models
// and artifacts.
//
// [config] - Environment configuration and cache backend selection.
//
// [observability] - Hooks for pipeline, cache and server events.
//
// [errors] - Structured errors with codes and input validation.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                 # All tests
//	go test ./pkg/risktable/...       # Specific package
//	go test -run Example ./pkg/...    # Examples only
//	SURVFIT_REDIS_URL=redis://localhost:6379/0 go test ./pkg/cache/...
//
// [curve]: https://pkg.go.dev/github.com/matzehuels/survfit/pkg/curve
// [scale]: https://pkg.go.dev/github.com/matzehuels/survfit/pkg/scale
// [plot]: https://pkg.go.dev/github.com/matzehuels/survfit/pkg/plot
// [risktable]: https://pkg.go.dev/github.com/matzehuels/survfit/pkg/risktable
// [assembly]: https://pkg.go.dev/github.com/matzehuels/survfit/pkg/assembly
// [figure]: https://pkg.go.dev/github.com/matzehuels/survfit/pkg/figure
// [figure.Figure]: https://pkg.go.dev/github.com/matzehuels/survfit/pkg/figure#Figure
// [compose]: https://pkg.go.dev/github.com/matzehuels/survfit/pkg/compose
// [render]: https://pkg.go.dev/github.com/matzehuels/survfit/pkg/render
// [export]: https://pkg.go.dev/github.com/matzehuels/survfit/pkg/export
// [io]: https://pkg.go.dev/github.com/matzehuels/survfit/pkg/io
// [recipe]: https://pkg.go.dev/github.com/matzehuels/survfit/pkg/recipe
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/survfit/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/survfit/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/survfit/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/survfit/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/survfit/pkg/errors
package pkg
