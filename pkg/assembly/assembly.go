// Package assembly composes a primary curve panel with aligned risk
// tables.
//
// An [Assembly] is an immutable recipe: a curve model, the ordered plot
// operations to apply to the primary panel and the ordered risk-table
// specs to stack under it. Every method returns a new Assembly and leaves
// the receiver untouched, so recipes can be branched and shared between
// goroutines freely. Nothing is resolved until [Assembly.Build].
//
// Build resolves the primary panel first. Each risk table then reuses the
// primary's resolved x axis as-is, and every panel gets the same plot-area
// left edge (the largest requirement of any panel) and the same right edge.
// The result is a frozen [figure.Figure].
package assembly

import (
	"maps"
	"slices"

	"github.com/matzehuels/survfit/pkg/curve"
	"github.com/matzehuels/survfit/pkg/errors"
	"github.com/matzehuels/survfit/pkg/figure"
	"github.com/matzehuels/survfit/pkg/plot"
	"github.com/matzehuels/survfit/pkg/risktable"
	"github.com/matzehuels/survfit/pkg/scale"
)

// Assembly is an unresolved figure recipe.
type Assembly struct {
	model  *curve.Model
	ops    []plot.Op
	tables []risktable.Spec
}

// New starts a recipe for m.
func New(m *curve.Model) Assembly {
	return Assembly{model: m}
}

// Model returns the curve model.
func (a Assembly) Model() *curve.Model { return a.model }

// Apply appends primary-panel operations. Their errors surface at Build.
func (a Assembly) Apply(ops ...plot.Op) Assembly {
	a.ops = slices.Concat(a.ops, ops)
	return a
}

// AddRiskTable appends a risk table under the primary panel.
func (a Assembly) AddRiskTable(spec risktable.Spec) Assembly {
	spec.Stats = slices.Clone(spec.Stats)
	spec.Times = slices.Clone(spec.Times)
	spec.Symbols = maps.Clone(spec.Symbols)
	a.tables = slices.Concat(a.tables, []risktable.Spec{spec})
	return a
}

// Tables returns the risk-table specs in stacking order.
func (a Assembly) Tables() []risktable.Spec { return slices.Clone(a.tables) }

// AddConfidenceBand adds the confidence ribbon.
func (a Assembly) AddConfidenceBand() Assembly { return a.Apply(plot.ConfidenceBand()) }

// AddCensorMarks adds censor marks.
func (a Assembly) AddCensorMarks() Assembly { return a.Apply(plot.CensorMarks()) }

// AddQuantile adds one quantile guide.
func (a Assembly) AddQuantile(g plot.QuantileGuide) Assembly { return a.Apply(plot.Quantile(g)) }

// AddComparison adds a comparison annotation.
func (a Assembly) AddComparison(c plot.Comparison) Assembly { return a.Apply(plot.Compare(c)) }

// Without removes every overlay with the given name.
func (a Assembly) Without(name string) Assembly { return a.Apply(plot.Without(name)) }

// ScaleX replaces the x scale.
func (a Assembly) ScaleX(s scale.Scale) Assembly { return a.Apply(plot.ScaleX(s)) }

// ScaleY replaces the y scale.
func (a Assembly) ScaleY(s scale.Scale) Assembly { return a.Apply(plot.ScaleY(s)) }

// Title sets the title and subtitle.
func (a Assembly) Title(title, subtitle string) Assembly { return a.Apply(plot.Title(title, subtitle)) }

// Labels sets the axis labels.
func (a Assembly) Labels(x, y string) Assembly { return a.Apply(plot.Labels(x, y)) }

// Caption sets the caption under the primary panel.
func (a Assembly) Caption(text string) Assembly { return a.Apply(plot.Caption(text)) }

// Legend places the strata legend.
func (a Assembly) Legend(pos plot.LegendPosition) Assembly { return a.Apply(plot.Legend(pos)) }

// Facet draws one panel per stratum. It cannot be combined with risk tables.
func (a Assembly) Facet() Assembly { return a.Apply(plot.Facet()) }

// Size sets the primary panel size in figure units.
func (a Assembly) Size(w, h float64) Assembly { return a.Apply(plot.Size(w, h)) }

// Theme replaces the theme shared by all panels.
func (a Assembly) Theme(t figure.Theme) Assembly { return a.Apply(plot.Theme(t)) }

// Modify applies an arbitrary edit to the primary spec.
func (a Assembly) Modify(fn func(*plot.Spec)) Assembly { return a.Apply(plot.Modify(fn)) }

// Spec applies the recipe's operations to a fresh primary spec.
func (a Assembly) Spec() (plot.Spec, error) {
	spec := plot.NewSpec(a.model)
	for _, op := range a.ops {
		if err := op(&spec); err != nil {
			return plot.Spec{}, err
		}
	}
	return spec, nil
}

type buildConfig struct {
	roles   plot.Roles
	spacing float64
}

// BuildOption configures Build.
type BuildOption func(*buildConfig)

// WithRoles sets the aesthetic roles. Without it Build uses
// [plot.DefaultRoles].
func WithRoles(r plot.Roles) BuildOption {
	return func(c *buildConfig) { c.roles = r }
}

// WithSpacing sets the vertical gap between stacked panels.
func WithSpacing(s float64) BuildOption {
	return func(c *buildConfig) { c.spacing = max(0, s) }
}

// Build resolves the recipe into a frozen figure.
func (a Assembly) Build(opts ...BuildOption) (*figure.Figure, error) {
	cfg := buildConfig{roles: plot.DefaultRoles()}
	for _, opt := range opts {
		opt(&cfg)
	}

	spec, err := a.Spec()
	if err != nil {
		return nil, err
	}
	if spec.Facet && len(a.tables) > 0 {
		return nil, errors.Layout("risk tables cannot be combined with faceting")
	}
	r, err := plot.Resolve(spec, cfg.roles)
	if err != nil {
		return nil, err
	}
	if len(a.tables) == 0 {
		return figure.New(spec.Theme, r.Draw(figure.Point{}, r.Margins())), nil
	}

	x := r.XAxis()
	margins := r.Margins()
	tables := make([]risktable.Table, len(a.tables))
	tableMargins := make([]figure.Margins, len(a.tables))
	for i, ts := range a.tables {
		tbl, err := risktable.Resolve(ts, a.model, x.Breaks)
		if err != nil {
			return nil, err
		}
		tables[i] = tbl
		tableMargins[i] = risktable.Measure(tbl, spec.Theme)
		margins.Left = max(margins.Left, tableMargins[i].Left)
	}
	if spec.Width-margins.Left-margins.Right <= 0 {
		return nil, errors.Layout("risk table headers leave no room for the plot area in a figure %g wide", spec.Width)
	}

	primary := r.Draw(figure.Point{}, margins)
	panels := []figure.Panel{primary}
	y := primary.Frame.Bottom()
	for i, tbl := range tables {
		h := a.tables[i].Height
		if h == 0 {
			h = risktable.DefaultHeight
		}
		y += cfg.spacing
		frame := figure.Rect{Y: y, W: spec.Width, H: h * spec.Height}
		m := tableMargins[i]
		m.Left, m.Right = margins.Left, margins.Right
		panels = append(panels, risktable.Draw(tbl, spec.Theme, frame, m, x))
		y = frame.Bottom()
	}
	return figure.New(spec.Theme, panels...), nil
}
