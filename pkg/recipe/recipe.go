// Package recipe reads figure recipes from TOML.
//
// A recipe names a curve table, the styling of the primary panel, the risk
// tables to stack under it and the outputs to write:
//
//	name   = "lung-km"
//	title  = "Overall survival"
//	legend = "bottom"
//
//	[data]
//	path    = "lung.csv"
//	formula = "Surv(time, status) ~ sex"
//
//	[x]
//	breaks = [0, 6, 12, 18, 24]
//
//	[overlays]
//	confidence = true
//	censor     = true
//
//	[[quantile]]
//	y = 0.5
//
//	[[risk_table]]
//	title = "Number at risk"
//	stats = ["n.risk", "{n.event} ({cum.event})"]
//
//	[output]
//	formats = ["svg", "png"]
//	dpi     = 300
//
// A recipe is only a description. [Recipe.Assembly] turns it into an
// unresolved [assembly.Assembly] for a model; nothing is resolved until the
// assembly is built.
package recipe

import (
	"bytes"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/survfit/pkg/assembly"
	"github.com/matzehuels/survfit/pkg/curve"
	"github.com/matzehuels/survfit/pkg/errors"
	"github.com/matzehuels/survfit/pkg/figure"
	"github.com/matzehuels/survfit/pkg/plot"
	"github.com/matzehuels/survfit/pkg/risktable"
	"github.com/matzehuels/survfit/pkg/scale"
)

// Role names accepted by the roles key.
const (
	RolesStrataColor    = "strata-color"
	RolesStrataLinetype = "strata-linetype"
)

// Recipe is a decoded figure recipe.
type Recipe struct {
	Name     string    `toml:"name,omitempty"`
	Title    string    `toml:"title,omitempty"`
	Subtitle string    `toml:"subtitle,omitempty"`
	Caption  string    `toml:"caption,omitempty"`
	XLabel   *string   `toml:"x_label,omitempty"`
	YLabel   *string   `toml:"y_label,omitempty"`
	Legend   string    `toml:"legend,omitempty"`
	Facet    bool      `toml:"facet,omitempty"`
	Roles    string    `toml:"roles,omitempty"`
	Width    float64   `toml:"width,omitempty"`
	Height   float64   `toml:"height,omitempty"`
	FontSize float64   `toml:"font_size,omitempty"`
	Palette  []string  `toml:"palette,omitempty"`
	Spacing  float64   `toml:"spacing,omitempty"`
	Data     Data      `toml:"data"`
	X        *Scale    `toml:"x,omitempty"`
	Y        *Scale    `toml:"y,omitempty"`
	Overlays Overlays  `toml:"overlays,omitempty"`
	Quantile []Guide   `toml:"quantile,omitempty"`
	Compare  []Compare `toml:"comparison,omitempty"`
	Tables   []Table   `toml:"risk_table,omitempty"`
	Output   Output    `toml:"output,omitempty"`
}

// Data locates the curve table.
type Data struct {
	Path       string `toml:"path"`
	Kind       string `toml:"kind,omitempty"`
	Formula    string `toml:"formula,omitempty"`
	Adjustment string `toml:"adjustment,omitempty"`
}

// Scale mirrors [scale.Scale] with a named transform.
type Scale struct {
	Limits    []float64 `toml:"limits,omitempty"`
	Breaks    []float64 `toml:"breaks,omitempty"`
	N         int       `toml:"n,omitempty"`
	Percent   bool      `toml:"percent,omitempty"`
	Transform string    `toml:"transform,omitempty"`
}

// Overlays toggles the named overlays.
type Overlays struct {
	Confidence bool `toml:"confidence,omitempty"`
	Censor     bool `toml:"censor,omitempty"`
}

// Guide is one quantile guide.
type Guide struct {
	Y    *float64 `toml:"y,omitempty"`
	X    *float64 `toml:"x,omitempty"`
	Drop bool     `toml:"drop,omitempty"`
}

// Compare is one comparison annotation.
type Compare struct {
	Text    string  `toml:"text"`
	Caption bool    `toml:"caption,omitempty"`
	X       float64 `toml:"x,omitempty"`
	Y       float64 `toml:"y,omitempty"`
}

// Table is one risk table. Stats entries containing "{" are templates,
// others are plain statistic keys. Labels, when given, pair up with Stats.
type Table struct {
	Title   string            `toml:"title,omitempty"`
	Group   string            `toml:"group,omitempty"`
	Stats   []string          `toml:"stats,omitempty"`
	Labels  []string          `toml:"labels,omitempty"`
	Times   []float64         `toml:"times,omitempty"`
	Symbols map[string]string `toml:"symbols,omitempty"`
	Height  float64           `toml:"height,omitempty"`
}

// Output lists the files to produce.
type Output struct {
	Formats  []string `toml:"formats,omitempty"`
	DPI      float64  `toml:"dpi,omitempty"`
	WidthIn  float64  `toml:"width_in,omitempty"`
	HeightIn float64  `toml:"height_in,omitempty"`
}

// Parse decodes a TOML recipe. Unknown keys are rejected.
func Parse(data []byte) (*Recipe, error) {
	var r Recipe
	md, err := toml.Decode(string(data), &r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode recipe")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.Configuration("unknown recipe keys: %s", strings.Join(keys, ", "))
	}
	if r.Name != "" {
		if err := errors.ValidateRecipeName(r.Name); err != nil {
			return nil, err
		}
	}
	return &r, nil
}

// Load reads and parses the recipe at path.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "recipe %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read recipe %s", path)
	}
	return Parse(data)
}

// Encode writes r back as TOML.
func (r *Recipe) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode recipe")
	}
	return buf.Bytes(), nil
}

// Kind returns the curve kind of the data.
func (r *Recipe) Kind() curve.Kind {
	if r.Data.Kind == "" {
		return curve.KindSurvival
	}
	return curve.Kind(r.Data.Kind)
}

// Request returns the estimation request for the data section.
func (r *Recipe) Request() curve.Request {
	return curve.Request{Dataset: r.Data.Path, Formula: r.Data.Formula, Adjustment: r.Data.Adjustment}
}

// AesRoles returns the aesthetic roles the recipe asks for.
func (r *Recipe) AesRoles() (plot.Roles, error) {
	switch r.Roles {
	case "", RolesStrataColor:
		return plot.StrataColor, nil
	case RolesStrataLinetype:
		return plot.StrataLinetype, nil
	}
	return 0, errors.Configuration("unknown roles %q (want %s or %s)", r.Roles, RolesStrataColor, RolesStrataLinetype)
}

// BuildOptions returns the options to build the recipe's assembly with.
func (r *Recipe) BuildOptions() ([]assembly.BuildOption, error) {
	roles, err := r.AesRoles()
	if err != nil {
		return nil, err
	}
	opts := []assembly.BuildOption{assembly.WithRoles(roles)}
	if r.Spacing > 0 {
		opts = append(opts, assembly.WithSpacing(r.Spacing))
	}
	return opts, nil
}

// Assembly translates the recipe into an unresolved assembly for m.
func (r *Recipe) Assembly(m *curve.Model) (assembly.Assembly, error) {
	a := assembly.New(m)

	if r.FontSize > 0 || len(r.Palette) > 0 {
		th := figure.DefaultTheme()
		if r.FontSize > 0 {
			th.FontSize = r.FontSize
		}
		if len(r.Palette) > 0 {
			th.Palette = append([]string(nil), r.Palette...)
		}
		a = a.Theme(th)
	}
	if r.Width > 0 || r.Height > 0 {
		w, h := r.Width, r.Height
		if w == 0 {
			w = plot.DefaultWidth
		}
		if h == 0 {
			h = plot.DefaultHeight
		}
		a = a.Size(w, h)
	}
	if r.Title != "" || r.Subtitle != "" {
		a = a.Title(r.Title, r.Subtitle)
	}
	if r.Caption != "" {
		a = a.Caption(r.Caption)
	}
	if r.XLabel != nil || r.YLabel != nil {
		x, y := r.XLabel, r.YLabel
		a = a.Modify(func(s *plot.Spec) {
			if x != nil {
				s.XLabel = *x
			}
			if y != nil {
				s.YLabel = *y
			}
		})
	}
	if r.Legend != "" {
		a = a.Legend(plot.LegendPosition(r.Legend))
	}
	if r.Facet {
		a = a.Facet()
	}
	if r.X != nil {
		s, err := r.X.scale()
		if err != nil {
			return assembly.Assembly{}, err
		}
		a = a.ScaleX(s)
	}
	if r.Y != nil {
		s, err := r.Y.scale()
		if err != nil {
			return assembly.Assembly{}, err
		}
		a = a.ScaleY(s)
	}
	if r.Overlays.Confidence {
		a = a.AddConfidenceBand()
	}
	if r.Overlays.Censor {
		a = a.AddCensorMarks()
	}
	for _, g := range r.Quantile {
		a = a.AddQuantile(plot.QuantileGuide{Y: g.Y, X: g.X, Drop: g.Drop})
	}
	for _, c := range r.Compare {
		a = a.AddComparison(plot.Comparison{Text: c.Text, Caption: c.Caption, X: c.X, Y: c.Y})
	}
	for i, t := range r.Tables {
		spec, err := t.spec()
		if err != nil {
			return assembly.Assembly{}, errors.Wrap(errors.ErrCodeConfiguration, err, "risk_table %d", i+1)
		}
		a = a.AddRiskTable(spec)
	}
	return a, nil
}

func (s Scale) scale() (scale.Scale, error) {
	tr, err := scale.TransformByName(s.Transform)
	if err != nil {
		return scale.Scale{}, err
	}
	return scale.Scale{Limits: s.Limits, Breaks: s.Breaks, N: s.N, Percent: s.Percent, Transform: tr}, nil
}

func (t Table) spec() (risktable.Spec, error) {
	if len(t.Labels) > 0 && len(t.Labels) != len(t.Stats) {
		return risktable.Spec{}, errors.Configuration("%d labels for %d stats", len(t.Labels), len(t.Stats))
	}
	spec := risktable.Spec{
		Title:   t.Title,
		Group:   risktable.Grouping(t.Group),
		Times:   t.Times,
		Symbols: t.Symbols,
		Height:  t.Height,
	}
	for i, s := range t.Stats {
		var st risktable.Statistic
		if strings.Contains(s, "{") {
			st = risktable.Template(s, "")
		} else {
			st = risktable.Stat(s)
		}
		if len(t.Labels) > 0 {
			st.Label = t.Labels[i]
		}
		spec.Stats = append(spec.Stats, st)
	}
	return spec, nil
}
