package plot

import (
	"slices"
	"sync/atomic"

	"github.com/matzehuels/survfit/pkg/curve"
	"github.com/matzehuels/survfit/pkg/errors"
	"github.com/matzehuels/survfit/pkg/figure"
	"github.com/matzehuels/survfit/pkg/scale"
)

const (
	DefaultWidth  = 640.0
	DefaultHeight = 420.0
)

// LegendPosition places the strata legend.
type LegendPosition string

const (
	LegendRight  LegendPosition = "right"
	LegendTop    LegendPosition = "top"
	LegendBottom LegendPosition = "bottom"
	LegendNone   LegendPosition = "none"
)

// Spec is the recipe for the primary panel.
type Spec struct {
	Model    *curve.Model
	Width    float64
	Height   float64
	Title    string
	Subtitle string
	XLabel   string
	YLabel   string
	Caption  string
	Legend   LegendPosition
	Facet    bool
	X, Y     *scale.Scale
	Theme    figure.Theme

	overlays []Overlay
}

// NewSpec returns the default recipe for m.
func NewSpec(m *curve.Model) Spec {
	s := Spec{
		Model:  m,
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Legend: LegendRight,
		Theme:  figure.DefaultTheme(),
		XLabel: "Time",
	}
	if m != nil && m.Kind() == curve.KindIncidence {
		s.YLabel = "Cumulative Incidence"
	} else {
		s.YLabel = "Survival Probability"
	}
	return s
}

// Overlays returns the overlays in the order they were added.
func (s Spec) Overlays() []Overlay { return slices.Clone(s.overlays) }

// Has reports whether an overlay with the given name is present.
func (s Spec) Has(name string) bool {
	return slices.ContainsFunc(s.overlays, func(o Overlay) bool { return o.Name() == name })
}

func (s Spec) validate() error {
	if s.Model == nil {
		return errors.Configuration("plot has no curve model")
	}
	if s.Width <= 0 || s.Height <= 0 {
		return errors.Configuration("plot size must be positive, got %gx%g", s.Width, s.Height)
	}
	switch s.Legend {
	case LegendRight, LegendTop, LegendBottom, LegendNone:
	default:
		return errors.Configuration("unknown legend position %q", s.Legend)
	}
	return nil
}

// Op edits a spec. Ops are applied in order when a recipe is built; the
// first error aborts the build.
type Op func(*Spec) error

// ConfidenceBand adds the confidence ribbon. Adding it again is a no-op.
func ConfidenceBand() Op {
	return func(s *Spec) error {
		if !s.Has(NameConfidence) {
			s.overlays = append(s.overlays, Confidence{Opacity: 0.2})
		}
		return nil
	}
}

// CensorMarks adds a mark at every time with censored observations.
func CensorMarks() Op {
	return func(s *Spec) error {
		if !s.Has(NameCensor) {
			s.overlays = append(s.overlays, Censor{Size: 6, Shape: "plus"})
		}
		return nil
	}
}

// Quantile adds one guide line. Exactly one of g.Y and g.X must be set.
func Quantile(g QuantileGuide) Op {
	return func(s *Spec) error {
		if err := g.validate(); err != nil {
			return err
		}
		s.overlays = append(s.overlays, g)
		return nil
	}
}

// Compare adds a statistical-comparison annotation.
func Compare(c Comparison) Op {
	return func(s *Spec) error {
		if c.Text == "" {
			return errors.Configuration("comparison annotation needs text")
		}
		s.overlays = append(s.overlays, c)
		return nil
	}
}

// Without removes every overlay with the given name.
func Without(name string) Op {
	return func(s *Spec) error {
		s.overlays = slices.DeleteFunc(slices.Clone(s.overlays), func(o Overlay) bool { return o.Name() == name })
		return nil
	}
}

// ScaleX replaces the x scale. A previous x scale is discarded entirely.
func ScaleX(sc scale.Scale) Op {
	return func(s *Spec) error {
		if err := sc.Validate(); err != nil {
			return err
		}
		sc.Limits, sc.Breaks = slices.Clone(sc.Limits), slices.Clone(sc.Breaks)
		s.X = &sc
		return nil
	}
}

// ScaleY replaces the y scale. A previous y scale is discarded entirely.
func ScaleY(sc scale.Scale) Op {
	return func(s *Spec) error {
		if err := sc.Validate(); err != nil {
			return err
		}
		sc.Limits, sc.Breaks = slices.Clone(sc.Limits), slices.Clone(sc.Breaks)
		s.Y = &sc
		return nil
	}
}

// Title sets the title and subtitle.
func Title(title, subtitle string) Op {
	return func(s *Spec) error {
		s.Title, s.Subtitle = title, subtitle
		return nil
	}
}

// Labels sets the axis titles.
func Labels(x, y string) Op {
	return func(s *Spec) error {
		s.XLabel, s.YLabel = x, y
		return nil
	}
}

// Caption sets the caption under the panel.
func Caption(text string) Op {
	return func(s *Spec) error {
		s.Caption = text
		return nil
	}
}

// Legend moves the legend.
func Legend(pos LegendPosition) Op {
	return func(s *Spec) error {
		s.Legend = pos
		return nil
	}
}

// Size sets the panel size in figure units.
func Size(w, h float64) Op {
	return func(s *Spec) error {
		if w <= 0 || h <= 0 {
			return errors.Configuration("plot size must be positive, got %gx%g", w, h)
		}
		s.Width, s.Height = w, h
		return nil
	}
}

// Facet splits the panel into one facet per stratum label.
func Facet() Op {
	return func(s *Spec) error {
		s.Facet = true
		return nil
	}
}

// Theme replaces the theme.
func Theme(t figure.Theme) Op {
	return func(s *Spec) error {
		if t.FontSize <= 0 {
			return errors.Configuration("theme font size must be positive")
		}
		s.Theme = t
		return nil
	}
}

// Modify applies an arbitrary edit.
func Modify(fn func(*Spec)) Op {
	return func(s *Spec) error {
		if fn == nil {
			return errors.Configuration("modify needs a function")
		}
		fn(s)
		return nil
	}
}

// Roles assigns the color and linetype channels.
type Roles int32

const (
	// StrataColor maps strata to color and outcomes to linetype.
	StrataColor Roles = iota
	// StrataLinetype maps strata to linetype and outcomes to color.
	StrataLinetype
)

var defaultRoles atomic.Int32

// DefaultRoles returns the process-wide fallback roles.
func DefaultRoles() Roles { return Roles(defaultRoles.Load()) }

// SetDefaultRoles changes the process-wide fallback and returns a function
// restoring the previous value.
func SetDefaultRoles(r Roles) (reset func()) {
	prev := defaultRoles.Swap(int32(r))
	return func() { defaultRoles.Store(prev) }
}
