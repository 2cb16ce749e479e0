package plot

import (
	"math"
	"slices"

	"github.com/matzehuels/survfit/pkg/curve"
	"github.com/matzehuels/survfit/pkg/errors"
	"github.com/matzehuels/survfit/pkg/figure"
	"github.com/matzehuels/survfit/pkg/scale"
)

// Layout constants in figure units.
const (
	pad       = 8.0
	tickLen   = 4.0
	gap       = 4.0
	keyLen    = 20.0
	legendGap = 10.0
	stripPad  = 4.0
	curveW    = 1.2
)

type series struct {
	stratum curve.Stratum
	stroke  figure.Stroke
	facet   int
}

type legendEntry struct {
	label  string
	stroke figure.Stroke
}

// Resolved is a spec with its axes, styling and margin requirements
// computed. It is immutable.
type Resolved struct {
	spec    Spec
	x, y    scale.Axis
	series  []series
	legend  []legendEntry
	facets  []string
	margins figure.Margins

	title, subtitle, captions []string
	yTickW                    float64
	legendW, legendH          float64
}

// Resolve computes the geometry of spec without placing it.
func Resolve(spec Spec, roles Roles) (*Resolved, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	m := spec.Model

	xs := scale.Scale{}
	if spec.X != nil {
		xs = *spec.X
	}
	ys := scale.Scale{Limits: []float64{0, 1}}
	if spec.Y != nil {
		ys = *spec.Y
		if ys.Limits == nil {
			ys.Limits = []float64{0, 1}
		}
	}
	lo, hi := m.TimeRange()
	x, err := scale.Resolve(xs, min(0, lo), hi)
	if err != nil {
		return nil, err
	}
	y, err := scale.Resolve(ys, 0, 1)
	if err != nil {
		return nil, err
	}

	r := &Resolved{spec: spec, x: x, y: y}
	r.assignStyles(roles)
	if spec.Facet {
		r.facets = m.Labels()
	}
	if err := r.measure(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Resolved) assignStyles(roles Roles) {
	m, th := r.spec.Model, r.spec.Theme
	labels, outcomes := m.Labels(), m.Outcomes()
	for _, s := range m.Strata() {
		li := slices.Index(labels, s.Label)
		oi := max(0, slices.Index(outcomes, s.Outcome))
		st := figure.Stroke{Width: curveW}
		switch roles {
		case StrataLinetype:
			st.Color, st.Dash = th.Color(oi), th.Linetype(li)
		default:
			st.Color, st.Dash = th.Color(li), th.Linetype(oi)
		}
		facet := 0
		if r.spec.Facet {
			facet = li
		}
		r.series = append(r.series, series{stratum: s, stroke: st, facet: facet})
	}

	if r.spec.Legend == LegendNone {
		return
	}
	if len(labels) > 1 || labels[0] != "" {
		for i, l := range labels {
			st := figure.Stroke{Color: th.Color(i), Width: curveW * 1.5}
			if roles == StrataLinetype {
				st = figure.Stroke{Color: th.Ink, Width: curveW * 1.5, Dash: th.Linetype(i)}
			}
			r.legend = append(r.legend, legendEntry{label: l, stroke: st})
		}
	}
	for i, o := range outcomes {
		st := figure.Stroke{Color: th.Ink, Width: curveW * 1.5, Dash: th.Linetype(i)}
		if roles == StrataLinetype {
			st = figure.Stroke{Color: th.Color(i), Width: curveW * 1.5}
		}
		r.legend = append(r.legend, legendEntry{label: o, stroke: st})
	}
}

func (r *Resolved) measure() error {
	s, th := r.spec, r.spec.Theme
	fs, tick := th.FontSize, th.TickSize()
	wrap := s.Width - 2*pad

	r.title = figure.Wrap(s.Title, th.TitleSize(), wrap)
	r.subtitle = figure.Wrap(s.Subtitle, fs, wrap)
	r.captions = figure.Wrap(s.Caption, tick, wrap)
	for _, o := range s.overlays {
		if c, ok := o.(Comparison); ok && c.Caption {
			r.captions = append(r.captions, figure.Wrap(c.Text, tick, wrap)...)
		}
	}
	for _, l := range r.y.Labels {
		r.yTickW = max(r.yTickW, figure.TextWidth(l, tick))
	}

	var m figure.Margins
	m.Left = pad + r.yTickW + tickLen + gap
	if s.YLabel != "" {
		m.Left += figure.LineHeight(fs) + gap
	}

	m.Top = pad + float64(len(r.title))*figure.LineHeight(th.TitleSize()) +
		float64(len(r.subtitle))*figure.LineHeight(fs)
	if len(r.title)+len(r.subtitle) > 0 {
		m.Top += gap
	}
	m.Top = max(m.Top, pad+figure.LineHeight(tick)/2)

	m.Bottom = tickLen + gap + figure.LineHeight(tick) + pad +
		float64(len(r.captions))*figure.LineHeight(tick)
	if s.XLabel != "" {
		m.Bottom += figure.LineHeight(fs) + gap
	}

	m.Right = pad
	if n := len(r.x.Labels); n > 0 {
		m.Right = max(pad, figure.TextWidth(r.x.Labels[n-1], tick)/2+2)
	}

	if len(r.legend) > 0 {
		entryH := figure.LineHeight(fs)
		switch s.Legend {
		case LegendRight:
			for _, e := range r.legend {
				r.legendW = max(r.legendW, keyLen+gap+figure.TextWidth(e.label, fs))
			}
			r.legendH = float64(len(r.legend)) * entryH
			m.Right += legendGap + r.legendW
		case LegendTop, LegendBottom:
			for _, e := range r.legend {
				r.legendW += keyLen + gap + figure.TextWidth(e.label, fs) + legendGap
			}
			r.legendH = entryH
			if s.Legend == LegendTop {
				m.Top += r.legendH + gap
			} else {
				m.Bottom += r.legendH + gap
			}
		}
	}

	if s.Width-m.Left-m.Right <= 0 || s.Height-m.Top-m.Bottom <= 0 {
		return errors.Layout("plot of %gx%g leaves no room for its plot area", s.Width, s.Height)
	}
	r.margins = m
	return nil
}

// Spec returns the recipe the panel was resolved from.
func (r *Resolved) Spec() Spec { return r.spec }

// XAxis returns the resolved x axis.
func (r *Resolved) XAxis() scale.Axis { return r.x }

// YAxis returns the resolved y axis.
func (r *Resolved) YAxis() scale.Axis { return r.y }

// Margins returns the space the panel needs around its plot area.
func (r *Resolved) Margins() figure.Margins { return r.margins }

// Size returns the panel frame size.
func (r *Resolved) Size() (w, h float64) { return r.spec.Width, r.spec.Height }

// Styles returns the stroke used for each stratum ID.
func (r *Resolved) Styles() map[string]figure.Stroke {
	out := make(map[string]figure.Stroke, len(r.series))
	for _, s := range r.series {
		out[s.stratum.ID()] = s.stroke
	}
	return out
}

// facetAreas splits area into one plot rect per facet label, leaving room
// for each facet's strip and tick labels.
func (r *Resolved) facetAreas(area figure.Rect) []figure.Rect {
	th := r.spec.Theme
	tick := th.TickSize()
	n := len(r.facets)
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols
	stripH := figure.LineHeight(tick) + stripPad
	hgap := r.yTickW + tickLen + 2*gap
	vgap := tickLen + gap + figure.LineHeight(tick) + gap

	cw := (area.W - hgap*float64(cols-1)) / float64(cols)
	ch := (area.H - vgap*float64(rows-1)) / float64(rows)
	out := make([]figure.Rect, n)
	for i := range n {
		c, rr := i%cols, i/cols
		out[i] = figure.Rect{
			X: area.X + float64(c)*(cw+hgap),
			Y: area.Y + float64(rr)*(ch+vgap) + stripH,
			W: cw,
			H: max(0, ch-stripH),
		}
	}
	return out
}

// Render resolves spec and draws it at the origin with its own margins.
func Render(spec Spec, roles Roles) (figure.Panel, error) {
	r, err := Resolve(spec, roles)
	if err != nil {
		return figure.Panel{}, err
	}
	return r.Draw(figure.Point{}, r.Margins()), nil
}
