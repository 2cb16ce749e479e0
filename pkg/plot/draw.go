package plot

import (
	"github.com/matzehuels/survfit/pkg/curve"
	"github.com/matzehuels/survfit/pkg/figure"
)

// Draw lays the panel out with its frame at origin and the given margins.
// Margins wider than [Resolved.Margins] shrink the plot area; the assembly
// uses this to align stacked panels.
func (r *Resolved) Draw(origin figure.Point, m figure.Margins) figure.Panel {
	frame := figure.Rect{X: origin.X, Y: origin.Y, W: r.spec.Width, H: r.spec.Height}
	area := frame.Inset(m)
	p := figure.Panel{
		Kind:     figure.KindPrimary,
		Name:     "curves",
		Frame:    frame,
		PlotArea: area,
		XAxis:    r.x,
		YAxis:    r.y,
	}

	d := &drawer{r: r, th: r.spec.Theme}
	areas := []figure.Rect{area}
	if r.spec.Facet {
		areas = r.facetAreas(area)
		p.Facets = areas
	}
	for i, a := range areas {
		d.facet(i, a)
	}
	d.titles(frame, area)
	d.axisTitles(area)
	d.legend(frame, area)
	d.captions(area)
	p.Elements = d.els
	return p
}

type drawer struct {
	r   *Resolved
	th  figure.Theme
	els []figure.Element
}

func (d *drawer) add(els ...figure.Element) { d.els = append(d.els, els...) }

func (d *drawer) xmap(a figure.Rect, t float64) float64 {
	return d.r.x.Map(d.r.x.Clamp(t), a.X, a.Right())
}

func (d *drawer) ymap(a figure.Rect, v float64) float64 {
	return d.r.y.Map(d.r.y.Clamp(v), a.Bottom(), a.Y)
}

func (d *drawer) facet(i int, a figure.Rect) {
	r, th := d.r, d.th
	d.add(figure.Box{Rect: a, Fill: th.Background, Class: "background"})
	for _, b := range r.y.Breaks {
		y := d.ymap(a, b)
		d.add(figure.Line{X1: a.X, Y1: y, X2: a.Right(), Y2: y, Stroke: figure.Stroke{Color: th.Grid, Width: 0.6}, Class: "grid"})
	}
	for _, b := range r.x.Breaks {
		x := d.xmap(a, b)
		d.add(figure.Line{X1: x, Y1: a.Y, X2: x, Y2: a.Bottom(), Stroke: figure.Stroke{Color: th.Grid, Width: 0.6}, Class: "grid"})
	}

	var in []series
	for _, s := range r.series {
		if s.facet == i {
			in = append(in, s)
		}
	}

	if conf, ok := d.overlay(NameConfidence).(Confidence); ok {
		for _, s := range in {
			upper := d.steps(a, s.stratum, func(rec curve.Record) float64 { return rec.Upper })
			lower := d.steps(a, s.stratum, func(rec curve.Record) float64 { return rec.Lower })
			if len(upper) < 2 {
				continue
			}
			pts := append(upper, reversed(lower)...)
			d.add(figure.Polygon{Points: pts, Fill: s.stroke.Color, Opacity: conf.Opacity, Class: "ribbon"})
		}
	}
	for _, s := range in {
		pts := d.steps(a, s.stratum, func(rec curve.Record) float64 { return rec.Estimate })
		if len(pts) >= 2 {
			d.add(figure.Path{Points: pts, Stroke: s.stroke, Class: "curve"})
		}
	}
	if c, ok := d.overlay(NameCensor).(Censor); ok {
		for _, s := range in {
			for _, rec := range s.stratum.Records {
				if rec.NCensor == 0 || rec.Time < r.x.Min || rec.Time > r.x.Max {
					continue
				}
				d.add(figure.Marker{
					X: d.xmap(a, rec.Time), Y: d.ymap(a, rec.Estimate),
					Size: c.Size, Shape: c.Shape,
					Stroke: figure.Stroke{Color: s.stroke.Color, Width: 0.8},
					Class:  "censor",
				})
			}
		}
	}
	for _, o := range r.spec.overlays {
		switch o := o.(type) {
		case QuantileGuide:
			d.quantile(a, in, o)
		case Comparison:
			if !o.Caption {
				d.add(figure.Text{
					X: d.xmap(a, o.X), Y: d.ymap(a, o.Y),
					Content: o.Text, Size: th.TickSize(), Anchor: "start", Color: th.Ink,
					Class: "annotation",
				})
			}
		}
	}

	if r.spec.Facet {
		stripH := figure.LineHeight(th.TickSize()) + stripPad
		d.add(
			figure.Box{Rect: figure.Rect{X: a.X, Y: a.Y - stripH, W: a.W, H: stripH}, Fill: "#D9D9D9", Class: "strip"},
			figure.Text{
				X: a.X + a.W/2, Y: a.Y - stripH/2 + th.TickSize()*0.35,
				Content: r.facets[i], Size: th.TickSize(), Anchor: "middle", Color: th.Ink,
				Class: "strip-label",
			},
		)
	}
	d.ticks(a)
}

func (d *drawer) overlay(name string) Overlay {
	for _, o := range d.r.spec.overlays {
		if o.Name() == name {
			return o
		}
	}
	return nil
}

// steps returns the right-continuous step path of one stratum value over
// the visible time range, in figure coordinates.
func (d *drawer) steps(a figure.Rect, s curve.Stratum, val func(curve.Record) float64) []figure.Point {
	lo, hi := d.r.x.Min, d.r.x.Max
	recs := s.Records
	cur := d.r.spec.Model.Kind().Start()
	for _, rec := range recs {
		if rec.Time > lo {
			break
		}
		cur = val(rec)
	}
	pts := []figure.Point{{X: d.xmap(a, lo), Y: d.ymap(a, cur)}}
	last := lo
	for _, rec := range recs {
		if rec.Time <= lo {
			continue
		}
		if rec.Time > hi {
			break
		}
		x := d.xmap(a, rec.Time)
		v := val(rec)
		pts = append(pts, figure.Point{X: x, Y: d.ymap(a, cur)}, figure.Point{X: x, Y: d.ymap(a, v)})
		cur, last = v, rec.Time
	}
	if end := min(hi, recs[len(recs)-1].Time); end > last {
		pts = append(pts, figure.Point{X: d.xmap(a, end), Y: d.ymap(a, cur)})
	}
	return pts
}

func reversed(pts []figure.Point) []figure.Point {
	out := make([]figure.Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// crossing returns the first time a curve reaches level v: falls to it for
// survival curves, rises to it for incidence curves.
func crossing(kind curve.Kind, recs []curve.Record, v float64) (float64, bool) {
	for _, rec := range recs {
		if (kind == curve.KindIncidence && rec.Estimate >= v) || (kind != curve.KindIncidence && rec.Estimate <= v) {
			return rec.Time, true
		}
	}
	return 0, false
}

func (d *drawer) quantile(a figure.Rect, in []series, g QuantileGuide) {
	st := figure.Stroke{Color: d.th.Ink, Width: 0.8, Dash: "4 3"}
	kind := d.r.spec.Model.Kind()
	if g.Y != nil {
		y := d.ymap(a, *g.Y)
		end, found := d.r.x.Min, false
		var drops []float64
		for _, s := range in {
			if t, ok := crossing(kind, s.stratum.Records, *g.Y); ok {
				end, found = max(end, t), true
				drops = append(drops, t)
			}
		}
		xEnd := a.Right()
		if found {
			xEnd = d.xmap(a, end)
		}
		d.add(figure.Line{X1: a.X, Y1: y, X2: xEnd, Y2: y, Stroke: st, Class: "quantile-h"})
		if g.Drop {
			for _, t := range drops {
				x := d.xmap(a, t)
				d.add(figure.Line{X1: x, Y1: y, X2: x, Y2: a.Bottom(), Stroke: st, Class: "quantile-v"})
			}
		}
		return
	}
	top := d.r.y.Min
	for _, s := range in {
		if rec, ok := d.r.spec.Model.Lookup(s.stratum.ID(), *g.X); ok {
			top = max(top, rec.Estimate)
		}
	}
	x := d.xmap(a, *g.X)
	d.add(figure.Line{X1: x, Y1: a.Bottom(), X2: x, Y2: d.ymap(a, top), Stroke: st, Class: "quantile-v"})
}

func (d *drawer) ticks(a figure.Rect) {
	r, th := d.r, d.th
	tick := th.TickSize()
	ink := figure.Stroke{Color: th.Ink, Width: 0.6}
	for i, b := range r.y.Breaks {
		y := d.ymap(a, b)
		d.add(
			figure.Line{X1: a.X - tickLen, Y1: y, X2: a.X, Y2: y, Stroke: ink, Class: "tick"},
			figure.Text{X: a.X - tickLen - 2, Y: y + tick*0.35, Content: r.y.Labels[i], Size: tick, Anchor: "end", Color: th.Ink, Class: "tick-y"},
		)
	}
	for i, b := range r.x.Breaks {
		x := d.xmap(a, b)
		d.add(
			figure.Line{X1: x, Y1: a.Bottom(), X2: x, Y2: a.Bottom() + tickLen, Stroke: ink, Class: "tick"},
			figure.Text{X: x, Y: a.Bottom() + tickLen + tick, Content: r.x.Labels[i], Size: tick, Anchor: "middle", Color: th.Ink, Class: "tick-x"},
		)
	}
}

func (d *drawer) titles(frame, area figure.Rect) {
	th := d.th
	y := frame.Y + pad
	for _, l := range d.r.title {
		y += figure.LineHeight(th.TitleSize())
		d.add(figure.Text{X: area.X, Y: y - th.TitleSize()*0.25, Content: l, Size: th.TitleSize(), Anchor: "start", Color: th.Ink, Bold: true, Class: "title"})
	}
	for _, l := range d.r.subtitle {
		y += figure.LineHeight(th.FontSize)
		d.add(figure.Text{X: area.X, Y: y - th.FontSize*0.25, Content: l, Size: th.FontSize, Anchor: "start", Color: th.Ink, Class: "subtitle"})
	}
}

func (d *drawer) axisTitles(area figure.Rect) {
	s, th := d.r.spec, d.th
	fs, tick := th.FontSize, th.TickSize()
	if s.XLabel != "" {
		d.add(figure.Text{
			X: area.X + area.W/2, Y: area.Bottom() + tickLen + gap + figure.LineHeight(tick) + fs,
			Content: s.XLabel, Size: fs, Anchor: "middle", Color: th.Ink, Class: "xlab",
		})
	}
	if s.YLabel != "" {
		d.add(figure.Text{
			X: area.X - d.r.yTickW - tickLen - 2*gap - figure.LineHeight(fs)*0.3, Y: area.Y + area.H/2,
			Content: s.YLabel, Size: fs, Anchor: "middle", Color: th.Ink, Rotate: -90, Class: "ylab",
		})
	}
}

// belowAxis returns the y coordinate under the tick labels and x title.
func (d *drawer) belowAxis(area figure.Rect) float64 {
	y := area.Bottom() + tickLen + gap + figure.LineHeight(d.th.TickSize())
	if d.r.spec.XLabel != "" {
		y += figure.LineHeight(d.th.FontSize) + gap
	}
	return y
}

func (d *drawer) legend(frame, area figure.Rect) {
	r, th := d.r, d.th
	if len(r.legend) == 0 {
		return
	}
	fs := th.FontSize
	entryH := figure.LineHeight(fs)
	entry := func(x, cy float64, e legendEntry) float64 {
		d.add(
			figure.Line{X1: x, Y1: cy, X2: x + keyLen, Y2: cy, Stroke: e.stroke, Class: "legend-key"},
			figure.Text{X: x + keyLen + gap, Y: cy + fs*0.35, Content: e.label, Size: fs, Anchor: "start", Color: th.Ink, Class: "legend-label"},
		)
		return keyLen + gap + figure.TextWidth(e.label, fs) + legendGap
	}
	switch r.spec.Legend {
	case LegendRight:
		x := area.Right() + legendGap
		for i, e := range r.legend {
			entry(x, area.Y+(float64(i)+0.5)*entryH, e)
		}
	case LegendTop, LegendBottom:
		cy := area.Y - gap - r.legendH/2
		if r.spec.Legend == LegendBottom {
			cy = d.belowAxis(area) + r.legendH/2
		}
		x := area.X
		for _, e := range r.legend {
			x += entry(x, cy, e)
		}
	}
}

func (d *drawer) captions(area figure.Rect) {
	th := d.th
	tick := th.TickSize()
	y := d.belowAxis(area)
	if d.r.spec.Legend == LegendBottom && len(d.r.legend) > 0 {
		y += d.r.legendH + gap
	}
	for _, l := range d.r.captions {
		y += figure.LineHeight(tick)
		d.add(figure.Text{X: area.X, Y: y - tick*0.25, Content: l, Size: tick, Anchor: "start", Color: th.Ink, Class: "caption"})
	}
}
