package figure

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/survfit/pkg/scale"
)

// Kind identifies the role of a panel.
type Kind string

const (
	KindPrimary   Kind = "primary"
	KindRiskTable Kind = "risktable"
)

// namespace seeds deterministic figure IDs.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/survfit/figure"))

// TableRow is one resolved risk-table row.
type TableRow struct {
	Block  string
	Header string
	Cells  []string
}

// Table is the tabular content behind a risk-table panel.
type Table struct {
	Times []float64
	Rows  []TableRow
}

// Panel is one resolved drawable unit of a figure.
type Panel struct {
	Kind     Kind
	Name     string
	Frame    Rect
	PlotArea Rect
	// Facets holds the plot areas of a faceted primary panel.
	Facets   []Rect
	XAxis    scale.Axis
	YAxis    scale.Axis
	Elements []Element
	Table    *Table
}

func (p Panel) clone() Panel {
	p.Facets = slices.Clone(p.Facets)
	p.XAxis = cloneAxis(p.XAxis)
	p.YAxis = cloneAxis(p.YAxis)
	p.Elements = cloneElements(p.Elements)
	if p.Table != nil {
		t := Table{Times: slices.Clone(p.Table.Times), Rows: make([]TableRow, len(p.Table.Rows))}
		for i, r := range p.Table.Rows {
			r.Cells = slices.Clone(r.Cells)
			t.Rows[i] = r
		}
		p.Table = &t
	}
	return p
}

func cloneAxis(a scale.Axis) scale.Axis {
	a.Breaks = slices.Clone(a.Breaks)
	a.Labels = slices.Clone(a.Labels)
	return a
}

// Figure is an immutable stack of resolved panels.
type Figure struct {
	id     string
	width  float64
	height float64
	theme  Theme
	panels []Panel
}

// New freezes panels into a figure. The figure is as wide as the widest
// panel frame and as tall as the lowest frame bottom.
func New(theme Theme, panels ...Panel) *Figure {
	f := &Figure{theme: theme, panels: make([]Panel, len(panels))}
	for i, p := range panels {
		f.panels[i] = p.clone()
		f.width = max(f.width, p.Frame.Right())
		f.height = max(f.height, p.Frame.Bottom())
	}
	f.id = f.digest()
	return f
}

// ID is a UUIDv5 derived from the figure content. Render-equivalent
// figures share an ID.
func (f *Figure) ID() string { return f.id }

// Width returns the figure width in figure units.
func (f *Figure) Width() float64 { return f.width }

// Height returns the figure height in figure units.
func (f *Figure) Height() float64 { return f.height }

// Size returns width and height.
func (f *Figure) Size() (w, h float64) { return f.width, f.height }

// Theme returns the theme the figure was drawn with.
func (f *Figure) Theme() Theme {
	t := f.theme
	t.Palette = slices.Clone(t.Palette)
	t.Linetypes = slices.Clone(t.Linetypes)
	return t
}

// Len returns the number of panels.
func (f *Figure) Len() int { return len(f.panels) }

// Panel returns a copy of panel i.
func (f *Figure) Panel(i int) Panel { return f.panels[i].clone() }

// Panels returns copies of all panels, primary first.
func (f *Figure) Panels() []Panel {
	out := make([]Panel, len(f.panels))
	for i, p := range f.panels {
		out[i] = p.clone()
	}
	return out
}

// Primary returns a copy of the primary panel.
func (f *Figure) Primary() Panel {
	for _, p := range f.panels {
		if p.Kind == KindPrimary {
			return p.clone()
		}
	}
	return Panel{}
}

// Proportions returns each panel's share of the figure height.
func (f *Figure) Proportions() []float64 {
	out := make([]float64, len(f.panels))
	if f.height == 0 {
		return out
	}
	for i, p := range f.panels {
		out[i] = p.Frame.H / f.height
	}
	return out
}

// Placements places the figure at the origin at its natural size.
func (f *Figure) Placements() []Placement {
	return []Placement{{Figure: f, Box: Rect{W: f.width, H: f.height}}}
}

// Equivalent reports whether two figures render identically.
func Equivalent(a, b *Figure) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.id == b.id
}

func (f *Figure) digest() string {
	h := sha256.New()
	fmt.Fprintf(h, "%g %g %v|", f.width, f.height, f.theme)
	for _, p := range f.panels {
		fmt.Fprintf(h, "panel %s %s %v %v %v|", p.Kind, p.Name, p.Frame, p.PlotArea, p.Facets)
		writeAxis(h, p.XAxis)
		writeAxis(h, p.YAxis)
		for _, el := range p.Elements {
			fmt.Fprintf(h, "%T%v|", el, el)
		}
		if p.Table != nil {
			fmt.Fprintf(h, "table %v %v|", p.Table.Times, p.Table.Rows)
		}
	}
	return uuid.NewSHA1(namespace, h.Sum(nil)).String()
}

func writeAxis(h hash.Hash, a scale.Axis) {
	name := "identity"
	if a.Transform != nil {
		name = a.Transform.Name
	}
	fmt.Fprintf(h, "axis %g %g %v %q %s|", a.Min, a.Max, a.Breaks, a.Labels, name)
}
