package risktable

import (
	"github.com/matzehuels/survfit/pkg/figure"
	"github.com/matzehuels/survfit/pkg/scale"
)

const (
	pad = 8.0
	gap = 6.0
)

type line struct {
	text  string
	bold  bool
	cells []string
}

// lines flattens the table into drawn lines. A block with several rows
// gets a bold heading line; a single-row block is labelled by its heading.
func (t Table) lines() []line {
	var out []line
	for i := 0; i < len(t.Rows); {
		j := i
		for j < len(t.Rows) && t.Rows[j].Block == t.Rows[i].Block {
			j++
		}
		if j-i == 1 {
			out = append(out, line{text: t.Rows[i].Block, cells: t.Rows[i].Cells})
		} else {
			out = append(out, line{text: t.Rows[i].Block, bold: true})
			for _, r := range t.Rows[i:j] {
				out = append(out, line{text: r.Header, cells: r.Cells})
			}
		}
		i = j
	}
	return out
}

// Measure returns the margins the table needs around its plot area. Only
// Left and Top are table-driven; callers align Right with the primary
// panel.
func Measure(t Table, th figure.Theme) figure.Margins {
	tick := th.TickSize()
	var w float64
	for _, l := range t.lines() {
		w = max(w, figure.TextWidth(l.text, tick))
	}
	m := figure.Margins{Left: pad + w + gap, Top: gap / 2, Bottom: gap / 2, Right: pad}
	if t.Title != "" {
		m.Top += figure.LineHeight(th.FontSize)
	}
	return m
}

// Draw lays the table out in frame with the given margins. Cells sit on
// the x positions of axis x inside the plot area; times outside the axis
// are not drawn.
func Draw(t Table, th figure.Theme, frame figure.Rect, m figure.Margins, x scale.Axis) figure.Panel {
	area := frame.Inset(m)
	tick := th.TickSize()
	name := t.Title
	if name == "" {
		name = "risk table"
	}
	p := figure.Panel{
		Kind:     figure.KindRiskTable,
		Name:     name,
		Frame:    frame,
		PlotArea: area,
		XAxis:    x,
		Table:    &figure.Table{Times: t.Times, Rows: make([]figure.TableRow, len(t.Rows))},
	}
	for i, r := range t.Rows {
		p.Table.Rows[i] = figure.TableRow{Block: r.Block, Header: r.Header, Cells: r.Cells}
	}

	if t.Title != "" {
		p.Elements = append(p.Elements, figure.Text{
			X: frame.X + pad, Y: frame.Y + figure.LineHeight(th.FontSize),
			Content: t.Title, Size: th.FontSize, Anchor: "start", Color: th.Ink, Bold: true,
			Class: "table-title",
		})
	}
	lines := t.lines()
	if len(lines) == 0 {
		return p
	}
	lineH := area.H / float64(len(lines))
	for i, l := range lines {
		y := area.Y + (float64(i)+0.5)*lineH + tick*0.35
		class := "table-header"
		if l.bold {
			class = "table-block"
		}
		p.Elements = append(p.Elements, figure.Text{
			X: area.X - gap, Y: y, Content: l.text, Size: tick, Anchor: "end",
			Color: th.Ink, Bold: l.bold, Class: class,
		})
		for j, c := range l.cells {
			tm := t.Times[j]
			if tm < x.Min || tm > x.Max {
				continue
			}
			p.Elements = append(p.Elements, figure.Text{
				X: x.Map(tm, area.X, area.Right()), Y: y, Content: c, Size: tick, Anchor: "middle",
				Color: th.Ink, Class: "table-cell",
			})
		}
	}
	return p
}
