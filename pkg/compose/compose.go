// Package compose places resolved figures on a shared canvas.
//
// Only resolved values take part: a [*figure.Figure] or a [*Composite]
// built from them. Assemblies must be built first. Every placement scales
// its unit uniformly, so the proportions frozen at build time survive
// composition.
//
// Grids place units directly:
//
//	c, err := compose.Grid(2, km, cif, km2, cif2)
//
// Operator-style composition chains:
//
//	c := compose.Wrap(km).Beside(cif).Above(summary)
package compose

import (
	"slices"

	"github.com/matzehuels/survfit/pkg/errors"
	"github.com/matzehuels/survfit/pkg/figure"
)

// Unit is anything that can be placed: a resolved figure or a composite.
type Unit interface {
	Size() (w, h float64)
	Placements() []figure.Placement
}

var _ Unit = (*figure.Figure)(nil)

// Composite is an immutable arrangement of resolved figures.
type Composite struct {
	width, height float64
	placements    []figure.Placement
}

// Size returns the canvas size.
func (c *Composite) Size() (w, h float64) { return c.width, c.height }

// Placements returns where each figure lands on the canvas.
func (c *Composite) Placements() []figure.Placement { return slices.Clone(c.placements) }

// Wrap turns a unit into a composite at its natural size.
func Wrap(u Unit) *Composite {
	c := &Composite{}
	if u == nil {
		return c
	}
	c.width, c.height = u.Size()
	c.placements = u.Placements()
	return c
}

// Beside returns a composite with u to the right of c, scaled to c's
// height. A nil unit returns c unchanged.
func (c *Composite) Beside(u Unit) *Composite {
	uw, uh := size(u)
	if uw == 0 || uh == 0 {
		return c
	}
	h := c.height
	if h == 0 {
		h = uh
	}
	w := uw * h / uh
	out := &Composite{width: c.width + w, height: h, placements: slices.Clone(c.placements)}
	out.place(u, figure.Rect{X: c.width, W: w, H: h})
	return out
}

// Above returns a composite with u below c, scaled to c's width. A nil
// unit returns c unchanged.
func (c *Composite) Above(u Unit) *Composite {
	uw, uh := size(u)
	if uw == 0 || uh == 0 {
		return c
	}
	w := c.width
	if w == 0 {
		w = uw
	}
	h := uh * w / uw
	out := &Composite{width: w, height: c.height + h, placements: slices.Clone(c.placements)}
	out.place(u, figure.Rect{Y: c.height, W: w, H: h})
	return out
}

// Layout describes a grid. Zero Widths or Heights size cells by their
// contents; otherwise they give relative column widths and row heights.
type Layout struct {
	Cols    int
	Widths  []float64
	Heights []float64
	Gap     float64
}

// Grid places units row by row into cols columns.
func Grid(cols int, units ...Unit) (*Composite, error) {
	return Layout{Cols: cols}.Place(units...)
}

// Place arranges units in the grid.
func (l Layout) Place(units ...Unit) (*Composite, error) {
	if l.Cols < 1 {
		return nil, errors.Configuration("grid needs at least one column")
	}
	if len(units) == 0 {
		return nil, errors.Configuration("grid needs at least one unit")
	}
	cols := min(l.Cols, len(units))
	rows := (len(units) + cols - 1) / cols
	if l.Widths != nil && len(l.Widths) != cols {
		return nil, errors.Configuration("grid has %d columns but %d widths", cols, len(l.Widths))
	}
	if l.Heights != nil && len(l.Heights) != rows {
		return nil, errors.Configuration("grid has %d rows but %d heights", rows, len(l.Heights))
	}
	if l.Gap < 0 {
		return nil, errors.Configuration("grid gap cannot be negative")
	}

	colW := make([]float64, cols)
	rowH := make([]float64, rows)
	for i, u := range units {
		if u == nil {
			return nil, errors.Configuration("grid unit %d is nil", i)
		}
		w, h := u.Size()
		colW[i%cols] = max(colW[i%cols], w)
		rowH[i/cols] = max(rowH[i/cols], h)
	}
	var err error
	if colW, err = relative(colW, l.Widths, "width"); err != nil {
		return nil, err
	}
	if rowH, err = relative(rowH, l.Heights, "height"); err != nil {
		return nil, err
	}

	c := &Composite{}
	y := 0.0
	for r := range rows {
		x := 0.0
		for col := range cols {
			i := r*cols + col
			if i < len(units) {
				c.place(units[i], figure.Rect{X: x, Y: y, W: colW[col], H: rowH[r]})
			}
			x += colW[col] + l.Gap
		}
		c.width = max(c.width, x-l.Gap)
		y += rowH[r] + l.Gap
	}
	c.height = y - l.Gap
	return c, nil
}

// relative redistributes the natural total of sizes by weights.
func relative(sizes, weights []float64, what string) ([]float64, error) {
	if weights == nil {
		return sizes, nil
	}
	var total, sum float64
	for i, w := range weights {
		if w <= 0 {
			return nil, errors.Configuration("grid %s %d must be positive", what, i)
		}
		total += sizes[i]
		sum += w
	}
	out := make([]float64, len(sizes))
	for i, w := range weights {
		out[i] = total * w / sum
	}
	return out, nil
}

// place scales u uniformly to fit cell, centred, and records its figures.
func (c *Composite) place(u Unit, cell figure.Rect) {
	uw, uh := u.Size()
	if uw == 0 || uh == 0 {
		return
	}
	s := min(cell.W/uw, cell.H/uh)
	ox := cell.X + (cell.W-uw*s)/2
	oy := cell.Y + (cell.H-uh*s)/2
	for _, p := range u.Placements() {
		c.placements = append(c.placements, figure.Placement{
			Figure: p.Figure,
			Box:    figure.Rect{X: ox + p.Box.X*s, Y: oy + p.Box.Y*s, W: p.Box.W * s, H: p.Box.H * s},
		})
	}
}

func size(u Unit) (w, h float64) {
	if u == nil {
		return 0, 0
	}
	return u.Size()
}
