package figure

// Rect is an axis-aligned box with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Inset shrinks r by the given margins.
func (r Rect) Inset(m Margins) Rect {
	return Rect{
		X: r.X + m.Left,
		Y: r.Y + m.Top,
		W: max(0, r.W-m.Left-m.Right),
		H: max(0, r.H-m.Top-m.Bottom),
	}
}

// Margins is the space between a panel frame and its plot area.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// Point is a position in figure units.
type Point struct {
	X, Y float64
}

// Placement positions a figure inside a larger canvas. Box has the
// figure's aspect ratio; the figure is scaled uniformly to fill it.
type Placement struct {
	Figure *Figure
	Box    Rect
}

// Scale returns the uniform factor mapping figure units into Box.
func (p Placement) Scale() float64 {
	if p.Figure == nil || p.Figure.Width() == 0 {
		return 1
	}
	return p.Box.W / p.Figure.Width()
}
