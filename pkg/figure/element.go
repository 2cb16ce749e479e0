package figure

import "slices"

// Element is a drawable primitive in absolute figure coordinates.
// The set of element types is closed; renderers switch on the concrete type.
type Element interface {
	element()
}

// Stroke describes how a line is drawn.
type Stroke struct {
	Color string
	Width float64
	Dash  string // SVG dash array, empty for solid
}

// Line is a straight segment.
type Line struct {
	X1, Y1, X2, Y2 float64
	Stroke         Stroke
	Class          string
}

// Path is an open polyline, used for step curves.
type Path struct {
	Points []Point
	Stroke Stroke
	Class  string
}

// Polygon is a closed filled shape, used for confidence ribbons.
type Polygon struct {
	Points  []Point
	Fill    string
	Opacity float64
	Class   string
}

// Marker is a point symbol, used for censor marks.
type Marker struct {
	X, Y   float64
	Size   float64
	Shape  string // "plus" or "circle"
	Stroke Stroke
	Class  string
}

// Text is a single line of text.
type Text struct {
	X, Y    float64
	Content string
	Size    float64
	Anchor  string // "start", "middle" or "end"
	Color   string
	Bold    bool
	Rotate  float64 // degrees around (X, Y)
	Class   string
}

// Box is a filled, optionally stroked rectangle.
type Box struct {
	Rect   Rect
	Fill   string
	Stroke Stroke
	Class  string
}

func (Line) element()    {}
func (Path) element()    {}
func (Polygon) element() {}
func (Marker) element()  {}
func (Text) element()    {}
func (Box) element()     {}

func cloneElements(in []Element) []Element {
	out := make([]Element, len(in))
	for i, el := range in {
		switch e := el.(type) {
		case Path:
			e.Points = slices.Clone(e.Points)
			out[i] = e
		case Polygon:
			e.Points = slices.Clone(e.Points)
			out[i] = e
		default:
			out[i] = el
		}
	}
	return out
}

// Count returns how many elements carry the given class.
func Count(els []Element, class string) int {
	n := 0
	for _, el := range els {
		if ClassOf(el) == class {
			n++
		}
	}
	return n
}

// ClassOf returns the class of an element.
func ClassOf(el Element) string {
	switch e := el.(type) {
	case Line:
		return e.Class
	case Path:
		return e.Class
	case Polygon:
		return e.Class
	case Marker:
		return e.Class
	case Text:
		return e.Class
	case Box:
		return e.Class
	}
	return ""
}
