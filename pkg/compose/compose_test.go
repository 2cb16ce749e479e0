package compose

import (
	"math"
	"testing"

	"github.com/matzehuels/survfit/pkg/errors"
	"github.com/matzehuels/survfit/pkg/figure"
)

func fig(w, h float64) *figure.Figure {
	return figure.New(figure.DefaultTheme(),
		figure.Panel{Kind: figure.KindPrimary, Frame: figure.Rect{W: w, H: h * 0.8}},
		figure.Panel{Kind: figure.KindRiskTable, Frame: figure.Rect{Y: h * 0.8, W: w, H: h * 0.2}},
	)
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func assertProportions(t *testing.T, c *Composite) {
	t.Helper()
	for i, p := range c.Placements() {
		w, h := p.Figure.Size()
		if !near(p.Box.W/p.Box.H, w/h) {
			t.Errorf("placement %d aspect %g, figure %g", i, p.Box.W/p.Box.H, w/h)
		}
	}
}

func TestGrid(t *testing.T) {
	a, b, c := fig(600, 400), fig(300, 400), fig(600, 200)
	comp, err := Grid(2, a, b, c)
	if err != nil {
		t.Fatal(err)
	}
	w, h := comp.Size()
	if w != 900 || h != 600 {
		t.Errorf("size = %gx%g, want 900x600", w, h)
	}
	ps := comp.Placements()
	if len(ps) != 3 {
		t.Fatalf("placements = %d", len(ps))
	}
	if ps[1].Box.X != 600 || ps[2].Box.Y != 400 {
		t.Errorf("boxes = %+v", ps)
	}
	assertProportions(t, comp)
}

func TestGridRelativeWidths(t *testing.T) {
	a, b := fig(600, 400), fig(600, 400)
	comp, err := Layout{Cols: 2, Widths: []float64{2, 1}}.Place(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if w, _ := comp.Size(); w != 1200 {
		t.Errorf("width = %g, want 1200", w)
	}
	// The wide cell is height-bound and centres its figure; the narrow one
	// shrinks the figure to its width.
	ps := comp.Placements()
	if !near(ps[0].Box.X, 100) || !near(ps[0].Box.W, 600) {
		t.Errorf("first box = %+v", ps[0].Box)
	}
	if !near(ps[1].Box.X, 800) || !near(ps[1].Box.W, 400) {
		t.Errorf("second box = %+v", ps[1].Box)
	}
	assertProportions(t, comp)
}

func TestGridErrors(t *testing.T) {
	a := fig(100, 100)
	tests := []struct {
		name   string
		layout Layout
		units  []Unit
	}{
		{"no columns", Layout{}, []Unit{a}},
		{"no units", Layout{Cols: 1}, nil},
		{"nil unit", Layout{Cols: 1}, []Unit{nil}},
		{"width count", Layout{Cols: 2, Widths: []float64{1}}, []Unit{a, a}},
		{"height count", Layout{Cols: 1, Heights: []float64{1}}, []Unit{a, a}},
		{"zero weight", Layout{Cols: 2, Widths: []float64{1, 0}}, []Unit{a, a}},
		{"negative gap", Layout{Cols: 1, Gap: -1}, []Unit{a}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.layout.Place(tt.units...)
			if !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Errorf("err = %v, want CONFIGURATION", err)
			}
		})
	}
}

func TestOperators(t *testing.T) {
	a, b, c := fig(600, 400), fig(300, 300), fig(400, 100)
	comp := Wrap(a).Beside(b).Above(c)
	w, h := comp.Size()
	if !near(w, 1000) {
		t.Errorf("width = %g, want 1000", w)
	}
	if !near(h, 400+250) {
		t.Errorf("height = %g, want 650", h)
	}
	ps := comp.Placements()
	if len(ps) != 3 {
		t.Fatalf("placements = %d", len(ps))
	}
	if !near(ps[1].Box.H, 400) || !near(ps[1].Box.X, 600) {
		t.Errorf("beside box = %+v", ps[1].Box)
	}
	assertProportions(t, comp)
}

func TestNesting(t *testing.T) {
	inner, err := Grid(2, fig(200, 100), fig(200, 100))
	if err != nil {
		t.Fatal(err)
	}
	outer, err := Grid(1, inner, fig(800, 200))
	if err != nil {
		t.Fatal(err)
	}
	ps := outer.Placements()
	if len(ps) != 3 {
		t.Fatalf("placements = %d", len(ps))
	}
	// The inner grid is height-bound in its row and centred in the column.
	if !near(ps[1].Box.X, 400) || !near(ps[1].Box.W, 200) {
		t.Errorf("nested box = %+v", ps[1].Box)
	}
	assertProportions(t, outer)
}

func TestCompositeIsImmutable(t *testing.T) {
	base := Wrap(fig(100, 100))
	_ = base.Beside(fig(100, 100))
	if len(base.Placements()) != 1 {
		t.Error("Beside mutated its receiver")
	}
	if got := base.Beside(nil); got != base {
		t.Error("Beside(nil) should return the receiver")
	}
}
