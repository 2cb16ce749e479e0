package assembly

import (
	"reflect"
	"sync"
	"testing"

	"github.com/matzehuels/survfit/pkg/curve"
	"github.com/matzehuels/survfit/pkg/errors"
	"github.com/matzehuels/survfit/pkg/figure"
	"github.com/matzehuels/survfit/pkg/plot"
	"github.com/matzehuels/survfit/pkg/risktable"
	"github.com/matzehuels/survfit/pkg/scale"
)

func singleStratum(t *testing.T) *curve.Model {
	t.Helper()
	m, err := curve.New(curve.KindSurvival, curve.Stratum{Label: "A", Records: []curve.Record{
		{Time: 0, Estimate: 1, Lower: 1, Upper: 1, NRisk: 10},
		{Time: 1, Estimate: 0.9, Lower: 0.8, Upper: 1, NRisk: 10, NEvent: 1},
		{Time: 2, Estimate: 0.78, Lower: 0.6, Upper: 0.95, NRisk: 8, NEvent: 1, NCensor: 1},
		{Time: 3, Estimate: 0.6, Lower: 0.4, Upper: 0.8, NRisk: 6, NEvent: 2},
		{Time: 4, Estimate: 0.48, Lower: 0.25, Upper: 0.7, NRisk: 5, NEvent: 1},
	}})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func threeArm(t *testing.T) *curve.Model {
	t.Helper()
	var strata []curve.Stratum
	for i, label := range []string{"Placebo", "Low dose", "High dose (extended release)"} {
		n := 20 + i*5
		strata = append(strata, curve.Stratum{Label: label, Records: []curve.Record{
			{Time: 0, Estimate: 1, Lower: 1, Upper: 1, NRisk: n},
			{Time: 6, Estimate: 0.8, Lower: 0.7, Upper: 0.9, NRisk: n - 3, NEvent: 3},
			{Time: 12, Estimate: 0.6, Lower: 0.45, Upper: 0.75, NRisk: n - 8, NEvent: 4, NCensor: 1},
			{Time: 24, Estimate: 0.4, Lower: 0.25, Upper: 0.55, NRisk: n - 14, NEvent: 5, NCensor: 1},
		}})
	}
	m, err := curve.New(curve.KindSurvival, strata...)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestBuildWithoutTablesEqualsRender(t *testing.T) {
	m := singleStratum(t)
	a := New(m).AddConfidenceBand().AddCensorMarks().Title("Overall survival", "")

	fig, err := a.Build(WithRoles(plot.StrataColor))
	if err != nil {
		t.Fatal(err)
	}
	spec, err := a.Spec()
	if err != nil {
		t.Fatal(err)
	}
	panel, err := plot.Render(spec, plot.StrataColor)
	if err != nil {
		t.Fatal(err)
	}
	if fig.Len() != 1 {
		t.Fatalf("panels = %d, want 1", fig.Len())
	}
	if !reflect.DeepEqual(fig.Primary(), panel) {
		t.Error("primary panel differs from direct render")
	}
	if !figure.Equivalent(fig, figure.New(spec.Theme, panel)) {
		t.Error("figure is not render-equivalent to direct render")
	}
}

func TestRiskTableAlignment(t *testing.T) {
	m := threeArm(t)
	base := New(m).AddRiskTable(risktable.Default())

	configs := map[string]Assembly{
		"plain":        base,
		"long y label": base.Labels("Months since randomisation", "Probability of progression-free survival"),
		"styled": base.AddConfidenceBand().
			Legend(plot.LegendBottom).
			ScaleY(scale.Scale{Percent: true}).
			Title("Progression-free survival by dose group with a long wrapped title", "ITT population").
			AddRiskTable(risktable.Spec{Title: "Events", Stats: []risktable.Statistic{risktable.Stat(curve.KeyNEvent)}, Group: risktable.ByStatistic}),
	}
	for name, a := range configs {
		t.Run(name, func(t *testing.T) {
			fig, err := a.Build()
			if err != nil {
				t.Fatal(err)
			}
			primary := fig.Primary()
			for _, p := range fig.Panels()[1:] {
				if p.Kind != figure.KindRiskTable {
					t.Fatalf("panel kind = %s", p.Kind)
				}
				if !p.XAxis.Equal(primary.XAxis) {
					t.Errorf("%s: x axis %+v != primary %+v", p.Name, p.XAxis, primary.XAxis)
				}
				if p.PlotArea.X != primary.PlotArea.X || p.PlotArea.Right() != primary.PlotArea.Right() {
					t.Errorf("%s: plot area [%g, %g] != primary [%g, %g]", p.Name,
						p.PlotArea.X, p.PlotArea.Right(), primary.PlotArea.X, primary.PlotArea.Right())
				}
			}
		})
	}
}

func TestSharedLeftEdgeIsMaxRequirement(t *testing.T) {
	m := threeArm(t)
	a := New(m).AddRiskTable(risktable.Default())
	spec, err := a.Spec()
	if err != nil {
		t.Fatal(err)
	}
	r, err := plot.Resolve(spec, plot.StrataColor)
	if err != nil {
		t.Fatal(err)
	}
	fig, err := a.Build()
	if err != nil {
		t.Fatal(err)
	}
	// The long stratum header needs more room than the y tick labels.
	if got := fig.Primary().PlotArea.X; got <= r.Margins().Left {
		t.Errorf("primary left edge %g not widened past its own requirement %g", got, r.Margins().Left)
	}
}

func TestWideTableHeadersLeaveNoPlotArea(t *testing.T) {
	a := New(singleStratum(t)).
		Size(200, 200).
		AddRiskTable(risktable.Spec{Symbols: map[string]string{
			"A": "An extremely long stratum header label that is wider than the whole figure",
		}})
	_, err := a.Build()
	if !errors.Is(err, errors.ErrCodeLayout) {
		t.Fatalf("Build() error = %v, want LAYOUT", err)
	}
}

func TestNilModifyFailsBuild(t *testing.T) {
	if _, err := New(singleStratum(t)).Modify(nil).Build(); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Fatalf("Build() error = %v, want CONFIGURATION", err)
	}
}

func TestTableHeightAndStacking(t *testing.T) {
	a := New(singleStratum(t)).
		Size(600, 400).
		AddRiskTable(risktable.Spec{Height: 0.2}).
		AddRiskTable(risktable.Spec{Height: 0.1, Stats: []risktable.Statistic{risktable.Stat(curve.KeyNCensor)}})
	fig, err := a.Build()
	if err != nil {
		t.Fatal(err)
	}
	panels := fig.Panels()
	if len(panels) != 3 {
		t.Fatalf("panels = %d, want 3", len(panels))
	}
	if panels[1].Frame.H != 80 || panels[2].Frame.H != 40 {
		t.Errorf("table heights = %g, %g; want 80, 40", panels[1].Frame.H, panels[2].Frame.H)
	}
	if panels[1].Frame.Y != panels[0].Frame.Bottom() || panels[2].Frame.Y != panels[1].Frame.Bottom() {
		t.Error("panels are not stacked")
	}
	if fig.Height() != 520 {
		t.Errorf("figure height = %g, want 520", fig.Height())
	}
	props := fig.Proportions()
	if props[0] != 400.0/520 {
		t.Errorf("proportions = %v", props)
	}
}

func TestDefaultTableUsesPrimaryBreaks(t *testing.T) {
	breaks := []float64{0, 1, 3, 4}
	fig, err := New(singleStratum(t)).
		ScaleX(scale.Scale{Breaks: breaks}).
		AddRiskTable(risktable.Spec{Stats: []risktable.Statistic{risktable.Stat(curve.KeyNRisk)}}).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	tbl := fig.Panel(1).Table
	if !reflect.DeepEqual(tbl.Times, breaks) {
		t.Errorf("table times = %v, want %v", tbl.Times, breaks)
	}
	if want := []string{"10", "10", "6", "5"}; !reflect.DeepEqual(tbl.Rows[0].Cells, want) {
		t.Errorf("cells = %v, want %v", tbl.Rows[0].Cells, want)
	}
}

func TestRiskRowValues(t *testing.T) {
	fig, err := New(singleStratum(t)).
		AddRiskTable(risktable.Spec{Times: []float64{0, 2, 4}, Stats: []risktable.Statistic{risktable.Stat(curve.KeyNRisk)}}).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	row := fig.Panel(1).Table.Rows[0]
	if row.Block != "A" || !reflect.DeepEqual(row.Cells, []string{"10", "8", "5"}) {
		t.Errorf("row = %+v", row)
	}
}

func TestFacetWithRiskTable(t *testing.T) {
	a := New(threeArm(t)).Facet()
	if _, err := a.Build(); err != nil {
		t.Fatalf("facet alone: %v", err)
	}
	_, err := a.AddRiskTable(risktable.Default()).Build()
	if !errors.Is(err, errors.ErrCodeLayout) {
		t.Fatalf("err = %v, want LAYOUT", err)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	a := New(threeArm(t)).AddConfidenceBand().AddQuantile(plot.AtY(0.5)).AddRiskTable(risktable.Default())
	f1, err := a.Build()
	if err != nil {
		t.Fatal(err)
	}
	f2, err := a.Build()
	if err != nil {
		t.Fatal(err)
	}
	if !figure.Equivalent(f1, f2) || !reflect.DeepEqual(f1.Panels(), f2.Panels()) {
		t.Error("repeated builds differ")
	}
}

func TestConcurrentBuilds(t *testing.T) {
	a := New(threeArm(t)).AddCensorMarks().AddRiskTable(risktable.Default())
	want, err := a.Build()
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := a.Build()
			if err == nil {
				ids[i] = f.ID()
			}
		}()
	}
	wg.Wait()
	for i, id := range ids {
		if id != want.ID() {
			t.Errorf("build %d id = %q, want %q", i, id, want.ID())
		}
	}
}

func TestOperationsDoNotMutate(t *testing.T) {
	base := New(singleStratum(t))
	_ = base.AddConfidenceBand().AddRiskTable(risktable.Default())
	if len(base.Tables()) != 0 {
		t.Error("AddRiskTable mutated the receiver")
	}
	spec, err := base.Spec()
	if err != nil {
		t.Fatal(err)
	}
	if len(spec.Overlays()) != 0 {
		t.Error("AddConfidenceBand mutated the receiver")
	}

	// Branches from a shared prefix must not see each other's ops.
	prefix := base.AddCensorMarks()
	a := prefix.AddConfidenceBand()
	b := prefix.AddQuantile(plot.AtY(0.5))
	sa, _ := a.Spec()
	sb, _ := b.Spec()
	if sa.Has(plot.NameQuantile) || sb.Has(plot.NameConfidence) {
		t.Error("branches share operations")
	}
}

func TestErrorsSurfaceAtBuild(t *testing.T) {
	both := plot.QuantileGuide{Y: plot.AtY(0.5).Y, X: plot.AtX(1).X}
	a := New(singleStratum(t)).AddQuantile(both)
	if _, err := a.Build(); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("quantile err = %v, want CONFIGURATION", err)
	}
	a = New(singleStratum(t)).AddRiskTable(risktable.Spec{Stats: []risktable.Statistic{risktable.Stat("n.lost")}})
	if _, err := a.Build(); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("table err = %v, want CONFIGURATION", err)
	}
	a = New(singleStratum(t)).ScaleY(scale.Scale{Percent: true, Transform: scale.Reverse})
	if _, err := a.Build(); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("scale err = %v, want CONFIGURATION", err)
	}
}

func TestRolesFallback(t *testing.T) {
	m := threeArm(t)
	reset := plot.SetDefaultRoles(plot.StrataLinetype)
	viaDefault, err := New(m).Build()
	reset()
	if err != nil {
		t.Fatal(err)
	}
	explicit, err := New(m).Build(WithRoles(plot.StrataLinetype))
	if err != nil {
		t.Fatal(err)
	}
	color, err := New(m).Build()
	if err != nil {
		t.Fatal(err)
	}
	if !figure.Equivalent(viaDefault, explicit) {
		t.Error("fallback roles differ from explicit roles")
	}
	if figure.Equivalent(explicit, color) {
		t.Error("swapped roles rendered like the default roles")
	}
}

func TestWithSpacing(t *testing.T) {
	fig, err := New(singleStratum(t)).AddRiskTable(risktable.Default()).Build(WithSpacing(12))
	if err != nil {
		t.Fatal(err)
	}
	if gap := fig.Panel(1).Frame.Y - fig.Panel(0).Frame.Bottom(); gap != 12 {
		t.Errorf("gap = %g, want 12", gap)
	}
}
