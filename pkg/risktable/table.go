package risktable

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/survfit/pkg/curve"
	"github.com/matzehuels/survfit/pkg/scale"
)

// Row is one resolved table row.
type Row struct {
	// Block is the group heading: the stratum header for ByStratum, the
	// statistic name for ByStatistic.
	Block string
	// Header is the row label within the block.
	Header    string
	Stratum   string
	Statistic string
	Cells     []string
}

// Table is a resolved risk table.
type Table struct {
	Title string
	Group Grouping
	Times []float64
	Rows  []Row
}

// Find returns the row for a stratum ID and statistic name.
func (t Table) Find(stratum, statistic string) (Row, bool) {
	for _, r := range t.Rows {
		if r.Stratum == stratum && r.Statistic == statistic {
			r.Cells = slices.Clone(r.Cells)
			return r, true
		}
	}
	return Row{}, false
}

// Times returns about n evenly spaced pretty times across [lo, hi].
func Times(lo, hi float64, n int) []float64 {
	return scale.Pretty(lo, hi, n)
}

// Resolve computes the table for m. The spec's explicit times win; times is
// used when the spec has none, normally the primary panel's x breaks.
func Resolve(spec Spec, m *curve.Model, times []float64) (Table, error) {
	spec = spec.withDefaults()
	if err := spec.Validate(m); err != nil {
		return Table{}, err
	}
	if len(spec.Times) > 0 {
		times = spec.Times
	}
	t := Table{Title: spec.Title, Group: spec.Group, Times: slices.Clone(times)}

	templates := make([][]segment, len(spec.Stats))
	for i, st := range spec.Stats {
		templates[i], _ = parseTemplate(st.template())
	}
	row := func(s curve.Stratum, i int) Row {
		cells := make([]string, len(times))
		for j, tm := range times {
			rec, _ := m.Lookup(s.ID(), tm)
			cells[j] = format(templates[i], rec)
		}
		r := Row{Stratum: s.ID(), Statistic: spec.Stats[i].Name(), Cells: cells}
		if spec.Group == ByStratum {
			r.Block, r.Header = spec.header(s), r.Statistic
		} else {
			r.Block, r.Header = r.Statistic, spec.header(s)
		}
		return r
	}

	strata := m.Strata()
	switch spec.Group {
	case ByStratum:
		for _, s := range strata {
			for i := range spec.Stats {
				t.Rows = append(t.Rows, row(s, i))
			}
		}
	case ByStatistic:
		for i := range spec.Stats {
			for _, s := range strata {
				t.Rows = append(t.Rows, row(s, i))
			}
		}
	}
	return t, nil
}

// header returns the row header of a stratum with glyph substitution.
func (spec Spec) header(s curve.Stratum) string {
	if g, ok := spec.Symbols[s.ID()]; ok {
		return g
	}
	label := s.Label
	if g, ok := spec.Symbols[s.Label]; ok {
		label = g
	}
	if label == "" {
		label = "All"
	}
	if s.Outcome != "" {
		return label + " / " + s.Outcome
	}
	return label
}

func format(segs []segment, rec curve.Record) string {
	var b strings.Builder
	for _, seg := range segs {
		if seg.key == "" {
			b.WriteString(seg.lit)
			continue
		}
		v, _ := rec.Value(seg.key)
		if curve.IsCount(seg.key) {
			b.WriteString(strconv.Itoa(int(v)))
		} else {
			b.WriteString(scale.FormatNumber(math.Round(v*100) / 100))
		}
	}
	return b.String()
}
