package curve

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/matzehuels/survfit/pkg/errors"
)

// Kind distinguishes survival curves from cumulative-incidence curves.
type Kind string

const (
	KindSurvival  Kind = "survival"
	KindIncidence Kind = "incidence"
)

// Start returns the estimate a curve of this kind takes before the first
// observed time.
func (k Kind) Start() float64 {
	if k == KindIncidence {
		return 0
	}
	return 1
}

// Record is one observed time point of a stratum.
type Record struct {
	Time     float64
	Estimate float64
	Lower    float64
	Upper    float64
	NRisk    int
	NEvent   int
	NCensor  int

	// Derived at construction.
	CumEvent  int
	CumCensor int
}

// Stratum is a subgroup with its own estimated curve. Outcome is set for
// competing-risk incidence models where one stratum yields one curve per
// outcome.
type Stratum struct {
	Label   string
	Outcome string
	Records []Record
}

// ID is the unique name of the stratum within its model.
func (s Stratum) ID() string {
	if s.Outcome == "" {
		return s.Label
	}
	return s.Label + " / " + s.Outcome
}

// Model is an immutable set of strata.
type Model struct {
	kind   Kind
	strata []Stratum
	index  map[string]int
}

// New validates strata and returns an immutable model.
// Times must be non-decreasing within each stratum and every stratum must
// be uniquely identified by its label and outcome.
func New(kind Kind, strata ...Stratum) (*Model, error) {
	if kind == "" {
		kind = KindSurvival
	}
	if kind != KindSurvival && kind != KindIncidence {
		return nil, errors.Configuration("unknown curve kind %q", kind)
	}
	if len(strata) == 0 {
		return nil, errors.Configuration("curve model needs at least one stratum")
	}

	m := &Model{
		kind:   kind,
		strata: make([]Stratum, len(strata)),
		index:  make(map[string]int, len(strata)),
	}
	for i, s := range strata {
		id := s.ID()
		if _, dup := m.index[id]; dup {
			return nil, errors.Configuration("duplicate stratum %q", id)
		}
		if len(s.Records) == 0 {
			return nil, errors.Configuration("stratum %q has no records", id)
		}
		recs := slices.Clone(s.Records)
		var cumEvent, cumCensor int
		for j := range recs {
			if math.IsNaN(recs[j].Time) {
				return nil, errors.Configuration("stratum %q: record %d has no time", id, j)
			}
			if j > 0 && recs[j].Time < recs[j-1].Time {
				return nil, errors.Configuration("stratum %q: time decreases at record %d (%g < %g)",
					id, j, recs[j].Time, recs[j-1].Time)
			}
			cumEvent += recs[j].NEvent
			cumCensor += recs[j].NCensor
			recs[j].CumEvent = cumEvent
			recs[j].CumCensor = cumCensor
		}
		s.Records = recs
		m.strata[i] = s
		m.index[id] = i
	}
	return m, nil
}

// Kind reports whether the model holds survival or incidence curves.
func (m *Model) Kind() Kind { return m.kind }

// Len returns the number of strata.
func (m *Model) Len() int { return len(m.strata) }

// Strata returns a copy of all strata in model order.
func (m *Model) Strata() []Stratum {
	out := make([]Stratum, len(m.strata))
	for i, s := range m.strata {
		s.Records = slices.Clone(s.Records)
		out[i] = s
	}
	return out
}

// IDs returns stratum IDs in model order.
func (m *Model) IDs() []string {
	ids := make([]string, len(m.strata))
	for i, s := range m.strata {
		ids[i] = s.ID()
	}
	return ids
}

// Labels returns the distinct stratum labels in first-seen order.
func (m *Model) Labels() []string {
	var labels []string
	for _, s := range m.strata {
		if !slices.Contains(labels, s.Label) {
			labels = append(labels, s.Label)
		}
	}
	return labels
}

// Outcomes returns the distinct outcomes in first-seen order, or nil for
// models without competing risks.
func (m *Model) Outcomes() []string {
	var outcomes []string
	for _, s := range m.strata {
		if s.Outcome != "" && !slices.Contains(outcomes, s.Outcome) {
			outcomes = append(outcomes, s.Outcome)
		}
	}
	return outcomes
}

// Stratum returns a copy of the stratum with the given ID.
func (m *Model) Stratum(id string) (Stratum, bool) {
	i, ok := m.index[id]
	if !ok {
		return Stratum{}, false
	}
	s := m.strata[i]
	s.Records = slices.Clone(s.Records)
	return s, true
}

// TimeRange returns the smallest and largest observed time over all strata.
func (m *Model) TimeRange() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range m.strata {
		lo = min(lo, s.Records[0].Time)
		hi = max(hi, s.Records[len(s.Records)-1].Time)
	}
	return lo, hi
}

// Lookup returns the record in effect at time t for the stratum: the last
// record observed at or before t. Before the first observed time it returns
// the starting state, which has the first record's at-risk count, no events
// or censors, and the kind's starting estimate.
func (m *Model) Lookup(id string, t float64) (Record, bool) {
	i, ok := m.index[id]
	if !ok {
		return Record{}, false
	}
	recs := m.strata[i].Records
	n := sort.Search(len(recs), func(j int) bool { return recs[j].Time > t })
	if n == 0 {
		start := m.kind.Start()
		return Record{
			Time:     t,
			Estimate: start,
			Lower:    start,
			Upper:    start,
			NRisk:    recs[0].NRisk,
		}, true
	}
	return recs[n-1], true
}

// Value returns the statistic key of the stratum at time t.
func (m *Model) Value(id, key string, t float64) (float64, error) {
	rec, ok := m.Lookup(id, t)
	if !ok {
		return 0, errors.Configuration("unknown stratum %q", id)
	}
	v, ok := rec.Value(key)
	if !ok {
		return 0, errors.Configuration("statistic %q is not available on the curve model", key)
	}
	return v, nil
}

// HasKey reports whether key names a statistic available on the model.
func (m *Model) HasKey(key string) bool {
	_, ok := keyFields[key]
	return ok
}

func (m *Model) String() string {
	return fmt.Sprintf("curve.Model{%s, %d strata}", m.kind, len(m.strata))
}
