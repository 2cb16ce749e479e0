// Package risktable resolves the numbers-at-risk tables drawn under a
// curve panel.
//
// A [Spec] names the statistics to show, how rows are grouped, the times
// to tabulate and optional header glyphs. [Resolve] turns it into a
// [Table] of formatted cells using the model's right-continuous lookup,
// and [Draw] lays a table out as a figure panel on a shared x axis.
package risktable

import (
	"math"
	"strings"

	"github.com/matzehuels/survfit/pkg/curve"
	"github.com/matzehuels/survfit/pkg/errors"
)

// DefaultHeight is the height of a table as a fraction of the primary
// panel height.
const DefaultHeight = 0.25

// Grouping orders table rows.
type Grouping string

const (
	// ByStratum emits one block per stratum holding one row per statistic.
	ByStratum Grouping = "stratum"
	// ByStatistic emits one block per statistic holding one row per stratum.
	ByStatistic Grouping = "statistic"
)

// Statistic is one row kind. Set either Key or Template; a key k is the
// template "{k}".
type Statistic struct {
	Key      string
	Template string
	Label    string
}

// Stat returns the statistic for a plain key.
func Stat(key string) Statistic { return Statistic{Key: key} }

// Template returns the statistic interpolating a template such as
// "{n.risk} ({cum.event})".
func Template(tmpl, label string) Statistic { return Statistic{Template: tmpl, Label: label} }

func (s Statistic) template() string {
	if s.Template != "" {
		return s.Template
	}
	return "{" + s.Key + "}"
}

// Name is the label shown for the statistic.
func (s Statistic) Name() string {
	switch {
	case s.Label != "":
		return s.Label
	case s.Template == "":
		return curve.Label(s.Key)
	}
	return s.Template
}

// Spec declares one risk table.
type Spec struct {
	Title   string
	Group   Grouping
	Stats   []Statistic
	Times   []float64
	Symbols map[string]string
	Height  float64
}

// Default returns the default table: at-risk counts and cumulative events
// per stratum.
func Default() Spec {
	return Spec{}.withDefaults()
}

func (s Spec) withDefaults() Spec {
	if s.Group == "" {
		s.Group = ByStratum
	}
	if len(s.Stats) == 0 {
		s.Stats = []Statistic{Stat(curve.KeyNRisk), Stat(curve.KeyCumEvent)}
	}
	if s.Height == 0 {
		s.Height = DefaultHeight
	}
	return s
}

// Validate checks the spec against a model. Every statistic it references
// must be available on m.
func (s Spec) Validate(m *curve.Model) error {
	s = s.withDefaults()
	if s.Group != ByStratum && s.Group != ByStatistic {
		return errors.Configuration("unknown risk table grouping %q", s.Group)
	}
	if s.Height < 0 || s.Height > 2 {
		return errors.Configuration("risk table height must be a fraction in (0, 2], got %g", s.Height)
	}
	for _, t := range s.Times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return errors.Configuration("risk table times must be finite")
		}
	}
	for _, st := range s.Stats {
		if st.Key != "" && st.Template != "" {
			return errors.Configuration("statistic sets both key %q and template %q", st.Key, st.Template)
		}
		segs, err := parseTemplate(st.template())
		if err != nil {
			return err
		}
		for _, seg := range segs {
			if seg.key == "" {
				continue
			}
			if err := errors.ValidateStatisticKey(seg.key); err != nil {
				return err
			}
			if m != nil && !m.HasKey(seg.key) {
				return errors.Configuration("statistic %q is not available on the curve model", seg.key)
			}
		}
	}
	return nil
}

type segment struct {
	lit string
	key string
}

// parseTemplate splits a cell template into literal text and {key}
// references.
func parseTemplate(tmpl string) ([]segment, error) {
	var segs []segment
	rest := tmpl
	for rest != "" {
		open := strings.IndexByte(rest, '{')
		if close := strings.IndexByte(rest, '}'); close >= 0 && (open < 0 || close < open) {
			return nil, errors.Configuration("template %q has an unmatched '}'", tmpl)
		}
		if open < 0 {
			segs = append(segs, segment{lit: rest})
			break
		}
		if open > 0 {
			segs = append(segs, segment{lit: rest[:open]})
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, errors.Configuration("template %q has an unclosed '{'", tmpl)
		}
		key := strings.TrimSpace(rest[open+1 : open+end])
		if key == "" || strings.ContainsRune(key, '{') {
			return nil, errors.Configuration("template %q has an empty or nested reference", tmpl)
		}
		segs = append(segs, segment{key: key})
		rest = rest[open+end+1:]
	}
	if len(segs) == 0 {
		return nil, errors.Configuration("statistic needs a key or a template")
	}
	return segs, nil
}
