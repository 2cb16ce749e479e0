// Package scale resolves axis scales for curve panels.
//
// A [Scale] is a request: optional limits, optional explicit breaks and an
// optional transform or percent labelling. [Resolve] turns a request plus
// the observed data range into an [Axis] with final limits, break
// positions and break labels. Panels that must line up share one resolved
// Axis value rather than resolving their own.
//
// Scales are single-slot: a plot keeps at most one Scale per dimension and
// replacing it discards the previous request entirely. Nothing here merges.
package scale

import (
	"math"
	"slices"
	"strconv"

	"github.com/matzehuels/survfit/pkg/errors"
)

// DefaultBreaks is the number of breaks aimed for when none are given.
const DefaultBreaks = 5

// Transform maps data values onto the axis before placement. Breaks and
// labels stay in data units.
type Transform struct {
	Name    string
	Forward func(float64) float64
}

var (
	// Reverse flips the axis direction.
	Reverse = &Transform{
		Name:    "reverse",
		Forward: func(v float64) float64 { return -v },
	}
	// Sqrt compresses long follow-up times.
	Sqrt = &Transform{
		Name:    "sqrt",
		Forward: math.Sqrt,
	}
)

// TransformByName returns a built-in transform, or nil for "identity".
func TransformByName(name string) (*Transform, error) {
	switch name {
	case "", "identity":
		return nil, nil
	case "reverse":
		return Reverse, nil
	case "sqrt":
		return Sqrt, nil
	}
	return nil, errors.Configuration("unknown scale transform %q", name)
}

// Scale is a request for one axis.
type Scale struct {
	// Limits fixes the axis range; nil means use the data range.
	Limits []float64
	// Breaks fixes break positions; nil means generate pretty breaks.
	Breaks []float64
	// N is the number of breaks aimed for when generating them.
	N int
	// Percent labels breaks as percentages (0.5 -> "50%").
	Percent bool
	// Transform is a custom transform; nil means identity.
	Transform *Transform
}

// Validate reports a CONFIGURATION error for requests that cannot be
// honoured as given.
func (s Scale) Validate() error {
	if s.Percent && s.Transform != nil {
		return errors.Configuration("scale cannot combine percent labels with the %q transform", s.Transform.Name)
	}
	if s.Limits != nil {
		if len(s.Limits) != 2 {
			return errors.Configuration("scale limits need exactly two values, got %d", len(s.Limits))
		}
		if !(s.Limits[0] < s.Limits[1]) {
			return errors.Configuration("scale limits must be increasing, got %v", s.Limits)
		}
	}
	for _, b := range s.Breaks {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return errors.Configuration("scale breaks must be finite")
		}
	}
	if s.N < 0 {
		return errors.Configuration("scale break count cannot be negative")
	}
	if s.Transform != nil && s.Transform.Forward == nil {
		return errors.Configuration("transform %q needs a forward function", s.Transform.Name)
	}
	return nil
}

// Axis is a resolved scale.
type Axis struct {
	Min, Max  float64
	Breaks    []float64
	Labels    []string
	Transform *Transform
}

// Resolve computes the final axis for s over the data range [lo, hi].
func Resolve(s Scale, lo, hi float64) (Axis, error) {
	if err := s.Validate(); err != nil {
		return Axis{}, err
	}
	if s.Limits != nil {
		lo, hi = s.Limits[0], s.Limits[1]
	}
	if !(hi > lo) {
		hi = lo + 1
	}

	a := Axis{Min: lo, Max: hi, Transform: s.Transform}

	if s.Breaks != nil {
		for _, b := range s.Breaks {
			if b >= lo && b <= hi {
				a.Breaks = append(a.Breaks, b)
			}
		}
		slices.Sort(a.Breaks)
		a.Breaks = slices.Compact(a.Breaks)
	} else {
		n := s.N
		if n == 0 {
			n = DefaultBreaks
		}
		a.Breaks = Pretty(lo, hi, n)
	}

	a.Labels = make([]string, len(a.Breaks))
	for i, b := range a.Breaks {
		if s.Percent {
			a.Labels[i] = FormatNumber(b*100) + "%"
		} else {
			a.Labels[i] = FormatNumber(b)
		}
	}
	return a, nil
}

// Map places data value v on the unit interval [from, to] of the axis.
func (a Axis) Map(v, from, to float64) float64 {
	lo, hi, x := a.Min, a.Max, v
	if a.Transform != nil {
		tlo, thi := a.Transform.Forward(lo), a.Transform.Forward(hi)
		lo, hi, x = min(tlo, thi), max(tlo, thi), a.Transform.Forward(v)
	}
	if hi == lo {
		return from
	}
	return from + (x-lo)/(hi-lo)*(to-from)
}

// Clamp limits v to the axis range.
func (a Axis) Clamp(v float64) float64 {
	return max(a.Min, min(a.Max, v))
}

// Equal reports whether two axes have the same limits and breaks.
func (a Axis) Equal(b Axis) bool {
	return a.Min == b.Min && a.Max == b.Max &&
		slices.Equal(a.Breaks, b.Breaks) && slices.Equal(a.Labels, b.Labels)
}

// Pretty returns roughly n evenly spaced "nice" breaks within [lo, hi].
func Pretty(lo, hi float64, n int) []float64 {
	if n < 2 {
		n = 2
	}
	step := niceNum((hi - lo) / float64(n-1))
	if step == 0 || math.IsNaN(step) {
		return []float64{lo}
	}
	start := math.Ceil(lo/step-1e-9) * step
	var out []float64
	for v := start; v <= hi+step*1e-9; v += step {
		out = append(out, round(v, step))
	}
	return out
}

// niceNum finds a 1, 2, 5 multiple of a power of ten near x.
func niceNum(x float64) float64 {
	if x <= 0 {
		return 0
	}
	exp := math.Floor(math.Log10(x))
	f := x / math.Pow(10, exp)
	var nf float64
	switch {
	case f < 1.5:
		nf = 1
	case f < 3:
		nf = 2
	case f < 7:
		nf = 5
	default:
		nf = 10
	}
	return nf * math.Pow(10, exp)
}

// round snaps v to the precision implied by step to drop float noise.
func round(v, step float64) float64 {
	digits := max(0, -int(math.Floor(math.Log10(step)))+1)
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}

// FormatNumber formats v with at most six decimals and no trailing zeros.
func FormatNumber(v float64) string {
	v = math.Round(v*1e6) / 1e6
	if v == 0 {
		v = 0 // normalise -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
