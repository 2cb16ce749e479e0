package plot

import "github.com/matzehuels/survfit/pkg/errors"

// Overlay names.
const (
	NameConfidence = "confidence"
	NameCensor     = "censor"
	NameQuantile   = "quantile"
	NameComparison = "comparison"
)

// Overlay is one named modification of the curve rendering.
type Overlay interface {
	Name() string
}

// Confidence draws the confidence ribbon behind each curve.
type Confidence struct {
	Opacity float64
}

// Censor marks times with censored observations.
type Censor struct {
	Size  float64
	Shape string
}

// QuantileGuide draws one guide line, either horizontal at probability Y
// or vertical at time X. A horizontal guide adds one drop line per stratum
// from its crossing down to the x axis only when Drop is set.
type QuantileGuide struct {
	Y    *float64
	X    *float64
	Drop bool
}

// AtY returns a horizontal guide.
func AtY(y float64) QuantileGuide { return QuantileGuide{Y: &y} }

// AtX returns a vertical guide.
func AtX(x float64) QuantileGuide { return QuantileGuide{X: &x} }

func (g QuantileGuide) validate() error {
	switch {
	case g.Y != nil && g.X != nil:
		return errors.Configuration("quantile guide takes a y value or an x value, not both")
	case g.Y == nil && g.X == nil:
		return errors.Configuration("quantile guide needs a y value or an x value")
	}
	return nil
}

// Comparison annotates the panel with a test result, either as a caption
// line or as text at data coordinates (X, Y).
type Comparison struct {
	Text    string
	Caption bool
	X, Y    float64
}

func (Confidence) Name() string    { return NameConfidence }
func (Censor) Name() string        { return NameCensor }
func (QuantileGuide) Name() string { return NameQuantile }
func (Comparison) Name() string    { return NameComparison }
