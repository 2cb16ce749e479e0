package curve

// Statistic keys available on every record.
const (
	KeyTime      = "time"
	KeyNRisk     = "n.risk"
	KeyNEvent    = "n.event"
	KeyNCensor   = "n.censor"
	KeyCumEvent  = "cum.event"
	KeyCumCensor = "cum.censor"
	KeyEstimate  = "estimate"
	KeyConfLow   = "conf.low"
	KeyConfHigh  = "conf.high"
)

// Keys lists every statistic key in display order.
var Keys = []string{
	KeyTime, KeyNRisk, KeyNEvent, KeyNCensor, KeyCumEvent, KeyCumCensor,
	KeyEstimate, KeyConfLow, KeyConfHigh,
}

var keyFields = map[string]func(Record) float64{
	KeyTime:      func(r Record) float64 { return r.Time },
	KeyNRisk:     func(r Record) float64 { return float64(r.NRisk) },
	KeyNEvent:    func(r Record) float64 { return float64(r.NEvent) },
	KeyNCensor:   func(r Record) float64 { return float64(r.NCensor) },
	KeyCumEvent:  func(r Record) float64 { return float64(r.CumEvent) },
	KeyCumCensor: func(r Record) float64 { return float64(r.CumCensor) },
	KeyEstimate:  func(r Record) float64 { return r.Estimate },
	KeyConfLow:   func(r Record) float64 { return r.Lower },
	KeyConfHigh:  func(r Record) float64 { return r.Upper },
}

// Value returns the field named by key.
func (r Record) Value(key string) (float64, bool) {
	f, ok := keyFields[key]
	if !ok {
		return 0, false
	}
	return f(r), true
}

// IsCount reports whether key names an integer count.
func IsCount(key string) bool {
	switch key {
	case KeyNRisk, KeyNEvent, KeyNCensor, KeyCumEvent, KeyCumCensor:
		return true
	}
	return false
}

// Label returns the default display label for a statistic key.
func Label(key string) string {
	switch key {
	case KeyNRisk:
		return "At Risk"
	case KeyNEvent:
		return "Events"
	case KeyNCensor:
		return "Censored"
	case KeyCumEvent:
		return "Cum. Events"
	case KeyCumCensor:
		return "Cum. Censored"
	case KeyEstimate:
		return "Estimate"
	case KeyConfLow:
		return "Lower CI"
	case KeyConfHigh:
		return "Upper CI"
	case KeyTime:
		return "Time"
	}
	return key
}
