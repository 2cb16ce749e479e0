package curve

import (
	"context"

	"github.com/matzehuels/survfit/pkg/errors"
)

// Request describes one estimation: a time-to-event dataset, a grouping
// formula such as "Surv(time, status) ~ sex", and an optional covariate
// adjustment model.
type Request struct {
	Dataset    string
	Formula    string
	Adjustment string
}

// Estimator produces curve models. Input validation (non-negative times,
// valid status codes) is the estimator's responsibility.
type Estimator interface {
	Estimate(ctx context.Context, req Request) (*Model, error)
}

// EstimatorFunc adapts a function to the Estimator interface.
type EstimatorFunc func(ctx context.Context, req Request) (*Model, error)

// Estimate calls f(ctx, req).
func (f EstimatorFunc) Estimate(ctx context.Context, req Request) (*Model, error) {
	return f(ctx, req)
}

// Estimate runs est once. Coded errors are returned unchanged; other errors
// are reported as ESTIMATION failures. There are no retries.
func Estimate(ctx context.Context, est Estimator, req Request) (*Model, error) {
	m, err := est.Estimate(ctx, req)
	if err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeEstimation, err, "estimate %s", req.Formula)
	}
	if m == nil {
		return nil, errors.New(errors.ErrCodeEstimation, "estimator returned no model for %s", req.Formula)
	}
	return m, nil
}
