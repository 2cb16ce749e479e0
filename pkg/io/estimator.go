package io

import (
	"context"
	"path/filepath"

	"github.com/matzehuels/survfit/pkg/curve"
	"github.com/matzehuels/survfit/pkg/errors"
)

// FileEstimator serves precomputed curve tables from disk. It does not fit
// models: the formula is informational and adjusted requests fail.
type FileEstimator struct {
	// Root is the directory datasets are resolved against.
	Root string
	// Kind is the curve kind assumed for CSV tables.
	Kind curve.Kind
}

// Estimate implements [curve.Estimator].
func (e FileEstimator) Estimate(ctx context.Context, req curve.Request) (*curve.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Adjustment != "" {
		return nil, errors.New(errors.ErrCodeEstimation, "covariate adjustment %q needs a fitting estimator", req.Adjustment)
	}
	if req.Dataset == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "request has no dataset")
	}
	path := req.Dataset
	if e.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(e.Root, path)
	}
	return Import(path, e.Kind)
}

var _ curve.Estimator = FileEstimator{}
