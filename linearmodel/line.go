package linearmodel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var _ Model = (*OLSRegression)(nil)

// Line is a fitted single regressor model y ~ Intercept + Slope*x
type Line struct {
	Intercept float64
	Slope     float64

	// R2 is the coefficient of determination on the training points
	R2 float64
}

// FitLine fits y ~ intercept + slope*x by ordinary least squares for a single explanatory
// variable.
func FitLine(x, y []float64) (*Line, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("explanatory has %d points and response has %d, %w", len(x), len(y), ErrTargetLenMismatch)
	}
	if len(x) == 0 {
		return nil, ErrNoTrainingMatrix
	}

	model, err := NewOLSRegression(&OLSOptions{FitIntercept: true})
	if err != nil {
		return nil, err
	}

	xMx := mat.NewDense(len(x), 1, append([]float64(nil), x...))
	yMx := mat.NewDense(len(y), 1, append([]float64(nil), y...))
	if err := model.Fit(xMx, yMx); err != nil {
		return nil, err
	}
	r2, err := model.Score(xMx, yMx)
	if err != nil {
		return nil, err
	}
	return &Line{
		Intercept: model.Intercept(),
		Slope:     model.Coef()[0],
		R2:        r2,
	}, nil
}
