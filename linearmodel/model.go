// Package linearmodel provides the least squares primitives used to fit calibration curves
package linearmodel

import (
	"gonum.org/v1/gonum/mat"
)

// Model is a fitted linear model of the form y ~ b + m1x1 + m2x2 ...
type Model interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
	Score(x, y mat.Matrix) (float64, error)
	Intercept() float64
	Coef() []float64
}
