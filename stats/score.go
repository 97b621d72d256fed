package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var ErrResLenMismatch = errors.New("predicted and actual have different lengths")

// Scores tracks per unit accuracy of a set of predictions. Debiasing targets aggregate accuracy,
// so these may get worse even as the mean improves.
type Scores struct {
	MeanError float64 `json:"mean_error"`
	MAE       float64 `json:"mean_absolute_error"`
	MSE       float64 `json:"mean_squared_error"`
	R2        float64 `json:"r_squared"`
}

// NewScores calculates the scores given the predicted and actual values. NaN pairs are skipped.
func NewScores(predicted, actual []float64) (*Scores, error) {
	p, a, err := finitePairs(predicted, actual)
	if err != nil {
		return nil, err
	}
	if len(p) == 0 {
		return nil, ErrEmptyValues
	}

	resid := make([]float64, len(p))
	for i := range p {
		resid[i] = p[i] - a[i]
	}

	var mae, mse float64
	for _, r := range resid {
		mae += math.Abs(r)
		mse += r * r
	}
	n := float64(len(resid))

	r2 := stat.RSquaredFrom(p, a, nil)
	if math.IsNaN(r2) {
		r2 = 1.0
	}

	return &Scores{
		MeanError: stat.Mean(resid, nil),
		MAE:       mae / n,
		MSE:       mse / n,
		R2:        r2,
	}, nil
}

func finitePairs(predicted, actual []float64) ([]float64, []float64, error) {
	if len(predicted) != len(actual) {
		return nil, nil, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	p := make([]float64, 0, len(predicted))
	a := make([]float64, 0, len(actual))
	for i := range predicted {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		p = append(p, predicted[i])
		a = append(a, actual[i])
	}
	return p, a, nil
}
