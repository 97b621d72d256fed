// Package stats holds the weighted aggregations shared by every debiaser, turning per unit
// corrected predictions into scalar summaries.
package stats

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrEmptyValues          = errors.New("no values to aggregate")
	ErrWeightLenMismatch    = errors.New("weights length does not match values length")
	ErrNegativeWeight       = errors.New("weights must be non-negative")
	ErrNonPositiveWeightSum = errors.New("weights must sum to a positive value")
)

// WeightedMean computes sum(v_i * w_i) / sum(w_i). A nil weights slice returns the arithmetic
// mean. Weights only act as relative proportions so any constant weight reduces to the
// unweighted mean.
func WeightedMean(values, weights []float64) (float64, error) {
	if len(values) == 0 {
		return 0.0, ErrEmptyValues
	}
	if err := ValidateWeights(len(values), weights); err != nil {
		return 0.0, err
	}
	return stat.Mean(values, weights), nil
}

// ValidateWeights checks that weights can reweight n values. nil weights are always valid.
func ValidateWeights(n int, weights []float64) error {
	if weights == nil {
		return nil
	}
	if len(weights) != n {
		return fmt.Errorf("got %d weights for %d values, %w", len(weights), n, ErrWeightLenMismatch)
	}
	for i, w := range weights {
		if w < 0 {
			return fmt.Errorf("weight %.4f at index %d, %w", w, i, ErrNegativeWeight)
		}
	}
	if sum := floats.Sum(weights); !(sum > 0) {
		return fmt.Errorf("weights sum to %.4f, %w", sum, ErrNonPositiveWeightSum)
	}
	return nil
}

// ATE computes the average treatment effect as the difference between the weighted mean of the
// treated group and the weighted mean of the control group. Each group's weights are validated
// against that group's own values.
func ATE(treated, control, weightsTreated, weightsControl []float64) (float64, error) {
	treatedMean, err := WeightedMean(treated, weightsTreated)
	if err != nil {
		return 0.0, fmt.Errorf("treated group, %w", err)
	}
	controlMean, err := WeightedMean(control, weightsControl)
	if err != nil {
		return 0.0, fmt.Errorf("control group, %w", err)
	}
	return treatedMean - controlMean, nil
}
