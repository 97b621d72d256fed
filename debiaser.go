// Package unshrink corrects systematic bias in point predictions using a held out calibration
// set of (prediction, target) pairs, so that means and differences of means computed from the
// corrected predictions track the underlying targets.
package unshrink

import (
	"errors"
	"fmt"

	"github.com/aouyang1/go-unshrink/stats"
)

const MinCalibrationSize = 2

var (
	ErrNotFitted               = errors.New("debiaser has not been fit")
	ErrLenMismatch             = errors.New("predictions and targets have different lengths")
	ErrInsufficientCalibration = fmt.Errorf("calibration set needs at least %d points", MinCalibrationSize)
	ErrPartialSigmaCalibration = errors.New("either both or neither of the sigma calibration predictions and targets must be provided")
	ErrUnknownParam            = errors.New("unknown parameter")
	ErrNoPredictions           = errors.New("no predictions provided")
)

// Debiaser fits a correction from a calibration set and applies it to new predictions. Fit may be
// called again to replace the fitted state. Correction methods do not mutate the debiaser.
type Debiaser interface {
	// Fit learns the correction from paired calibration predictions and targets
	Fit(calPredictions, calTargets Vector) error

	// DebiasedPredictions returns one corrected value per prediction in the same order
	DebiasedPredictions(predictions Vector) ([]float64, error)

	// DebiasedMean returns the mean of DebiasedPredictions
	DebiasedMean(predictions Vector) (float64, error)

	// DebiasedATE returns the weighted mean of the debiased treated predictions minus the weighted
	// mean of the debiased control predictions. nil weights are treated as uniform.
	DebiasedATE(treated, control, weightsTreated, weightsControl Vector) (float64, error)

	// Params returns the configuration set at construction, excluding any fitted state
	Params() Params

	// SetParams overwrites configuration by name
	SetParams(p Params) error

	// Fitted reports whether Fit has completed successfully
	Fitted() bool
}

// Params maps a configuration name to its value
type Params map[string]float64

// DebiasedMean computes the mean of the debiaser's per element corrections so the two always
// agree exactly.
func DebiasedMean(d Debiaser, predictions Vector) (float64, error) {
	debiased, err := d.DebiasedPredictions(predictions)
	if err != nil {
		return 0.0, err
	}
	if len(debiased) == 0 {
		return 0.0, ErrNoPredictions
	}
	return stats.WeightedMean(debiased, nil)
}

// DebiasedATE computes the average treatment effect between the debiased treated and control
// predictions, reweighting each group by its optional IPTW weights.
func DebiasedATE(d Debiaser, treated, control, weightsTreated, weightsControl Vector) (float64, error) {
	if !d.Fitted() {
		return 0.0, ErrNotFitted
	}
	wTreated := values(weightsTreated)
	if err := stats.ValidateWeights(vectorLen(treated), wTreated); err != nil {
		return 0.0, fmt.Errorf("treated group, %w", err)
	}
	wControl := values(weightsControl)
	if err := stats.ValidateWeights(vectorLen(control), wControl); err != nil {
		return 0.0, fmt.Errorf("control group, %w", err)
	}

	debiasedTreated, err := d.DebiasedPredictions(treated)
	if err != nil {
		return 0.0, fmt.Errorf("unable to debias treated predictions, %w", err)
	}
	debiasedControl, err := d.DebiasedPredictions(control)
	if err != nil {
		return 0.0, fmt.Errorf("unable to debias control predictions, %w", err)
	}
	return stats.ATE(debiasedTreated, debiasedControl, wTreated, wControl)
}

// calibrationValues validates and copies a paired calibration set
func calibrationValues(predictions, targets Vector) ([]float64, []float64, error) {
	p := values(predictions)
	t := values(targets)
	if len(p) != len(t) {
		return nil, nil, fmt.Errorf("%d predictions and %d targets, %w", len(p), len(t), ErrLenMismatch)
	}
	if len(p) < MinCalibrationSize {
		return nil, nil, fmt.Errorf("got %d points, %w", len(p), ErrInsufficientCalibration)
	}
	return p, t, nil
}
