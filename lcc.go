package unshrink

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"

	"github.com/aouyang1/go-unshrink/linearmodel"
)

// slopes below this magnitude make the inversion blow up small prediction differences
const nearZeroSlope = 1e-8

type lccState struct {
	slope     float64
	intercept float64
	r2        float64
}

// LinearCalibration models predictions as a linear function of the targets, prediction ~
// slope*target + intercept, and inverts that line to recover target scale values.
type LinearCalibration struct {
	state *lccState
}

// NewLinearCalibration creates an unfitted linear calibration corrector
func NewLinearCalibration() *LinearCalibration {
	return &LinearCalibration{}
}

// Fit regresses the calibration predictions on the calibration targets. A previous fit is
// replaced only when the new fit succeeds.
func (l *LinearCalibration) Fit(calPredictions, calTargets Vector) error {
	preds, targets, err := calibrationValues(calPredictions, calTargets)
	if err != nil {
		return err
	}

	line, err := linearmodel.FitLine(targets, preds)
	if err != nil {
		return fmt.Errorf("unable to fit calibration line, %w", err)
	}
	if math.Abs(line.Slope) < nearZeroSlope {
		slog.Warn("calibration slope is near zero, corrections will be unstable", "slope", line.Slope)
	}
	slog.Debug("fit linear calibration", "n", len(preds), "slope", line.Slope, "intercept", line.Intercept, "r2", line.R2)

	l.state = &lccState{slope: line.Slope, intercept: line.Intercept, r2: line.R2}
	return nil
}

// DebiasedPredictions maps each prediction p to (p - intercept) / slope
func (l *LinearCalibration) DebiasedPredictions(predictions Vector) ([]float64, error) {
	if l.state == nil {
		return nil, ErrNotFitted
	}
	res := values(predictions)
	for i, p := range res {
		res[i] = (p - l.state.intercept) / l.state.slope
	}
	return res, nil
}

func (l *LinearCalibration) DebiasedMean(predictions Vector) (float64, error) {
	return DebiasedMean(l, predictions)
}

func (l *LinearCalibration) DebiasedATE(treated, control, weightsTreated, weightsControl Vector) (float64, error) {
	return DebiasedATE(l, treated, control, weightsTreated, weightsControl)
}

// Params is always empty since linear calibration has no configuration
func (l *LinearCalibration) Params() Params {
	return Params{}
}

// SetParams rejects every key
func (l *LinearCalibration) SetParams(p Params) error {
	if len(p) > 0 {
		return fmt.Errorf("linear calibration has no parameters, got %v, %w", slices.Sorted(maps.Keys(p)), ErrUnknownParam)
	}
	return nil
}

func (l *LinearCalibration) Fitted() bool {
	return l.state != nil
}

// Slope returns the fitted slope or 0 if unfitted
func (l *LinearCalibration) Slope() float64 {
	if l.state == nil {
		return 0.0
	}
	return l.state.slope
}

// Intercept returns the fitted intercept or 0 if unfitted
func (l *LinearCalibration) Intercept() float64 {
	if l.state == nil {
		return 0.0
	}
	return l.state.intercept
}

// RSquared returns how much of the calibration prediction variance the fitted line explains or 0
// if unfitted
func (l *LinearCalibration) RSquared() float64 {
	if l.state == nil {
		return 0.0
	}
	return l.state.r2
}
