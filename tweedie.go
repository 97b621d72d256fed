package unshrink

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aouyang1/go-unshrink/kde"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultDelta is the half width of the central difference used for the score
	DefaultDelta = 1e-5

	ParamDelta = "delta"
)

var ErrInvalidDelta = errors.New("delta must be positive")

// TweedieOptions configures the density score correction
type TweedieOptions struct {
	// Delta is the step used to numerically differentiate the log density
	Delta float64

	// Bandwidth selects the kernel width rule for the prediction density. Defaults to Scott's
	// rule.
	Bandwidth kde.Bandwidth
}

// NewDefaultTweedieOptions returns the default delta with Scott's bandwidth rule
func NewDefaultTweedieOptions() *TweedieOptions {
	return &TweedieOptions{
		Delta:     DefaultDelta,
		Bandwidth: kde.BandwidthScott,
	}
}

// Validate runs basic validation on the tweedie options
func (t *TweedieOptions) Validate() (*TweedieOptions, error) {
	if t == nil {
		t = NewDefaultTweedieOptions()
	}
	if !(t.Delta > 0) {
		return nil, fmt.Errorf("got %g, %w", t.Delta, ErrInvalidDelta)
	}
	if _, err := (&kde.Options{Bandwidth: t.Bandwidth}).Validate(); err != nil {
		return nil, err
	}
	if t.Bandwidth == "" {
		t.Bandwidth = kde.BandwidthScott
	}
	return t, nil
}

type tweedieState struct {
	sigma   float64
	density *kde.Gaussian
}

// Tweedie corrects predictions by p - sigma^2 * d/dp log f(p) where f is a kernel density
// estimate of the calibration predictions and sigma is the standard deviation of the
// prediction residuals.
type Tweedie struct {
	opt   *TweedieOptions
	state *tweedieState
}

// NewTweedie creates an unfitted tweedie corrector. A nil options uses the defaults. The caller's
// options are copied and left untouched.
func NewTweedie(opt *TweedieOptions) (*Tweedie, error) {
	if opt != nil {
		o := *opt
		opt = &o
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Tweedie{opt: opt}, nil
}

// Fit estimates sigma from the calibration residuals and the density over the calibration
// predictions
func (t *Tweedie) Fit(calPredictions, calTargets Vector) error {
	return t.FitWithSigma(calPredictions, calTargets, nil, nil)
}

// FitWithSigma behaves like Fit but estimates sigma from a separate pair of predictions and
// targets when both are provided. The density is always fit over calPredictions.
func (t *Tweedie) FitWithSigma(calPredictions, calTargets, sigmaPredictions, sigmaTargets Vector) error {
	if isNil(sigmaPredictions) != isNil(sigmaTargets) {
		return ErrPartialSigmaCalibration
	}
	preds, targets, err := calibrationValues(calPredictions, calTargets)
	if err != nil {
		return err
	}

	residPreds, residTargets := preds, targets
	if !isNil(sigmaPredictions) {
		residPreds = values(sigmaPredictions)
		residTargets = values(sigmaTargets)
		if len(residPreds) != len(residTargets) {
			return fmt.Errorf("sigma calibration has %d predictions and %d targets, %w", len(residPreds), len(residTargets), ErrLenMismatch)
		}
		if len(residPreds) < MinCalibrationSize {
			return fmt.Errorf("sigma calibration has %d points, %w", len(residPreds), ErrInsufficientCalibration)
		}
	}
	resid := make([]float64, len(residPreds))
	floats.SubTo(resid, residPreds, residTargets)
	sigma := stat.PopStdDev(resid, nil)

	density, err := kde.NewGaussian(preds, &kde.Options{Bandwidth: t.opt.Bandwidth})
	if err != nil {
		return fmt.Errorf("unable to estimate prediction density, %w", err)
	}
	slog.Debug("fit tweedie", "n", len(preds), "sigma", sigma, "bandwidth", density.Bandwidth())

	t.state = &tweedieState{sigma: sigma, density: density}
	return nil
}

// Score returns the numerical derivative of the log prediction density at each y using a
// central difference of width 2*delta
func (t *Tweedie) Score(y []float64) ([]float64, error) {
	if t.state == nil {
		return nil, ErrNotFitted
	}
	delta := t.opt.Delta

	upper := make([]float64, len(y))
	copy(upper, y)
	floats.AddConst(delta, upper)
	lower := make([]float64, len(y))
	copy(lower, y)
	floats.AddConst(-delta, lower)

	score := t.state.density.LogProbEach(upper)
	floats.Sub(score, t.state.density.LogProbEach(lower))
	floats.Scale(1.0/(2.0*delta), score)
	return score, nil
}

// DebiasedPredictions maps each prediction p to p - sigma^2 * score(p)
func (t *Tweedie) DebiasedPredictions(predictions Vector) ([]float64, error) {
	if t.state == nil {
		return nil, ErrNotFitted
	}
	preds := values(predictions)
	score, err := t.Score(preds)
	if err != nil {
		return nil, err
	}
	floats.AddScaled(preds, -t.state.sigma*t.state.sigma, score)
	return preds, nil
}

func (t *Tweedie) DebiasedMean(predictions Vector) (float64, error) {
	return DebiasedMean(t, predictions)
}

func (t *Tweedie) DebiasedATE(treated, control, weightsTreated, weightsControl Vector) (float64, error) {
	return DebiasedATE(t, treated, control, weightsTreated, weightsControl)
}

// Params returns the finite difference step. Only numeric options round trip through Params, the
// bandwidth rule is fixed at construction and read back with Options. The fitted sigma is not a
// parameter.
func (t *Tweedie) Params() Params {
	return Params{ParamDelta: t.opt.Delta}
}

// SetParams updates the named parameters. Nothing is applied if any key is unknown or any value
// is invalid.
func (t *Tweedie) SetParams(p Params) error {
	opt := *t.opt
	for name, v := range p {
		switch name {
		case ParamDelta:
			opt.Delta = v
		default:
			return fmt.Errorf("tweedie has no parameter %q, %w", name, ErrUnknownParam)
		}
	}
	if _, err := opt.Validate(); err != nil {
		return err
	}
	t.opt = &opt
	return nil
}

func (t *Tweedie) Fitted() bool {
	return t.state != nil
}

// Sigma returns the fitted residual standard deviation or 0 if unfitted
func (t *Tweedie) Sigma() float64 {
	if t.state == nil {
		return 0.0
	}
	return t.state.sigma
}

// Options returns a copy of the current options
func (t *Tweedie) Options() TweedieOptions {
	return *t.opt
}
