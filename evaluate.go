package unshrink

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/aouyang1/go-unshrink/stats"
)

// Evaluation compares the naive and debiased means of a cohort against its true mean
type Evaluation struct {
	TrueMean      float64 `json:"true_mean"`
	NaiveMean     float64 `json:"naive_mean"`
	CorrectedMean float64 `json:"corrected_mean"`

	// BiasBefore and BiasAfter are absolute differences from TrueMean
	BiasBefore float64 `json:"bias_before"`
	BiasAfter  float64 `json:"bias_after"`
}

// Improved reports whether debiasing moved the mean closer to the truth
func (e Evaluation) Improved() bool {
	return e.BiasAfter < e.BiasBefore
}

func (e Evaluation) TablePrint(w io.Writer) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tbl, "\tMean\tBias\t\n")
	fmt.Fprintf(tbl, "True\t%.5f\t\t\n", e.TrueMean)
	fmt.Fprintf(tbl, "Naive\t%.5f\t%.5f\t\n", e.NaiveMean, e.BiasBefore)
	fmt.Fprintf(tbl, "Corrected\t%.5f\t%.5f\t\n", e.CorrectedMean, e.BiasAfter)
	return tbl.Flush()
}

// Evaluate fits the debiaser on the calibration set and measures how far the naive and debiased
// means of predictions land from the mean of targets
func Evaluate(d Debiaser, calPredictions, calTargets, predictions, targets Vector) (*Evaluation, error) {
	if err := checkEvaluationSet(predictions, targets); err != nil {
		return nil, err
	}
	if err := d.Fit(calPredictions, calTargets); err != nil {
		return nil, fmt.Errorf("unable to fit debiaser, %w", err)
	}
	return EvaluateFitted(d, predictions, targets)
}

// EvaluateFitted behaves like Evaluate for a debiaser that has already been fit
func EvaluateFitted(d Debiaser, predictions, targets Vector) (*Evaluation, error) {
	if !d.Fitted() {
		return nil, ErrNotFitted
	}
	if err := checkEvaluationSet(predictions, targets); err != nil {
		return nil, err
	}
	preds := values(predictions)
	truth := values(targets)

	trueMean, err := stats.WeightedMean(truth, nil)
	if err != nil {
		return nil, err
	}
	naiveMean, err := stats.WeightedMean(preds, nil)
	if err != nil {
		return nil, err
	}
	correctedMean, err := d.DebiasedMean(Float64s(preds))
	if err != nil {
		return nil, fmt.Errorf("unable to debias evaluation predictions, %w", err)
	}

	return &Evaluation{
		TrueMean:      trueMean,
		NaiveMean:     naiveMean,
		CorrectedMean: correctedMean,
		BiasBefore:    math.Abs(naiveMean - trueMean),
		BiasAfter:     math.Abs(correctedMean - trueMean),
	}, nil
}

func checkEvaluationSet(predictions, targets Vector) error {
	n, m := vectorLen(predictions), vectorLen(targets)
	if n != m {
		return fmt.Errorf("evaluation set has %d predictions and %d targets, %w", n, m, ErrLenMismatch)
	}
	if n == 0 {
		return ErrNoPredictions
	}
	return nil
}
