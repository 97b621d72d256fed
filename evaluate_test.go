package unshrink

import (
	"bytes"
	"math"
	"testing"

	"github.com/aouyang1/go-unshrink/simulate"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestEvaluate(t *testing.T) {
	rng := simulate.NewRand(30)
	cal := simulate.GenerateNoisy(rng, simulate.GenerateUniform(rng, 1000, 0.0, 1.0), 0.1)
	eval := simulate.GenerateNoisy(rng, simulate.GenerateUniform(rng, 500, 0.0, 1.0), 0.1)

	for name, d := range newDebiasers(t) {
		t.Run(name, func(t *testing.T) {
			res, err := Evaluate(d,
				Float64s(cal.Predictions), Float64s(cal.Targets),
				Float64s(eval.Predictions), Float64s(eval.Targets),
			)
			require.Nil(t, err)
			require.True(t, d.Fitted())

			assert.InDelta(t, stat.Mean(eval.Targets, nil), res.TrueMean, 1e-12)
			assert.InDelta(t, stat.Mean(eval.Predictions, nil), res.NaiveMean, 1e-12)

			corrected, err := d.DebiasedMean(Float64s(eval.Predictions))
			require.Nil(t, err)
			assert.Equal(t, corrected, res.CorrectedMean)
			assert.InDelta(t, math.Abs(res.NaiveMean-res.TrueMean), res.BiasBefore, 1e-12)
			assert.InDelta(t, math.Abs(res.CorrectedMean-res.TrueMean), res.BiasAfter, 1e-12)

			// noise here is symmetric and independent of the targets so the naive mean carries no
			// systematic bias to remove and BiasAfter < BiasBefore is a coin flip. Both means stay
			// close to the truth instead. TestEvaluateShrunk checks the improvement.
			assert.Less(t, res.BiasBefore, 0.03)
			assert.Less(t, res.BiasAfter, 0.05)

			out, err := json.Marshal(res)
			require.Nil(t, err)
			var record map[string]float64
			require.Nil(t, json.Unmarshal(out, &record))
			for _, key := range []string{"true_mean", "naive_mean", "corrected_mean", "bias_before", "bias_after"} {
				assert.Contains(t, record, key)
			}
			assert.Len(t, record, 5)
		})
	}
}

func TestEvaluateShrunk(t *testing.T) {
	cal, cohort := shrunkFixture(31)
	for name, d := range newDebiasers(t) {
		t.Run(name, func(t *testing.T) {
			res, err := Evaluate(d,
				Float64s(cal.Predictions), Float64s(cal.Targets),
				Float64s(cohort.Predictions), Float64s(cohort.Targets),
			)
			require.Nil(t, err)
			assert.True(t, res.Improved())
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	calP := Float64s{0.1, 0.4, 0.8}
	calT := Float64s{0.0, 0.5, 1.0}

	testData := map[string]struct {
		calPredictions Vector
		calTargets     Vector
		predictions    Vector
		targets        Vector
		err            error
	}{
		"evaluation length mismatch": {
			calP, calT, Float64s{1, 2}, Float64s{1}, ErrLenMismatch,
		},
		"empty evaluation": {
			calP, calT, Float64s{}, Float64s{}, ErrNoPredictions,
		},
		"calibration length mismatch": {
			calP, Float64s{1}, Float64s{1, 2}, Float64s{1, 2}, ErrLenMismatch,
		},
		"insufficient calibration": {
			Float64s{1}, Float64s{1}, Float64s{1, 2}, Float64s{1, 2}, ErrInsufficientCalibration,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			for dName, d := range newDebiasers(t) {
				_, err := Evaluate(d, td.calPredictions, td.calTargets, td.predictions, td.targets)
				assert.ErrorIs(t, err, td.err, dName)
			}
		})
	}
}

func TestEvaluateFitted(t *testing.T) {
	cal, cohort := shrunkFixture(32)
	p, y := Float64s(cohort.Predictions), Float64s(cohort.Targets)

	tw, err := NewTweedie(nil)
	require.Nil(t, err)
	_, err = EvaluateFitted(tw, p, y)
	assert.ErrorIs(t, err, ErrNotFitted)

	require.Nil(t, tw.FitWithSigma(
		Float64s(cal.Predictions), Float64s(cal.Targets),
		Float64s(cal.Predictions[:1000]), Float64s(cal.Targets[:1000]),
	))
	sigma := tw.Sigma()

	res, err := EvaluateFitted(tw, p, y)
	require.Nil(t, err)
	corrected, err := tw.DebiasedMean(p)
	require.Nil(t, err)
	assert.Equal(t, corrected, res.CorrectedMean)

	// the existing fit is used as is
	assert.Equal(t, sigma, tw.Sigma())
}

func TestEvaluationTablePrint(t *testing.T) {
	e := Evaluation{
		TrueMean:      0.5,
		NaiveMean:     0.6,
		CorrectedMean: 0.51,
		BiasBefore:    0.1,
		BiasAfter:     0.01,
	}

	expected := "" +
		"              Mean    Bias\n" +
		"      True 0.50000        \n" +
		"     Naive 0.60000 0.10000\n" +
		" Corrected 0.51000 0.01000\n"

	var buf bytes.Buffer
	require.Nil(t, e.TablePrint(&buf))
	assert.Equal(t, expected, buf.String())
	assert.True(t, e.Improved())
}
