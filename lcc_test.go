package unshrink

import (
	"testing"

	"github.com/aouyang1/go-unshrink/simulate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearCalibrationFit(t *testing.T) {
	targets := simulate.GenerateUniform(simulate.NewRand(10), 100, 0.0, 1.0)

	testData := map[string]struct {
		slope     float64
		intercept float64
	}{
		"identity":       {1.0, 0.0},
		"scaled":         {2.0, 0.0},
		"shifted":        {1.0, -3.0},
		"scaled shifted": {0.5, 1.0},
		"negative slope": {-1.5, 2.0},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			preds := targets.Copy().Scale(td.slope).AddConst(td.intercept)

			l := NewLinearCalibration()
			require.Nil(t, l.Fit(Float64s(preds), Float64s(targets)))
			require.True(t, l.Fitted())
			assert.InDelta(t, td.slope, l.Slope(), 1e-9, "slope")
			assert.InDelta(t, td.intercept, l.Intercept(), 1e-9, "intercept")
			assert.InDelta(t, 1.0, l.RSquared(), 1e-9, "r2")

			debiased, err := l.DebiasedPredictions(Float64s(preds))
			require.Nil(t, err)
			assert.InDeltaSlice(t, []float64(targets), debiased, 1e-9)
		})
	}
}

func TestLinearCalibrationUnfittedAccessors(t *testing.T) {
	l := NewLinearCalibration()
	assert.Equal(t, 0.0, l.Slope())
	assert.Equal(t, 0.0, l.Intercept())
	assert.Equal(t, 0.0, l.RSquared())
}

func TestLinearCalibrationShrunk(t *testing.T) {
	cal, _ := shrunkFixture(11)

	l := NewLinearCalibration()
	require.Nil(t, l.Fit(Float64s(cal.Predictions), Float64s(cal.Targets)))
	assert.InDelta(t, 0.5, l.Slope(), 0.05)
	assert.InDelta(t, 0.0, l.Intercept(), 0.05)

	// predictions carry half the target signal plus half the unit noise
	assert.InDelta(t, 0.5, l.RSquared(), 0.06)
}

func TestLinearCalibrationRefit(t *testing.T) {
	l := NewLinearCalibration()
	targets := Float64s{0, 1, 2, 3}

	require.Nil(t, l.Fit(Float64s{0, 2, 4, 6}, targets))
	assert.InDelta(t, 2.0, l.Slope(), 1e-9)

	require.Nil(t, l.Fit(Float64s{1, 2, 3, 4}, targets))
	assert.InDelta(t, 1.0, l.Slope(), 1e-9)
	assert.InDelta(t, 1.0, l.Intercept(), 1e-9)
}

func TestLinearCalibrationATE(t *testing.T) {
	// predictions are an exact linear function of the targets so the debiased ATE is the true
	// difference in target means
	l := NewLinearCalibration()
	require.Nil(t, l.Fit(Float64s{1, 3, 5, 7}, Float64s{0, 1, 2, 3}))

	treated := Float64s{3, 5, 7}
	control := Float64s{1, 3}
	ate, err := l.DebiasedATE(treated, control, nil, nil)
	require.Nil(t, err)
	assert.InDelta(t, 2.0-0.5, ate, 1e-9)

	ate, err = l.DebiasedATE(treated, control, Float64s{0, 0, 1}, Float64s{1, 0})
	require.Nil(t, err)
	assert.InDelta(t, 3.0-0.0, ate, 1e-9)
}

func TestLinearCalibrationParams(t *testing.T) {
	l := NewLinearCalibration()
	assert.Empty(t, l.Params())
	assert.Nil(t, l.SetParams(l.Params()))
	assert.Nil(t, l.SetParams(nil))

	err := l.SetParams(Params{ParamDelta: 1e-3})
	assert.ErrorIs(t, err, ErrUnknownParam)

	// fitted state is not part of the params
	require.Nil(t, l.Fit(Float64s{0, 2, 4}, Float64s{0, 1, 2}))
	assert.Empty(t, l.Params())
}
