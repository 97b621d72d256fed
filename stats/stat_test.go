package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedMean(t *testing.T) {
	testData := map[string]struct {
		values   []float64
		weights  []float64
		expected float64
		err      error
	}{
		"unweighted": {
			values:   []float64{1, 2, 3, 4},
			expected: 2.5,
		},
		"weighted": {
			values:   []float64{1, 2, 3, 4},
			weights:  []float64{1, 0, 0, 1},
			expected: 2.5,
		},
		"skewed weights": {
			values:   []float64{0, 10},
			weights:  []float64{3, 1},
			expected: 2.5,
		},
		"empty": {
			values: []float64{},
			err:    ErrEmptyValues,
		},
		"short weights": {
			values:  []float64{1, 2, 3},
			weights: []float64{1, 1},
			err:     ErrWeightLenMismatch,
		},
		"long weights": {
			values:  []float64{1, 2, 3},
			weights: []float64{1, 1, 1, 1},
			err:     ErrWeightLenMismatch,
		},
		"zero sum": {
			values:  []float64{1, 2},
			weights: []float64{0, 0},
			err:     ErrNonPositiveWeightSum,
		},
		"negative weight": {
			values:  []float64{1, 2},
			weights: []float64{-1, 2},
			err:     ErrNegativeWeight,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := WeightedMean(td.values, td.weights)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.InDelta(t, td.expected, res, 1e-12)
		})
	}
}

func TestWeightedMeanUniformWeights(t *testing.T) {
	values := []float64{0.3, 1.7, -2.2, 4.1, 0.05}
	unweighted, err := WeightedMean(values, nil)
	require.Nil(t, err)

	for _, c := range []float64{1e-3, 0.5, 1.0, 7.0, 1e4} {
		weights := make([]float64, len(values))
		for i := range weights {
			weights[i] = c
		}
		weighted, err := WeightedMean(values, weights)
		require.Nil(t, err)
		assert.InDelta(t, unweighted, weighted, 1e-12, "constant weight %f", c)
	}
}

func TestATE(t *testing.T) {
	treated := []float64{2, 4, 6}
	control := []float64{1, 1}

	testData := map[string]struct {
		wTreated []float64
		wControl []float64
		expected float64
		err      error
		errMsg   string
	}{
		"unweighted": {
			expected: 3.0,
		},
		"weighted": {
			wTreated: []float64{0, 0, 1},
			wControl: []float64{2, 5},
			expected: 5.0,
		},
		"bad treated weights": {
			wTreated: []float64{1, 1},
			wControl: []float64{1, 1},
			err:      ErrWeightLenMismatch,
			errMsg:   "treated group",
		},
		"bad control weights": {
			wTreated: []float64{1, 1, 1},
			wControl: []float64{1, 1, 1},
			err:      ErrWeightLenMismatch,
			errMsg:   "control group",
		},
		"zero control weights": {
			wControl: []float64{0, 0},
			err:      ErrNonPositiveWeightSum,
			errMsg:   "control group",
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := ATE(treated, control, td.wTreated, td.wControl)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				assert.Contains(t, err.Error(), td.errMsg)
				return
			}
			require.Nil(t, err)
			assert.InDelta(t, td.expected, res, 1e-12)
		})
	}
}

func TestValidateWeights(t *testing.T) {
	assert.Nil(t, ValidateWeights(3, nil))
	assert.Nil(t, ValidateWeights(2, []float64{0, 1}))
	assert.ErrorIs(t, ValidateWeights(0, []float64{}), ErrNonPositiveWeightSum)
	assert.ErrorIs(t, ValidateWeights(3, []float64{1, 1}), ErrWeightLenMismatch)
	assert.ErrorIs(t, ValidateWeights(2, []float64{math.NaN(), 1}), ErrNonPositiveWeightSum)
}
