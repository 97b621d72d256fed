// Package simulate generates synthetic (prediction, target) datasets for exercising debiasers.
package simulate

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Series is a chainable slice of values
type Series []float64

// Add adds src elementwise into s
func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

// Scale multiplies every element of s by c
func (s Series) Scale(c float64) Series {
	floats.Scale(c, s)
	return s
}

// AddConst adds c to every element of s
func (s Series) AddConst(c float64) Series {
	floats.AddConst(c, s)
	return s
}

// Copy returns an independent copy of s
func (s Series) Copy() Series {
	c := make(Series, len(s))
	copy(c, s)
	return c
}

// NewRand returns a deterministic random source for the seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// GenerateUniform draws n values uniformly from [lo, hi)
func GenerateUniform(rng *rand.Rand, n int, lo, hi float64) Series {
	y := make(Series, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, lo+(hi-lo)*rng.Float64())
	}
	return y
}

// GenerateNormal draws n values from a normal distribution
func GenerateNormal(rng *rand.Rand, n int, mean, std float64) Series {
	y := make(Series, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, mean+std*rng.NormFloat64())
	}
	return y
}

// Dataset is a paired set of predictions and the targets they estimate
type Dataset struct {
	Predictions Series
	Targets     Series
}

// Len returns the number of pairs
func (d Dataset) Len() int {
	return len(d.Targets)
}

// Slice returns the pairs in [start, end)
func (d Dataset) Slice(start, end int) Dataset {
	return Dataset{
		Predictions: d.Predictions[start:end],
		Targets:     d.Targets[start:end],
	}
}

// GenerateNoisy returns predictions equal to the targets plus independent gaussian noise
func GenerateNoisy(rng *rand.Rand, targets Series, noise float64) Dataset {
	preds := targets.Copy().Add(GenerateNormal(rng, len(targets), 0.0, noise))
	return Dataset{
		Predictions: preds,
		Targets:     targets.Copy(),
	}
}

// GenerateShrunk returns predictions that are posterior means of the targets under a normal prior
// centered at priorMean. Each target is observed with gaussian noise and the observation is pulled
// toward priorMean by shrink, so shrink=1 leaves noisy observations untouched and shrink=0
// collapses every prediction onto the prior mean.
func GenerateShrunk(rng *rand.Rand, targets Series, noise, shrink, priorMean float64) Dataset {
	obs := targets.Copy().Add(GenerateNormal(rng, len(targets), 0.0, noise))
	preds := obs.AddConst(-priorMean).Scale(shrink).AddConst(priorMean)
	return Dataset{
		Predictions: preds,
		Targets:     targets.Copy(),
	}
}
