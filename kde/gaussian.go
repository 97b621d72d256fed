// Package kde implements a one dimensional Gaussian kernel density estimate
package kde

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrEmptySample      = errors.New("no sample points to estimate density from")
	ErrZeroVariance     = errors.New("sample has zero variance")
	ErrUnknownBandwidth = errors.New("unknown bandwidth rule")
	ErrNegativeFactor   = errors.New("negative bandwidth factor")
)

// Bandwidth selects the rule of thumb used to derive the kernel width from the sample
type Bandwidth string

const (
	BandwidthScott     Bandwidth = "scott"
	BandwidthSilverman Bandwidth = "silverman"
)

// Options configures the kernel density estimate
type Options struct {
	// Bandwidth is the rule of thumb used to compute the bandwidth factor. Defaults to Scott's rule.
	Bandwidth Bandwidth

	// Factor overrides the rule of thumb if greater than zero. The kernel standard deviation is
	// Factor times the sample standard deviation.
	Factor float64
}

// NewDefaultOptions returns Scott's rule with no factor override
func NewDefaultOptions() *Options {
	return &Options{
		Bandwidth: BandwidthScott,
	}
}

// Validate runs basic validation on the density options
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.Factor < 0 {
		return nil, ErrNegativeFactor
	}
	switch o.Bandwidth {
	case "":
		o.Bandwidth = BandwidthScott
	case BandwidthScott, BandwidthSilverman:
	default:
		return nil, fmt.Errorf("%q, %w", o.Bandwidth, ErrUnknownBandwidth)
	}
	return o, nil
}

// Gaussian is a kernel density estimate with a normal kernel fit over a one dimensional sample
type Gaussian struct {
	sample    []float64
	bandwidth float64

	// log(n * h) subtracted from every kernel log density
	logNorm float64
}

// NewGaussian fits a Gaussian kernel density estimate over the sample. The sample is copied.
func NewGaussian(sample []float64, opt *Options) (*Gaussian, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	n := len(sample)
	if n == 0 {
		return nil, ErrEmptySample
	}

	std := 0.0
	if n > 1 {
		std = stat.StdDev(sample, nil)
	}
	if !(std > 0) {
		return nil, fmt.Errorf("unable to derive a bandwidth from %d points, %w", n, ErrZeroVariance)
	}

	factor := opt.Factor
	if factor == 0 {
		factor = bandwidthFactor(opt.Bandwidth, n)
	}
	h := factor * std

	s := make([]float64, n)
	copy(s, sample)
	return &Gaussian{
		sample:    s,
		bandwidth: h,
		logNorm:   math.Log(float64(n) * h),
	}, nil
}

func bandwidthFactor(b Bandwidth, n int) float64 {
	switch b {
	case BandwidthSilverman:
		return math.Pow(float64(n)*3.0/4.0, -1.0/5.0)
	default:
		return math.Pow(float64(n), -1.0/5.0)
	}
}

// Bandwidth returns the standard deviation of each kernel
func (g *Gaussian) Bandwidth() float64 {
	return g.bandwidth
}

// Len returns the number of sample points the density was fit over
func (g *Gaussian) Len() int {
	return len(g.sample)
}

// LogProb returns the log of the estimated density at x. The sum over kernels is computed in log
// space so points far from the sample stay finite.
func (g *Gaussian) LogProb(x float64) float64 {
	return g.logProb(x, make([]float64, len(g.sample)))
}

func (g *Gaussian) logProb(x float64, buf []float64) float64 {
	for i, s := range g.sample {
		buf[i] = distuv.UnitNormal.LogProb((x - s) / g.bandwidth)
	}
	return floats.LogSumExp(buf) - g.logNorm
}

// LogProbEach returns LogProb(xs[i]) for each i
func (g *Gaussian) LogProbEach(xs []float64) []float64 {
	buf := make([]float64, len(g.sample))
	res := make([]float64, len(xs))
	for i, x := range xs {
		res[i] = g.logProb(x, buf)
	}
	return res
}

// Prob returns the estimated density at x
func (g *Gaussian) Prob(x float64) float64 {
	return math.Exp(g.LogProb(x))
}
