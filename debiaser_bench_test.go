package unshrink

import (
	"testing"

	"github.com/pkg/profile"
)

var benchDebiased []float64

func BenchmarkTweedieFit(b *testing.B) {
	cal, _ := shrunkFixture(50)
	tw, err := NewTweedie(nil)
	if err != nil {
		panic(err)
	}
	for b.Loop() {
		if err := tw.Fit(Float64s(cal.Predictions), Float64s(cal.Targets)); err != nil {
			panic(err)
		}
	}
}

func BenchmarkTweedieDebiasedPredictions(b *testing.B) {
	cal, cohort := shrunkFixture(51)
	tw, err := NewTweedie(nil)
	if err != nil {
		panic(err)
	}
	if err := tw.Fit(Float64s(cal.Predictions), Float64s(cal.Targets)); err != nil {
		panic(err)
	}
	b.ResetTimer()
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	for b.Loop() {
		benchDebiased, err = tw.DebiasedPredictions(Float64s(cohort.Predictions))
		if err != nil {
			panic(err)
		}
	}
}

func BenchmarkLinearCalibrationDebiasedPredictions(b *testing.B) {
	cal, cohort := shrunkFixture(52)
	l := NewLinearCalibration()
	if err := l.Fit(Float64s(cal.Predictions), Float64s(cal.Targets)); err != nil {
		panic(err)
	}
	var err error
	for b.Loop() {
		benchDebiased, err = l.DebiasedPredictions(Float64s(cohort.Predictions))
		if err != nil {
			panic(err)
		}
	}
}
