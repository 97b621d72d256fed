package unshrink

import (
	"errors"
	"fmt"
	"reflect"

	"gonum.org/v1/gonum/mat"
)

var ErrLabelLenMismatch = errors.New("series labels length does not match values length")

// Vector is a one dimensional numeric container. Any labels or indices carried by an
// implementation are ignored, only the values are used. *mat.VecDense from gonum satisfies
// Vector.
type Vector interface {
	Len() int
	AtVec(i int) float64
}

// Float64s adapts a raw slice of values into a Vector
type Float64s []float64

func (f Float64s) Len() int            { return len(f) }
func (f Float64s) AtVec(i int) float64 { return f[i] }

// Series is a labeled one dimensional container where each value is keyed by a label
type Series struct {
	Labels []string
	Values []float64
}

// NewSeries creates a labeled series. Labels may be nil.
func NewSeries(labels []string, vals []float64) (*Series, error) {
	if labels != nil && len(labels) != len(vals) {
		return nil, fmt.Errorf("got %d labels for %d values, %w", len(labels), len(vals), ErrLabelLenMismatch)
	}
	return &Series{Labels: labels, Values: vals}, nil
}

func (s *Series) Len() int            { return len(s.Values) }
func (s *Series) AtVec(i int) float64 { return s.Values[i] }

// values copies a vector into a fresh slice. A nil vector returns nil.
func values(v Vector) []float64 {
	if isNil(v) {
		return nil
	}
	out := make([]float64, v.Len())
	switch t := v.(type) {
	case Float64s:
		copy(out, t)
	case *Series:
		copy(out, t.Values)
	default:
		for i := range out {
			out[i] = v.AtVec(i)
		}
	}
	return out
}

// isNil treats both a nil interface and a typed nil implementation as an absent vector
func isNil(v Vector) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case Float64s:
		return t == nil
	case *Series:
		return t == nil
	case *mat.VecDense:
		return t == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func vectorLen(v Vector) int {
	if isNil(v) {
		return 0
	}
	return v.Len()
}
