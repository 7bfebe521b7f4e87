// Package vec contains the numeric primitives used inside training loops.
//
// The sequential functions accumulate strictly left to right so that a result
// is reproducible bit for bit. The *Parallel variants run the same kernels
// through a parallel.Loop and are meant for buffers far larger than the
// feature count; reductions combine per-partition partials in partition order.
package vec

import (
	"github.com/YuminosukeSato/gdlinear/core/parallel"
	"github.com/YuminosukeSato/gdlinear/pkg/errors"
)

// DefaultGrain is the number of elements a single goroutine handles in the
// *Parallel functions unless overridden.
const DefaultGrain = 10_000_000

// Dot returns Σ a[i]·b[i].
func Dot(a, b []float64) (float64, error) {
	return ScaledDot(a, b, 1)
}

// ScaledDot returns Σ scale·a[i]·b[i]. a and b must have the same length.
func ScaledDot(a, b []float64, scale float64) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.NewDimensionError("vec.ScaledDot", len(a), len(b), 1)
	}
	return scaledDot(a, b, scale), nil
}

func scaledDot(a, b []float64, scale float64) float64 {
	b = b[:len(a)]
	var result float64
	for i, v := range a {
		result += scale * v * b[i]
	}
	return result
}

// Sum returns Σ a[i].
func Sum(a []float64) float64 {
	return ScaledSum(a, 1)
}

// ScaledSum returns Σ scale·a[i].
func ScaledSum(a []float64, scale float64) float64 {
	var result float64
	for _, v := range a {
		result += v * scale
	}
	return result
}

// Scale multiplies every element of a by value in place.
func Scale(a []float64, value float64) {
	for i := range a {
		a[i] *= value
	}
}

// Shift adds value to every element of a in place.
func Shift(a []float64, value float64) {
	for i := range a {
		a[i] += value
	}
}

// Option configures the *Parallel functions.
type Option func(*config)

type config struct {
	grain      int
	maxThreads int
}

// WithGrain sets how many elements one goroutine processes.
func WithGrain(n int) Option {
	return func(c *config) {
		c.grain = n
	}
}

// WithMaxThreads caps the number of goroutines. n <= 0 means runtime.NumCPU().
func WithMaxThreads(n int) Option {
	return func(c *config) {
		c.maxThreads = n
	}
}

func newLoop(n int, opts []Option) (*parallel.Loop, error) {
	c := config{grain: DefaultGrain}
	for _, opt := range opts {
		opt(&c)
	}
	return parallel.NewLoop(0, n, c.grain, parallel.WithMaxThreads(c.maxThreads))
}

// ScaleParallel is Scale split across goroutines.
func ScaleParallel(a []float64, value float64, opts ...Option) error {
	l, err := newLoop(len(a), opts)
	if err != nil {
		return err
	}
	return l.RunRanges(func(r parallel.Range) {
		Scale(parallel.Slice(a, r), value)
	})
}

// ShiftParallel is Shift split across goroutines.
func ShiftParallel(a []float64, value float64, opts ...Option) error {
	l, err := newLoop(len(a), opts)
	if err != nil {
		return err
	}
	return l.RunRanges(func(r parallel.Range) {
		Shift(parallel.Slice(a, r), value)
	})
}

// DotParallel is ScaledDot with the index range split across goroutines.
// For a fixed grain and thread cap the result is identical across runs.
func DotParallel(a, b []float64, scale float64, opts ...Option) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.NewDimensionError("vec.DotParallel", len(a), len(b), 1)
	}
	l, err := newLoop(len(a), opts)
	if err != nil {
		return 0, err
	}
	return l.Reduce(func(r parallel.Range) float64 {
		return scaledDot(parallel.Slice(a, r), parallel.Slice(b, r), scale)
	})
}

// SumParallel is ScaledSum with the index range split across goroutines.
func SumParallel(a []float64, scale float64, opts ...Option) (float64, error) {
	l, err := newLoop(len(a), opts)
	if err != nil {
		return 0, err
	}
	return l.Reduce(func(r parallel.Range) float64 {
		return ScaledSum(parallel.Slice(a, r), scale)
	})
}
