package vec

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/gdlinear/pkg/errors"
)

func TestDot(t *testing.T) {
	got, err := Dot([]float64{1, 2, 3}, []float64{4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, 32.0, got)

	got, err = ScaledDot([]float64{1, 2, 3}, []float64{4, 5, 6}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 16.0, got)

	got, err = Dot(nil, nil)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestDotLengthMismatch(t *testing.T) {
	_, err := Dot([]float64{1, 2}, []float64{1})
	require.Error(t, err)

	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 2, dimErr.Expected)
	assert.Equal(t, 1, dimErr.Got)
}

func TestSum(t *testing.T) {
	assert.Equal(t, 6.0, Sum([]float64{1, 2, 3}))
	assert.Equal(t, 0.6, ScaledSum([]float64{1, 2, 3}, 0.1))
	assert.Zero(t, Sum(nil))
}

func TestScaleAndShift(t *testing.T) {
	a := []float64{1, -2, 4}
	Scale(a, 2)
	assert.Equal(t, []float64{2, -4, 8}, a)

	Shift(a, -1)
	assert.Equal(t, []float64{1, -5, 7}, a)
}

func TestAccumulationOrderIsLeftToRight(t *testing.T) {
	// 1e16 + 1 - 1e16 は左から加算すると 0 になる
	a := []float64{1e16, 1, -1e16}
	assert.Equal(t, 0.0, Sum(a))

	ones := []float64{1, 1, 1}
	got, err := Dot(a, ones)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func randomVector(rng *rand.Rand, n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = rng.NormFloat64()
	}
	return v
}

func TestParallelVariantsMatchSequential(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 42))
	a := randomVector(rng, 10_007)
	b := randomVector(rng, 10_007)

	opts := []Option{WithGrain(1000), WithMaxThreads(4)}

	seqDot, err := ScaledDot(a, b, 0.25)
	require.NoError(t, err)
	parDot, err := DotParallel(a, b, 0.25, opts...)
	require.NoError(t, err)
	assert.InDelta(t, seqDot, parDot, 1e-9)

	again, err := DotParallel(a, b, 0.25, opts...)
	require.NoError(t, err)
	assert.Equal(t, parDot, again)

	parSum, err := SumParallel(a, 2, opts...)
	require.NoError(t, err)
	assert.InDelta(t, ScaledSum(a, 2), parSum, 1e-9)

	seq := append([]float64(nil), a...)
	par := append([]float64(nil), a...)
	Scale(seq, 3)
	Shift(seq, -1)
	require.NoError(t, ScaleParallel(par, 3, opts...))
	require.NoError(t, ShiftParallel(par, -1, opts...))
	assert.True(t, floats.Equal(seq, par))
}

func TestParallelVariantsErrors(t *testing.T) {
	_, err := DotParallel([]float64{1}, []float64{1, 2}, 1)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	err = ScaleParallel([]float64{1, 2}, 2, WithGrain(0))
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))

	// 空のバッファは何もしない
	require.NoError(t, ShiftParallel(nil, 1))
	s, err := SumParallel(nil, 1)
	require.NoError(t, err)
	assert.Zero(t, s)
}

func BenchmarkScaledDot(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 2))
	x := randomVector(rng, 100_000)
	y := randomVector(rng, 100_000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ScaledDot(x, y, 0.1)
	}
}
