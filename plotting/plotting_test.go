package plotting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/gdlinear/pkg/errors"
)

func TestConvergencePlotWritesFile(t *testing.T) {
	trace := []float64{1, 0.5, 0.1, 1e-3, 1e-5, 1e-7, 0}
	path := filepath.Join(t.TempDir(), "trace.png")

	require.NoError(t, ConvergencePlot(trace, 1e-6, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestConvergencePlotLinearFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zeros.svg")
	require.NoError(t, ConvergencePlot([]float64{0, 0}, 0, path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestConvergencePlotEmpty(t *testing.T) {
	err := ConvergencePlot(nil, 1e-6, filepath.Join(t.TempDir(), "x.png"))
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestPredictionPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fit.png")
	require.NoError(t, PredictionPlot([]float64{1, 2, 3}, []float64{1.1, 1.9, 3.2}, path))

	_, err := os.Stat(path)
	assert.NoError(t, err)

	err = PredictionPlot([]float64{1, 2}, []float64{1}, path)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}
