// Package plotting renders training diagnostics with gonum/plot.
// The output format follows the file extension (.png, .svg, .pdf, ...).
package plotting

import (
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/gdlinear/pkg/errors"
)

const size = 5 * vg.Inch

// ConvergencePlot draws the largest parameter change per iteration, as
// returned by GDRegression.Trace, on a log scale and saves it to path.
func ConvergencePlot(trace []float64, tol float64, path string) error {
	if len(trace) == 0 {
		return errors.NewModelError("plotting.ConvergencePlot", "empty trace", errors.ErrEmptyData)
	}

	// 対数軸には正の値しか置けない
	floor := math.Inf(1)
	for _, v := range trace {
		if v > 0 && v < floor {
			floor = v
		}
	}
	if tol > 0 {
		floor = math.Min(floor, tol)
	}

	p := plot.New()
	p.Title.Text = "Convergence"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "max |Δ|"

	logScale := !math.IsInf(floor, 1)
	if logScale {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	pts := make(plotter.XYs, len(trace))
	for i, v := range trace {
		if logScale && v < floor {
			v = floor
		}
		pts[i] = plotter.XY{X: float64(i + 1), Y: v}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "build convergence line")
	}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line, plotter.NewGrid())

	if tol > 0 {
		tolLine, err := plotter.NewLine(plotter.XYs{{X: 1, Y: tol}, {X: float64(len(trace)), Y: tol}})
		if err != nil {
			return errors.Wrap(err, "build tolerance line")
		}
		tolLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(tolLine)
		p.Legend.Add("step", line)
		p.Legend.Add("tol", tolLine)
	}

	if err := p.Save(size, size*3/4, path); err != nil {
		return errors.Wrapf(err, "save convergence plot %s", path)
	}
	return nil
}

// PredictionPlot draws predicted against actual values with the identity
// line for reference and saves it to path.
func PredictionPlot(yTrue, yPred []float64, path string) error {
	if len(yTrue) == 0 {
		return errors.NewModelError("plotting.PredictionPlot", "empty data", errors.ErrEmptyData)
	}
	if len(yPred) != len(yTrue) {
		return errors.NewDimensionError("plotting.PredictionPlot", len(yTrue), len(yPred), 0)
	}

	p := plot.New()
	p.Title.Text = "Predicted vs actual"
	p.X.Label.Text = "actual"
	p.Y.Label.Text = "predicted"

	lo, hi := math.Inf(1), math.Inf(-1)
	pts := make(plotter.XYs, len(yTrue))
	for i := range yTrue {
		pts[i] = plotter.XY{X: yTrue[i], Y: yPred[i]}
		lo = math.Min(lo, math.Min(yTrue[i], yPred[i]))
		hi = math.Max(hi, math.Max(yTrue[i], yPred[i]))
	}

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "build scatter")
	}
	s.GlyphStyle.Radius = vg.Points(2)

	identity, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return errors.Wrap(err, "build identity line")
	}
	identity.LineStyle.Width = vg.Points(1)

	p.Add(s, identity, plotter.NewGrid())

	if err := p.Save(size, size, path); err != nil {
		return errors.Wrapf(err, "save prediction plot %s", path)
	}
	return nil
}
