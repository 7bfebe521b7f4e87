// Command gdtrain trains a GDRegression model on a text dataset, reports the
// training time and R², and optionally predicts one sample.
//
// Usage:
//
//	gdtrain -data data.csv -predict 1500,3,2,4,0,0
//	gdtrain -data houses.csv -format csv -header -label-col 6 -plot trace.png
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/YuminosukeSato/gdlinear/dataset"
	"github.com/YuminosukeSato/gdlinear/linear"
	"github.com/YuminosukeSato/gdlinear/pkg/errors"
	"github.com/YuminosukeSato/gdlinear/pkg/log"
	"github.com/YuminosukeSato/gdlinear/plotting"
)

type config struct {
	data       string
	format     string
	header     bool
	labelCol   int
	features   int
	alpha      float64
	tol        float64
	maxIter    int
	threads    int
	predict    string
	plot       string
	plotFit    string
	logLevel   string
	logBackend string
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	fs := flag.NewFlagSet("gdtrain", flag.ContinueOnError)
	fs.SetOutput(stderr)

	c := &config{}
	fs.StringVar(&c.data, "data", "data.csv", "path to the training data")
	fs.StringVar(&c.format, "format", "whitespace", "data layout: whitespace or csv")
	fs.BoolVar(&c.header, "header", false, "skip the first csv record")
	fs.IntVar(&c.labelCol, "label-col", 0, "index of the label within a record")
	fs.IntVar(&c.features, "features", 0, "expected number of features (0 infers)")
	fs.Float64Var(&c.alpha, "alpha", 0.1, "step size")
	fs.Float64Var(&c.tol, "tol", 1e-6, "convergence tolerance")
	fs.IntVar(&c.maxIter, "max-iter", 1_000_000, "iteration budget (0 = unbounded)")
	fs.IntVar(&c.threads, "threads", 0, "goroutines per phase (0 = NumCPU)")
	fs.StringVar(&c.predict, "predict", "", "comma separated sample to predict")
	fs.StringVar(&c.plot, "plot", "", "write the convergence trace to this image")
	fs.StringVar(&c.plotFit, "plot-fit", "", "write predicted vs actual to this image")
	fs.StringVar(&c.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.StringVar(&c.logBackend, "log-backend", "slog", "slog or zerolog")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func setupLogging(c *config, stderr io.Writer) error {
	switch c.logBackend {
	case "slog":
		return log.SetupLogger(c.logLevel)
	case "zerolog":
		return log.SetupZerolog(stderr, c.logLevel)
	}
	return errors.NewValidationError("log-backend", "must be slog or zerolog", c.logBackend)
}

func parseSample(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	x := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "predict value %d", i)
		}
		x[i] = v
	}
	return x, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	c, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if err := setupLogging(c, stderr); err != nil {
		return err
	}
	logger := log.GetLoggerWithName("cmd")

	format, err := dataset.ParseFormat(c.format)
	if err != nil {
		return err
	}
	ds, err := dataset.LoadFile(c.data, dataset.Options{
		Format:      format,
		LabelColumn: c.labelCol,
		Features:    c.features,
		Header:      c.header,
	})
	if err != nil {
		return err
	}
	logger.Info("Dataset loaded", log.SamplesKey, ds.Len(), log.FeaturesKey, ds.NFeatures())

	reg := linear.NewGDRegression(
		linear.WithAlpha(c.alpha),
		linear.WithTol(c.tol),
		linear.WithMaxIter(c.maxIter),
		linear.WithMaxThreads(c.threads),
		linear.WithTrace(c.plot != ""),
	)

	start := time.Now()
	if err := reg.Train(ds.X, ds.Y); err != nil {
		if errors.Is(err, errors.ErrNotConverged) {
			fmt.Fprintln(stdout, "Didn't converge...")
		}
		return err
	}
	elapsed := time.Since(start)
	fmt.Fprintf(stdout, "Took %.3f ms to train (%d iterations)\n", float64(elapsed.Microseconds())/1e3, reg.NIter())

	if score, err := reg.Score(ds.X, ds.Y); err == nil {
		fmt.Fprintf(stdout, "R2 on training data: %.6f\n", score)
		logger.Info("Training data scored", log.OperationKey, log.OperationScore, log.R2ScoreKey, score)
	} else {
		logger.Warn("Could not score training data", log.ErrAttrKey, err)
	}

	if c.predict != "" {
		x, err := parseSample(c.predict)
		if err != nil {
			return err
		}
		pred, err := reg.Predict(x)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, strconv.FormatFloat(pred, 'g', -1, 64))
	}

	if c.plot != "" {
		if err := plotting.ConvergencePlot(reg.Trace(), c.tol, c.plot); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Saved convergence plot to %s\n", c.plot)
	}

	if c.plotFit != "" {
		pred, err := reg.PredictBatch(ds.X)
		if err != nil {
			return err
		}
		if err := plotting.PredictionPlot(ds.Y, pred, c.plotFit); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Saved prediction plot to %s\n", c.plotFit)
	}
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.GetLogger().Error("gdtrain failed", log.ErrAttrKey, err, log.ErrorCodeKey, log.ErrorCode(err))
		fmt.Fprintf(os.Stderr, "gdtrain: %v\n", err)
		os.Exit(1)
	}
}
