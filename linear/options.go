package linear

import "github.com/YuminosukeSato/gdlinear/pkg/log"

// Option is a function that configures GDRegression
type Option func(*GDRegression)

// WithAlpha sets the step size. It also acts as the decay applied to the
// intercept in every update.
func WithAlpha(alpha float64) Option {
	return func(r *GDRegression) {
		r.alpha = alpha
	}
}

// WithTol sets the convergence tolerance on the largest parameter change
func WithTol(tol float64) Option {
	return func(r *GDRegression) {
		r.tol = tol
	}
}

// WithMaxIter bounds the number of fixed-point iterations. 0 means unbounded.
func WithMaxIter(n int) Option {
	return func(r *GDRegression) {
		r.maxIter = n
	}
}

// WithMaxThreads caps the goroutines used by each training phase.
// n <= 0 means runtime.NumCPU().
func WithMaxThreads(n int) Option {
	return func(r *GDRegression) {
		r.maxThreads = n
	}
}

// WithSampleGrain sets how many samples one goroutine handles in the transpose phase
func WithSampleGrain(n int) Option {
	return func(r *GDRegression) {
		r.sampleGrain = n
	}
}

// WithFeatureGrain sets how many features one goroutine handles in the
// normalization and statistics phases
func WithFeatureGrain(n int) Option {
	return func(r *GDRegression) {
		r.featureGrain = n
	}
}

// WithTrace records the largest parameter change of every iteration
func WithTrace(enabled bool) Option {
	return func(r *GDRegression) {
		r.trace = enabled
	}
}

// WithLogger sets the logger used for training progress.
// By default the global logger from pkg/log is used.
func WithLogger(l log.Logger) Option {
	return func(r *GDRegression) {
		r.logger = l
	}
}
