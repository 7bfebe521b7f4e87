// Package log defines standard attribute keys for training and prediction.
//
// Keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples") so that records from the slog and zerolog backends can be
// filtered the same way.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model.
	// Examples: "GDRegression", "ColumnScaler"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "linear", "preprocessing", "cmd"
	ComponentKey = "ml.component"

	// PhaseKey names a parallel phase of training.
	// Examples: "transpose", "normalize", "statistics"
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"
)

// Performance and Training Progress
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// ThreadsKey records the number of goroutines a phase was split into.
	ThreadsKey = "perf.threads"

	// R2ScoreKey records R² coefficient of determination for regression.
	R2ScoreKey = "metrics.r2_score"

	// IterationKey records the number of fixed-point iterations.
	IterationKey = "training.iteration"

	// StepKey records the largest parameter change of the last iteration.
	StepKey = "training.step"
)

// Hyperparameters
const (
	// LearningRateKey records alpha.
	LearningRateKey = "hyperparams.learning_rate"

	// ToleranceKey records the convergence tolerance.
	ToleranceKey = "hyperparams.tol"

	// MaxIterKey records the iteration budget (0 means unbounded).
	MaxIterKey = "hyperparams.max_iter"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"

	PhaseTranspose  = "transpose"
	PhaseNormalize  = "normalize"
	PhaseStatistics = "statistics"
	PhaseConverge   = "converge"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorConvergence       = "CONVERGENCE_FAILURE"
	ErrorInstability       = "NUMERICAL_INSTABILITY"
)
