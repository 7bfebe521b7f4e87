package linear

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gdlinear/core/model"
	"github.com/YuminosukeSato/gdlinear/core/parallel"
	"github.com/YuminosukeSato/gdlinear/core/vec"
	"github.com/YuminosukeSato/gdlinear/metrics"
	"github.com/YuminosukeSato/gdlinear/pkg/errors"
	"github.com/YuminosukeSato/gdlinear/pkg/log"
	"github.com/YuminosukeSato/gdlinear/preprocessing"
)

const modelName = "GDRegression"

const (
	defaultAlpha   = 0.1
	defaultTol     = 1e-6
	defaultMaxIter = 1_000_000

	// この行数以下のPredictBatchは逐次処理
	predictParallelThreshold = 1000
)

// GDRegression は標準化した特徴量に対してバッチ勾配降下法で学習する線形回帰モデル
//
// 学習では X^T X などの十分統計量を一度だけ並列に求め、以降の反復は
// 特徴量数のオーダーの計算だけで進む。学習済みモデルへの Predict は
// 複数のゴルーチンから同時に呼び出せる。
type GDRegression struct {
	state *model.StateManager

	// 学習結果（state のロック下でのみ読み書きする）
	weights []float64
	base    float64
	scaler  *preprocessing.ColumnScaler
	nIter   int
	history []float64

	alpha        float64
	tol          float64
	maxIter      int
	maxThreads   int
	sampleGrain  int
	featureGrain int
	trace        bool
	logger       log.Logger
}

// NewGDRegression は新しいGDRegressionを作成する
//
// 使用例:
//
//	reg := linear.NewGDRegression(linear.WithAlpha(0.1), linear.WithMaxThreads(4))
//	if err := reg.Train(X, y); err != nil {
//	    return err
//	}
//	pred, err := reg.Predict([]float64{1500, 3, 2, 4, 0, 0})
func NewGDRegression(opts ...Option) *GDRegression {
	r := &GDRegression{
		state:        model.NewStateManager(),
		alpha:        defaultAlpha,
		tol:          defaultTol,
		maxIter:      defaultMaxIter,
		sampleGrain:  preprocessing.DefaultSampleGrain,
		featureGrain: preprocessing.DefaultFeatureGrain,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *GDRegression) validateParams() error {
	if !(r.alpha > 0) || math.IsInf(r.alpha, 0) {
		return errors.NewValidationError("alpha", "must be a positive finite number", r.alpha)
	}
	if !(r.tol > 0) {
		return errors.NewValidationError("tol", "must be positive", r.tol)
	}
	if r.maxIter < 0 {
		return errors.NewValidationError("max_iter", "must be non-negative (0 means unbounded)", r.maxIter)
	}
	if r.sampleGrain < 1 {
		return errors.NewValidationError("sample_grain", "must be at least 1", r.sampleGrain)
	}
	if r.featureGrain < 1 {
		return errors.NewValidationError("feature_grain", "must be at least 1", r.featureGrain)
	}
	return nil
}

func (r *GDRegression) getLogger() log.Logger {
	l := r.logger
	if l == nil {
		l = log.GetLoggerWithName("linear")
	}
	return l.With(log.ModelNameKey, modelName)
}

// fitResult は学習中に組み立て、最後にまとめて公開する
type fitResult struct {
	scaler  *preprocessing.ColumnScaler
	weights []float64
	base    float64
	nIter   int
	history []float64
	step    float64
}

// Train はモデルを訓練データで学習させる
//
// パラメータ:
//   - X: n_samples個の行。すべての行は同じ長さ（特徴量数）でなければならない
//   - y: 各行に対応する目的変数
//
// 学習に失敗した場合、以前の学習結果はそのまま残る。
func (r *GDRegression) Train(X [][]float64, y []float64) error {
	logger := r.getLogger()
	start := time.Now()

	res, err := r.train(logger, X, y)
	if err != nil {
		// エラー本体は呼び出し側に返すので、ここではスタックなしで記録する
		logger.Warn("Training failed",
			log.OperationKey, log.OperationFit,
			log.ErrAttrKey, err.Error(),
			log.ErrorCodeKey, log.ErrorCode(err),
		)
		return err
	}

	r.state.Commit(len(res.weights), len(X), func() {
		r.scaler = res.scaler
		r.weights = res.weights
		r.base = res.base
		r.nIter = res.nIter
		r.history = res.history
	})

	logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.IterationKey, res.nIter,
		log.StepKey, res.step,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

func (r *GDRegression) train(logger log.Logger, X [][]float64, y []float64) (fitResult, error) {
	if err := r.validateParams(); err != nil {
		return fitResult{}, err
	}
	if len(X) == 0 {
		return fitResult{}, errors.NewModelError("GDRegression.Train", "empty data", errors.ErrEmptyData)
	}
	if len(y) != len(X) {
		return fitResult{}, errors.NewDimensionError("GDRegression.Train", len(X), len(y), 0)
	}

	nSamples := len(X)
	logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, nSamples,
		log.FeaturesKey, len(X[0]),
		log.LearningRateKey, r.alpha,
		log.ToleranceKey, r.tol,
		log.MaxIterKey, r.maxIter,
	)

	phaseStart := time.Now()
	scaler := preprocessing.NewColumnScaler(
		preprocessing.WithSampleGrain(r.sampleGrain),
		preprocessing.WithFeatureGrain(r.featureGrain),
		preprocessing.WithMaxThreads(r.maxThreads),
	)
	Xt, err := scaler.FitTransformRows(X)
	if err != nil {
		return fitResult{}, errors.Wrap(err, "GDRegression.Train")
	}
	logger.Debug("Features normalized",
		log.PhaseKey, log.PhaseNormalize,
		log.DurationMsKey, time.Since(phaseStart).Milliseconds(),
	)

	phaseStart = time.Now()
	loop := scaler.FeatureLoop()
	stats, err := computeStatistics(loop, Xt, y, r.alpha/float64(nSamples))
	if err != nil {
		return fitResult{}, errors.Wrap(err, "GDRegression.Train")
	}
	logger.Debug("Statistics computed",
		log.PhaseKey, log.PhaseStatistics,
		log.ThreadsKey, min(loop.MaxThreads(), loop.Finish),
		log.DurationMsKey, time.Since(phaseStart).Milliseconds(),
	)

	phaseStart = time.Now()
	res, err := r.converge(stats)
	if err != nil {
		return fitResult{}, err
	}
	logger.Debug("Converged",
		log.PhaseKey, log.PhaseConverge,
		log.IterationKey, res.nIter,
		log.DurationMsKey, time.Since(phaseStart).Milliseconds(),
	)

	res.scaler = scaler
	return res, nil
}

// statistics は alpha/N でスケールした十分統計量
type statistics struct {
	sumX  []float64  // Σ_s x_i[s]
	sumXY []float64  // Σ_s x_i[s]·y[s]
	dotX  *mat.Dense // Σ_s x_i[s]·x_j[s]（対称）
	sumY  float64    // Σ_s y[s]
}

// computeStatistics は特徴量ごとに統計量を並列に計算する。
// 各ゴルーチンは担当特徴量 i について dotX の行 i の上三角部分だけを書き、
// 下三角は合流後に逐次でコピーする。
func computeStatistics(loop *parallel.Loop, Xt *mat.Dense, y []float64, scale float64) (statistics, error) {
	nFeatures, _ := Xt.Dims()
	st := statistics{
		sumX:  make([]float64, nFeatures),
		sumXY: make([]float64, nFeatures),
		dotX:  mat.NewDense(nFeatures, nFeatures, nil),
	}

	err := loop.Run(func(i int) {
		xi := Xt.RawRowView(i)
		st.sumX[i] = vec.ScaledSum(xi, scale)
		st.sumXY[i], _ = vec.ScaledDot(xi, y, scale)

		row := st.dotX.RawRowView(i)
		for j := i; j < nFeatures; j++ {
			row[j], _ = vec.ScaledDot(xi, Xt.RawRowView(j), scale)
		}
	})
	if err != nil {
		return statistics{}, err
	}

	for i := 0; i < nFeatures; i++ {
		for j := 0; j < i; j++ {
			st.dotX.Set(i, j, st.dotX.At(j, i))
		}
	}

	st.sumY = vec.ScaledSum(y, scale)
	return st, nil
}

// converge はすべてのパラメータの変化量が tol 以下になるまで不動点反復を行う。
// 重みは前回の値から一斉に更新し、切片の更新も更新前の重みを使う。
func (r *GDRegression) converge(st statistics) (fitResult, error) {
	nFeatures := len(st.sumX)
	w := make([]float64, nFeatures)
	next := make([]float64, nFeatures)
	var base float64
	var history []float64

	step := math.Inf(1)
	for iter := 1; r.maxIter == 0 || iter <= r.maxIter; iter++ {
		step = 0
		for i := 0; i < nFeatures; i++ {
			d, _ := vec.Dot(w, st.dotX.RawRowView(i))
			next[i] = w[i] - (d + base*st.sumX[i] - st.sumXY[i])
			step = max(step, math.Abs(next[i]-w[i]))
		}

		d, _ := vec.Dot(w, st.sumX)
		newBase := base - (d + r.alpha*base - st.sumY)
		step = max(step, math.Abs(newBase-base))

		if math.IsNaN(step) || math.IsInf(step, 0) {
			values := append(append([]float64(nil), next...), newBase)
			return fitResult{}, errors.CheckNumericalStability("GDRegression.converge", values, iter)
		}

		w, next = next, w
		base = newBase
		if r.trace {
			history = append(history, step)
		}

		if step <= r.tol {
			return fitResult{weights: w, base: base, nIter: iter, history: history, step: step}, nil
		}
	}

	return fitResult{}, errors.NewConvergenceError(modelName, r.maxIter, step, r.tol)
}

// Fit はgonumの行列で学習する。y は n_samples × 1 の列ベクトル。
func (r *GDRegression) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	ry, cy := y.Dims()

	if rows == 0 || cols == 0 {
		return errors.NewModelError("GDRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != rows {
		return errors.NewDimensionError("GDRegression.Fit", rows, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("GDRegression.Fit", "y must be a column vector")
	}

	xs := make([][]float64, rows)
	ys := make([]float64, rows)
	for i := range xs {
		xs[i] = mat.Row(nil, i, X)
		ys[i] = y.At(i, 0)
	}
	return r.Train(xs, ys)
}

// Predict は1サンプルの予測値 Σ w_i·(x_i-avg_i)/std_i + base を返す
func (r *GDRegression) Predict(x []float64) (float64, error) {
	var pred float64
	err := r.state.WithFitted(modelName, "Predict", func() error {
		var err error
		pred, err = r.predictLocked(x)
		return err
	})
	return pred, err
}

func (r *GDRegression) predictLocked(x []float64) (float64, error) {
	if len(x) != len(r.weights) {
		return 0, errors.NewDimensionError("GDRegression.Predict", len(r.weights), len(x), 1)
	}
	z, err := r.scaler.Transform(x)
	if err != nil {
		return 0, err
	}
	d, err := vec.Dot(r.weights, z)
	if err != nil {
		return 0, err
	}
	return d + r.base, nil
}

// PredictBatch は各行の予測値を返す。行数が多い場合は並列に計算する。
func (r *GDRegression) PredictBatch(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	err := r.state.WithFitted(modelName, "PredictBatch", func() error {
		errs := make([]error, len(X))
		if err := parallel.ParallelizeWithThreshold(len(X), predictParallelThreshold, func(start, end int) {
			for i := start; i < end; i++ {
				out[i], errs[i] = r.predictLocked(X[i])
			}
		}); err != nil {
			return err
		}
		for i, err := range errs {
			if err != nil {
				return errors.Wrapf(err, "row %d", i)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Score はモデルの決定係数（R²）を計算する
func (r *GDRegression) Score(X [][]float64, y []float64) (float64, error) {
	if len(y) != len(X) {
		return 0, errors.NewDimensionError("GDRegression.Score", len(X), len(y), 0)
	}
	pred, err := r.PredictBatch(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2(y, pred)
}

// Weights は正規化済み特徴量に対する重みのコピーを返す。未学習の場合はnil。
func (r *GDRegression) Weights() []float64 {
	var w []float64
	_ = r.state.WithFitted(modelName, "Weights", func() error {
		w = append([]float64(nil), r.weights...)
		return nil
	})
	return w
}

// Intercept は学習された切片を返す
func (r *GDRegression) Intercept() float64 {
	var b float64
	_ = r.state.WithFitted(modelName, "Intercept", func() error {
		b = r.base
		return nil
	})
	return b
}

// Mean は学習データの特徴量ごとの平均を返す
func (r *GDRegression) Mean() []float64 {
	var m []float64
	_ = r.state.WithFitted(modelName, "Mean", func() error {
		m = append([]float64(nil), r.scaler.Mean...)
		return nil
	})
	return m
}

// StdDev は学習データの特徴量ごとの母標準偏差を返す
func (r *GDRegression) StdDev() []float64 {
	var s []float64
	_ = r.state.WithFitted(modelName, "StdDev", func() error {
		s = append([]float64(nil), r.scaler.StdDev...)
		return nil
	})
	return s
}

// NIter は直近の学習で収束までに要した反復回数を返す
func (r *GDRegression) NIter() int {
	var n int
	_ = r.state.WithFitted(modelName, "NIter", func() error {
		n = r.nIter
		return nil
	})
	return n
}

// Trace は WithTrace(true) の場合に各反復の最大変化量を返す
func (r *GDRegression) Trace() []float64 {
	var h []float64
	_ = r.state.WithFitted(modelName, "Trace", func() error {
		h = append([]float64(nil), r.history...)
		return nil
	})
	return h
}

// IsFitted はモデルが学習済みかどうかを返す
func (r *GDRegression) IsFitted() bool {
	return r.state.IsFitted()
}

// NFeatures は学習時の特徴量数を返す
func (r *GDRegression) NFeatures() int {
	n, _ := r.state.GetDimensions()
	return n
}

// String はモデルの文字列表現を返す
func (r *GDRegression) String() string {
	s := fmt.Sprintf("GDRegression(alpha=%g, tol=%g, max_iter=%d", r.alpha, r.tol, r.maxIter)
	if st := r.state.GetState(); st.Fitted {
		s += fmt.Sprintf(", n_features=%d, n_iter=%d", st.NFeatures, r.NIter())
	}
	return s + ")"
}

var _ model.Regressor = (*GDRegression)(nil)
