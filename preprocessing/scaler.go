package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gdlinear/core/model"
	"github.com/YuminosukeSato/gdlinear/core/parallel"
	"github.com/YuminosukeSato/gdlinear/core/vec"
	"github.com/YuminosukeSato/gdlinear/pkg/errors"
)

// 標準偏差が列の大きさ（|平均| と max|x| の大きい方）のこの倍率以下なら定数列として扱う。
// 値の小さい列でも分散があれば標準化される。
const zeroVarianceRelTol = 1e-12

const (
	// DefaultSampleGrain はサンプル方向のフェーズで1ゴルーチンが担当するサンプル数
	DefaultSampleGrain = 4096
	// DefaultFeatureGrain は特徴量方向のフェーズで1ゴルーチンが担当する特徴量数
	DefaultFeatureGrain = 1
)

// ColumnScaler は行形式のサンプルを特徴量ごとの列に転置し、平均0・標準偏差1に標準化する。
//
// 学習は2つの並列フェーズで行われる。
// サンプルフェーズでは各ゴルーチンが担当サンプルの値を特徴量優先の行列に書き込み、
// 特徴量フェーズでは各ゴルーチンが担当特徴量の平均・標準偏差を求めてその場で標準化する。
// 学習後のColumnScalerは読み取り専用で、複数のゴルーチンから安全にTransformできる。
type ColumnScaler struct {
	state *model.StateManager

	// Mean は各特徴量の平均値
	Mean []float64

	// StdDev は各特徴量の母標準偏差（分散0の特徴量は1）
	StdDev []float64

	sampleGrain  int
	featureGrain int
	maxThreads   int

	loop *parallel.Loop
}

// ScalerOption はColumnScalerの設定を変更する
type ScalerOption func(*ColumnScaler)

// WithSampleGrain はサンプルフェーズの粒度を設定する
func WithSampleGrain(n int) ScalerOption {
	return func(s *ColumnScaler) {
		s.sampleGrain = n
	}
}

// WithFeatureGrain は特徴量フェーズの粒度を設定する
func WithFeatureGrain(n int) ScalerOption {
	return func(s *ColumnScaler) {
		s.featureGrain = n
	}
}

// WithMaxThreads は同時に動くゴルーチン数の上限を設定する。0以下はruntime.NumCPU()。
func WithMaxThreads(n int) ScalerOption {
	return func(s *ColumnScaler) {
		s.maxThreads = n
	}
}

// NewColumnScaler は新しいColumnScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewColumnScaler(preprocessing.WithMaxThreads(4))
//	Xt, err := scaler.FitTransformRows(X)
//	row, err := scaler.Transform(x)
func NewColumnScaler(opts ...ScalerOption) *ColumnScaler {
	s := &ColumnScaler{
		state:        model.NewStateManager(),
		sampleGrain:  DefaultSampleGrain,
		featureGrain: DefaultFeatureGrain,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FitTransformRows は X（n_samples個の長さn_featuresの行）から統計量を学習し、
// 標準化済みの特徴量優先行列（n_features × n_samples）を返す。
//
// 戻り値の行 j は特徴量 j の全サンプル値で、平均0・母標準偏差1に正規化されている。
// 分散0の特徴量は標準偏差1として扱い、ZeroVarianceWarning を errors.Warn で通知する。
func (s *ColumnScaler) FitTransformRows(X [][]float64) (*mat.Dense, error) {
	nSamples, nFeatures, err := checkRows("ColumnScaler.FitTransformRows", X)
	if err != nil {
		return nil, err
	}

	loop, err := parallel.NewLoop(0, nSamples, s.sampleGrain, parallel.WithMaxThreads(s.maxThreads))
	if err != nil {
		return nil, err
	}

	raw := make([]float64, nFeatures*nSamples)
	if err := loop.Run(func(i int) {
		for j, v := range X[i] {
			raw[j*nSamples+i] = v
		}
	}); err != nil {
		return nil, errors.Wrap(err, "transpose samples")
	}
	Xt := mat.NewDense(nFeatures, nSamples, raw)

	mean := make([]float64, nFeatures)
	std := make([]float64, nFeatures)
	constant := make([]bool, nFeatures)

	// 同じドライバを特徴量方向に向け直す
	loop.Start, loop.Finish, loop.MaxIterationsPerThread = 0, nFeatures, s.featureGrain
	inv := 1.0 / float64(nSamples)
	if err := loop.Run(func(j int) {
		col := Xt.RawRowView(j)
		mean[j] = vec.ScaledSum(col, inv)
		magnitude := math.Max(math.Abs(mean[j]), floats.Norm(col, math.Inf(1)))
		vec.Shift(col, -mean[j])

		sq, _ := vec.ScaledDot(col, col, inv)
		std[j] = math.Sqrt(sq)
		if std[j] <= zeroVarianceRelTol*magnitude {
			std[j] = 1
			constant[j] = true
		}
		vec.Scale(col, 1/std[j])
	}); err != nil {
		return nil, errors.Wrap(err, "normalize features")
	}

	for j, c := range constant {
		if c {
			errors.Warn(errors.NewZeroVarianceWarning(j, mean[j]))
		}
	}

	s.state.Commit(nFeatures, nSamples, func() {
		s.Mean = mean
		s.StdDev = std
		s.loop = loop
	})
	return Xt, nil
}

// FeatureLoop は直近のFitTransformRowsで使ったドライバを返す。
// 特徴量の範囲 [0, n_features) を向いた状態なので、後続の特徴量フェーズでそのまま再利用できる。
func (s *ColumnScaler) FeatureLoop() *parallel.Loop {
	return s.loop
}

// Transform は1サンプルを学習済みの平均・標準偏差で標準化した新しいスライスを返す
func (s *ColumnScaler) Transform(x []float64) ([]float64, error) {
	if err := s.state.RequireFitted("ColumnScaler", "Transform"); err != nil {
		return nil, err
	}
	if len(x) != len(s.Mean) {
		return nil, errors.NewDimensionError("ColumnScaler.Transform", len(s.Mean), len(x), 1)
	}

	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.StdDev[j]
	}
	return out, nil
}

// InverseTransform は標準化された1サンプルを元のスケールに戻す
func (s *ColumnScaler) InverseTransform(z []float64) ([]float64, error) {
	if err := s.state.RequireFitted("ColumnScaler", "InverseTransform"); err != nil {
		return nil, err
	}
	if len(z) != len(s.Mean) {
		return nil, errors.NewDimensionError("ColumnScaler.InverseTransform", len(s.Mean), len(z), 1)
	}

	out := make([]float64, len(z))
	for j, v := range z {
		out[j] = v*s.StdDev[j] + s.Mean[j]
	}
	return out, nil
}

// IsFitted はスケーラーが学習済みかどうかを返す
func (s *ColumnScaler) IsFitted() bool {
	return s.state.IsFitted()
}

// String はスケーラーの文字列表現を返す
func (s *ColumnScaler) String() string {
	if !s.IsFitted() {
		return "ColumnScaler()"
	}
	nFeatures, nSamples := s.state.GetDimensions()
	return fmt.Sprintf("ColumnScaler(n_features=%d, n_samples=%d)", nFeatures, nSamples)
}

// checkRows は行形式の入力が空でなく、すべての行が同じ長さであることを確認する
func checkRows(op string, X [][]float64) (nSamples, nFeatures int, err error) {
	if len(X) == 0 || len(X[0]) == 0 {
		return 0, 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	nFeatures = len(X[0])
	for i, row := range X {
		if len(row) != nFeatures {
			return 0, 0, errors.Wrapf(errors.NewDimensionError(op, nFeatures, len(row), 1), "row %d", i)
		}
	}
	return len(X), nFeatures, nil
}

var _ model.RowTransformer = (*ColumnScaler)(nil)
