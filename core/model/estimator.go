package model

import "gonum.org/v1/gonum/mat"

// Trainer は行スライス形式のデータで学習できるモデルのインターフェース
type Trainer interface {
	// Train はモデルを訓練データで学習させる
	Train(X [][]float64, y []float64) error
}

// Fitter はgonumの行列で学習できるモデルのインターフェース
type Fitter interface {
	Fit(X, y mat.Matrix) error
}

// Predictor は1サンプルの予測を行うモデルのインターフェース
type Predictor interface {
	Predict(x []float64) (float64, error)
	PredictBatch(X [][]float64) ([]float64, error)
}

// Scorer は決定係数（R²）を計算できるモデルのインターフェース
type Scorer interface {
	Score(X [][]float64, y []float64) (float64, error)
}

// LinearModel は線形モデルのインターフェース
type LinearModel interface {
	// Weights は学習された重み（正規化済み特徴量に対する係数）を返す
	Weights() []float64
	// Intercept は学習された切片を返す
	Intercept() float64
}

// Regressor は回帰モデルが満たすインターフェースをまとめたもの
type Regressor interface {
	Trainer
	Fitter
	Predictor
	Scorer
	LinearModel
	IsFitted() bool
}

// RowTransformer は行形式のデータから統計量を学習し、サンプルを変換するインターフェース
type RowTransformer interface {
	// FitTransformRows は学習と同時に全サンプルを特徴量優先の行列に変換する
	FitTransformRows(X [][]float64) (*mat.Dense, error)

	// Transform は1サンプルを変換する
	Transform(x []float64) ([]float64, error)
}
