// Package metrics は回帰モデルの評価指標を提供する。
// すべての関数は同じ長さの yTrue, yPred を受け取り、先頭から順に集計する。
package metrics

import (
	"math"

	"github.com/YuminosukeSato/gdlinear/pkg/errors"
)

func checkPair(op string, yTrue, yPred []float64) error {
	if len(yTrue) == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	if len(yPred) != len(yTrue) {
		return errors.NewDimensionError(op, len(yTrue), len(yPred), 0)
	}
	return nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("MSE", yTrue, yPred); err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i, v := range yTrue {
		diff := v - yPred[i]
		sum += diff * diff
	}
	return sum / float64(len(yTrue)), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("MAE", yTrue, yPred); err != nil {
		return 0, err
	}

	var sum float64
	for i, v := range yTrue {
		sum += math.Abs(v - yPred[i])
	}
	return sum / float64(len(yTrue)), nil
}

// R2 は決定係数（R²）を計算する
func R2(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("R2", yTrue, yPred); err != nil {
		return 0, err
	}

	var yMean float64
	for _, v := range yTrue {
		yMean += v
	}
	yMean /= float64(len(yTrue))

	// 全変動（TSS）と残差変動（RSS）
	var tss, rss float64
	for i, v := range yTrue {
		tss += (v - yMean) * (v - yMean)
		rss += (v - yPred[i]) * (v - yPred[i])
	}

	// すべてのyTrueが同じ値
	if tss == 0 {
		return 0, errors.NewValueError("R2", "total sum of squares is zero (no variance in yTrue)")
	}
	return 1 - rss/tss, nil
}

// MAPE は平均絶対パーセンテージ誤差を計算する。yTrueが0のサンプルは除外する。
func MAPE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("MAPE", yTrue, yPred); err != nil {
		return 0, err
	}

	var sum float64
	valid := 0
	for i, v := range yTrue {
		if v != 0 {
			sum += math.Abs(v-yPred[i]) / math.Abs(v)
			valid++
		}
	}
	if valid == 0 {
		return 0, errors.NewValueError("MAPE", "all yTrue values are zero")
	}
	return sum / float64(valid) * 100, nil
}
