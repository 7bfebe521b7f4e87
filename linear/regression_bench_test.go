package linear

import (
	"math/rand/v2"
	"testing"
)

// createBenchmarkData はベンチマーク用のデータを生成する
func createBenchmarkData(rows, cols int) ([][]float64, []float64) {
	// シードを固定して再現性を確保
	rng := rand.New(rand.NewPCG(42, 42))

	trueWeights := make([]float64, cols)
	for j := range trueWeights {
		trueWeights[j] = float64(j+1) * 0.5
	}

	X := make([][]float64, rows)
	y := make([]float64, rows)
	for i := range X {
		X[i] = make([]float64, cols)
		sum := 1.0 // 切片
		for j := range X[i] {
			// -1.0 から 1.0 の範囲のランダムな値
			X[i][j] = rng.Float64()*2.0 - 1.0
			sum += X[i][j] * trueWeights[j]
		}
		// 小さなノイズを追加
		y[i] = sum + (rng.Float64()-0.5)*0.1
	}
	return X, y
}

// BenchmarkGDRegressionTrain はTrainメソッドのベンチマークを実行する
func BenchmarkGDRegressionTrain(b *testing.B) {
	sizes := []struct {
		name string
		rows int
		cols int
	}{
		{"Small_100x10", 100, 10},
		{"Medium_2000x10", 2000, 10},
		{"Large_10000x20", 10000, 20},
		{"XLarge_50000x50", 50000, 50},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			X, y := createBenchmarkData(size.rows, size.cols)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				reg := NewGDRegression(WithLogger(quietLogger()))
				if err := reg.Train(X, y); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkGDRegressionTrainSequential はスレッド数1での比較用ベンチマーク
func BenchmarkGDRegressionTrainSequential(b *testing.B) {
	X, y := createBenchmarkData(10000, 20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg := NewGDRegression(WithMaxThreads(1), WithLogger(quietLogger()))
		if err := reg.Train(X, y); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkPredictBatch は学習済みモデルでの一括予測を測定する
func BenchmarkPredictBatch(b *testing.B) {
	X, y := createBenchmarkData(20000, 20)
	reg := NewGDRegression(WithLogger(quietLogger()))
	if err := reg.Train(X, y); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := reg.PredictBatch(X); err != nil {
			b.Fatal(err)
		}
	}
}
