// Package gdlinear provides multi-feature linear regression trained by batch
// gradient descent over pre-aggregated sufficient statistics.
//
// Training normalizes every feature to zero mean and unit variance, computes
// the scaled Gram matrix X^T X together with Σx, Σxy and Σy in one parallel
// pass, and then runs a fixed-point update whose cost per iteration only
// depends on the number of features. Every pass over the samples is split
// across goroutines by a bounded parallel-for driver.
//
// # Installation
//
//	go get github.com/YuminosukeSato/gdlinear
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/gdlinear/linear"
//	)
//
//	func main() {
//	    X := [][]float64{{1, 2}, {2, 3}, {3, 5}}
//	    y := []float64{5, 8, 13}
//
//	    reg := linear.NewGDRegression(linear.WithAlpha(0.1))
//	    if err := reg.Train(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    pred, err := reg.Predict([]float64{1, 2})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("Prediction:", pred) // ≈ 5
//	}
//
// # Packages
//
//   - linear: GDRegression (Train, Fit, Predict, PredictBatch, Score)
//   - preprocessing: ColumnScaler, the parallel transpose and z-score step
//   - core/parallel: Loop, the parallel-for driver, and Parallelize helpers
//   - core/vec: sequential and driver-backed vector primitives
//   - core/model: StateManager and model interfaces
//   - metrics: MSE, RMSE, MAE, R², MAPE
//   - dataset: text and CSV loaders
//   - plotting: convergence and prediction plots
//   - pkg/errors, pkg/log: error types and structured logging
//
// # Concurrency
//
// Each training phase spawns at most MaxThreads goroutines and joins them
// before the next phase starts. Goroutines of a phase write disjoint memory,
// so no locks are taken during training. A trained model can be shared: the
// model state is published atomically and Predict may run concurrently with
// other Predict calls and with a retrain.
//
// # Command line
//
//	go run ./cmd/gdtrain -data data.csv -predict 1500,3,2,4,0,0
package gdlinear
