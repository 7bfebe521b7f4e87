package errors

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		kind     string
		err      error
		wantMsg  string
		hasStack bool
	}{
		{
			name:     "with original error",
			op:       "Train",
			kind:     "empty data",
			err:      fmt.Errorf("no rows"),
			wantMsg:  "gdlinear: Train: empty data: no rows",
			hasStack: true,
		},
		{
			name:     "without original error",
			op:       "Predict",
			kind:     "not trained",
			err:      nil,
			wantMsg:  "gdlinear: Predict: not trained",
			hasStack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			if tt.hasStack {
				formatted := fmt.Sprintf("%+v", err)
				if !strings.Contains(formatted, "errors_test.go") {
					t.Error("Expected stack trace to contain test file name")
				}
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("GDRegression.Predict", 2, 3, 1)

	want := "gdlinear: GDRegression.Predict: dimension mismatch on axis 1 (features). Expected 2, got 3"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Fatal("Error should be castable to *DimensionError")
	}
	if dimErr.Expected != 2 || dimErr.Got != 3 {
		t.Errorf("unexpected fields: %+v", dimErr)
	}

	// ラップされても型を取り出せること
	wrapped := Wrapf(err, "row %d", 4)
	if !As(wrapped, &dimErr) {
		t.Error("Wrapped error should still be castable to *DimensionError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("GDRegression", "Predict")

	want := "gdlinear: GDRegression: this model is not trained yet. Call Train() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewRangeError(t *testing.T) {
	err := NewRangeError("parallel.NewLoop", 5, 2)

	want := "gdlinear: parallel.NewLoop: malformed range [5, 2)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var rangeErr *RangeError
	if !As(err, &rangeErr) {
		t.Error("Error should be castable to *RangeError")
	}
}

func TestNewConvergenceError(t *testing.T) {
	err := NewConvergenceError("GDRegression", 10, 0.5, 1e-6)

	if !strings.Contains(err.Error(), "failed to converge after 10 iterations") {
		t.Errorf("unexpected message: %v", err)
	}

	// ErrNotConvergedとして判定できること
	if !Is(err, ErrNotConverged) {
		t.Error("Expected Is(err, ErrNotConverged) to be true")
	}

	var convErr *ConvergenceError
	if !As(err, &convErr) {
		t.Fatal("Error should be castable to *ConvergenceError")
	}
	if convErr.Iterations != 10 {
		t.Errorf("Iterations = %d, want 10", convErr.Iterations)
	}
}

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("update", []float64{1, 2, 3}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	values := []float64{1, math.NaN(), 3}
	err := CheckNumericalStability("update", values, 7)
	if err == nil {
		t.Fatal("Expected instability error for NaN")
	}

	var instErr *NumericalInstabilityError
	if !As(err, &instErr) {
		t.Fatal("Error should be castable to *NumericalInstabilityError")
	}
	if instErr.Iteration != 7 {
		t.Errorf("Iteration = %d, want 7", instErr.Iteration)
	}

	// 呼び出し元のスライスを保持しないこと
	values[0] = 100
	if instErr.Values[0] != 1 {
		t.Error("Error should hold a copy of the values")
	}

	if err := CheckScalar("base", 1.5, 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: expected %d, got %d", "Train", 10, 0)

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}

	expectedMsg := "in Train: expected 10, got 0"
	if !strings.Contains(wrapped.Error(), expectedMsg) {
		t.Errorf("Expected wrapped error to contain %q", expectedMsg)
	}
}

func TestWarnHandlers(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(NewZeroVarianceWarning(2, 3.5))
	if len(got) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(got))
	}
	if !strings.Contains(got[0].Error(), "feature 2 has zero variance") {
		t.Errorf("unexpected warning: %v", got[0])
	}

	// zerologが設定されている場合はそちらが優先される
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	SetZerologWarnFunc(func(w error) {
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			logger.Warn().EmbedObject(m).Msg(w.Error())
			return
		}
		logger.Warn().Msg(w.Error())
	})
	defer SetZerologWarnFunc(nil)

	Warn(NewZeroVarianceWarning(0, 1))
	if len(got) != 1 {
		t.Error("Fallback handler should not be called while zerolog is set")
	}
	if !strings.Contains(buf.String(), `"type":"ZeroVarianceWarning"`) {
		t.Errorf("Expected structured warning, got %s", buf.String())
	}
}
