package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestRecover_WithPanic tests the Recover function when a panic occurs
func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "parallel.Loop partition 0")
		panic("index out of range")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}

	if panicErr.Operation != "parallel.Loop partition 0" {
		t.Errorf("unexpected operation %q", panicErr.Operation)
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}
	if panicErr.Error() != "panic in parallel.Loop partition 0: index out of range" {
		t.Errorf("unexpected message %q", panicErr.Error())
	}
	if !strings.Contains(panicErr.String(), "Stack trace:") {
		t.Error("String() should include stack trace information")
	}
}

// TestRecover_WithExistingError keeps the original error reachable
func TestRecover_WithExistingError(t *testing.T) {
	originalErr := fmt.Errorf("original error")

	testFunc := func() (err error) {
		defer Recover(&err, "Train")
		err = originalErr
		panic("panic after error")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "panic in Train") {
		t.Errorf("Error message should contain panic info: %s", err)
	}
	if !errors.Is(err, originalErr) {
		t.Error("Should be able to identify original error with errors.Is")
	}
}

func TestSafeExecute(t *testing.T) {
	if err := SafeExecute("ok", func() error { return nil }); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	fnErr := fmt.Errorf("function error")
	if err := SafeExecute("fails", func() error { return fnErr }); err != fnErr {
		t.Fatalf("Expected original error, got: %v", err)
	}

	// errorでpanicした場合はUnwrapで元のエラーに辿れる
	cause := fmt.Errorf("worker failed")
	err := SafeExecute("worker", func() error { panic(cause) })
	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}
	if !errors.Is(err, cause) {
		t.Error("PanicError should unwrap to the panicked error")
	}

	// 文字列でpanicした場合はUnwrapはnil
	err = SafeExecute("worker", func() error { panic("boom") })
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}
	if panicErr.Unwrap() != nil {
		t.Error("Unwrap should be nil for non-error panic values")
	}
}

func BenchmarkSafeExecute_NoPanic(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = SafeExecute("BenchmarkOp", func() error {
			return nil
		})
	}
}
