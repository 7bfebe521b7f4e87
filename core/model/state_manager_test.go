package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/gdlinear/pkg/errors"
)

func TestStateManagerLifecycle(t *testing.T) {
	s := NewStateManager()
	assert.False(t, s.IsFitted())

	err := s.RequireFitted("GDRegression", "Predict")
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Predict", nf.Method)

	value := 0
	s.Commit(3, 10, func() { value = 42 })
	assert.True(t, s.IsFitted())
	assert.Equal(t, 42, value)

	f, n := s.GetDimensions()
	assert.Equal(t, 3, f)
	assert.Equal(t, 10, n)
	assert.Equal(t, ModelState{Fitted: true, NFeatures: 3, NSamples: 10}, s.GetState())

	s.Reset()
	assert.False(t, s.IsFitted())
	assert.Equal(t, ModelState{}, s.GetState())
}

func TestStateManagerWithFitted(t *testing.T) {
	s := NewStateManager()

	called := false
	err := s.WithFitted("m", "Predict", func() error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)

	s.Commit(1, 1, func() {})
	require.NoError(t, s.WithFitted("m", "Predict", func() error {
		called = true
		return nil
	}))
	assert.True(t, called)
}

func TestStateManagerConcurrentReaders(t *testing.T) {
	s := NewStateManager()
	shared := []float64{0, 0}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.WithFitted("m", "Predict", func() error {
					// 書き込み途中の状態は見えない
					assert.Equal(t, shared[0], shared[1])
					return nil
				})
			}
		}()
	}
	for k := 1; k <= 50; k++ {
		v := float64(k)
		s.Commit(2, k, func() {
			shared[0] = v
			shared[1] = v
		})
	}
	wg.Wait()
}
