// Package model provides the shared state and interfaces of trainable models.
package model

import (
	"sync"

	"github.com/YuminosukeSato/gdlinear/pkg/errors"
)

// StateManager guards the fitted state of a model.
//
// Training builds its result off to the side and publishes it through Commit,
// so readers running under WithFitted never observe a half-written model.
type StateManager struct {
	mu sync.RWMutex

	fitted    bool
	nFeatures int
	nSamples  int
}

// NewStateManager creates a StateManager for an untrained model.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether the model has been trained.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// Reset discards the fitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = false
	s.nFeatures = 0
	s.nSamples = 0
}

// GetDimensions returns the number of features and samples seen during training.
func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures, s.nSamples
}

// RequireFitted returns a NotFittedError if the model has not been trained.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// Commit runs fn under the write lock and marks the model as fitted with the
// given dimensions. fn should only assign fields that were computed beforehand.
func (s *StateManager) Commit(nFeatures, nSamples int, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	s.fitted = true
	s.nFeatures = nFeatures
	s.nSamples = nSamples
}

// WithFitted runs fn under the read lock if the model is trained, and returns
// a NotFittedError otherwise.
func (s *StateManager) WithFitted(modelName, method string, fn func() error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.fitted {
		return errors.NewNotFittedError(modelName, method)
	}
	return fn()
}

// ModelState is a snapshot of the state, used for logging and debugging.
type ModelState struct {
	Fitted    bool `json:"fitted"`
	NFeatures int  `json:"n_features,omitempty"`
	NSamples  int  `json:"n_samples,omitempty"`
}

// GetState returns the current state as a ModelState.
func (s *StateManager) GetState() ModelState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ModelState{
		Fitted:    s.fitted,
		NFeatures: s.nFeatures,
		NSamples:  s.nSamples,
	}
}
