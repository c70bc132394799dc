// Package model provides shared types and state management for hashlearn models.
package model

import (
	"sync"

	"github.com/YuminosukeSato/hashlearn/pkg/errors"
)

// StateManager manages the fitted state of a model in a thread-safe manner.
// A model starts uninitialized; the first successful training call fixes the
// feature dimensionality and flips the state to ready. The transition is
// one-way for the lifetime of the instance.
type StateManager struct {
	Fitted bool // Public for gob encoding
	mu     sync.RWMutex

	// Optional metadata - Public for gob encoding
	NFeatures int
	NSamples  int
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{
		Fitted: false,
	}
}

// IsFitted returns whether the model has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fitted
}

// SetFitted marks the model as fitted.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = true
}

// SetDimensions sets the feature dimensionality and total samples seen.
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NFeatures = nFeatures
	s.NSamples = nSamples
}

// AddSamples increments the total number of samples seen during training.
func (s *StateManager) AddSamples(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NSamples += n
}

// GetDimensions returns the feature dimensionality and total samples seen.
func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NFeatures, s.NSamples
}

// RequireFitted returns a NotFittedError naming the model and method if the
// model has not reached the ready state yet.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}
