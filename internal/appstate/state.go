// Package appstate holds the process-wide quit flag and the shared,
// input-loop-mutated Settings.
package appstate

import (
	"sync"
	"sync/atomic"

	"github.com/vividhyeok/loopcaster/internal/model"
)

// State is the small set of resources shared across the producer pool and
// the sync loop without a shared mutable aggregate:
// just a quit flag and the settings record.
type State struct {
	quitting atomic.Bool

	mu       sync.RWMutex
	settings model.Settings
}

// New returns a State seeded with the given initial settings.
func New(initial model.Settings) *State {
	s := &State{}
	s.settings = initial
	return s
}

// Quit signals shutdown. Workers observe IsQuitting() between iterations.
func (s *State) Quit() { s.quitting.Store(true) }

// IsQuitting reports whether shutdown has been signalled.
func (s *State) IsQuitting() bool { return s.quitting.Load() }

// Settings returns a copy of the current settings.
func (s *State) Settings() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings applies fn to the settings under the write lock. Only the
// input loop calls this.
func (s *State) UpdateSettings(fn func(*model.Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.settings)
}
