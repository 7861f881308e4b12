package knowledge

import (
	"sync/atomic"

	"github.com/kailas-cloud/campusbot/internal/repository/tabular"
)

// State pairs one snapshot with the index built from it. Both are immutable;
// they are only ever replaced together.
type State struct {
	Snapshot *tabular.Snapshot
	Index    *Index
}

// Store publishes the current State with a single atomic pointer swap.
// Readers see either the pre-reload or post-reload pair, never a mix.
type Store struct {
	state atomic.Pointer[State]
}

// NewStore creates a store holding an empty state, so callers never observe
// nil before the first load completes.
func NewStore() *Store {
	s := &Store{}
	s.state.Store(&State{
		Snapshot: &tabular.Snapshot{},
		Index:    NewIndex(nil),
	})
	return s
}

// Current returns the published state.
func (s *Store) Current() *State {
	return s.state.Load()
}

// Publish swaps in a fully built state.
func (s *Store) Publish(st *State) {
	s.state.Store(st)
}
