package curation

import (
	"log/slog"
	"sync"
)

// Store holds the session state and is the only place it changes.
// Subscribers are called after every action that changed the state.
type Store struct {
	mu          sync.RWMutex
	state       State
	subscribers []func(State)
}

func NewStore(initial State) *Store {
	return &Store{state: initial.clone()}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) Dispatch(action Action) Outcome {
	_, outcome := s.Apply(action)
	return outcome
}

// Apply is Dispatch returning the state the action produced.
func (s *Store) Apply(action Action) (State, Outcome) {
	s.mu.Lock()
	next, outcome := Reduce(s.state, action)
	s.state = next
	subscribers := make([]func(State), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	slog.Debug("Curation action dispatched", "action", action.actionName(), "changed", outcome.Changed, "items", len(next.Items))

	if outcome.Changed {
		for _, fn := range subscribers {
			fn(next.clone())
		}
	}

	return next.clone(), outcome
}
