// Package memory provides an in-process activity stream store, used in
// tests and as a fallback when no durable backend is configured.
package memory

import (
	"context"
	"sync"

	"vigil/internal/activity"
)

type Store struct {
	mu     sync.RWMutex
	events []activity.StreamEvent
	// failWith forces the next Append calls to fail, for error-path tests.
	failWith error
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, event activity.StreamEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything appended so far.
func (s *Store) Events() []activity.StreamEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]activity.StreamEvent{}, s.events...)
}

// FailWith makes subsequent Append calls return err; pass nil to recover.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// Clear drops all recorded events.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
