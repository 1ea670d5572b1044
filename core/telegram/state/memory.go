package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/familybudget/core/logger"
)

type entry[T any] struct {
	mu   sync.Mutex
	sess Session[T]
	gone bool
}

// Store is an in-memory session store. Work on one key is serialized by a
// per-key mutex, so different users never wait on each other.
type Store[T any] struct {
	mu      sync.RWMutex
	entries map[Key]*entry[T]
	now     func() time.Time
}

// NewStore constructs an empty Store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		entries: make(map[Key]*entry[T]),
		now:     time.Now,
	}
}

// SetClock replaces the time source used for Touched timestamps.
func (s *Store[T]) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *Store[T]) clock() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now()
}

// acquire returns the locked entry for key, creating it when absent.
func (s *Store[T]) acquire(key Key) *entry[T] {
	for {
		s.mu.RLock()
		e, ok := s.entries[key]
		s.mu.RUnlock()
		if !ok {
			s.mu.Lock()
			if e, ok = s.entries[key]; !ok {
				e = &entry[T]{sess: Session[T]{State: StateIdle}}
				s.entries[key] = e
			}
			s.mu.Unlock()
		}
		e.mu.Lock()
		if !e.gone {
			return e
		}
		// Evicted between lookup and lock.
		e.mu.Unlock()
	}
}

// Update runs fn with exclusive access to the session for key and marks it
// as touched. The session is created in the idle state when missing.
func (s *Store[T]) Update(key Key, fn func(*Session[T])) {
	e := s.acquire(key)
	defer e.mu.Unlock()
	fn(&e.sess)
	if e.sess.State == "" {
		e.sess.State = StateIdle
	}
	e.sess.Touched = s.clock()
}

// View returns a copy of the session for key without creating one.
func (s *Store[T]) View(key Key) (Session[T], bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return Session[T]{State: StateIdle}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return Session[T]{State: StateIdle}, false
	}
	return e.sess, true
}

// GetState returns the current state for key, or StateIdle if none exists.
func (s *Store[T]) GetState(key Key) State {
	sess, _ := s.View(key)
	if sess.State == "" {
		return StateIdle
	}
	return sess.State
}

// InProgress reports whether key has an active conversation step.
func (s *Store[T]) InProgress(key Key) bool {
	sess, ok := s.View(key)
	return ok && !sess.Idle()
}

// Delete removes the session for key.
func (s *Store[T]) Delete(key Key) {
	s.mu.Lock()
	e, ok := s.entries[key]
	delete(s.entries, key)
	s.mu.Unlock()
	if ok {
		e.mu.Lock()
		e.gone = true
		e.mu.Unlock()
	}
}

// Len returns the number of stored sessions.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep calls fn for every session that is not busy. fn may modify the
// session; Touched is left as is.
func (s *Store[T]) Sweep(fn func(Key, *Session[T])) {
	s.mu.RLock()
	snapshot := make(map[Key]*entry[T], len(s.entries))
	for k, e := range s.entries {
		snapshot[k] = e
	}
	s.mu.RUnlock()

	for k, e := range snapshot {
		if !e.mu.TryLock() {
			continue
		}
		if !e.gone {
			fn(k, &e.sess)
		}
		e.mu.Unlock()
	}
}

// Evict drops sessions untouched for longer than maxIdle and returns how
// many were removed. Sessions in use are skipped.
func (s *Store[T]) Evict(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := s.clock().Add(-maxIdle)

	s.mu.Lock()
	removed := 0
	for k, e := range s.entries {
		if !e.mu.TryLock() {
			continue
		}
		if e.sess.Touched.Before(cutoff) {
			e.gone = true
			delete(s.entries, k)
			removed++
		}
		e.mu.Unlock()
	}
	left := len(s.entries)
	s.mu.Unlock()

	if removed > 0 {
		logger.LogEvent(context.Background(), logger.Session, slog.LevelDebug, "session.evict",
			slog.String("status", "ok"),
			slog.Int("count", removed),
			slog.Int("left", left),
		)
	}
	return removed
}
