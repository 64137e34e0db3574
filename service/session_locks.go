package service

import "sync"

// SessionLocks hands out one RWMutex per session ID. Retrieval takes the
// read side, deletes take the write side, so a query never observes a
// half-deleted session.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func NewSessionLocks() *SessionLocks {
	return &SessionLocks{
		locks: make(map[string]*sync.RWMutex),
	}
}

func (s *SessionLocks) get(sessionID string) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.RWMutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

// RLock acquires the read side of a session's lock. Queries against a
// session hold this for the duration of retrieval.
func (s *SessionLocks) RLock(sessionID string) func() {
	lock := s.get(sessionID)
	lock.RLock()
	return lock.RUnlock
}

// Lock acquires the write side of a session's lock. Session and document
// deletes hold this so in-flight queries finish first.
func (s *SessionLocks) Lock(sessionID string) func() {
	lock := s.get(sessionID)
	lock.Lock()
	return lock.Unlock
}

// forget drops the lock entry after a session is gone for good.
func (s *SessionLocks) forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, sessionID)
}
