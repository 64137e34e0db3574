package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionLocksReadersShareWritersExclude(t *testing.T) {
	locks := NewSessionLocks()

	// Two readers on the same session proceed together.
	unlockA := locks.RLock("s1")
	unlockB := locks.RLock("s1")
	unlockA()

	// A writer must wait for the remaining reader.
	acquired := make(chan struct{})
	go func() {
		unlock := locks.Lock("s1")
		unlock()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("writer acquired the lock while a reader held it")
	case <-time.After(50 * time.Millisecond):
	}

	unlockB()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("writer never acquired the lock")
	}
}

func TestSessionLocksIndependentSessions(t *testing.T) {
	locks := NewSessionLocks()

	unlock := locks.Lock("s1")
	defer unlock()

	// A different session is not blocked.
	done := make(chan struct{})
	go func() {
		u := locks.Lock("s2")
		u()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("independent session was blocked")
	}
}

func TestSessionLocksForget(t *testing.T) {
	locks := NewSessionLocks()

	unlock := locks.Lock("s1")
	unlock()
	locks.forget("s1")

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.NotContains(t, locks.locks, "s1")
}

func TestSessionLocksConcurrentAccess(t *testing.T) {
	locks := NewSessionLocks()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.RLock("shared")
			time.Sleep(time.Millisecond)
			unlock()
		}()
	}
	wg.Wait()
}
