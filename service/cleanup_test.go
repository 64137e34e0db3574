package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupWorkerProcessesQueue(t *testing.T) {
	var mu sync.Mutex
	cleaned := make(map[string]int)
	done := make(chan struct{}, 1)

	worker := NewCleanupWorker(func(_ context.Context, sessionID string) error {
		mu.Lock()
		cleaned[sessionID]++
		mu.Unlock()
		done <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	require.True(t, worker.Enqueue("s1"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup never ran")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, cleaned["s1"])
}

func TestCleanupWorkerQueueFull(t *testing.T) {
	// Worker is never started, so the queue only drains by capacity.
	worker := NewCleanupWorker(func(context.Context, string) error { return nil })

	for i := 0; i < cleanupQueueSize; i++ {
		require.True(t, worker.Enqueue("s"))
	}
	assert.False(t, worker.Enqueue("overflow"))
}

func TestCleanupWorkerStopsOnCancel(t *testing.T) {
	worker := NewCleanupWorker(func(context.Context, string) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}
