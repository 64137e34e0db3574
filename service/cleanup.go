package service

import (
	"context"
	"log"
	"time"
)

const (
	cleanupQueueSize   = 64
	cleanupMaxAttempts = 5
	cleanupBaseBackoff = 2 * time.Second
)

type cleanupTask struct {
	sessionID string
	attempts  int
}

// CleanupWorker retries session teardown in the background. Query paths
// never fail because cleanup failed; they enqueue here and move on.
type CleanupWorker struct {
	queue   chan cleanupTask
	cleanup func(ctx context.Context, sessionID string) error
}

func NewCleanupWorker(cleanup func(ctx context.Context, sessionID string) error) *CleanupWorker {
	return &CleanupWorker{
		queue:   make(chan cleanupTask, cleanupQueueSize),
		cleanup: cleanup,
	}
}

// Enqueue schedules a session for background removal. Returns false when
// the queue is full; the caller logs and gives up rather than blocking.
func (w *CleanupWorker) Enqueue(sessionID string) bool {
	select {
	case w.queue <- cleanupTask{sessionID: sessionID, attempts: 0}:
		return true
	default:
		return false
	}
}

// Run processes the queue until ctx is cancelled.
func (w *CleanupWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-w.queue:
			w.process(ctx, task)
		}
	}
}

func (w *CleanupWorker) process(ctx context.Context, task cleanupTask) {
	err := w.cleanup(ctx, task.sessionID)
	if err == nil {
		log.Printf("cleaned up session %s", task.sessionID)
		return
	}

	task.attempts++
	if task.attempts >= cleanupMaxAttempts {
		log.Printf("giving up on session %s cleanup after %d attempts: %v",
			task.sessionID, task.attempts, err)
		return
	}
	log.Printf("session %s cleanup failed (attempt %d): %v", task.sessionID, task.attempts, err)

	backoff := time.Duration(task.attempts) * cleanupBaseBackoff
	go func() {
		select {
		case <-ctx.Done():
		case <-time.After(backoff):
			select {
			case w.queue <- task:
			default:
				log.Printf("cleanup queue full, dropping retry for session %s", task.sessionID)
			}
		}
	}()
}
