package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/tieubaoca/docqa-be/types"
)

const (
	upstreamAttempts    = 3
	upstreamBackoff     = 500 * time.Millisecond
	upstreamCallTimeout = 30 * time.Second
)

// withRetry runs fn against an external service with a per-call timeout and
// a small fixed retry bound with backoff. The final failure is classified
// into the upstream error taxonomy; a per-call deadline expiry surfaces as
// a retryable timeout, never a hang.
func withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < upstreamAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, upstreamCallTimeout)
		err := fn(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		log.Printf("%s attempt %d/%d failed: %v", op, attempt+1, upstreamAttempts, err)

		select {
		case <-ctx.Done():
			return upstreamError(op, ctx.Err())
		case <-time.After(upstreamBackoff << attempt):
		}
	}
	return upstreamError(op, lastErr)
}

func upstreamError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.WrapAppError(types.ErrKindUpstreamTimeout, err, "%s timed out", op)
	}
	return types.WrapAppError(types.ErrKindUpstream, err, "%s failed", op)
}
