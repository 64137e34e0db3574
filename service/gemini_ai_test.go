package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiCompleteLeavesSharedModelUntouched(t *testing.T) {
	svc, err := NewGeminiService([]string{"key-a", "key-b"}, "gemini-1.5-flash")
	require.NoError(t, err)

	// Cancelled context makes each call fail fast without reaching the API.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prompts := []string{"persona one", "persona two"}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(prompt string) {
			defer wg.Done()
			_, _ = svc.Complete(ctx, prompt, "What is the waiting period?")
		}(prompts[i%2])
	}
	wg.Wait()

	// The shared model carries no caller's system prompt; each call sets it
	// on a private copy.
	assert.Nil(t, svc.model.SystemInstruction)
}
