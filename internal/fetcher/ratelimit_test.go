package fetcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostLimiter_PerHost(t *testing.T) {
	h := NewHostLimiter(1, 1)
	ctx := context.Background()

	require.NoError(t, h.Wait(ctx, "https://a.example.jp/x"))
	// A different host has its own bucket and does not wait.
	start := time.Now()
	require.NoError(t, h.Wait(ctx, "https://b.example.jp/"))
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	// Same host must wait for the next token; a short deadline fails.
	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.Error(t, h.Wait(ctx, "https://a.example.jp/y"))
}

func TestHostLimiter_Disabled(t *testing.T) {
	var nilLimiter *HostLimiter
	assert.NoError(t, nilLimiter.Wait(context.Background(), "https://a.jp"))

	h := NewHostLimiter(0, 0)
	for range 5 {
		assert.NoError(t, h.Wait(context.Background(), "https://a.jp"))
	}
}
