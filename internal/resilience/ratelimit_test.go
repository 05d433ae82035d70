package resilience

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestAdaptiveLimiter(t *testing.T) {
	a := NewAdaptiveLimiter(10, 1)
	assert.Equal(t, rate.Limit(10), a.Limit())

	a.OnRateLimit()
	assert.Equal(t, rate.Limit(5), a.Limit())
	a.OnRateLimit()
	a.OnRateLimit()
	assert.Equal(t, rate.Limit(2.5), a.Limit(), "floors at a quarter of the initial rate")

	for range 20 {
		a.OnSuccess()
	}
	assert.Equal(t, rate.Limit(20), a.Limit(), "caps at twice the initial rate")

	require.NoError(t, a.Wait(context.Background()))
}
