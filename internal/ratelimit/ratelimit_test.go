package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryAcquire_SecondWindowBurst(t *testing.T) {
	l := New(zerolog.Nop(), 3, 60)

	// The short window admits exactly 3 immediately.
	for i := 0; i < 3; i++ {
		assert.True(t, l.TryAcquire(), "call %d should be admitted", i+1)
	}
	assert.False(t, l.TryAcquire(), "fourth call within the same second must be refused")
}

func TestTryAcquire_MinuteWindowBinds(t *testing.T) {
	// Large per-second rate so only the minute window constrains.
	l := New(zerolog.Nop(), 1000, 2)

	assert.True(t, l.TryAcquire())
	assert.True(t, l.TryAcquire())
	assert.False(t, l.TryAcquire(), "minute window must refuse the third call")
}

func TestTryAcquire_RefillIsContinuous(t *testing.T) {
	l := New(zerolog.Nop(), 2, 120)

	require.True(t, l.TryAcquire())
	require.True(t, l.TryAcquire())
	require.False(t, l.TryAcquire())

	// At 2/s a single token is back after ~500ms, well before the next
	// full second.
	time.Sleep(600 * time.Millisecond)
	assert.True(t, l.TryAcquire(), "token should refill mid-window")
}

func TestAcquire_BlocksUntilToken(t *testing.T) {
	l := New(zerolog.Nop(), 2, 120)

	ctx := context.Background()
	require.NoError(t, l.Acquire(ctx))
	require.NoError(t, l.Acquire(ctx))

	start := time.Now()
	require.NoError(t, l.Acquire(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond, "third acquire should have waited for refill")
}

func TestAcquire_ContextCancellation(t *testing.T) {
	l := New(zerolog.Nop(), 1, 60)

	ctx := context.Background()
	require.NoError(t, l.Acquire(ctx))

	cancelCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	err := l.Acquire(cancelCtx)
	assert.Error(t, err, "a cancelled wait must not be admitted")
}

func TestDisabledWindows(t *testing.T) {
	l := New(zerolog.Nop(), 0, 0)

	for i := 0; i < 100; i++ {
		require.True(t, l.TryAcquire())
	}
	require.NoError(t, l.Acquire(context.Background()))
}
