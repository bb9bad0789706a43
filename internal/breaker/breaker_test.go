package breaker

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(t *testing.T) (*Breaker, *time.Time) {
	t.Helper()

	now := time.Now()
	b := New(zerolog.Nop(), "test-op", Settings{
		FailureThreshold: 0.5,
		MinSamples:       4,
		WindowSize:       10,
		Cooldown:         30 * time.Second,
		Probes:           1,
	})
	b.now = func() time.Time { return now }
	return b, &now
}

func TestClosedAdmitsCalls(t *testing.T) {
	b, _ := newTestBreaker(t)

	assert.Equal(t, Closed, b.State())
	assert.True(t, b.Allow())
}

func TestTripsOnFailureRate(t *testing.T) {
	b, _ := newTestBreaker(t)

	// Below the minimum sample count nothing trips.
	b.Failure()
	b.Failure()
	b.Failure()
	assert.Equal(t, Closed, b.State())

	b.Failure()
	assert.Equal(t, Open, b.State(), "4 failures out of 4 must trip at threshold 0.5")
	assert.False(t, b.Allow())
}

func TestSuccessesKeepCircuitClosed(t *testing.T) {
	b, _ := newTestBreaker(t)

	for i := 0; i < 20; i++ {
		b.Success()
	}
	b.Failure()
	b.Failure()
	assert.Equal(t, Closed, b.State(), "2 failures in a window of 10 stays under 0.5")
}

func TestHalfOpenAfterCooldown(t *testing.T) {
	b, now := newTestBreaker(t)
	b.ForceOpen()

	assert.False(t, b.Allow(), "cooldown has not elapsed")

	*now = now.Add(31 * time.Second)
	assert.True(t, b.Allow(), "first probe after cooldown is admitted")
	assert.Equal(t, HalfOpen, b.State())
	assert.False(t, b.Allow(), "only one probe is admitted")
}

func TestProbeSuccessCloses(t *testing.T) {
	b, now := newTestBreaker(t)
	b.ForceOpen()

	*now = now.Add(31 * time.Second)
	require.True(t, b.Allow())
	b.Success()

	assert.Equal(t, Closed, b.State())
	assert.True(t, b.Allow())
}

func TestProbeFailureReopens(t *testing.T) {
	b, now := newTestBreaker(t)
	b.ForceOpen()

	*now = now.Add(31 * time.Second)
	require.True(t, b.Allow())
	b.Failure()

	assert.Equal(t, Open, b.State())
	assert.False(t, b.Allow(), "a fresh cooldown applies after a failed probe")

	// And it can recover on the next cycle.
	*now = now.Add(31 * time.Second)
	require.True(t, b.Allow())
	b.Success()
	assert.Equal(t, Closed, b.State())
}

func TestCancelledProbeReopensCircuit(t *testing.T) {
	b, now := newTestBreaker(t)
	b.ForceOpen()

	*now = now.Add(31 * time.Second)
	require.True(t, b.Allow())

	// The admitted probe never reached the provider.
	b.Cancel()
	assert.Equal(t, Open, b.State())

	// A fresh cooldown applies and the class can still recover.
	*now = now.Add(31 * time.Second)
	require.True(t, b.Allow())
	b.Success()
	assert.Equal(t, Closed, b.State())
}

func TestCancelInClosedRecordsNothing(t *testing.T) {
	b, _ := newTestBreaker(t)

	require.True(t, b.Allow())
	b.Cancel()
	assert.Equal(t, Closed, b.State())

	// The cancelled call must not count toward the failure rate: three
	// real failures stay below the 4-sample minimum.
	b.Failure()
	b.Failure()
	b.Failure()
	assert.Equal(t, Closed, b.State())
}

func TestRollingWindowForgetsOldOutcomes(t *testing.T) {
	b, _ := newTestBreaker(t)

	// Fill the window with failures short of tripping, then push enough
	// successes to evict them.
	b.Failure()
	b.Failure()
	b.Failure()
	for i := 0; i < 10; i++ {
		b.Success()
	}
	b.Failure()
	assert.Equal(t, Closed, b.State(), "old failures must have rolled out of the window")
}
