package consensus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBackoffTrackerDoublesUntilCapThenIdles(t *testing.T) {
	b := NewBackoffTracker(time.Second)
	require.Equal(t, time.Second, b.Timeout())

	b.Fail()
	require.Equal(t, 2*time.Second, b.Timeout())
	require.False(t, b.Idle())

	b.Fail()
	require.Equal(t, 4*time.Second, b.Timeout())
	require.False(t, b.Idle())

	b.Fail() // round reaches MaxBackoffRounds
	require.True(t, b.Idle())
	require.Equal(t, IdleInterval, b.Timeout())

	// further failures keep it idle rather than continuing to double.
	b.Fail()
	require.True(t, b.Idle())
	require.Equal(t, IdleInterval, b.Timeout())
}

func TestBackoffTrackerResetClearsIdle(t *testing.T) {
	b := NewBackoffTracker(time.Second)
	b.Fail()
	b.Fail()
	b.Fail()
	require.True(t, b.Idle())

	b.Reset()
	require.False(t, b.Idle())
	require.Equal(t, time.Second, b.Timeout())
}

func TestReproposalDelayRespectsMinimum(t *testing.T) {
	for i := 0; i < 20; i++ {
		d := ReproposalDelay()
		require.GreaterOrEqual(t, d, time.Duration(MaxClockDriftBaseMS)*time.Millisecond)
		require.Less(t, d, time.Duration(MaxClockDriftBaseMS+ReproposalDelayRange)*time.Millisecond)
	}
}
