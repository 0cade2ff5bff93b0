package chrono

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManualTime(t *testing.T) {
	start := time.Date(2026, 2, 5, 9, 0, 0, 0, time.UTC)
	clock := NewManualTime(start)

	err := clock.Sleep(context.Background(), time.Second*15)
	require.NoError(t, err)
	clock.Advance(time.Second)

	require.Equal(t, start.Add(time.Second*16), clock.Now())
	require.Equal(t, []time.Duration{time.Second * 15}, clock.Sleeps())
}

func TestSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewStandardTime().Sleep(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)

	err = NewManualTime(time.Now()).Sleep(ctx, time.Second)
	require.ErrorIs(t, err, context.Canceled)
}
