package chrono

import (
	"context"
	"sync"
	"time"
)

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time.
	Now() time.Time
	// Sleep blocks for `d` or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration) error
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

// NewStandardTime is the constructor of StandardTime.
func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (StandardTime) Now() time.Time {
	return time.Now()
}

func (StandardTime) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ManualTime is a TimeAPI whose clock only moves when slept on, sleeps return
// immediately and are recorded.
type ManualTime struct {
	mutex  *sync.Mutex
	now    *time.Time
	sleeps *[]time.Duration
}

func NewManualTime(start time.Time) ManualTime {
	return ManualTime{
		mutex:  &sync.Mutex{},
		now:    &start,
		sleeps: &[]time.Duration{},
	}
}

func (m ManualTime) Now() time.Time {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return *m.now
}

func (m ManualTime) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	*m.sleeps = append(*m.sleeps, d)
	if d > 0 {
		*m.now = m.now.Add(d)
	}
	return nil
}

// Advance moves the clock without recording a sleep.
func (m ManualTime) Advance(d time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	*m.now = m.now.Add(d)
}

// Sleeps returns every duration passed to Sleep so far.
func (m ManualTime) Sleeps() []time.Duration {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	out := make([]time.Duration, len(*m.sleeps))
	copy(out, *m.sleeps)
	return out
}
