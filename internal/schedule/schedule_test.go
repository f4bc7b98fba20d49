package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidSpec(t *testing.T) {
	_, err := New("not a schedule", func(context.Context) error { return nil })
	assert.ErrorContains(t, err, `invalid cron schedule "not a schedule"`)
}

func TestNew_Descriptors(t *testing.T) {
	for _, spec := range []string{"@daily", "@every 1h", "0 3 * * *", "*/5 * * * *"} {
		t.Run(spec, func(t *testing.T) {
			_, err := New(spec, func(context.Context) error { return nil })
			assert.NoError(t, err)
		})
	}
}

func TestScheduler_Run(t *testing.T) {
	var runs atomic.Int32
	s, err := New("@every 1s", func(context.Context) error {
		if runs.Add(1) == 1 {
			return errors.New("first run fails, the schedule keeps going")
		}
		return nil
	})
	require.NoError(t, err)
	assert.True(t, s.NextRun().IsZero(), "nothing is scheduled before Run")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 5*time.Second, 50*time.Millisecond)
	assert.False(t, s.NextRun().IsZero())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestScheduler_RunTwice(t *testing.T) {
	s, err := New("@daily", func(context.Context) error { return nil })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.running
	}, time.Second, 10*time.Millisecond)
	assert.ErrorContains(t, s.Run(ctx), "already running")

	cancel()
	require.NoError(t, <-done)
}

func TestScheduler_RunAgainAfterStop(t *testing.T) {
	s, err := New("@daily", func(context.Context) error { return nil })
	require.NoError(t, err)

	for range 2 {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- s.Run(ctx) }()

		assert.Eventually(t, func() bool {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.running
		}, time.Second, 10*time.Millisecond)
		assert.Len(t, s.cron.Entries(), 1)

		cancel()
		require.NoError(t, <-done)
		assert.Empty(t, s.cron.Entries())
		assert.True(t, s.NextRun().IsZero())
	}
}
