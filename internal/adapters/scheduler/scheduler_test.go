package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/weekvote/internal/domain/config"
	"github.com/trebuchet-org/weekvote/internal/usecase"
	"go.uber.org/goleak"
)

type fakeFinalizer struct {
	calls     atomic.Int32
	completed atomic.Int32
	release   chan struct{}
}

func (f *fakeFinalizer) Run(ctx context.Context, now time.Time, opts usecase.FinalizeOptions) (*usecase.FinalizeReport, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return &usecase.FinalizeReport{Week: "2025-W07", Interrupted: ctx.Err()}, nil
		}
	}
	f.completed.Add(1)
	return &usecase.FinalizeReport{Week: "2025-W07"}, nil
}

func newScheduler(t *testing.T, schedule config.Schedule, f Finalizer) *Scheduler {
	t.Helper()
	return newSchedulerWithConfig(t, &config.RuntimeConfig{Schedule: schedule}, f)
}

func newSchedulerWithConfig(t *testing.T, cfg *config.RuntimeConfig, f Finalizer) *Scheduler {
	t.Helper()
	s, err := New(cfg, f, time.Now, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

func TestNext_Weekly(t *testing.T) {
	s := newScheduler(t, config.Schedule{Weekday: time.Sunday, At: "23:59"}, &fakeFinalizer{})

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "midweek",
			now:  time.Date(2025, time.February, 12, 9, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.February, 16, 23, 59, 0, 0, time.UTC),
		},
		{
			name: "sunday before the anchor",
			now:  time.Date(2025, time.February, 16, 12, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.February, 16, 23, 59, 0, 0, time.UTC),
		},
		{
			name: "exactly at the anchor",
			now:  time.Date(2025, time.February, 16, 23, 59, 0, 0, time.UTC),
			want: time.Date(2025, time.February, 23, 23, 59, 0, 0, time.UTC),
		},
		{
			name: "non-UTC input",
			now:  time.Date(2025, time.February, 17, 0, 30, 0, 0, time.FixedZone("CET", 3600)),
			want: time.Date(2025, time.February, 16, 23, 59, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Next(tt.now))
		})
	}
}

func TestNext_Interval(t *testing.T) {
	s := newScheduler(t, config.Schedule{Interval: time.Hour}, &fakeFinalizer{})
	now := time.Date(2025, time.February, 12, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(time.Hour), s.Next(now))
}

func TestNew_InvalidAnchor(t *testing.T) {
	_, err := New(&config.RuntimeConfig{Schedule: config.Schedule{At: "25:99"}}, &fakeFinalizer{}, time.Now, slog.Default())
	assert.Error(t, err)
}

func TestFire_SkipsWhileInFlight(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := &fakeFinalizer{release: make(chan struct{})}
	s := newScheduler(t, config.Schedule{Interval: time.Hour}, f)
	ctx := context.Background()

	assert.True(t, s.fire(ctx))
	assert.False(t, s.fire(ctx))

	close(f.release)
	s.wg.Wait()
	assert.Equal(t, int32(1), f.calls.Load())

	assert.True(t, s.fire(ctx))
	s.wg.Wait()
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestRun_StopsAndWaitsForInFlightRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := &fakeFinalizer{release: make(chan struct{})}
	s := newScheduler(t, config.Schedule{Interval: 5 * time.Millisecond}, f)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)
	// Several ticks pass while the first run blocks.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), f.calls.Load())

	cancel()
	select {
	case <-done:
		t.Fatal("scheduler returned while a run was in flight")
	case <-time.After(30 * time.Millisecond):
	}

	close(f.release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, int32(1), f.completed.Load())
	assert.False(t, s.running.Load())
}

func TestRun_InFlightRunBoundedByRunTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := &fakeFinalizer{release: make(chan struct{})}
	s := newSchedulerWithConfig(t, &config.RuntimeConfig{
		Schedule:   config.Schedule{Interval: 5 * time.Millisecond},
		RunTimeout: 50 * time.Millisecond,
	}, f)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Zero(t, f.completed.Load())
	assert.False(t, s.running.Load())
}
