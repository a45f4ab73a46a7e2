package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trebuchet-org/weekvote/internal/domain/config"
	"github.com/trebuchet-org/weekvote/internal/usecase"
)

// Finalizer is the run the scheduler triggers. *usecase.FinalizeWeek satisfies it.
type Finalizer interface {
	Run(ctx context.Context, now time.Time, opts usecase.FinalizeOptions) (*usecase.FinalizeReport, error)
}

// Scheduler fires finalization runs on a fixed interval or on a weekly
// anchor. A tick that arrives while the previous run is still in flight is
// skipped.
type Scheduler struct {
	schedule   config.Schedule
	runTimeout time.Duration
	finalizer  Finalizer
	clock     usecase.Clock
	log       *slog.Logger

	running atomic.Bool
	wg      sync.WaitGroup
}

// New creates a scheduler for cfg.Schedule
func New(cfg *config.RuntimeConfig, finalizer Finalizer, clock usecase.Clock, log *slog.Logger) (*Scheduler, error) {
	if cfg.Schedule.Interval <= 0 {
		if _, err := time.Parse("15:04", cfg.Schedule.At); err != nil {
			return nil, fmt.Errorf("invalid schedule time %q: %w", cfg.Schedule.At, err)
		}
	}
	return &Scheduler{
		schedule:   cfg.Schedule,
		runTimeout: cfg.RunTimeout,
		finalizer:  finalizer,
		clock:      clock,
		log:        log.With("component", "scheduler"),
	}, nil
}

// Next returns the first fire time strictly after now
func (s *Scheduler) Next(now time.Time) time.Time {
	if s.schedule.Interval > 0 {
		return now.Add(s.schedule.Interval)
	}
	return nextWeekly(now, s.schedule.Weekday, s.schedule.At)
}

// Run blocks until ctx is done. On return no run started by the scheduler is
// still in flight: cancelling ctx stops new ticks and waits for the current
// run, which is bounded by the run timeout rather than by ctx.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.wg.Wait()

	for {
		now := s.clock()
		next := s.Next(now)
		s.log.Info("next finalization run scheduled", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("scheduler stopping")
			return nil
		case <-timer.C:
			s.fire(ctx)
		}
	}
}

// fire starts one finalization run unless one is in flight. It reports
// whether a run was started.
func (s *Scheduler) fire(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("previous finalization run still in flight, skipping tick")
		return false
	}

	runCtx := context.WithoutCancel(ctx)
	var cancel context.CancelFunc = func() {}
	if s.runTimeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, s.runTimeout)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		defer cancel()

		report, err := s.finalizer.Run(runCtx, s.clock(), usecase.FinalizeOptions{})
		if err != nil {
			s.log.Error("finalization run failed", "error", err)
			return
		}
		if report.NeedsRetry() {
			s.log.Warn("finalization run left work for the next run", "run_id", report.RunID, "week", report.Week)
			return
		}
		s.log.Info("finalization run complete", "run_id", report.RunID, "week", report.Week, "duration", report.Duration)
	}()
	return true
}

// nextWeekly returns the next weekday at hh:mm UTC strictly after now
func nextWeekly(now time.Time, weekday time.Weekday, at string) time.Time {
	hm, _ := time.Parse("15:04", at)
	now = now.UTC()

	days := (int(weekday) - int(now.Weekday()) + 7) % 7
	candidate := time.Date(now.Year(), now.Month(), now.Day()+days, hm.Hour(), hm.Minute(), 0, 0, time.UTC)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}
