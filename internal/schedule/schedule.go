// Package schedule repeats an analysis on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/metaconscious/CodeModificationAnalyzer/internal/logger"
)

// Job is one scheduled run.
type Job func(ctx context.Context) error

// Scheduler runs a single job on a standard five-field cron spec or a descriptor
// such as "@daily" or "@every 1h".
type Scheduler struct {
	spec string
	job  Job
	cron *cron.Cron

	mu      sync.Mutex
	running bool
}

// New validates spec and prepares a scheduler. Runs never overlap: a run that is
// still going when the next one is due causes that tick to be skipped.
func New(spec string, job Job) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	return &Scheduler{
		spec: spec,
		job:  job,
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}, nil
}

// Run starts the schedule and blocks until ctx is cancelled, then waits for an
// in-flight job to finish. A stopped scheduler may be run again.
func (s *Scheduler) Run(ctx context.Context) error {
	log := logger.For("schedule")

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	id, err := s.cron.AddFunc(s.spec, func() { s.runJob(ctx) })
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to schedule analysis: %w", err)
	}
	s.cron.Start()
	s.running = true
	s.mu.Unlock()

	log.Debug("scheduler started", "schedule", s.spec, "next", s.NextRun())
	<-ctx.Done()

	s.mu.Lock()
	stopped := s.cron.Stop()
	s.mu.Unlock()
	<-stopped.Done()

	// The entry is bound to this call's ctx; a later Run adds its own.
	s.mu.Lock()
	s.cron.Remove(id)
	s.running = false
	s.mu.Unlock()
	log.Debug("scheduler stopped")
	return nil
}

func (s *Scheduler) runJob(ctx context.Context) {
	log := logger.For("schedule")
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := s.job(ctx); err != nil {
		log.Error("scheduled analysis failed", "error", err)
		return
	}
	log.Debug("scheduled analysis completed", "duration", time.Since(start))
}

// NextRun returns the next activation time, or the zero time when nothing is scheduled.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
