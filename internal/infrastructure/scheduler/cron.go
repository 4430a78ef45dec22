// Package scheduler drives periodic sync runs from a cron expression.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"meetingsync/internal/ports"
)

// CronScheduler wraps robfig/cron. Runs never overlap: a tick that fires
// while the previous run is still going is skipped, which keeps the
// geocoding rate policy intact.
type CronScheduler struct {
	spec string
	loc  *time.Location
	cron *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// New builds a scheduler for the given cron expression and timezone.
func New(spec string, loc *time.Location) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &CronScheduler{spec: spec, loc: loc}
}

// Start registers the job and begins ticking.
func (s *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if s.cron != nil {
		return nil
	}

	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(s.spec, func() { job(time.Now().In(s.loc)) }); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", s.spec, err)
	}

	c.Start()
	s.cron = c
	return nil
}

// Stop halts ticking and waits for an in-flight run to finish, unless the
// context gives up first.
func (s *CronScheduler) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	done := s.cron.Stop()
	s.cron = nil

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
