package results

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/agenciazeta/quiniela/internal/app/system"
	"github.com/agenciazeta/quiniela/pkg/logger"
)

// DefaultTickSpec is the cadence at which the scheduler re-evaluates the
// draw schedule.
const DefaultTickSpec = "@every 30s"

// Scheduler drives Service.Tick on a fixed cadence. It implements
// system.Service so the application manager owns its lifecycle, and runs one
// eager tick at start so a session opened mid-day immediately backfills
// elapsed draws.
type Scheduler struct {
	svc  *Service
	log  *logger.Logger
	spec string
	cron *cron.Cron
}

var _ system.Service = (*Scheduler)(nil)

// NewScheduler creates a scheduler with the default 30-second cadence.
func NewScheduler(svc *Service, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewDefault("results-scheduler")
	}
	return &Scheduler{svc: svc, log: log, spec: DefaultTickSpec}
}

// WithSpec overrides the tick cadence. Call before Start.
func (s *Scheduler) WithSpec(spec string) *Scheduler {
	s.spec = spec
	return s
}

// Name implements system.Service.
func (s *Scheduler) Name() string { return "results-scheduler" }

// Start runs an eager tick and schedules the recurring one.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.svc.Tick(ctx, time.Now()); err != nil {
		s.log.WithError(err).Warn("initial scheduler tick failed")
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.spec, s.tick); err != nil {
		return err
	}
	s.cron.Start()
	s.log.WithField("spec", s.spec).Info("results scheduler started")
	return nil
}

// Stop unschedules the tick and waits for an in-flight run to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	s.log.Info("results scheduler stopped")
	return nil
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.svc.Tick(ctx, time.Now()); err != nil {
		s.log.WithError(err).Warn("scheduler tick failed")
	}
}
