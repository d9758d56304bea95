// Package app wires the domain services, storage and background scheduler
// into one application.
package app

import (
	"context"
	"fmt"

	scheduledomain "github.com/agenciazeta/quiniela/internal/app/domain/schedule"
	"github.com/agenciazeta/quiniela/internal/app/services/betting"
	"github.com/agenciazeta/quiniela/internal/app/services/reports"
	"github.com/agenciazeta/quiniela/internal/app/services/results"
	"github.com/agenciazeta/quiniela/internal/app/services/schedule"
	"github.com/agenciazeta/quiniela/internal/app/storage"
	"github.com/agenciazeta/quiniela/internal/app/storage/memory"
	"github.com/agenciazeta/quiniela/internal/app/system"
	"github.com/agenciazeta/quiniela/pkg/logger"
)

// Stores aggregates the persistence dependencies. Nil fields default to one
// shared in-memory store.
type Stores struct {
	Tickets storage.TicketStore
	Results storage.ResultStore
}

// Options tunes application construction.
type Options struct {
	// Draws overrides the built-in schedule when non-empty.
	Draws []scheduledomain.Draw
	// Lotteries overrides the built-in lottery codes when non-empty.
	Lotteries []string
	// DrawNumberBase anchors the draw-number sequence; zero keeps the default.
	DrawNumberBase int
	// PayoutMultiplier scales winning bets; zero keeps the default.
	PayoutMultiplier float64
	// TickSpec overrides the scheduler cadence; empty keeps the default.
	TickSpec string
}

// Application owns the services and the background scheduler lifecycle.
type Application struct {
	log *logger.Logger

	Schedule *schedule.Service
	Results  *results.Service
	Betting  *betting.Service
	Reports  *reports.Service

	manager *system.Manager
}

// New constructs the application. Both store fields default to a single
// in-memory store so the zero configuration is fully functional.
func New(stores Stores, opts Options, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	if stores.Tickets == nil || stores.Results == nil {
		mem := memory.New()
		if stores.Tickets == nil {
			stores.Tickets = mem
		}
		if stores.Results == nil {
			stores.Results = mem
		}
	}

	scheduleSvc := schedule.New(opts.Draws, opts.Lotteries, opts.DrawNumberBase, log.WithField("component", "schedule"))
	resultsSvc := results.New(stores.Results, scheduleSvc, log.WithField("component", "results"))
	bettingSvc := betting.New(stores.Tickets, scheduleSvc, log.WithField("component", "betting"))
	reportsSvc := reports.New(stores.Tickets, stores.Results, opts.PayoutMultiplier, log.WithField("component", "reports"))

	scheduler := results.NewScheduler(resultsSvc, log.WithField("component", "results-scheduler"))
	if opts.TickSpec != "" {
		scheduler.WithSpec(opts.TickSpec)
	}

	manager := system.NewManager()
	if err := manager.Register(scheduler); err != nil {
		return nil, fmt.Errorf("register scheduler: %w", err)
	}

	return &Application{
		log:      log,
		Schedule: scheduleSvc,
		Results:  resultsSvc,
		Betting:  bettingSvc,
		Reports:  reportsSvc,
		manager:  manager,
	}, nil
}

// Start launches the background services.
func (a *Application) Start(ctx context.Context) error {
	if err := a.manager.Start(ctx); err != nil {
		return err
	}
	a.log.Info("application started")
	return nil
}

// Stop shuts down the background services.
func (a *Application) Stop(ctx context.Context) error {
	err := a.manager.Stop(ctx)
	a.log.Info("application stopped")
	return err
}
