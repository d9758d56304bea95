// Package results generates and serves the daily winning-number tables.
package results

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	domain "github.com/agenciazeta/quiniela/internal/app/domain/results"
	scheduledomain "github.com/agenciazeta/quiniela/internal/app/domain/schedule"
	"github.com/agenciazeta/quiniela/internal/app/metrics"
	schedulesvc "github.com/agenciazeta/quiniela/internal/app/services/schedule"
	"github.com/agenciazeta/quiniela/internal/app/storage"
	"github.com/agenciazeta/quiniela/pkg/logger"
)

// NumberSource yields the random values used to fabricate winning numbers.
// Implementations must return a uniform value in [0, n). Tests inject
// deterministic sequences to assert exact tables.
type NumberSource interface {
	Intn(n int) int
}

// Service lazily materializes result tables for elapsed draws and tracks the
// upcoming draw. Generation is idempotent per (calendar day, draw): the
// store-level create-if-absent write is the only path that publishes a table.
type Service struct {
	store    storage.ResultStore
	schedule *schedulesvc.Service
	src      NumberSource
	log      *logger.Logger

	mu       sync.Mutex
	lastNext scheduledomain.NextDraw
}

// New creates a results service with a time-seeded random source.
func New(store storage.ResultStore, schedule *schedulesvc.Service, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("results")
	}
	return &Service{
		store:    store,
		schedule: schedule,
		src:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      log,
	}
}

// WithSource replaces the random source. Call before the scheduler starts.
func (s *Service) WithSource(src NumberSource) *Service {
	s.src = src
	return s
}

// Tick scans the schedule at the given instant, ensures every elapsed draw
// has a published table for the day, and returns the upcoming draw.
func (s *Service) Tick(ctx context.Context, now time.Time) (scheduledomain.NextDraw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := domain.DateKey(now)
	for _, draw := range s.schedule.ElapsedDraws(now) {
		if err := s.ensureResults(ctx, day, draw.Name); err != nil {
			return scheduledomain.NextDraw{}, fmt.Errorf("generate %s results: %w", draw.Name, err)
		}
	}

	next := s.schedule.Next(now)
	if next != s.lastNext {
		s.log.WithField("draw", next.Name).
			WithField("number", next.Number).
			Info("next draw changed")
		s.lastNext = next
	}
	return next, nil
}

// NextDraw returns the upcoming draw observed by the last tick.
func (s *Service) NextDraw() scheduledomain.NextDraw {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastNext
}

// Daily returns the published tables for a calendar day.
func (s *Service) Daily(ctx context.Context, day string) (domain.Daily, error) {
	return s.store.GetDailyResults(ctx, day)
}

func (s *Service) ensureResults(ctx context.Context, day, draw string) error {
	table := s.generateTable()
	created, err := s.store.PutDrawResult(ctx, day, draw, table)
	if err != nil {
		return err
	}
	if created {
		s.log.WithField("draw", draw).
			WithField("day", day).
			Info("draw results generated")
		metrics.RecordDrawGenerated(draw)
	}
	return nil
}

// generateTable fabricates one table: for every lottery code, a winning
// number per position 1..20, zero padded to four digits.
func (s *Service) generateTable() domain.DrawResult {
	table := make(domain.DrawResult, len(s.schedule.Lotteries()))
	for _, lottery := range s.schedule.Lotteries() {
		numbers := make([]domain.WinningNumber, 0, domain.PositionCount)
		for pos := 1; pos <= domain.PositionCount; pos++ {
			numbers = append(numbers, domain.WinningNumber{
				Position: pos,
				Number:   fmt.Sprintf("%04d", s.src.Intn(10000)),
			})
		}
		table[lottery] = numbers
	}
	return table
}
