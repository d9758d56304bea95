// Package schedule provides lookups over the static draw schedule and the
// deterministic next-draw computation.
package schedule

import (
	"time"

	domain "github.com/agenciazeta/quiniela/internal/app/domain/schedule"
	"github.com/agenciazeta/quiniela/pkg/logger"
)

// Service answers schedule queries. The table is fixed at construction and
// never mutated.
type Service struct {
	draws     []domain.Draw
	lotteries []string
	base      int
	log       *logger.Logger
}

// New creates a schedule service. Empty draws/lotteries and a zero base fall
// back to the defaults.
func New(draws []domain.Draw, lotteries []string, base int, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("schedule")
	}
	if len(draws) == 0 {
		draws = domain.DefaultDraws
	}
	if len(lotteries) == 0 {
		lotteries = domain.DefaultLotteries
	}
	if base == 0 {
		base = domain.DefaultDrawNumberBase
	}
	return &Service{
		draws:     append([]domain.Draw(nil), draws...),
		lotteries: append([]string(nil), lotteries...),
		base:      base,
		log:       log,
	}
}

// Draws returns the ordered daily schedule.
func (s *Service) Draws() []domain.Draw {
	return append([]domain.Draw(nil), s.draws...)
}

// Lotteries returns the regional lottery codes.
func (s *Service) Lotteries() []string {
	return append([]string(nil), s.lotteries...)
}

// Find returns a draw and its schedule index by name.
func (s *Service) Find(name string) (domain.Draw, int, bool) {
	for i, d := range s.draws {
		if d.Name == name {
			return d, i, true
		}
	}
	return domain.Draw{}, 0, false
}

// ClockTime renders a wall-clock instant as the zero-padded "HH:MM" string
// the schedule table is compared against.
func ClockTime(now time.Time) string {
	return now.Format("15:04")
}

// IsElapsed reports whether a draw's time has passed at the given instant.
// A draw is elapsed the minute its scheduled time is reached.
func (s *Service) IsElapsed(d domain.Draw, now time.Time) bool {
	return d.Time <= ClockTime(now)
}

// IsDrawElapsed reports elapsed state by draw name; unknown names count as
// elapsed so callers treat them as locked.
func (s *Service) IsDrawElapsed(name string, now time.Time) bool {
	d, _, ok := s.Find(name)
	if !ok {
		return true
	}
	return s.IsElapsed(d, now)
}

// ElapsedDraws returns, in schedule order, the draws whose time has passed.
func (s *Service) ElapsedDraws(now time.Time) []domain.Draw {
	var out []domain.Draw
	for _, d := range s.draws {
		if s.IsElapsed(d, now) {
			out = append(out, d)
		}
	}
	return out
}

// Next returns the upcoming draw. When every draw of the day has elapsed it
// wraps to tomorrow's first entry, numbered with tomorrow's day offset so the
// sequence stays strictly increasing.
func (s *Service) Next(now time.Time) domain.NextDraw {
	for i, d := range s.draws {
		if d.Time > ClockTime(now) {
			return domain.NextDraw{Name: d.Name, Number: s.DrawNumber(now, i)}
		}
	}
	tomorrow := now.AddDate(0, 0, 1)
	return domain.NextDraw{Name: s.draws[0].Name, Number: s.DrawNumber(tomorrow, 0)}
}

// DrawNumber derives the deterministic sequence number for the draw at the
// given schedule index: base + daysSinceJan1*len(schedule) + index. It is
// recomputable from the clock alone and never reconciled against generated
// results.
func (s *Service) DrawNumber(now time.Time, index int) int {
	return s.base + (now.YearDay()-1)*len(s.draws) + index
}
