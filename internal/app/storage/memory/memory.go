// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/agenciazeta/quiniela/internal/app/domain/results"
	"github.com/agenciazeta/quiniela/internal/app/domain/ticket"
	"github.com/agenciazeta/quiniela/internal/app/storage"
)

// Store keeps tickets in insertion order and results keyed by day and draw.
type Store struct {
	mu      sync.RWMutex
	tickets []ticket.Ticket
	results map[string]results.Daily
}

var _ storage.TicketStore = (*Store)(nil)
var _ storage.ResultStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{results: make(map[string]results.Daily)}
}

// TicketStore implementation -------------------------------------------------

func (s *Store) AppendTicket(_ context.Context, t ticket.Ticket) (ticket.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tickets {
		if existing.ID == t.ID {
			return ticket.Ticket{}, fmt.Errorf("ticket %s already exists", t.ID)
		}
	}

	s.tickets = append(s.tickets, cloneTicket(t))
	return cloneTicket(t), nil
}

func (s *Store) GetTicket(_ context.Context, id string) (ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tickets {
		if t.ID == id {
			return cloneTicket(t), nil
		}
	}
	return ticket.Ticket{}, fmt.Errorf("ticket %s: %w", id, storage.ErrNotFound)
}

func (s *Store) ListTickets(_ context.Context) ([]ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ticket.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, cloneTicket(t))
	}
	return out, nil
}

func (s *Store) ListTicketsByDate(_ context.Context, day string) ([]ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ticket.Ticket
	for _, t := range s.tickets {
		if results.DateKey(t.Timestamp) == day {
			out = append(out, cloneTicket(t))
		}
	}
	return out, nil
}

func (s *Store) DeleteTicket(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tickets {
		if t.ID == id {
			s.tickets = append(s.tickets[:i], s.tickets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("ticket %s: %w", id, storage.ErrNotFound)
}

// ResultStore implementation -------------------------------------------------

func (s *Store) PutDrawResult(_ context.Context, day, draw string, res results.DrawResult) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	daily, ok := s.results[day]
	if !ok {
		daily = make(results.Daily)
		s.results[day] = daily
	}
	if _, exists := daily[draw]; exists {
		return false, nil
	}
	daily[draw] = cloneDrawResult(res)
	return true, nil
}

func (s *Store) GetDrawResult(_ context.Context, day, draw string) (results.DrawResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	daily, ok := s.results[day]
	if !ok {
		return nil, fmt.Errorf("results %s/%s: %w", day, draw, storage.ErrNotFound)
	}
	res, ok := daily[draw]
	if !ok {
		return nil, fmt.Errorf("results %s/%s: %w", day, draw, storage.ErrNotFound)
	}
	return cloneDrawResult(res), nil
}

func (s *Store) GetDailyResults(_ context.Context, day string) (results.Daily, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	daily := make(results.Daily, len(s.results[day]))
	for draw, res := range s.results[day] {
		daily[draw] = cloneDrawResult(res)
	}
	return daily, nil
}

// helpers --------------------------------------------------------------------

func cloneTicket(t ticket.Ticket) ticket.Ticket {
	out := t
	out.Bets = append([]ticket.Bet(nil), t.Bets...)
	out.Lotteries = append([]ticket.LotterySelection(nil), t.Lotteries...)
	return out
}

func cloneDrawResult(res results.DrawResult) results.DrawResult {
	out := make(results.DrawResult, len(res))
	for lottery, numbers := range res {
		out[lottery] = append([]results.WinningNumber(nil), numbers...)
	}
	return out
}
