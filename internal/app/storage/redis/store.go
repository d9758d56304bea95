// Package redis implements the storage interfaces on a Redis key-value
// store. Tickets live in a single hash keyed by id; results live in one
// hash per calendar day ("results-<YYYY-MM-DD>") with one field per draw,
// written with HSETNX so a draw's table is created exactly once.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"

	"github.com/agenciazeta/quiniela/internal/app/domain/results"
	"github.com/agenciazeta/quiniela/internal/app/domain/ticket"
	"github.com/agenciazeta/quiniela/internal/app/storage"
)

const ticketsKey = "tickets"

// Store implements TicketStore and ResultStore on a Redis client.
type Store struct {
	client *redis.Client
}

var _ storage.TicketStore = (*Store)(nil)
var _ storage.ResultStore = (*Store)(nil)

// New creates a Store using the provided client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func resultsKey(day string) string {
	return "results-" + day
}

// --- TicketStore ------------------------------------------------------------

func (s *Store) AppendTicket(ctx context.Context, t ticket.Ticket) (ticket.Ticket, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return ticket.Ticket{}, err
	}

	created, err := s.client.HSetNX(ctx, ticketsKey, t.ID, raw).Result()
	if err != nil {
		return ticket.Ticket{}, err
	}
	if !created {
		return ticket.Ticket{}, fmt.Errorf("ticket %s already exists", t.ID)
	}
	return t, nil
}

func (s *Store) GetTicket(ctx context.Context, id string) (ticket.Ticket, error) {
	raw, err := s.client.HGet(ctx, ticketsKey, id).Result()
	if err == redis.Nil {
		return ticket.Ticket{}, fmt.Errorf("ticket %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return ticket.Ticket{}, err
	}

	var t ticket.Ticket
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return ticket.Ticket{}, err
	}
	return t, nil
}

func (s *Store) ListTickets(ctx context.Context) ([]ticket.Ticket, error) {
	entries, err := s.client.HGetAll(ctx, ticketsKey).Result()
	if err != nil {
		return nil, err
	}

	out := make([]ticket.Ticket, 0, len(entries))
	for _, raw := range entries {
		var t ticket.Ticket
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *Store) ListTicketsByDate(ctx context.Context, day string) ([]ticket.Ticket, error) {
	all, err := s.ListTickets(ctx)
	if err != nil {
		return nil, err
	}

	var out []ticket.Ticket
	for _, t := range all {
		if results.DateKey(t.Timestamp) == day {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) DeleteTicket(ctx context.Context, id string) error {
	removed, err := s.client.HDel(ctx, ticketsKey, id).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return fmt.Errorf("ticket %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// --- ResultStore ------------------------------------------------------------

func (s *Store) PutDrawResult(ctx context.Context, day, draw string, res results.DrawResult) (bool, error) {
	raw, err := json.Marshal(res)
	if err != nil {
		return false, err
	}
	return s.client.HSetNX(ctx, resultsKey(day), draw, raw).Result()
}

func (s *Store) GetDrawResult(ctx context.Context, day, draw string) (results.DrawResult, error) {
	raw, err := s.client.HGet(ctx, resultsKey(day), draw).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("results %s/%s: %w", day, draw, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var res results.DrawResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) GetDailyResults(ctx context.Context, day string) (results.Daily, error) {
	entries, err := s.client.HGetAll(ctx, resultsKey(day)).Result()
	if err != nil {
		return nil, err
	}

	daily := make(results.Daily, len(entries))
	for draw, raw := range entries {
		var res results.DrawResult
		if err := json.Unmarshal([]byte(raw), &res); err != nil {
			return nil, err
		}
		daily[draw] = res
	}
	return daily, nil
}
