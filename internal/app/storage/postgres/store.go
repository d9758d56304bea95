// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agenciazeta/quiniela/internal/app/domain/results"
	"github.com/agenciazeta/quiniela/internal/app/domain/ticket"
	"github.com/agenciazeta/quiniela/internal/app/storage"
)

// Store implements TicketStore and ResultStore on a database handle.
type Store struct {
	db *sql.DB
}

var _ storage.TicketStore = (*Store)(nil)
var _ storage.ResultStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- TicketStore ------------------------------------------------------------

func (s *Store) AppendTicket(ctx context.Context, t ticket.Ticket) (ticket.Ticket, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}

	betsJSON, err := json.Marshal(t.Bets)
	if err != nil {
		return ticket.Ticket{}, err
	}
	lotteriesJSON, err := json.Marshal(t.Lotteries)
	if err != nil {
		return ticket.Ticket{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quiniela_tickets (id, day, created_at, bets, lotteries, total)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, t.ID, results.DateKey(t.Timestamp), t.Timestamp, betsJSON, lotteriesJSON, t.Total)
	if err != nil {
		return ticket.Ticket{}, err
	}
	return t, nil
}

func (s *Store) GetTicket(ctx context.Context, id string) (ticket.Ticket, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, bets, lotteries, total
		FROM quiniela_tickets
		WHERE id = $1
	`, id)

	t, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ticket.Ticket{}, fmt.Errorf("ticket %s: %w", id, storage.ErrNotFound)
	}
	return t, err
}

func (s *Store) ListTickets(ctx context.Context) ([]ticket.Ticket, error) {
	return s.queryTickets(ctx, `
		SELECT id, created_at, bets, lotteries, total
		FROM quiniela_tickets
		ORDER BY created_at
	`)
}

func (s *Store) ListTicketsByDate(ctx context.Context, day string) ([]ticket.Ticket, error) {
	return s.queryTickets(ctx, `
		SELECT id, created_at, bets, lotteries, total
		FROM quiniela_tickets
		WHERE day = $1
		ORDER BY created_at
	`, day)
}

func (s *Store) DeleteTicket(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM quiniela_tickets WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("ticket %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// --- ResultStore ------------------------------------------------------------

func (s *Store) PutDrawResult(ctx context.Context, day, draw string, res results.DrawResult) (bool, error) {
	numbersJSON, err := json.Marshal(res)
	if err != nil {
		return false, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO quiniela_results (day, draw_name, numbers, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (day, draw_name) DO NOTHING
	`, day, draw, numbersJSON, time.Now().UTC())
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (s *Store) GetDrawResult(ctx context.Context, day, draw string) (results.DrawResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT numbers
		FROM quiniela_results
		WHERE day = $1 AND draw_name = $2
	`, day, draw)

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("results %s/%s: %w", day, draw, storage.ErrNotFound)
		}
		return nil, err
	}

	var res results.DrawResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) GetDailyResults(ctx context.Context, day string) (results.Daily, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT draw_name, numbers
		FROM quiniela_results
		WHERE day = $1
	`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	daily := make(results.Daily)
	for rows.Next() {
		var (
			draw string
			raw  []byte
		)
		if err := rows.Scan(&draw, &raw); err != nil {
			return nil, err
		}
		var res results.DrawResult
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, err
		}
		daily[draw] = res
	}
	return daily, rows.Err()
}

// helpers --------------------------------------------------------------------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (ticket.Ticket, error) {
	var (
		t            ticket.Ticket
		betsRaw      []byte
		lotteriesRaw []byte
	)
	if err := row.Scan(&t.ID, &t.Timestamp, &betsRaw, &lotteriesRaw, &t.Total); err != nil {
		return ticket.Ticket{}, err
	}
	if err := json.Unmarshal(betsRaw, &t.Bets); err != nil {
		return ticket.Ticket{}, err
	}
	if err := json.Unmarshal(lotteriesRaw, &t.Lotteries); err != nil {
		return ticket.Ticket{}, err
	}
	return t, nil
}

func (s *Store) queryTickets(ctx context.Context, query string, args ...any) ([]ticket.Ticket, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ticket.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
