// Package storage declares the persistence interfaces for tickets and
// published draw results.
package storage

import (
	"context"
	"errors"

	"github.com/agenciazeta/quiniela/internal/app/domain/results"
	"github.com/agenciazeta/quiniela/internal/app/domain/ticket"
)

// ErrNotFound is returned when a requested record does not exist. All
// implementations wrap it so callers can test with errors.Is.
var ErrNotFound = errors.New("not found")

// TicketStore persists finalized tickets. The list accumulates indefinitely;
// rotation is an external concern.
type TicketStore interface {
	AppendTicket(ctx context.Context, t ticket.Ticket) (ticket.Ticket, error)
	GetTicket(ctx context.Context, id string) (ticket.Ticket, error)
	ListTickets(ctx context.Context) ([]ticket.Ticket, error)
	// ListTicketsByDate filters by local calendar day ("2006-01-02").
	ListTicketsByDate(ctx context.Context, day string) ([]ticket.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
}

// ResultStore persists winning-number tables scoped by calendar day.
type ResultStore interface {
	// PutDrawResult stores a draw's table for a day if absent. It reports
	// whether this call created the entry; when false the existing table is
	// left untouched. Implementations must guarantee a single winner among
	// concurrent writers for the same (day, draw).
	PutDrawResult(ctx context.Context, day, draw string, res results.DrawResult) (bool, error)
	GetDrawResult(ctx context.Context, day, draw string) (results.DrawResult, error)
	GetDailyResults(ctx context.Context, day string) (results.Daily, error)
}
