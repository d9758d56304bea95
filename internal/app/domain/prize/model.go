// Package prize defines winning-bet records produced by the matcher.
package prize

import "github.com/agenciazeta/quiniela/internal/app/domain/ticket"

// PayoutMultiplier is the flat factor applied to a winning bet's amount.
const PayoutMultiplier = 7

// Win records one independent hit: a bet matching a drawn number at a
// specific (draw, lottery, position).
type Win struct {
	TicketID string     `json:"ticket_id"`
	Bet      ticket.Bet `json:"bet"`
	Draw     string     `json:"draw"`
	Lottery  string     `json:"lottery"`
	Position int        `json:"position"`
	Prize    float64    `json:"prize"`
}

// TicketPrize aggregates a ticket's wins for the winnings report.
type TicketPrize struct {
	Ticket ticket.Ticket `json:"ticket"`
	Prize  float64       `json:"prize"`
}
