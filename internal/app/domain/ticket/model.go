// Package ticket defines bets, lottery selections and finalized tickets.
package ticket

import "time"

// BetType distinguishes the two wager variants an operator can enter.
type BetType string

const (
	BetTypeQuiniela  BetType = "Quiniela"
	BetTypeRedoblona BetType = "Redoblona"
)

// Bet is a single wager line. Number holds up to four decimal digits;
// Position is either a single position ("5") or an inclusive range ("3-5").
// Bets are immutable once attached to a finalized ticket.
type Bet struct {
	Type     BetType `json:"type"`
	Number   string  `json:"number"`
	Position string  `json:"position"`
	Amount   float64 `json:"amount"`
}

// LotterySelection pairs a draw with a regional lottery the ticket plays.
type LotterySelection struct {
	DrawTime string `json:"drawTime"`
	Lottery  string `json:"lottery"`
}

// Ticket is a finalized, priced, immutable sale.
// Total always equals the sum of bet amounts times the selection count.
type Ticket struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Bets      []Bet              `json:"bets"`
	Lotteries []LotterySelection `json:"lotteries"`
	Total     float64            `json:"total"`
}
