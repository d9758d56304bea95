// Package reports computes prize matches over published results and the
// back-office sales and winnings summaries.
package reports

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	prizedomain "github.com/agenciazeta/quiniela/internal/app/domain/prize"
	resultsdomain "github.com/agenciazeta/quiniela/internal/app/domain/results"
	"github.com/agenciazeta/quiniela/internal/app/domain/ticket"
	"github.com/agenciazeta/quiniela/internal/app/storage"
	"github.com/agenciazeta/quiniela/pkg/logger"
)

// Service evaluates tickets against result tables. Matching is pure; every
// call reads the stores fresh.
type Service struct {
	tickets    storage.TicketStore
	results    storage.ResultStore
	multiplier float64
	log        *logger.Logger
}

// New creates a reports service. A non-positive multiplier falls back to the
// standard payout.
func New(tickets storage.TicketStore, results storage.ResultStore, multiplier float64, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("reports")
	}
	if multiplier <= 0 {
		multiplier = prizedomain.PayoutMultiplier
	}
	return &Service{
		tickets:    tickets,
		results:    results,
		multiplier: multiplier,
		log:        log,
	}
}

// ParsePositionRange parses a bet's position field: either a single position
// "n" or an inclusive range "from-to". The result is clamped to the table's
// 1..20 span. Malformed or inverted input yields ok=false; callers skip the
// bet silently.
func ParsePositionRange(position string) (from, to int, ok bool) {
	position = strings.TrimSpace(position)
	if position == "" {
		return 0, 0, false
	}

	if idx := strings.IndexByte(position, '-'); idx >= 0 {
		lo, err1 := strconv.Atoi(strings.TrimSpace(position[:idx]))
		hi, err2 := strconv.Atoi(strings.TrimSpace(position[idx+1:]))
		if err1 != nil || err2 != nil || lo > hi {
			return 0, 0, false
		}
		from, to = lo, hi
	} else {
		n, err := strconv.Atoi(position)
		if err != nil {
			return 0, 0, false
		}
		from, to = n, n
	}

	if from < 1 {
		from = 1
	}
	if to > resultsdomain.PositionCount {
		to = resultsdomain.PositionCount
	}
	if from > to {
		return 0, 0, false
	}
	return from, to, true
}

// MatchBet checks one bet against one lottery's table. A winning number
// matches when it ends with the bet's digits and its position falls in the
// bet's range; every matching position pays independently.
func (s *Service) MatchBet(bet ticket.Bet, numbers []resultsdomain.WinningNumber) []prizedomain.Win {
	from, to, ok := ParsePositionRange(bet.Position)
	if !ok || bet.Number == "" {
		return nil
	}

	var wins []prizedomain.Win
	for _, wn := range numbers {
		if wn.Position < from || wn.Position > to {
			continue
		}
		if !strings.HasSuffix(wn.Number, bet.Number) {
			continue
		}
		wins = append(wins, prizedomain.Win{
			Bet:      bet,
			Position: wn.Position,
			Prize:    round2(bet.Amount * s.multiplier),
		})
	}
	return wins
}

// MatchTicket evaluates every (bet, selection) pair of a ticket against the
// day's published tables. Selections whose draw has no table yet, or whose
// lottery is absent from it, contribute nothing.
func (s *Service) MatchTicket(t ticket.Ticket, daily resultsdomain.Daily) []prizedomain.Win {
	var wins []prizedomain.Win
	for _, sel := range t.Lotteries {
		table, ok := daily[sel.DrawTime]
		if !ok {
			continue
		}
		numbers, ok := table[sel.Lottery]
		if !ok {
			continue
		}
		for _, bet := range t.Bets {
			for _, w := range s.MatchBet(bet, numbers) {
				w.TicketID = t.ID
				w.Draw = sel.DrawTime
				w.Lottery = sel.Lottery
				wins = append(wins, w)
			}
		}
	}
	return wins
}

// TicketWinnings returns one ticket's wins for a day along with the summed
// prize.
func (s *Service) TicketWinnings(ctx context.Context, id, day string) ([]prizedomain.Win, float64, error) {
	t, err := s.tickets.GetTicket(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	daily, err := s.results.GetDailyResults(ctx, day)
	if err != nil {
		return nil, 0, fmt.Errorf("load results for %s: %w", day, err)
	}
	wins := s.MatchTicket(t, daily)
	return wins, sumPrizes(wins), nil
}

// SalesReport lists the day's tickets and their total face value.
func (s *Service) SalesReport(ctx context.Context, day string) ([]ticket.Ticket, float64, error) {
	tickets, err := s.tickets.ListTicketsByDate(ctx, day)
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets for %s: %w", day, err)
	}
	var total float64
	for _, t := range tickets {
		total += t.Total
	}
	return tickets, round2(total), nil
}

// WinningsReport evaluates every ticket sold on a day against that day's
// tables and returns the winners with per-ticket prize breakdowns.
func (s *Service) WinningsReport(ctx context.Context, day string) ([]prizedomain.TicketPrize, float64, error) {
	tickets, err := s.tickets.ListTicketsByDate(ctx, day)
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets for %s: %w", day, err)
	}
	daily, err := s.results.GetDailyResults(ctx, day)
	if err != nil {
		return nil, 0, fmt.Errorf("load results for %s: %w", day, err)
	}

	var (
		out   []prizedomain.TicketPrize
		total float64
	)
	for _, t := range tickets {
		wins := s.MatchTicket(t, daily)
		if len(wins) == 0 {
			continue
		}
		prize := sumPrizes(wins)
		out = append(out, prizedomain.TicketPrize{Ticket: t, Prize: prize})
		total += prize
	}
	return out, round2(total), nil
}

// HitsReport returns every individual win across a day's tickets, in ticket
// order.
func (s *Service) HitsReport(ctx context.Context, day string) ([]prizedomain.Win, error) {
	tickets, err := s.tickets.ListTicketsByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("list tickets for %s: %w", day, err)
	}
	daily, err := s.results.GetDailyResults(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("load results for %s: %w", day, err)
	}

	var out []prizedomain.Win
	for _, t := range tickets {
		out = append(out, s.MatchTicket(t, daily)...)
	}
	return out, nil
}

func sumPrizes(wins []prizedomain.Win) float64 {
	var sum float64
	for _, w := range wins {
		sum += w.Prize
	}
	return round2(sum)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
