package reports

import (
	"context"
	"fmt"
	"testing"
	"time"

	resultsdomain "github.com/agenciazeta/quiniela/internal/app/domain/results"
	"github.com/agenciazeta/quiniela/internal/app/domain/ticket"
	"github.com/agenciazeta/quiniela/internal/app/storage/memory"
)

func TestParsePositionRange(t *testing.T) {
	cases := []struct {
		in       string
		from, to int
		ok       bool
	}{
		{"1", 1, 1, true},
		{"20", 20, 20, true},
		{"3-5", 3, 5, true},
		{" 3 - 5 ", 3, 5, true},
		{"0-100", 1, 20, true}, // clamped to the table span
		{"5-3", 0, 0, false},   // inverted
		{"", 0, 0, false},
		{"abc", 0, 0, false},
		{"1-x", 0, 0, false},
	}
	for _, tc := range cases {
		from, to, ok := ParsePositionRange(tc.in)
		if from != tc.from || to != tc.to || ok != tc.ok {
			t.Errorf("ParsePositionRange(%q) = (%d, %d, %v), want (%d, %d, %v)",
				tc.in, from, to, ok, tc.from, tc.to, tc.ok)
		}
	}
}

// table builds a 20-position column where position 3 holds 0234 and the rest
// are non-matching filler.
func winningTable() []resultsdomain.WinningNumber {
	numbers := make([]resultsdomain.WinningNumber, 0, resultsdomain.PositionCount)
	for pos := 1; pos <= resultsdomain.PositionCount; pos++ {
		n := fmt.Sprintf("%04d", 5000+pos)
		if pos == 3 {
			n = "0234"
		}
		numbers = append(numbers, resultsdomain.WinningNumber{Position: pos, Number: n})
	}
	return numbers
}

func TestMatchBetSuffixAtExactPosition(t *testing.T) {
	svc := New(nil, nil, 0, nil)

	bet := ticket.Bet{Type: ticket.BetTypeQuiniela, Number: "34", Position: "3", Amount: 10}
	wins := svc.MatchBet(bet, winningTable())
	if len(wins) != 1 {
		t.Fatalf("expected 1 win, got %d", len(wins))
	}
	if wins[0].Position != 3 {
		t.Fatalf("win at position %d, want 3", wins[0].Position)
	}
	if wins[0].Prize != 70 {
		t.Fatalf("prize = %v, want 70", wins[0].Prize)
	}
}

func TestMatchBetSuffixOutsideRangeMisses(t *testing.T) {
	svc := New(nil, nil, 0, nil)

	bet := ticket.Bet{Type: ticket.BetTypeQuiniela, Number: "34", Position: "5-10", Amount: 10}
	if wins := svc.MatchBet(bet, winningTable()); len(wins) != 0 {
		t.Fatalf("expected no wins outside range, got %d", len(wins))
	}
}

func TestMatchBetEachPositionPaysIndependently(t *testing.T) {
	svc := New(nil, nil, 0, nil)

	// Positions 4 and 5 both end in 77.
	numbers := winningTable()
	numbers[3].Number = "1077"
	numbers[4].Number = "9977"

	bet := ticket.Bet{Type: ticket.BetTypeQuiniela, Number: "77", Position: "3-5", Amount: 2}
	wins := svc.MatchBet(bet, numbers)
	if len(wins) != 2 {
		t.Fatalf("expected 2 independent wins, got %d", len(wins))
	}
	for _, w := range wins {
		if w.Prize != 14 {
			t.Fatalf("prize = %v, want 14", w.Prize)
		}
	}
}

func TestMatchBetMalformedPositionIsSkipped(t *testing.T) {
	svc := New(nil, nil, 0, nil)

	for _, position := range []string{"", "x", "9-1", "1-2-3"} {
		bet := ticket.Bet{Type: ticket.BetTypeQuiniela, Number: "34", Position: position, Amount: 10}
		if wins := svc.MatchBet(bet, winningTable()); len(wins) != 0 {
			t.Fatalf("position %q: expected silent skip, got %d wins", position, len(wins))
		}
	}
}

func TestMatchTicketSkipsAbsentTables(t *testing.T) {
	svc := New(nil, nil, 0, nil)

	tk := ticket.Ticket{
		ID:   "T-1",
		Bets: []ticket.Bet{{Type: ticket.BetTypeQuiniela, Number: "34", Position: "3", Amount: 10}},
		Lotteries: []ticket.LotterySelection{
			{DrawTime: "Matutina", Lottery: "NAC"},
			{DrawTime: "Nocturna", Lottery: "NAC"}, // no table yet
			{DrawTime: "Matutina", Lottery: "XXX"}, // lottery absent
		},
	}
	daily := resultsdomain.Daily{
		"Matutina": resultsdomain.DrawResult{"NAC": winningTable()},
	}

	wins := svc.MatchTicket(tk, daily)
	if len(wins) != 1 {
		t.Fatalf("expected exactly 1 win, got %d", len(wins))
	}
	w := wins[0]
	if w.TicketID != "T-1" || w.Draw != "Matutina" || w.Lottery != "NAC" {
		t.Fatalf("win metadata wrong: %+v", w)
	}
}

func TestMatchTicketMultipliesAcrossSelections(t *testing.T) {
	svc := New(nil, nil, 0, nil)

	tk := ticket.Ticket{
		ID:   "T-2",
		Bets: []ticket.Bet{{Type: ticket.BetTypeQuiniela, Number: "34", Position: "1-20", Amount: 1}},
		Lotteries: []ticket.LotterySelection{
			{DrawTime: "Matutina", Lottery: "NAC"},
			{DrawTime: "Matutina", Lottery: "PRO"},
		},
	}
	daily := resultsdomain.Daily{
		"Matutina": resultsdomain.DrawResult{
			"NAC": winningTable(),
			"PRO": winningTable(),
		},
	}

	wins := svc.MatchTicket(tk, daily)
	if len(wins) != 2 {
		t.Fatalf("expected a win per selection, got %d", len(wins))
	}
}

func TestCustomMultiplier(t *testing.T) {
	svc := New(nil, nil, 10, nil)

	bet := ticket.Bet{Type: ticket.BetTypeQuiniela, Number: "34", Position: "3", Amount: 5}
	wins := svc.MatchBet(bet, winningTable())
	if len(wins) != 1 || wins[0].Prize != 50 {
		t.Fatalf("expected prize 50 with x10 payout, got %+v", wins)
	}
}

func TestSalesAndWinningsReports(t *testing.T) {
	store := memory.New()
	svc := New(store, store, 0, nil)
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	otherDay := day.AddDate(0, 0, -1)

	winner := ticket.Ticket{
		ID:        "T-win",
		Timestamp: day,
		Bets:      []ticket.Bet{{Type: ticket.BetTypeQuiniela, Number: "34", Position: "3", Amount: 10}},
		Lotteries: []ticket.LotterySelection{{DrawTime: "Matutina", Lottery: "NAC"}},
		Total:     10,
	}
	loser := ticket.Ticket{
		ID:        "T-lose",
		Timestamp: day,
		Bets:      []ticket.Bet{{Type: ticket.BetTypeQuiniela, Number: "99", Position: "1", Amount: 4}},
		Lotteries: []ticket.LotterySelection{{DrawTime: "Matutina", Lottery: "NAC"}},
		Total:     4,
	}
	stale := ticket.Ticket{
		ID:        "T-old",
		Timestamp: otherDay,
		Bets:      []ticket.Bet{{Type: ticket.BetTypeQuiniela, Number: "34", Position: "3", Amount: 100}},
		Lotteries: []ticket.LotterySelection{{DrawTime: "Matutina", Lottery: "NAC"}},
		Total:     100,
	}
	for _, tk := range []ticket.Ticket{winner, loser, stale} {
		if _, err := store.AppendTicket(ctx, tk); err != nil {
			t.Fatalf("seed ticket %s: %v", tk.ID, err)
		}
	}

	dayKey := resultsdomain.DateKey(day)
	if _, err := store.PutDrawResult(ctx, dayKey, "Matutina", resultsdomain.DrawResult{"NAC": winningTable()}); err != nil {
		t.Fatalf("seed results: %v", err)
	}

	tickets, salesTotal, err := svc.SalesReport(ctx, dayKey)
	if err != nil {
		t.Fatalf("sales report: %v", err)
	}
	if len(tickets) != 2 || salesTotal != 14 {
		t.Fatalf("sales = %d tickets / %v, want 2 / 14", len(tickets), salesTotal)
	}

	winners, prizeTotal, err := svc.WinningsReport(ctx, dayKey)
	if err != nil {
		t.Fatalf("winnings report: %v", err)
	}
	if len(winners) != 1 || winners[0].Ticket.ID != "T-win" {
		t.Fatalf("winners = %+v, want just T-win", winners)
	}
	if prizeTotal != 70 {
		t.Fatalf("prize total = %v, want 70", prizeTotal)
	}

	hits, err := svc.HitsReport(ctx, dayKey)
	if err != nil {
		t.Fatalf("hits report: %v", err)
	}
	if len(hits) != 1 || hits[0].TicketID != "T-win" {
		t.Fatalf("hits = %+v, want one hit on T-win", hits)
	}

	wins, total, err := svc.TicketWinnings(ctx, "T-win", dayKey)
	if err != nil {
		t.Fatalf("ticket winnings: %v", err)
	}
	if len(wins) != 1 || total != 70 {
		t.Fatalf("ticket winnings = %d wins / %v, want 1 / 70", len(wins), total)
	}
}
