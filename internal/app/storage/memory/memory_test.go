package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agenciazeta/quiniela/internal/app/domain/results"
	"github.com/agenciazeta/quiniela/internal/app/domain/ticket"
	"github.com/agenciazeta/quiniela/internal/app/storage"
)

func sampleTicket(id string, ts time.Time) ticket.Ticket {
	return ticket.Ticket{
		ID:        id,
		Timestamp: ts,
		Bets:      []ticket.Bet{{Type: ticket.BetTypeQuiniela, Number: "12", Position: "1", Amount: 5}},
		Lotteries: []ticket.LotterySelection{{DrawTime: "Matutina", Lottery: "NAC"}},
		Total:     5,
	}
}

func TestTicketLifecycle(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	if _, err := store.AppendTicket(ctx, sampleTicket("T-1", now)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := store.AppendTicket(ctx, sampleTicket("T-1", now)); err == nil {
		t.Fatal("expected duplicate id to be rejected")
	}
	if _, err := store.AppendTicket(ctx, sampleTicket("T-2", now.Add(time.Minute))); err != nil {
		t.Fatalf("append second: %v", err)
	}

	got, err := store.GetTicket(ctx, "T-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Total != 5 {
		t.Fatalf("total = %v, want 5", got.Total)
	}

	all, err := store.ListTickets(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != "T-1" || all[1].ID != "T-2" {
		t.Fatalf("list order wrong: %+v", all)
	}

	if err := store.DeleteTicket(ctx, "T-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetTicket(ctx, "T-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.DeleteTicket(ctx, "T-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestListTicketsByDate(t *testing.T) {
	store := New()
	ctx := context.Background()

	dayOne := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	dayTwo := dayOne.AddDate(0, 0, 1)

	_, _ = store.AppendTicket(ctx, sampleTicket("T-1", dayOne))
	_, _ = store.AppendTicket(ctx, sampleTicket("T-2", dayTwo))

	got, err := store.ListTicketsByDate(ctx, results.DateKey(dayOne))
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if len(got) != 1 || got[0].ID != "T-1" {
		t.Fatalf("day filter wrong: %+v", got)
	}
}

func TestStoredTicketsAreIsolatedFromCallers(t *testing.T) {
	store := New()
	ctx := context.Background()

	original := sampleTicket("T-1", time.Now())
	_, _ = store.AppendTicket(ctx, original)

	got, _ := store.GetTicket(ctx, "T-1")
	got.Bets[0].Number = "99"

	again, _ := store.GetTicket(ctx, "T-1")
	if again.Bets[0].Number != "12" {
		t.Fatal("store leaked internal slice to caller")
	}
}

func TestPutDrawResultCreatesOnce(t *testing.T) {
	store := New()
	ctx := context.Background()

	first := results.DrawResult{"NAC": {{Position: 1, Number: "0001"}}}
	second := results.DrawResult{"NAC": {{Position: 1, Number: "9999"}}}

	created, err := store.PutDrawResult(ctx, "2026-03-10", "Matutina", first)
	if err != nil || !created {
		t.Fatalf("first put = (%v, %v), want created", created, err)
	}
	created, err = store.PutDrawResult(ctx, "2026-03-10", "Matutina", second)
	if err != nil || created {
		t.Fatalf("second put = (%v, %v), want no-op", created, err)
	}

	got, err := store.GetDrawResult(ctx, "2026-03-10", "Matutina")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["NAC"][0].Number != "0001" {
		t.Fatalf("stored table overwritten: %q", got["NAC"][0].Number)
	}
}

func TestGetDrawResultNotFound(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.GetDrawResult(ctx, "2026-03-10", "Matutina"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	daily, err := store.GetDailyResults(ctx, "2026-03-10")
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if len(daily) != 0 {
		t.Fatalf("expected empty daily map, got %d entries", len(daily))
	}
}
