package results

import (
	"context"
	"testing"
	"time"

	domain "github.com/agenciazeta/quiniela/internal/app/domain/results"
	schedulesvc "github.com/agenciazeta/quiniela/internal/app/services/schedule"
	"github.com/agenciazeta/quiniela/internal/app/storage/memory"
)

// seqSource yields 0, 1, 2, ... so generated tables are predictable.
type seqSource struct{ n int }

func (s *seqSource) Intn(int) int {
	v := s.n
	s.n++
	return v
}

func newTestService(store *memory.Store) *Service {
	sched := schedulesvc.New(nil, nil, 0, nil)
	return New(store, sched, nil).WithSource(&seqSource{})
}

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.Local)
}

func TestTickGeneratesElapsedDraws(t *testing.T) {
	store := memory.New()
	svc := newTestService(store)

	now := at(12, 30) // La Previa and La Primera have passed
	next, err := svc.Tick(context.Background(), now)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if next.Name != "Matutina" {
		t.Fatalf("next draw = %s, want Matutina", next.Name)
	}

	daily, err := store.GetDailyResults(context.Background(), domain.DateKey(now))
	if err != nil {
		t.Fatalf("daily results: %v", err)
	}
	if len(daily) != 2 {
		t.Fatalf("expected 2 draw tables, got %d", len(daily))
	}

	table, ok := daily["La Previa"]
	if !ok {
		t.Fatal("La Previa table missing")
	}
	for _, lottery := range []string{"NAC", "PRO", "SFE", "CBA", "STG", "MZA"} {
		numbers, ok := table[lottery]
		if !ok {
			t.Fatalf("lottery %s missing from table", lottery)
		}
		if len(numbers) != domain.PositionCount {
			t.Fatalf("lottery %s has %d positions, want %d", lottery, len(numbers), domain.PositionCount)
		}
		for i, wn := range numbers {
			if wn.Position != i+1 {
				t.Fatalf("position %d recorded as %d", i+1, wn.Position)
			}
			if len(wn.Number) != 4 {
				t.Fatalf("number %q not zero padded to 4 digits", wn.Number)
			}
		}
	}

	// Sequential source: first lottery's first numbers are 0000, 0001, ...
	if table["NAC"][0].Number != "0000" || table["NAC"][1].Number != "0001" {
		t.Fatalf("unexpected generated numbers %q %q", table["NAC"][0].Number, table["NAC"][1].Number)
	}
}

func TestTickBeforeFirstDrawGeneratesNothing(t *testing.T) {
	store := memory.New()
	svc := newTestService(store)

	now := at(9, 0)
	next, err := svc.Tick(context.Background(), now)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if next.Name != "La Previa" {
		t.Fatalf("next draw = %s, want La Previa", next.Name)
	}

	daily, err := store.GetDailyResults(context.Background(), domain.DateKey(now))
	if err != nil {
		t.Fatalf("daily results: %v", err)
	}
	if len(daily) != 0 {
		t.Fatalf("expected no tables before first draw, got %d", len(daily))
	}
}

func TestTickIsIdempotent(t *testing.T) {
	store := memory.New()
	svc := newTestService(store)

	now := at(10, 30)
	if _, err := svc.Tick(context.Background(), now); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	first, err := store.GetDrawResult(context.Background(), domain.DateKey(now), "La Previa")
	if err != nil {
		t.Fatalf("get first table: %v", err)
	}

	// The sequential source keeps advancing, so a regenerated table would
	// hold different numbers. The stored table must not change.
	if _, err := svc.Tick(context.Background(), now.Add(30*time.Second)); err != nil {
		t.Fatalf("second tick: %v", err)
	}
	second, err := store.GetDrawResult(context.Background(), domain.DateKey(now), "La Previa")
	if err != nil {
		t.Fatalf("get second table: %v", err)
	}

	for lottery, numbers := range first {
		for i, wn := range numbers {
			if second[lottery][i].Number != wn.Number {
				t.Fatalf("table for %s changed at position %d: %q != %q",
					lottery, wn.Position, second[lottery][i].Number, wn.Number)
			}
		}
	}
}

func TestNextDrawTracksLastTick(t *testing.T) {
	store := memory.New()
	svc := newTestService(store)

	if _, err := svc.Tick(context.Background(), at(9, 0)); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got := svc.NextDraw().Name; got != "La Previa" {
		t.Fatalf("next draw = %s, want La Previa", got)
	}

	if _, err := svc.Tick(context.Background(), at(16, 0)); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got := svc.NextDraw().Name; got != "Vespertina" {
		t.Fatalf("next draw = %s, want Vespertina", got)
	}
}

func TestDailyResultsPerDayAreIsolated(t *testing.T) {
	store := memory.New()
	svc := newTestService(store)

	dayOne := at(22, 0)
	dayTwo := dayOne.AddDate(0, 0, 1)

	if _, err := svc.Tick(context.Background(), dayOne); err != nil {
		t.Fatalf("tick day one: %v", err)
	}
	if _, err := svc.Tick(context.Background(), dayTwo); err != nil {
		t.Fatalf("tick day two: %v", err)
	}

	one, _ := store.GetDailyResults(context.Background(), domain.DateKey(dayOne))
	two, _ := store.GetDailyResults(context.Background(), domain.DateKey(dayTwo))
	if len(one) != 5 || len(two) != 5 {
		t.Fatalf("expected 5 tables per day, got %d and %d", len(one), len(two))
	}
	if one["Nocturna"]["NAC"][0].Number == two["Nocturna"]["NAC"][0].Number {
		t.Fatal("expected independent tables per day")
	}
}
