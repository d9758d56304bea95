// Package betting accumulates per-terminal ticket slips and materializes
// finalized tickets.
package betting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agenciazeta/quiniela/internal/app/domain/ticket"
	"github.com/agenciazeta/quiniela/internal/app/metrics"
	schedulesvc "github.com/agenciazeta/quiniela/internal/app/services/schedule"
	"github.com/agenciazeta/quiniela/internal/app/storage"
	"github.com/agenciazeta/quiniela/pkg/logger"
)

// Errors
var (
	ErrInvalidBet     = errors.New("invalid bet")
	ErrBetIndex       = errors.New("bet index out of range")
	ErrNoBets         = errors.New("ticket has no bets")
	ErrNoSelection    = errors.New("no lottery selected")
	ErrDrawClosed     = errors.New("draw already closed")
	ErrUnknownDraw    = errors.New("unknown draw")
	ErrUnknownLottery = errors.New("unknown lottery")
	ErrNoHistory      = errors.New("no previous ticket")
)

// slip is the transient per-terminal state: pending bets in entry order and
// the (draw, lottery) selection flags. Nothing here is persisted until
// finalize.
type slip struct {
	bets       []ticket.Bet
	selections map[ticket.LotterySelection]bool
}

func newSlip() *slip {
	return &slip{selections: make(map[ticket.LotterySelection]bool)}
}

// View is the derived slip state served to the presentation layer. Totals
// are recomputed on every read; nothing is cached.
type View struct {
	Bets          []ticket.Bet              `json:"bets"`
	Selections    []ticket.LotterySelection `json:"selections"`
	Subtotal      float64                   `json:"subtotal"`
	SelectedCount int                       `json:"selected_count"`
	Total         float64                   `json:"total"`
}

// Service manages slips keyed by terminal id and the persisted ticket list.
// All slip mutation happens under one mutex; ticket persistence is delegated
// to the store.
type Service struct {
	store    storage.TicketStore
	schedule *schedulesvc.Service
	clock    func() time.Time
	log      *logger.Logger

	mu    sync.Mutex
	slips map[string]*slip
}

// New creates a betting service.
func New(store storage.TicketStore, schedule *schedulesvc.Service, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("betting")
	}
	return &Service{
		store:    store,
		schedule: schedule,
		clock:    time.Now,
		log:      log,
		slips:    make(map[string]*slip),
	}
}

// WithClock overrides the wall clock. Call before use; intended for tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

func (s *Service) slipLocked(terminal string) *slip {
	sl, ok := s.slips[terminal]
	if !ok {
		sl = newSlip()
		s.slips[terminal] = sl
	}
	return sl
}

// AddBet validates and appends a bet to the terminal's pending list.
func (s *Service) AddBet(terminal string, betType ticket.BetType, number, position string, amount float64) error {
	number = strings.TrimSpace(number)
	position = strings.TrimSpace(position)

	if betType != ticket.BetTypeQuiniela && betType != ticket.BetTypeRedoblona {
		return fmt.Errorf("%w: unknown bet type %q", ErrInvalidBet, betType)
	}
	if number == "" {
		return fmt.Errorf("%w: number is required", ErrInvalidBet)
	}
	if len(number) > 4 {
		return fmt.Errorf("%w: number exceeds 4 digits", ErrInvalidBet)
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: number must be numeric", ErrInvalidBet)
		}
	}
	if position == "" {
		return fmt.Errorf("%w: position is required", ErrInvalidBet)
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidBet)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.slipLocked(terminal)
	sl.bets = append(sl.bets, ticket.Bet{
		Type:     betType,
		Number:   number,
		Position: position,
		Amount:   amount,
	})
	return nil
}

// RemoveBet removes the pending bet at the given index.
func (s *Service) RemoveBet(terminal string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.slipLocked(terminal)
	if index < 0 || index >= len(sl.bets) {
		return ErrBetIndex
	}
	sl.bets = append(sl.bets[:index], sl.bets[index+1:]...)
	return nil
}

// ToggleCell flips a single (draw, lottery) flag. Elapsed draws are locked.
func (s *Service) ToggleCell(terminal, draw, lottery string) error {
	now := s.clock()
	if _, _, ok := s.schedule.Find(draw); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDraw, draw)
	}
	if !s.knownLottery(lottery) {
		return fmt.Errorf("%w: %s", ErrUnknownLottery, lottery)
	}
	if s.schedule.IsDrawElapsed(draw, now) {
		return fmt.Errorf("%w: %s", ErrDrawClosed, draw)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.slipLocked(terminal)
	key := ticket.LotterySelection{DrawTime: draw, Lottery: lottery}
	if sl.selections[key] {
		delete(sl.selections, key)
	} else {
		sl.selections[key] = true
	}
	return nil
}

// ToggleRow applies the all-or-nothing rule across a draw's row: every cell
// becomes the complement of "the whole row was already selected". Elapsed
// draws are locked.
func (s *Service) ToggleRow(terminal, draw string) error {
	now := s.clock()
	if _, _, ok := s.schedule.Find(draw); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDraw, draw)
	}
	if s.schedule.IsDrawElapsed(draw, now) {
		return fmt.Errorf("%w: %s", ErrDrawClosed, draw)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.slipLocked(terminal)
	allOn := true
	for _, lottery := range s.schedule.Lotteries() {
		if !sl.selections[ticket.LotterySelection{DrawTime: draw, Lottery: lottery}] {
			allOn = false
			break
		}
	}
	for _, lottery := range s.schedule.Lotteries() {
		setSelection(sl, ticket.LotterySelection{DrawTime: draw, Lottery: lottery}, !allOn)
	}
	return nil
}

// ToggleColumn applies the all-or-nothing rule down a lottery's column,
// considering only draws that have not yet elapsed.
func (s *Service) ToggleColumn(terminal, lottery string) error {
	if !s.knownLottery(lottery) {
		return fmt.Errorf("%w: %s", ErrUnknownLottery, lottery)
	}
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.slipLocked(terminal)
	var open []ticket.LotterySelection
	for _, d := range s.schedule.Draws() {
		if !s.schedule.IsElapsed(d, now) {
			open = append(open, ticket.LotterySelection{DrawTime: d.Name, Lottery: lottery})
		}
	}
	if len(open) == 0 {
		return nil
	}

	allOn := true
	for _, key := range open {
		if !sl.selections[key] {
			allOn = false
			break
		}
	}
	for _, key := range open {
		setSelection(sl, key, !allOn)
	}
	return nil
}

// View returns the slip's derived state. Selections are ordered by schedule
// then lottery so snapshots are deterministic.
func (s *Service) View(terminal string) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.slipLocked(terminal)
	return View{
		Bets:          append([]ticket.Bet(nil), sl.bets...),
		Selections:    s.orderedSelectionsLocked(sl),
		Subtotal:      round2(subtotal(sl.bets)),
		SelectedCount: len(sl.selections),
		Total:         round2(subtotal(sl.bets) * float64(len(sl.selections))),
	}
}

// Finalize materializes the slip into an immutable priced ticket, persists
// it and clears the slip. Each violated precondition yields its own error
// and leaves all state untouched.
func (s *Service) Finalize(ctx context.Context, terminal string) (ticket.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.slipLocked(terminal)
	if len(sl.bets) == 0 {
		return ticket.Ticket{}, ErrNoBets
	}
	if len(sl.selections) == 0 {
		return ticket.Ticket{}, ErrNoSelection
	}

	now := s.clock()
	t := ticket.Ticket{
		ID:        newTicketID(now),
		Timestamp: now,
		Bets:      append([]ticket.Bet(nil), sl.bets...),
		Lotteries: s.orderedSelectionsLocked(sl),
		Total:     round2(subtotal(sl.bets) * float64(len(sl.selections))),
	}

	created, err := s.store.AppendTicket(ctx, t)
	if err != nil {
		return ticket.Ticket{}, fmt.Errorf("persist ticket: %w", err)
	}

	s.slips[terminal] = newSlip()

	s.log.WithField("ticket_id", created.ID).
		WithField("terminal", terminal).
		WithField("bets", len(created.Bets)).
		WithField("lotteries", len(created.Lotteries)).
		WithField("total", created.Total).
		Info("ticket finalized")
	metrics.RecordTicketSold(created.Total)

	return created, nil
}

// RepeatLast replaces the slip's pending bets with those of the most
// recently persisted ticket. Lottery selections are not copied.
func (s *Service) RepeatLast(ctx context.Context, terminal string) error {
	all, err := s.store.ListTickets(ctx)
	if err != nil {
		return fmt.Errorf("list tickets: %w", err)
	}
	if len(all) == 0 {
		return ErrNoHistory
	}
	last := all[len(all)-1]

	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.slipLocked(terminal)
	sl.bets = append([]ticket.Bet(nil), last.Bets...)
	return nil
}

// GetTicket fetches a persisted ticket by id.
func (s *Service) GetTicket(ctx context.Context, id string) (ticket.Ticket, error) {
	return s.store.GetTicket(ctx, id)
}

// DeleteTicket removes a persisted ticket. The delete is hard and
// irreversible.
func (s *Service) DeleteTicket(ctx context.Context, id string) error {
	if err := s.store.DeleteTicket(ctx, id); err != nil {
		return err
	}
	s.log.WithField("ticket_id", id).Info("ticket deleted")
	metrics.RecordTicketDeleted()
	return nil
}

// helpers --------------------------------------------------------------------

func (s *Service) knownLottery(code string) bool {
	for _, l := range s.schedule.Lotteries() {
		if l == code {
			return true
		}
	}
	return false
}

func (s *Service) orderedSelectionsLocked(sl *slip) []ticket.LotterySelection {
	out := make([]ticket.LotterySelection, 0, len(sl.selections))
	for _, d := range s.schedule.Draws() {
		for _, lottery := range s.schedule.Lotteries() {
			key := ticket.LotterySelection{DrawTime: d.Name, Lottery: lottery}
			if sl.selections[key] {
				out = append(out, key)
			}
		}
	}
	return out
}

func setSelection(sl *slip, key ticket.LotterySelection, on bool) {
	if on {
		sl.selections[key] = true
	} else {
		delete(sl.selections, key)
	}
}

func subtotal(bets []ticket.Bet) float64 {
	var sum float64
	for _, b := range bets {
		sum += b.Amount
	}
	return sum
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// newTicketID builds the "T-<millis>-<suffix>" id: time ordered with a short
// random suffix against same-millisecond collisions.
func newTicketID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:5]
	return fmt.Sprintf("T-%d-%s", now.UnixMilli(), suffix)
}
