// Package api exposes the point-of-sale REST interface.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agenciazeta/quiniela/internal/app"
	resultsdomain "github.com/agenciazeta/quiniela/internal/app/domain/results"
	"github.com/agenciazeta/quiniela/internal/app/domain/ticket"
	"github.com/agenciazeta/quiniela/internal/app/metrics"
	"github.com/agenciazeta/quiniela/internal/app/services/betting"
	"github.com/agenciazeta/quiniela/internal/app/storage"
	"github.com/agenciazeta/quiniela/pkg/logger"
)

// Handler bundles the HTTP endpoints over the application services.
type Handler struct {
	app *app.Application
	log *logger.Logger
}

// Options tunes router construction.
type Options struct {
	RateLimit float64
	RateBurst int
}

// NewRouter builds the gin engine with all routes and middleware attached.
func NewRouter(application *app.Application, log *logger.Logger, opts Options) *gin.Engine {
	if log == nil {
		log = logger.NewDefault("api")
	}
	h := &Handler{app: application, log: log}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), corsMiddleware(), metricsMiddleware())
	if opts.RateLimit > 0 {
		router.Use(rateLimitMiddleware(opts.RateLimit, opts.RateBurst))
	}

	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(terminalMiddleware())
	{
		v1.GET("/schedule", h.getSchedule)
		v1.GET("/results", h.getResults)

		v1.GET("/slip", h.getSlip)
		v1.POST("/slip/bets", h.addBet)
		v1.DELETE("/slip/bets/:index", h.removeBet)
		v1.POST("/slip/selections/cell", h.toggleCell)
		v1.POST("/slip/selections/row", h.toggleRow)
		v1.POST("/slip/selections/column", h.toggleColumn)
		v1.POST("/slip/finalize", h.finalize)
		v1.POST("/slip/repeat-last", h.repeatLast)

		v1.GET("/tickets", h.listTickets)
		v1.GET("/tickets/:id", h.getTicket)
		v1.DELETE("/tickets/:id", h.deleteTicket)
		v1.GET("/tickets/:id/winnings", h.ticketWinnings)

		v1.GET("/reports/sales", h.salesReport)
		v1.GET("/reports/winnings", h.winningsReport)
		v1.GET("/reports/hits", h.hitsReport)
	}

	return router
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// schedule --------------------------------------------------------------------

func (h *Handler) getSchedule(c *gin.Context) {
	now := time.Now()
	draws := h.app.Schedule.Draws()

	type drawStatus struct {
		Name    string `json:"name"`
		Time    string `json:"time"`
		Elapsed bool   `json:"elapsed"`
	}
	out := make([]drawStatus, 0, len(draws))
	for _, d := range draws {
		out = append(out, drawStatus{
			Name:    d.Name,
			Time:    d.Time,
			Elapsed: h.app.Schedule.IsElapsed(d, now),
		})
	}

	next := h.app.Schedule.Next(now)
	c.JSON(http.StatusOK, gin.H{
		"draws":     out,
		"lotteries": h.app.Schedule.Lotteries(),
		"next_draw": next,
	})
}

// results ---------------------------------------------------------------------

func (h *Handler) getResults(c *gin.Context) {
	day, ok := h.dayParam(c)
	if !ok {
		return
	}
	daily, err := h.app.Results.Daily(c.Request.Context(), day)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day, "results": daily})
}

// slip ------------------------------------------------------------------------

func (h *Handler) getSlip(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.Betting.View(TerminalID(c)))
}

func (h *Handler) addBet(c *gin.Context) {
	var payload struct {
		Type     string  `json:"type"`
		Number   string  `json:"number"`
		Position string  `json:"position"`
		Amount   float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	betType := ticket.BetType(payload.Type)
	if payload.Type == "" {
		betType = ticket.BetTypeQuiniela
	}

	if err := h.app.Betting.AddBet(TerminalID(c), betType, payload.Number, payload.Position, payload.Amount); err != nil {
		h.bettingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.app.Betting.View(TerminalID(c)))
}

func (h *Handler) removeBet(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bet index"})
		return
	}
	if err := h.app.Betting.RemoveBet(TerminalID(c), index); err != nil {
		h.bettingError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.app.Betting.View(TerminalID(c)))
}

func (h *Handler) toggleCell(c *gin.Context) {
	var payload struct {
		Draw    string `json:"draw"`
		Lottery string `json:"lottery"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.app.Betting.ToggleCell(TerminalID(c), payload.Draw, payload.Lottery); err != nil {
		h.bettingError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.app.Betting.View(TerminalID(c)))
}

func (h *Handler) toggleRow(c *gin.Context) {
	var payload struct {
		Draw string `json:"draw"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.app.Betting.ToggleRow(TerminalID(c), payload.Draw); err != nil {
		h.bettingError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.app.Betting.View(TerminalID(c)))
}

func (h *Handler) toggleColumn(c *gin.Context) {
	var payload struct {
		Lottery string `json:"lottery"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.app.Betting.ToggleColumn(TerminalID(c), payload.Lottery); err != nil {
		h.bettingError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.app.Betting.View(TerminalID(c)))
}

func (h *Handler) finalize(c *gin.Context) {
	t, err := h.app.Betting.Finalize(c.Request.Context(), TerminalID(c))
	if err != nil {
		h.bettingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) repeatLast(c *gin.Context) {
	if err := h.app.Betting.RepeatLast(c.Request.Context(), TerminalID(c)); err != nil {
		h.bettingError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.app.Betting.View(TerminalID(c)))
}

// tickets ---------------------------------------------------------------------

func (h *Handler) listTickets(c *gin.Context) {
	day, ok := h.dayParam(c)
	if !ok {
		return
	}
	tickets, total, err := h.app.Reports.SalesReport(c.Request.Context(), day)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day, "tickets": tickets, "total": total})
}

func (h *Handler) getTicket(c *gin.Context) {
	t, err := h.app.Betting.GetTicket(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
			return
		}
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) deleteTicket(c *gin.Context) {
	if err := h.app.Betting.DeleteTicket(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
			return
		}
		h.serverError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ticketWinnings(c *gin.Context) {
	day, ok := h.dayParam(c)
	if !ok {
		return
	}
	wins, total, err := h.app.Reports.TicketWinnings(c.Request.Context(), c.Param("id"), day)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
			return
		}
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day, "wins": wins, "total": total})
}

// reports ---------------------------------------------------------------------

func (h *Handler) salesReport(c *gin.Context) {
	day, ok := h.dayParam(c)
	if !ok {
		return
	}
	tickets, total, err := h.app.Reports.SalesReport(c.Request.Context(), day)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day, "count": len(tickets), "tickets": tickets, "total": total})
}

func (h *Handler) winningsReport(c *gin.Context) {
	day, ok := h.dayParam(c)
	if !ok {
		return
	}
	winners, total, err := h.app.Reports.WinningsReport(c.Request.Context(), day)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day, "winners": winners, "total": total})
}

func (h *Handler) hitsReport(c *gin.Context) {
	day, ok := h.dayParam(c)
	if !ok {
		return
	}
	hits, err := h.app.Reports.HitsReport(c.Request.Context(), day)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day, "hits": hits})
}

// helpers ---------------------------------------------------------------------

// dayParam resolves the optional ?date=YYYY-MM-DD query, defaulting to today.
func (h *Handler) dayParam(c *gin.Context) (string, bool) {
	day := c.Query("date")
	if day == "" {
		return resultsdomain.DateKey(time.Now()), true
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
		return "", false
	}
	return day, true
}

// bettingError maps betting service errors onto HTTP statuses: domain
// preconditions are 422, unknown references 404.
func (h *Handler) bettingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, betting.ErrInvalidBet),
		errors.Is(err, betting.ErrNoBets),
		errors.Is(err, betting.ErrNoSelection),
		errors.Is(err, betting.ErrDrawClosed),
		errors.Is(err, betting.ErrNoHistory):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, betting.ErrBetIndex),
		errors.Is(err, betting.ErrUnknownDraw),
		errors.Is(err, betting.ErrUnknownLottery):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.serverError(c, err)
	}
}

func (h *Handler) serverError(c *gin.Context, err error) {
	h.log.WithError(err).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
