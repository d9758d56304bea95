// Package schedule defines the daily draw schedule and regional lotteries.
package schedule

// Draw is one scheduled daily draw. Times are local "HH:MM", zero padded so
// plain string comparison orders them correctly.
type Draw struct {
	Name string `json:"name"`
	Time string `json:"time"`
}

// NextDraw is the derived upcoming-draw value. It is recomputed from the
// clock and never persisted.
type NextDraw struct {
	Name   string `json:"name"`
	Number int    `json:"number"`
}

// DefaultDraws is the agency's fixed daily schedule, ascending by time.
var DefaultDraws = []Draw{
	{Name: "La Previa", Time: "10:15"},
	{Name: "La Primera", Time: "12:00"},
	{Name: "Matutina", Time: "15:00"},
	{Name: "Vespertina", Time: "18:00"},
	{Name: "Nocturna", Time: "21:00"},
}

// DefaultLotteries lists the regional lottery codes published per draw.
var DefaultLotteries = []string{"NAC", "PRO", "SFE", "CBA", "STG", "MZA"}

// DefaultDrawNumberBase anchors the deterministic draw-number sequence.
const DefaultDrawNumberBase = 51596
