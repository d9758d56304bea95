// Package results defines published winning-number tables.
package results

import "time"

// PositionCount is the number of positions per published draw table.
const PositionCount = 20

// WinningNumber is one published entry: a zero-padded 4-digit number at a
// position in 1..PositionCount.
type WinningNumber struct {
	Position int    `json:"position"`
	Number   string `json:"number"`
}

// DrawResult maps a regional lottery code to its ordered winning numbers.
type DrawResult map[string][]WinningNumber

// Daily maps a draw name to its result for one calendar day. A draw's entry,
// once present, is never mutated.
type Daily map[string]DrawResult

// DateKey renders the calendar-day key used to scope stored results.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
