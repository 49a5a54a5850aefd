// Package calculator implements the tip/cost-splitting logic and its
// in-memory calculation history. It is pure: no network, no storage.
package calculator

import (
	"strconv"
	"strings"
)

// TipPresets are the selectable tip percentages. Selecting the active
// preset again toggles back to zero.
var TipPresets = []int{10, 15, 20}

// Input field defaults after a commit or reset.
const (
	DefaultPeople = 2
	DefaultTotal  = 0
	DefaultTip    = 0
)

// Calculation holds the derived figures for one split.
type Calculation struct {
	People       int
	Total        float64
	TipPercent   int
	TipAmount    float64
	TotalWithTip float64
	PerPerson    float64
}

// Compute derives the split: tip = total * tipPercent / 100, and the
// tipped total divides evenly across people. A people count below one is
// clamped to one so the division is always defined.
func Compute(people int, total float64, tipPercent int) Calculation {
	if people < 1 {
		people = 1
	}
	tip := total * float64(tipPercent) / 100
	withTip := total + tip
	return Calculation{
		People:       people,
		Total:        total,
		TipPercent:   tipPercent,
		TipAmount:    tip,
		TotalWithTip: withTip,
		PerPerson:    withTip / float64(people),
	}
}

// ParsePeople coerces raw text to a people count. Non-numeric or
// non-positive input yields 1.
func ParsePeople(raw string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 1
	}
	n := int(v)
	if n < 1 {
		return 1
	}
	return n
}

// ParseTotal coerces raw text to an amount. Invalid input yields 0.
func ParseTotal(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}

// ToggleTip returns the tip selection after pressing a preset: pressing
// the currently active one clears the tip.
func ToggleTip(current, pressed int) int {
	if current == pressed {
		return 0
	}
	return pressed
}
