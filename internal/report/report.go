// Package report derives display figures from expense lists already in
// memory. Aggregation is tolerant: a record with a malformed amount
// contributes zero instead of failing the whole report.
package report

import (
	"strconv"

	"github.com/mkowal/splitmate/internal/models"
)

// UnknownPayer is the bucket for expenses without a payer identifier.
const UnknownPayer = "unknown"

// PayerTotal is one payer's summed spending.
type PayerTotal struct {
	// Payer is the numeric user ID as text, or UnknownPayer.
	Payer string

	// Total is the sum of this payer's expense amounts.
	Total float64
}

// Total sums the amounts of all expenses.
func Total(expenses []models.Expense) float64 {
	var sum float64
	for i := range expenses {
		sum += expenses[i].AmountValue()
	}
	return sum
}

// ByPayer groups expenses by paying person, summing per payer, in
// first-seen order of distinct payers.
func ByPayer(expenses []models.Expense) []PayerTotal {
	var order []string
	totals := make(map[string]float64)

	for i := range expenses {
		key := UnknownPayer
		if expenses[i].PersonPaying != nil {
			key = strconv.Itoa(*expenses[i].PersonPaying)
		}
		if _, seen := totals[key]; !seen {
			order = append(order, key)
		}
		totals[key] += expenses[i].AmountValue()
	}

	out := make([]PayerTotal, 0, len(order))
	for _, key := range order {
		out = append(out, PayerTotal{Payer: key, Total: totals[key]})
	}
	return out
}
