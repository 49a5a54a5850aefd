package report

import (
	"math"
	"testing"

	"github.com/mkowal/splitmate/internal/models"
)

func intPtr(v int) *int { return &v }

func TestTotal(t *testing.T) {
	tests := []struct {
		name     string
		expenses []models.Expense
		want     float64
	}{
		{
			name: "sums decimal strings",
			expenses: []models.Expense{
				{Amount: "10.50"},
				{Amount: "4.25"},
			},
			want: 14.75,
		},
		{
			name: "malformed amount contributes zero",
			expenses: []models.Expense{
				{Amount: "abc"},
				{Amount: "7"},
				{Amount: ""},
			},
			want: 7,
		},
		{
			name:     "empty list",
			expenses: nil,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Total(tt.expenses); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Total = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestByPayer(t *testing.T) {
	expenses := []models.Expense{
		{Amount: "10", PersonPaying: intPtr(1)},
		{Amount: "5", PersonPaying: intPtr(2)},
		{Amount: "7", PersonPaying: intPtr(1)},
	}

	got := ByPayer(expenses)
	want := []PayerTotal{{Payer: "1", Total: 17}, {Payer: "2", Total: 5}}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Payer != want[i].Payer || math.Abs(got[i].Total-want[i].Total) > 1e-9 {
			t.Errorf("bucket %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestByPayerUnknownBucket(t *testing.T) {
	expenses := []models.Expense{
		{Amount: "3"},
		{Amount: "2", PersonPaying: intPtr(9)},
		{Amount: "bad"},
	}

	got := ByPayer(expenses)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Payer != UnknownPayer {
		t.Errorf("first bucket = %s, want %s", got[0].Payer, UnknownPayer)
	}
	if math.Abs(got[0].Total-3) > 1e-9 {
		t.Errorf("unknown total = %v, want 3 (malformed amount counts as zero)", got[0].Total)
	}
	if got[1].Payer != "9" || math.Abs(got[1].Total-2) > 1e-9 {
		t.Errorf("second bucket = %+v, want payer 9 total 2", got[1])
	}
}
