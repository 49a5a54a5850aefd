package calculator

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one committed calculation.
type Entry struct {
	ID        string
	People    int
	Total     float64
	Tip       float64
	PerPerson float64
	CreatedAt time.Time
}

// Stats are the aggregate figures over the current history. They are
// recomputed from the live entries on every call, never cached.
type Stats struct {
	Count            int
	AveragePerPerson float64
	TipTotal         float64
}

// History is the in-memory, user-curated list of committed calculations,
// newest first. It lives only as long as the calculator screen; nothing
// here touches the backend.
type History struct {
	entries []Entry
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Commit appends an entry built from the calculation, with a fresh ID
// and timestamp, and returns it.
func (h *History) Commit(c Calculation) Entry {
	entry := Entry{
		ID:        uuid.New().String(),
		People:    c.People,
		Total:     c.Total,
		Tip:       c.TipAmount,
		PerPerson: c.PerPerson,
		CreatedAt: time.Now(),
	}
	h.entries = append([]Entry{entry}, h.entries...)
	return entry
}

// Remove deletes exactly one entry by ID. Removing an absent ID is a
// no-op; the return value reports whether anything was removed.
func (h *History) Remove(id string) bool {
	for i, e := range h.entries {
		if e.ID == id {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the entire history.
func (h *History) Clear() {
	h.entries = nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the entries, newest first.
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Stats computes the aggregate figures. An empty history yields zeros.
func (h *History) Stats() Stats {
	s := Stats{Count: len(h.entries)}
	if s.Count == 0 {
		return s
	}
	var perPersonSum float64
	for _, e := range h.entries {
		perPersonSum += e.PerPerson
		s.TipTotal += e.Tip
	}
	s.AveragePerPerson = perPersonSum / float64(s.Count)
	return s
}
