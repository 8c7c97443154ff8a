package engine

import "fmt"

// HistoryLimit is the number of entries a History keeps.
const HistoryLimit = 20

// Entry is one successful evaluation.
type Entry struct {
	Expr string  `json:"expr"`
	Res  float64 `json:"res"`
}

// History is a newest-first ledger of evaluations capped at HistoryLimit.
// Identical entries are kept as separate positions.
type History struct {
	entries []Entry
}

// Push records e at the front, evicting the oldest entry past the limit.
func (h *History) Push(e Entry) {
	h.entries = append(h.entries, Entry{})
	copy(h.entries[1:], h.entries)
	h.entries[0] = e
	if len(h.entries) > HistoryLimit {
		h.entries = h.entries[:HistoryLimit]
	}
}

// Entries returns a snapshot, newest first.
func (h *History) Entries() []Entry {
	return append([]Entry(nil), h.entries...)
}

// Select returns the entry at index i, 0 being the newest.
func (h *History) Select(i int) (Entry, error) {
	if i < 0 || i >= len(h.entries) {
		return Entry{}, fmt.Errorf("%w: %d of %d", ErrHistoryIndex, i, len(h.entries))
	}
	return h.entries[i], nil
}

func (h *History) Clear() { h.entries = nil }

func (h *History) Len() int { return len(h.entries) }
