// Package window implements a bounded, ordered accumulator of
// token-costed conversation entries. The window enforces a hard
// capacity on total cost and evicts the oldest entries first, so the
// most recent content always survives.
package window

import (
	"iter"
	"sync"

	"github.com/ayush844/ctxwin/utils"
)

// Role identifies the speaker of an entry.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Entry is one accounted unit of conversational content. Entries are
// immutable once created; Seq is assigned by the window in insertion
// order and is never reused, even after eviction.
type Entry struct {
	Role Role   `json:"role"`
	Cost int    `json:"cost"`
	Seq  uint64 `json:"seq"`
}

// AppendResult reports the outcome of a successful Append: the entry
// that was created, the entries evicted to make room (oldest first,
// possibly none), and the total cost retained afterwards.
type AppendResult struct {
	Entry     Entry
	Evicted   []Entry
	TotalCost int
}

// Window holds an ordered sequence of entries whose summed cost never
// exceeds a fixed capacity. Append is the only mutator; it is guarded
// by a mutex so a window may be shared across goroutines.
type Window struct {
	mu        sync.Mutex
	entries   []Entry
	totalCost int
	capacity  int
	nextSeq   uint64
	logger    utils.Logger
}

// New creates a window with the given capacity. A nil logger is
// replaced with a logger that only reports errors.
func New(capacity int, logger utils.Logger) (*Window, error) {
	if capacity <= 0 {
		return nil, NewWindowError(ErrorTypeInvalidCapacity, "capacity must be positive", nil)
	}
	if logger == nil {
		logger = utils.NewLogger(utils.LogLevelError)
	}
	return &Window{
		capacity: capacity,
		logger:   logger,
	}, nil
}

// Append inserts a new entry with the next sequence index, then evicts
// entries from the front until the total cost fits the capacity again.
// If cost alone exceeds the capacity the window is left unchanged and
// an EntryExceedsCapacity error is returned. Negative costs are
// rejected with an InvalidCost error.
func (w *Window) Append(role Role, cost int) (AppendResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if cost < 0 {
		return AppendResult{}, NewWindowError(ErrorTypeInvalidCost, "cost must be non-negative", nil)
	}
	if cost > w.capacity {
		return AppendResult{}, NewWindowError(ErrorTypeEntryExceedsCapacity, "entry cost exceeds window capacity", nil)
	}

	entry := Entry{Role: role, Cost: cost, Seq: w.nextSeq}
	w.nextSeq++
	w.entries = append(w.entries, entry)
	w.totalCost += cost

	evicted := w.trim()
	w.logger.Debug("appended entry",
		"role", role, "cost", cost, "seq", entry.Seq,
		"evicted", len(evicted), "total_cost", w.totalCost)

	return AppendResult{Entry: entry, Evicted: evicted, TotalCost: w.totalCost}, nil
}

// trim removes the oldest entries until the capacity invariant holds.
// Caller must hold w.mu.
func (w *Window) trim() []Entry {
	var evicted []Entry
	for w.totalCost > w.capacity {
		removed := w.entries[0]
		w.entries = w.entries[1:]
		w.totalCost -= removed.Cost
		evicted = append(evicted, removed)
		w.logger.Debug("evicted entry",
			"role", removed.Role, "cost", removed.Cost, "seq", removed.Seq,
			"total_cost", w.totalCost)
	}
	return evicted
}

// TotalCost returns the summed cost of all retained entries.
func (w *Window) TotalCost() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.totalCost
}

// RemainingCapacity returns how much cost the window can still hold
// without evicting.
func (w *Window) RemainingCapacity() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.capacity - w.totalCost
}

// Capacity returns the fixed capacity the window was created with.
func (w *Window) Capacity() int {
	return w.capacity
}

// Len returns the number of retained entries.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// Snapshot returns a copy of the retained entries in ascending
// sequence order. The copy is not affected by later appends.
func (w *Window) Snapshot() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Entry(nil), w.entries...)
}

// Entries returns a restartable iterator over a snapshot of the
// retained entries, taken at call time. Mutating the window after the
// call does not change the produced sequence.
func (w *Window) Entries() iter.Seq[Entry] {
	snapshot := w.Snapshot()
	return func(yield func(Entry) bool) {
		for _, e := range snapshot {
			if !yield(e) {
				return
			}
		}
	}
}

// Clear disposes of all retained entries and resets the total cost.
// Sequence numbering continues from where it left off.
func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = nil
	w.totalCost = 0
	w.logger.Debug("cleared window")
}
