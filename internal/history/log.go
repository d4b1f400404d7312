package history

import (
	"github.com/jonathan/hireflow/internal/types"
)

// DefaultCapacity is the maximum number of entries kept in the log.
const DefaultCapacity = 20

// Log is an insertion-ordered, capacity-bounded sequence of entries.
// The oldest entry sits at index 0.
type Log struct {
	entries  []types.HistoryEntry
	capacity int
}

// NewLog wraps entries in a log of the given capacity, evicting the oldest
// entries if there are already too many.
func NewLog(entries []types.HistoryEntry, capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l := &Log{entries: entries, capacity: capacity}
	l.evict()
	return l
}

// Push appends an entry and returns the entries evicted to stay within capacity.
func (l *Log) Push(entry types.HistoryEntry) []types.HistoryEntry {
	l.entries = append(l.entries, entry)
	return l.evict()
}

func (l *Log) evict() []types.HistoryEntry {
	over := len(l.entries) - l.capacity
	if over <= 0 {
		return nil
	}
	evicted := append([]types.HistoryEntry(nil), l.entries[:over]...)
	l.entries = append(l.entries[:0:0], l.entries[over:]...)
	return evicted
}

// Entries returns the entries oldest first.
func (l *Log) Entries() []types.HistoryEntry {
	if l.entries == nil {
		return []types.HistoryEntry{}
	}
	return l.entries
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Capacity returns the maximum number of entries.
func (l *Log) Capacity() int {
	return l.capacity
}
