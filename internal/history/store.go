// Package history keeps a bounded, persisted log of successfully generated documents.
//
// The whole log is stored as one JSON array under a single key of a
// persistence surface and is read, modified and written back as a unit.
// Appends from separate processes sharing a surface race; the last writer wins.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/jonathan/hireflow/internal/kv"
	"github.com/jonathan/hireflow/internal/schemas"
	"github.com/jonathan/hireflow/internal/types"
)

// DefaultKey is the surface key holding the serialized log.
const DefaultKey = "hireflow_history"

// ErrEntryNotFound is returned by Get for an unknown identifier.
var ErrEntryNotFound = errors.New("history entry not found")

// Surface is the string-keyed persistence the store is backed by.
type Surface = kv.Surface

// Options configures a Store.
type Options struct {
	Key      string
	Capacity int
}

// Store is the history log backed by a Surface.
type Store struct {
	surface  Surface
	key      string
	capacity int
	mu       sync.Mutex // serializes read-modify-write within this process
}

// NewStore creates a store over an already opened surface.
func NewStore(surface Surface, opts *Options) *Store {
	s := &Store{
		surface:  surface,
		key:      DefaultKey,
		capacity: DefaultCapacity,
	}
	if opts != nil {
		if opts.Key != "" {
			s.key = opts.Key
		}
		if opts.Capacity > 0 {
			s.capacity = opts.Capacity
		}
	}
	return s
}

// Capacity returns the maximum number of entries kept.
func (s *Store) Capacity() int {
	return s.capacity
}

// Close closes the underlying surface.
func (s *Store) Close() error {
	return s.surface.Close()
}

// Append adds entry to the persisted log, evicting the oldest entry past
// capacity. Failures are logged and absorbed; the return value reports
// whether the entry was persisted.
func (s *Store) Append(ctx context.Context, entry types.HistoryEntry) bool {
	if err := entry.Validate(); err != nil {
		log.Printf("[history] refusing invalid entry %q: %v", entry.ID, err)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := NewLog(s.load(ctx), s.capacity)
	for _, evicted := range l.Push(entry) {
		log.Printf("[history] evicted %s (%s)", evicted.ID, evicted.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	}

	data, err := json.Marshal(l.Entries())
	if err != nil {
		log.Printf("[history] failed to encode log: %v", err)
		return false
	}
	if err := s.surface.Set(ctx, s.key, string(data)); err != nil {
		log.Printf("[history] failed to persist log: %v", err)
		return false
	}
	return true
}

// Clear removes the persisted log. Unlike Append, failures are returned.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.surface.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// List returns every entry, most recently created first.
func (s *Store) List(ctx context.Context) []types.HistoryEntry {
	entries := s.load(ctx)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries
}

// Get returns the entry with the given identifier.
func (s *Store) Get(ctx context.Context, id string) (types.HistoryEntry, error) {
	for _, e := range s.load(ctx) {
		if e.ID == id {
			return e, nil
		}
	}
	return types.HistoryEntry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
}

// load reads the persisted log. A missing, unreadable or corrupt value is an empty log.
func (s *Store) load(ctx context.Context) []types.HistoryEntry {
	raw, found, err := s.surface.Get(ctx, s.key)
	if err != nil {
		log.Printf("[history] failed to read log: %v", err)
		return []types.HistoryEntry{}
	}
	if !found || raw == "" {
		return []types.HistoryEntry{}
	}

	if err := schemas.ValidateHistoryLog([]byte(raw)); err != nil {
		log.Printf("[history] discarding corrupt log: %v", err)
		return []types.HistoryEntry{}
	}

	var entries []types.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		log.Printf("[history] discarding unreadable log: %v", err)
		return []types.HistoryEntry{}
	}
	return entries
}
