// Package kv provides string-keyed blob stores used as persistence surfaces.
// Every surface stores opaque strings under named keys; there are no
// transactions and no locking across processes.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Surface is a string-keyed get/set store with an explicit lifecycle.
type Surface interface {
	// Get returns the value stored under key. found is false when nothing is stored.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the surface.
	Close() error
}

// ErrClosed is returned by surfaces used after Close.
var ErrClosed = errors.New("kv: surface is closed")

// Memory is an in-process surface. It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
	closed bool
}

// NewMemory creates an empty in-memory surface.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.values[key] = value
	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.values, key)
	return nil
}

// Close marks the surface closed. Stored values are dropped.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.values = nil
	return nil
}

// validateKey rejects keys that cannot be stored safely by every backend.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("kv: key is empty")
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("kv: invalid key %q", key)
	}
	return nil
}
