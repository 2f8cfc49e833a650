package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/shortlink/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[shortener.Code]*shortener.Entry
}

// NewMemoryStore creates a new in-memory link store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[shortener.Code]*shortener.Entry),
	}
}

func (m *MemoryStore) Insert(_ context.Context, entry *shortener.Entry, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.entries[entry.Code]; ok && existing.Live(now) {
		return shortener.ErrShortcodeInUse
	}

	m.entries[entry.Code] = entry.Clone()

	return nil
}

func (m *MemoryStore) GetByCode(_ context.Context, code shortener.Code) (*shortener.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return entry.Clone(), nil
}

func (m *MemoryStore) EvictExpired(_ context.Context, code shortener.Code, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.entries[code]; ok && entry.Expired(now) {
		delete(m.entries, code)
	}

	return nil
}

func (m *MemoryStore) Sweep(_ context.Context, now time.Time) ([]shortener.Code, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []shortener.Code

	for code, entry := range m.entries {
		if entry.Expired(now) {
			delete(m.entries, code)
			removed = append(removed, code)
		}
	}

	return removed, nil
}

func (m *MemoryStore) Stats(_ context.Context, now time.Time) (shortener.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := shortener.Stats{Total: int64(len(m.entries))}

	for _, entry := range m.entries {
		if entry.Live(now) {
			stats.Active++
		}
	}

	return stats, nil
}

// Compile-time check.
var _ shortener.Repository = (*MemoryStore)(nil)
