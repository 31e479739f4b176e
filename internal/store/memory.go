// internal/store/memory.go
//
// In-memory Store implementation. Used for tests and for running without a
// database; state is lost on restart. Optimistic concurrency mirrors the
// SQLite implementation: mutation functions run against a private copy and
// commits are version-checked, so racing Updates retry instead of
// interleaving.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/signullgame/server/internal/game"
)

type memory struct {
	mu    sync.RWMutex
	rooms map[string]*game.Room
	hub   *hub
}

// NewMemory constructs an in-memory Store.
func NewMemory() Store {
	return &memory{rooms: make(map[string]*game.Room), hub: newHub()}
}

func (m *memory) Create(ctx context.Context, r *game.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[r.Code]; ok {
		return ErrExists
	}
	r.Version = 1
	r.UpdatedAt = commitStamp(time.Time{})
	m.rooms[r.Code] = r.Clone()
	return nil
}

func (m *memory) Get(ctx context.Context, code string) (*game.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[code]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

func (m *memory) Update(ctx context.Context, code string, fn func(*game.Room) error) (*game.Room, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur, err := m.Get(ctx, code)
		if err != nil {
			return nil, err
		}
		next := cur.Clone()
		if err := fn(next); err != nil {
			return nil, err
		}

		m.mu.Lock()
		stored, ok := m.rooms[code]
		if !ok {
			m.mu.Unlock()
			return nil, ErrNotFound
		}
		if stored.Version != cur.Version {
			m.mu.Unlock()
			continue // lost the race, reload and retry
		}
		next.Version = stored.Version + 1
		next.UpdatedAt = commitStamp(stored.UpdatedAt)
		m.rooms[code] = next.Clone()
		m.mu.Unlock()

		m.hub.publish(next)
		return next, nil
	}
	return nil, ErrConflict
}

func (m *memory) Delete(ctx context.Context, code string) error {
	m.mu.Lock()
	_, ok := m.rooms[code]
	delete(m.rooms, code)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	m.hub.dropRoom(code)
	return nil
}

func (m *memory) Subscribe(code string) (<-chan *game.Room, func()) {
	return m.hub.subscribe(code)
}

func (m *memory) PurgeStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	var stale []string
	m.mu.Lock()
	for code, r := range m.rooms {
		if r.UpdatedAt.Before(cutoff) {
			stale = append(stale, code)
			delete(m.rooms, code)
		}
	}
	m.mu.Unlock()
	for _, code := range stale {
		m.hub.dropRoom(code)
	}
	return len(stale), nil
}
