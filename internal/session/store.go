// Package session implements the session lifecycle: opaque identifiers
// mapped to user snapshots with a fixed expiry, persisted in a durable
// backend with an in-process fallback so a database outage never locks
// out a freshly granted session.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"careermatrix/internal/models"
)

// ErrNotFound is returned by Get for unknown and for expired
// identifiers; callers must not distinguish the two.
var ErrNotFound = errors.New("session not found")

type Store interface {
	// Put is an upsert: an existing identifier is overwritten in full.
	Put(ctx context.Context, sess models.Session) error
	// Get filters on expiry at read time; an expired row that has not
	// been swept yet is reported as absent.
	Get(ctx context.Context, id string) (models.Session, error)
	// Delete is idempotent; deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	// SweepExpired removes entries whose expiry is at or before now and
	// returns how many were removed.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

// MemoryStore is the process-local fallback backend. It is not shared
// across server instances.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]models.Session{}}
}

func (m *MemoryStore) Put(ctx context.Context, sess models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (models.Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || sess.Expired(time.Now().UTC()) {
		return models.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, sess := range m.sessions {
		if sess.Expired(now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len is used by tests and the readiness probe.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
