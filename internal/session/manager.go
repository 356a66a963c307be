package session

import (
	"context"
	"log"
	"sync"
	"time"

	"careermatrix/internal/auth"
	"careermatrix/internal/models"
)

// Manager owns session creation, verification, deletion and the
// periodic expiry sweep. The sweeper goroutine is started explicitly
// and stopped via Close.
type Manager struct {
	store    Store
	lifetime time.Duration
	sweep    time.Duration
	now      func() time.Time

	once sync.Once
	done chan struct{}
	wg   sync.WaitGroup
}

func NewManager(store Store, lifetime, sweepInterval time.Duration) *Manager {
	return &Manager{
		store:    store,
		lifetime: lifetime,
		sweep:    sweepInterval,
		now:      func() time.Time { return time.Now().UTC() },
		done:     make(chan struct{}),
	}
}

// SetClock substitutes the time source; tests use it to age sessions
// without sleeping.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// Create stores a new session for user and returns its identifier. The
// caller places the identifier into the cookie.
func (m *Manager) Create(ctx context.Context, user models.User) (string, error) {
	id, err := auth.NewSessionID()
	if err != nil {
		return "", err
	}
	now := m.now()
	sess := models.Session{
		ID:        id,
		UserID:    user.ID,
		User:      user,
		ExpiresAt: now.Add(m.lifetime),
		CreatedAt: now,
	}
	if err := m.store.Put(ctx, sess); err != nil {
		return "", err
	}
	return id, nil
}

// Verify resolves id to the user snapshot embedded at login. A missing,
// unknown, or expired id all yield ok=false; none of them is an error.
func (m *Manager) Verify(ctx context.Context, id string) (models.User, bool) {
	if id == "" {
		return models.User{}, false
	}
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return models.User{}, false
	}
	if sess.Expired(m.now()) {
		return models.User{}, false
	}
	return sess.User, true
}

// Delete removes id from all backends. Deleting an unknown id succeeds.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return m.store.Delete(ctx, id)
}

// StartSweeper launches the hourly expiry sweep for the lifetime of the
// process. Safe to call once; Close stops it.
func (m *Manager) StartSweeper() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.sweep)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.SweepNow(context.Background())
			case <-m.done:
				return
			}
		}
	}()
}

// SweepNow runs one sweep pass; exposed so tests and shutdown hooks can
// trigger it without waiting for the ticker.
func (m *Manager) SweepNow(ctx context.Context) {
	removed, err := m.store.SweepExpired(ctx, m.now())
	if err != nil {
		log.Printf("session_sweep_failed err=%q", err.Error())
		return
	}
	if removed > 0 {
		log.Printf("session_sweep removed=%d", removed)
	}
}

func (m *Manager) Close() {
	m.once.Do(func() { close(m.done) })
	m.wg.Wait()
}
