package session

import (
	"context"
	"errors"
	"log"
	"time"

	"careermatrix/internal/models"
)

// FallbackStore tries the durable backend first and degrades to the
// process-local memory store when the durable backend errors or times
// out. A database outage must not lock users out of a freshly granted
// session.
type FallbackStore struct {
	durable Store
	memory  *MemoryStore
	timeout time.Duration
}

// NewFallbackStore composes durable and memory. A nil durable store
// (demo mode) means every operation goes straight to memory.
func NewFallbackStore(durable Store, memory *MemoryStore, timeout time.Duration) *FallbackStore {
	if memory == nil {
		memory = NewMemoryStore()
	}
	return &FallbackStore{durable: durable, memory: memory, timeout: timeout}
}

func (f *FallbackStore) durableCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, f.timeout)
}

func (f *FallbackStore) Put(ctx context.Context, sess models.Session) error {
	if f.durable != nil {
		dctx, cancel := f.durableCtx(ctx)
		err := f.durable.Put(dctx, sess)
		cancel()
		if err == nil {
			return nil
		}
		log.Printf("session_fallback op=put session_id=%s err=%q", sess.ID, err.Error())
	}
	return f.memory.Put(ctx, sess)
}

func (f *FallbackStore) Get(ctx context.Context, id string) (models.Session, error) {
	if f.durable != nil {
		dctx, cancel := f.durableCtx(ctx)
		sess, err := f.durable.Get(dctx, id)
		cancel()
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, ErrNotFound) {
			log.Printf("session_fallback op=get session_id=%s err=%q", id, err.Error())
		}
		// A clean durable miss still consults memory: the session may
		// have been written there during an outage.
	}
	return f.memory.Get(ctx, id)
}

func (f *FallbackStore) Delete(ctx context.Context, id string) error {
	if f.durable != nil {
		dctx, cancel := f.durableCtx(ctx)
		if err := f.durable.Delete(dctx, id); err != nil {
			log.Printf("session_fallback op=delete session_id=%s err=%q", id, err.Error())
		}
		cancel()
	}
	return f.memory.Delete(ctx, id)
}

func (f *FallbackStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	if f.durable != nil {
		dctx, cancel := f.durableCtx(ctx)
		n, err := f.durable.SweepExpired(dctx, now)
		cancel()
		if err != nil {
			log.Printf("session_sweep_failed backend=durable err=%q", err.Error())
		} else {
			removed += n
		}
	}
	n, _ := f.memory.SweepExpired(ctx, now)
	return removed + n, nil
}
