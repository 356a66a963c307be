package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"careermatrix/internal/models"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	st, _ := newTestRedisStore(t)

	sess := futureSession("sess-1")
	if err := st.Put(context.Background(), sess); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := st.Get(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.User.Email != sess.User.Email {
		t.Fatalf("snapshot did not survive the round trip: %+v", got.User)
	}

	if err := st.Delete(context.Background(), "sess-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.Get(context.Background(), "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRedisStoreExpiredSessionIsNeverStored(t *testing.T) {
	st, mr := newTestRedisStore(t)

	sess := futureSession("sess-old")
	sess.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	if err := st.Put(context.Background(), sess); err != nil {
		t.Fatalf("put: %v", err)
	}
	if mr.Exists(redisKeyPrefix + "sess-old") {
		t.Fatal("expired session was written")
	}
	if _, err := st.Get(context.Background(), "sess-old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	st, mr := newTestRedisStore(t)

	sess := futureSession("sess-1")
	sess.ExpiresAt = time.Now().UTC().Add(time.Hour)
	if err := st.Put(context.Background(), sess); err != nil {
		t.Fatalf("put: %v", err)
	}
	mr.FastForward(2 * time.Hour)
	if _, err := st.Get(context.Background(), "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestRedisStoreManagerIntegration(t *testing.T) {
	st, _ := newTestRedisStore(t)
	mgr := NewManager(st, time.Hour, time.Hour)

	id, err := mgr.Create(context.Background(), models.User{ID: "u1", Email: "alice@example.com", Role: models.RoleUser, Active: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := mgr.Verify(context.Background(), id); !ok {
		t.Fatal("session did not verify through redis backend")
	}
}
