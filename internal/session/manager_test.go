package session

import (
	"context"
	"testing"
	"time"

	"careermatrix/internal/models"
)

func testUser() models.User {
	return models.User{
		ID:     "11111111-1111-1111-1111-111111111111",
		Email:  "alice@example.com",
		Name:   "Alice",
		Role:   models.RoleUser,
		Active: true,
	}
}

func TestManagerCreateVerifyDelete(t *testing.T) {
	mgr := NewManager(NewMemoryStore(), 7*24*time.Hour, time.Hour)

	id, err := mgr.Create(context.Background(), testUser())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("empty session id")
	}

	u, ok := mgr.Verify(context.Background(), id)
	if !ok {
		t.Fatal("fresh session did not verify")
	}
	if u.Email != "alice@example.com" || u.Role != models.RoleUser {
		t.Fatalf("wrong snapshot: %+v", u)
	}

	if err := mgr.Delete(context.Background(), id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := mgr.Verify(context.Background(), id); ok {
		t.Fatal("deleted session verified")
	}
	// Deleting again is fine.
	if err := mgr.Delete(context.Background(), id); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if err := mgr.Delete(context.Background(), ""); err != nil {
		t.Fatalf("empty id delete: %v", err)
	}
}

func TestManagerVerifyUnknownAndEmpty(t *testing.T) {
	mgr := NewManager(NewMemoryStore(), time.Hour, time.Hour)
	if _, ok := mgr.Verify(context.Background(), ""); ok {
		t.Fatal("empty id verified")
	}
	if _, ok := mgr.Verify(context.Background(), "no-such-session"); ok {
		t.Fatal("unknown id verified")
	}
}

func TestManagerExpiryIsAbsolute(t *testing.T) {
	st := NewMemoryStore()
	mgr := NewManager(st, 7*24*time.Hour, time.Hour)
	// The store checks expiry against wall time, so the fake clock only
	// moves forward from the real now.
	base := time.Now().UTC()
	now := base
	mgr.SetClock(func() time.Time { return now })

	id, err := mgr.Create(context.Background(), testUser())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Verifying does not slide the deadline.
	now = base.Add(6 * 24 * time.Hour)
	if _, ok := mgr.Verify(context.Background(), id); !ok {
		t.Fatal("session expired early")
	}
	now = base.Add(7*24*time.Hour + time.Minute)
	if _, ok := mgr.Verify(context.Background(), id); ok {
		t.Fatal("session verified past its absolute lifetime")
	}
}

func TestManagerSweepRemovesExpiredOnly(t *testing.T) {
	st := NewMemoryStore()
	mgr := NewManager(st, time.Hour, time.Hour)
	base := time.Now().UTC()
	now := base
	mgr.SetClock(func() time.Time { return now })

	oldID, err := mgr.Create(context.Background(), testUser())
	if err != nil {
		t.Fatalf("create old: %v", err)
	}
	now = base.Add(50 * time.Minute)
	freshID, err := mgr.Create(context.Background(), testUser())
	if err != nil {
		t.Fatalf("create fresh: %v", err)
	}

	now = base.Add(90 * time.Minute)
	mgr.SweepNow(context.Background())

	if st.Len() != 1 {
		t.Fatalf("expected one surviving session, got %d", st.Len())
	}
	if _, ok := mgr.Verify(context.Background(), oldID); ok {
		t.Fatal("swept session verified")
	}
	if _, ok := mgr.Verify(context.Background(), freshID); !ok {
		t.Fatal("fresh session was swept")
	}
}
