package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

// A database outage during Put must not lose the session: the write
// lands in memory and subsequent reads find it there.
func TestFallbackSurvivesDurableOutage(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = mockDB.Close() })

	down := errors.New("connection refused")
	mock.ExpectExec("UPDATE sessions").WillReturnError(down)
	mock.ExpectQuery("SELECT").WillReturnError(down)
	mock.ExpectExec("DELETE FROM sessions").WillReturnError(down)

	fb := NewFallbackStore(NewSQLStore(mockDB, "sqlite"), NewMemoryStore(), 100*time.Millisecond)

	sess := futureSession("sess-1")
	if err := fb.Put(context.Background(), sess); err != nil {
		t.Fatalf("put during outage: %v", err)
	}
	got, err := fb.Get(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("get during outage: %v", err)
	}
	if got.User.Email != sess.User.Email {
		t.Fatalf("wrong session from memory fallback: %+v", got.User)
	}
	if err := fb.Delete(context.Background(), "sess-1"); err != nil {
		t.Fatalf("delete during outage: %v", err)
	}
	if _, err := fb.Get(context.Background(), "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

// A clean durable miss still consults memory: a session written during
// an outage stays usable after the database recovers empty.
func TestFallbackGetConsultsMemoryOnDurableMiss(t *testing.T) {
	mem := NewMemoryStore()
	sess := futureSession("sess-mem")
	if err := mem.Put(context.Background(), sess); err != nil {
		t.Fatalf("seed memory: %v", err)
	}

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = mockDB.Close() })
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "user_snapshot", "expires_at", "created_at"}))

	fb := NewFallbackStore(NewSQLStore(mockDB, "sqlite"), mem, 100*time.Millisecond)
	got, err := fb.Get(context.Background(), "sess-mem")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "sess-mem" {
		t.Fatalf("got wrong session %q", got.ID)
	}
}

func TestFallbackNilDurableUsesMemoryOnly(t *testing.T) {
	fb := NewFallbackStore(nil, NewMemoryStore(), time.Second)
	sess := futureSession("sess-1")
	if err := fb.Put(context.Background(), sess); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := fb.Get(context.Background(), "sess-1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	removed, err := fb.SweepExpired(context.Background(), sess.ExpiresAt.Add(time.Minute))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
}
