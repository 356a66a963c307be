package session

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"careermatrix/internal/db"
	"careermatrix/internal/models"
)

func newTestSQLStore(t *testing.T) (*SQLStore, *sql.DB) {
	t.Helper()
	sqdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "app.db"), 1, 1, time.Minute)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqdb.Close() })
	if err := db.ApplyMigrationFile(sqdb, filepath.Join("..", "..", "migrations", "001_init.sql")); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	return NewSQLStore(sqdb, "sqlite"), sqdb
}

func futureSession(id string) models.Session {
	now := time.Now().UTC()
	return models.Session{
		ID:        id,
		UserID:    "u1",
		User:      models.User{ID: "u1", Email: "alice@example.com", Role: models.RoleManager, Active: true},
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
}

func TestSQLStorePutGetDelete(t *testing.T) {
	st, _ := newTestSQLStore(t)

	sess := futureSession("sess-1")
	if err := st.Put(context.Background(), sess); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := st.Get(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.User.Email != "alice@example.com" || got.User.Role != models.RoleManager {
		t.Fatalf("snapshot did not survive the round trip: %+v", got.User)
	}

	if err := st.Delete(context.Background(), "sess-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.Get(context.Background(), "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	// Unknown id deletes cleanly.
	if err := st.Delete(context.Background(), "sess-1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestSQLStorePutIsUpsert(t *testing.T) {
	st, _ := newTestSQLStore(t)

	sess := futureSession("sess-1")
	if err := st.Put(context.Background(), sess); err != nil {
		t.Fatalf("first put: %v", err)
	}
	sess.User.Role = models.RoleAdmin
	sess.ExpiresAt = sess.ExpiresAt.Add(time.Hour)
	if err := st.Put(context.Background(), sess); err != nil {
		t.Fatalf("second put: %v", err)
	}

	got, err := st.Get(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.User.Role != models.RoleAdmin {
		t.Fatalf("second put did not overwrite, role=%s", got.User.Role)
	}
}

func TestSQLStoreGetFiltersExpired(t *testing.T) {
	st, sqdb := newTestSQLStore(t)

	sess := futureSession("sess-old")
	sess.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	if err := st.Put(context.Background(), sess); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := st.Get(context.Background(), "sess-old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired session, got %v", err)
	}
	// The row is still there until the sweeper runs.
	var count int
	if err := sqdb.QueryRow(`SELECT COUNT(1) FROM sessions`).Scan(&count); err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected the expired row to persist, got %d rows", count)
	}
}

func TestSQLStoreSweepExpired(t *testing.T) {
	st, _ := newTestSQLStore(t)
	now := time.Now().UTC()

	old := futureSession("sess-old")
	old.ExpiresAt = now.Add(-time.Minute)
	fresh := futureSession("sess-fresh")
	for _, s := range []models.Session{old, fresh} {
		if err := st.Put(context.Background(), s); err != nil {
			t.Fatalf("put %s: %v", s.ID, err)
		}
	}

	removed, err := st.SweepExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, err := st.Get(context.Background(), "sess-fresh"); err != nil {
		t.Fatalf("fresh session gone after sweep: %v", err)
	}
}
