package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"careermatrix/internal/auth"
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
	return NewSQL(sqdb, "sqlite"), sqdb
}

func seedUser(t *testing.T, st Store) models.User {
	t.Helper()
	u := models.User{
		ID:           "11111111-1111-1111-1111-111111111111",
		Email:        "alice@example.com",
		Name:         "Alice",
		Role:         models.RoleUser,
		PasswordHash: "$2a$10$placeholderplaceholderplaceholderpla",
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := st.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedToken(t *testing.T, st Store, userID string, expiresAt time.Time) (raw string) {
	t.Helper()
	raw, hash, err := auth.NewOpaqueToken()
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	err = st.CreatePasswordResetToken(context.Background(), models.PasswordResetToken{
		ID:        "22222222-2222-2222-2222-222222222222",
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	return raw
}

func TestConsumeResetTokenIsSingleUse(t *testing.T) {
	st, _ := newTestSQLStore(t)
	u := seedUser(t, st)
	raw := seedToken(t, st, u.ID, time.Now().UTC().Add(time.Hour))

	newHash, err := auth.HashPassword("brand-new-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	userID, err := st.ConsumeResetTokenAndSetPassword(context.Background(), auth.HashToken(raw), newHash, time.Now().UTC())
	if err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if userID != u.ID {
		t.Fatalf("consumed for wrong user %q", userID)
	}

	got, err := st.GetUserByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if got.PasswordHash != newHash {
		t.Fatal("password hash was not updated")
	}

	// Second use of the same token must fail.
	if _, err := st.ConsumeResetTokenAndSetPassword(context.Background(), auth.HashToken(raw), newHash, time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on reuse, got %v", err)
	}
}

func TestConsumeResetTokenExpired(t *testing.T) {
	st, _ := newTestSQLStore(t)
	u := seedUser(t, st)
	raw := seedToken(t, st, u.ID, time.Now().UTC().Add(-time.Minute))

	before := mustGetUser(t, st, u.ID).PasswordHash
	if _, err := st.ConsumeResetTokenAndSetPassword(context.Background(), auth.HashToken(raw), "newhash", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired token, got %v", err)
	}
	if mustGetUser(t, st, u.ID).PasswordHash != before {
		t.Fatal("expired token changed the password")
	}
}

func TestConsumeResetTokenUnknown(t *testing.T) {
	st, _ := newTestSQLStore(t)
	seedUser(t, st)
	if _, err := st.ConsumeResetTokenAndSetPassword(context.Background(), auth.HashToken("no-such-token"), "newhash", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown token, got %v", err)
	}
}

func mustGetUser(t *testing.T, st Store, id string) models.User {
	t.Helper()
	u, err := st.GetUserByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	return u
}
