package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"careermatrix/internal/auth"
	"careermatrix/internal/models"
)

func TestMemoryEmailUniquenessIsCaseInsensitive(t *testing.T) {
	st := NewMemory()
	u := models.User{ID: "u1", Email: "alice@example.com", Name: "Alice", Role: models.RoleUser, Active: true, CreatedAt: time.Now().UTC()}
	if err := st.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := models.User{ID: "u2", Email: "Alice@Example.COM", Name: "Other", Role: models.RoleUser, Active: true}
	if err := st.CreateUser(context.Background(), dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	got, err := st.GetUserByEmail(context.Background(), "ALICE@example.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ID != "u1" {
		t.Fatalf("wrong user %q", got.ID)
	}
}

func TestMemoryConsumeResetTokenIsSingleUse(t *testing.T) {
	st := NewMemory()
	u := seedUser(t, st)
	raw := seedToken(t, st, u.ID, time.Now().UTC().Add(time.Hour))

	if _, err := st.ConsumeResetTokenAndSetPassword(context.Background(), auth.HashToken(raw), "newhash", time.Now().UTC()); err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if mustGetUser(t, st, u.ID).PasswordHash != "newhash" {
		t.Fatal("password hash not updated")
	}
	if _, err := st.ConsumeResetTokenAndSetPassword(context.Background(), auth.HashToken(raw), "other", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on reuse, got %v", err)
	}
}

func TestDemoSeedIsLoginReady(t *testing.T) {
	st := NewDemo()

	for _, email := range []string{"admin@demo.local", "manager@demo.local", "user@demo.local"} {
		u, err := st.GetUserByEmail(context.Background(), email)
		if err != nil {
			t.Fatalf("demo user %s: %v", email, err)
		}
		if !u.Active {
			t.Fatalf("demo user %s inactive", email)
		}
		if !auth.VerifyPassword(u.PasswordHash, DemoPassword) {
			t.Fatalf("demo password rejected for %s", email)
		}
	}

	deps, err := st.ListDepartments(context.Background())
	if err != nil || len(deps) == 0 {
		t.Fatalf("demo departments: %v (%d)", err, len(deps))
	}
	roles, err := st.ListJobRoles(context.Background(), deps[0].ID)
	if err != nil || len(roles) == 0 {
		t.Fatalf("demo roles: %v (%d)", err, len(roles))
	}
	reqs, err := st.ListRoleRequirements(context.Background(), roles[0].ID)
	if err != nil || len(reqs) == 0 {
		t.Fatalf("demo requirements: %v (%d)", err, len(reqs))
	}
}
