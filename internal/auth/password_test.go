package auth

import (
	"strings"
	"testing"
	"time"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter22-hunter22")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", hash)
	}
	if !VerifyPassword(hash, "hunter22-hunter22") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "hunter22-hunter23") {
		t.Fatal("wrong password accepted")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "anything") {
		t.Fatal("malformed hash must never verify")
	}
	if VerifyPassword("", "anything") {
		t.Fatal("empty hash must never verify")
	}
}

func TestBurnVerifyAlwaysFails(t *testing.T) {
	for _, pw := range []string{"", "anything", "burn"} {
		if BurnVerify(pw) {
			t.Fatalf("BurnVerify(%q) must report false", pw)
		}
	}
}

// A rejected unknown email must not answer orders of magnitude faster
// than a rejected wrong password, or login becomes a timing oracle for
// account existence.
func TestBurnVerifyCostsLikeRealComparison(t *testing.T) {
	hash, err := HashPassword("hunter22-hunter22")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	start := time.Now()
	VerifyPassword(hash, "hunter22-hunter23")
	mismatch := time.Since(start)

	start = time.Now()
	BurnVerify("hunter22-hunter23")
	burn := time.Since(start)

	if burn*10 < mismatch {
		t.Fatalf("burn path too cheap: burn=%v mismatch=%v", burn, mismatch)
	}
}

func TestNewSessionIDIsUniqueAndOpaque(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 64; i++ {
		id, err := NewSessionID()
		if err != nil {
			t.Fatalf("new session id: %v", err)
		}
		if len(id) < 40 {
			t.Fatalf("session id too short: %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate session id %q", id)
		}
		seen[id] = true
	}
}

func TestOpaqueTokenHashRoundTrip(t *testing.T) {
	raw, hash, err := NewOpaqueToken()
	if err != nil {
		t.Fatalf("new opaque token: %v", err)
	}
	if raw == "" || hash == "" || raw == hash {
		t.Fatalf("bad token pair raw=%q hash=%q", raw, hash)
	}
	if HashToken(raw) != hash {
		t.Fatal("HashToken disagrees with NewOpaqueToken")
	}
	if len(hash) != 64 {
		t.Fatalf("expected sha256 hex hash, got length %d", len(hash))
	}
}
