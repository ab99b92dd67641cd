package auth

import (
	"errors"
	"testing"
	"time"

	"teamdesk/internal/config"
)

func testManager(t *testing.T, secret string) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   "teamdesk",
		JWTAudience: "teamdesk-api",
		SessionTTL:  time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	m := testManager(t, "secret")

	now := time.Unix(1700000000, 0).UTC()
	tok, err := m.Issue(now, 42, "moderator", 3)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tok == "" {
		t.Fatalf("expected token string")
	}

	claims, err := m.Verify(tok, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "moderator" || claims.TeamID != 3 {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyExpired(t *testing.T) {
	m := testManager(t, "secret")

	now := time.Unix(1700000000, 0).UTC()
	tok, err := m.Issue(now, 1, "user", 1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Past expiry plus the clock skew leeway.
	_, err = m.Verify(tok, now.Add(time.Hour+time.Minute))
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	m := testManager(t, "secret")
	other := testManager(t, "another-secret")

	now := time.Unix(1700000000, 0).UTC()
	tok, err := m.Issue(now, 1, "user", 1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = other.Verify(tok, now.Add(time.Minute))
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	m := testManager(t, "secret")

	_, err := m.Verify("not-a-token", time.Now())
	if !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestVerifyRejectsEmptySubject(t *testing.T) {
	m := testManager(t, "secret")

	now := time.Unix(1700000000, 0).UTC()
	tok, err := m.Issue(now, 0, "user", 1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(tok, now.Add(time.Minute)); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for zero subject, got %v", err)
	}
}
