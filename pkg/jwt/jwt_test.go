package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/emanuel-malungo/jomorais/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: 15 * time.Minute,
	})
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken(7, "secretaria@jomorais.ao", "admin")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}

	if claims.UserID != 7 {
		t.Errorf("expected UserID=7, got %d", claims.UserID)
	}
	if claims.Perfil != "admin" {
		t.Errorf("expected Perfil=admin, got %s", claims.Perfil)
	}
	if claims.Issuer != issuer {
		t.Errorf("expected Issuer=%s, got %s", issuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("JTI must not be empty")
	}
}

func TestParseToken_Expired(t *testing.T) {
	m := newTestManager()
	issued := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, err := m.GenerateAccessToken(1, "a@b.ao", "admin")
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	m.now = func() time.Time { return issued.Add(16 * time.Minute) }
	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m := newTestManager()
	token, _ := m.GenerateAccessToken(1, "a@b.ao", "admin")

	other := NewManager(&config.AuthConfig{JWTSecret: "another-secret-key-0123456789", AccessTokenTTL: time.Minute})
	if _, err := other.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	m := newTestManager()
	if _, err := m.ParseToken("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestRemaining(t *testing.T) {
	m := newTestManager()
	issued := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, _ := m.GenerateAccessToken(1, "a@b.ao", "admin")
	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}

	m.now = func() time.Time { return issued.Add(5 * time.Minute) }
	if got := m.Remaining(claims); got != 10*time.Minute {
		t.Errorf("expected 10m remaining, got %v", got)
	}
}
