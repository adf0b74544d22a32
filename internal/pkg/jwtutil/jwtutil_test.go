package jwtutil

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", 5*time.Minute)

	token, expiresAt, err := m.Issue(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(expiresAt) <= 4*time.Minute {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}

	userID, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user 42, got %d", userID)
	}
}

func TestDefaultTTLIsFifteenMinutes(t *testing.T) {
	m := NewManager("test-secret", 0)
	_, expiresAt, err := m.Issue(1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	remaining := time.Until(expiresAt)
	if remaining < 14*time.Minute || remaining > 15*time.Minute {
		t.Fatalf("expected ~15m ttl, got %v", remaining)
	}
}

func TestVerifyZeroTTLIsExpired(t *testing.T) {
	m := NewManager("test-secret", time.Minute)
	token, _, err := m.IssueWithTTL(7, 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyRejectsWrongSignature(t *testing.T) {
	other := NewManager("other-secret", time.Minute)
	token, _, err := other.Issue(7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	m := NewManager("test-secret", time.Minute)
	if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyMissingAndMalformed(t *testing.T) {
	m := NewManager("test-secret", time.Minute)
	if _, err := m.Verify("  "); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := m.Verify("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsTokenWithoutUserID(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	m := NewManager("test-secret", time.Minute)
	if _, err := m.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID: 3,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	m := NewManager("test-secret", time.Minute)
	if _, err := m.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
