package handlers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignTokenRoundTrip(t *testing.T) {
	const secret = "test-secret"
	signed, err := signToken("64b5f0c2a1b2c3d4e5f60718", secret, time.Minute)
	if err != nil {
		t.Fatalf("signToken returned error: %v", err)
	}

	token, err := jwt.ParseWithClaims(signed, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("expected valid token, got err=%v", err)
	}

	claims := token.Claims.(*jwt.RegisteredClaims)
	if claims.Subject != "64b5f0c2a1b2c3d4e5f60718" {
		t.Fatalf("unexpected subject: %q", claims.Subject)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatal("expected exp and iat claims to be set")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Minute {
		t.Fatalf("expected 1m lifetime, got %v", got)
	}
}

func TestSignTokenRejectsWrongSecret(t *testing.T) {
	signed, err := signToken("64b5f0c2a1b2c3d4e5f60718", "right-secret", time.Minute)
	if err != nil {
		t.Fatalf("signToken returned error: %v", err)
	}

	token, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	})
	if err == nil && token.Valid {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestHashTokenIsDeterministic(t *testing.T) {
	a := hashToken("reset-token")
	b := hashToken("reset-token")
	if a != b {
		t.Fatal("expected identical hashes for identical input")
	}
	if len(a) != 64 {
		t.Fatalf("expected sha256 hex length 64, got %d", len(a))
	}
	if hashToken("other") == a {
		t.Fatal("expected different hashes for different input")
	}
}

func TestGenerateResetTokenLengthAndUniqueness(t *testing.T) {
	a, err := generateResetToken()
	if err != nil {
		t.Fatalf("generateResetToken returned error: %v", err)
	}
	b, err := generateResetToken()
	if err != nil {
		t.Fatalf("generateResetToken returned error: %v", err)
	}
	if len(a) != 64 || len(b) != 64 {
		t.Fatalf("expected 64 hex chars, got %d and %d", len(a), len(b))
	}
	if a == b {
		t.Fatal("expected distinct tokens")
	}
}
