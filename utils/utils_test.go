package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, err := m.GenerateToken("user-1", "alice@example.com")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "alice@example.com" || claims.Subject != "user-1" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Error("expected iat and exp")
	}
}

func TestJWTRejectsBadTokens(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	good, _ := m.GenerateToken("user-1", "alice@example.com")

	expired := NewJWTManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.GenerateToken("user-1", "alice@example.com")

	otherKey, _ := NewJWTManager("other", time.Hour).GenerateToken("user-1", "alice@example.com")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-1"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := map[string]string{
		"expired":     old,
		"wrong key":   otherKey,
		"alg none":    unsigned,
		"garbage":     "not-a-token",
		"tampered":    good[:len(good)-2] + "xx",
		"empty token": "",
	}
	for name, tok := range tests {
		if _, err := m.ValidateToken(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(hash, "secret123") || !strings.HasPrefix(hash, "$2a$10$") {
		t.Errorf("unexpected hash %q", hash)
	}
	if !CheckPassword(hash, "secret123") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "secret124") {
		t.Error("expected wrong password to fail")
	}
}
