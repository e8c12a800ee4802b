package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
)

func TestNewAdapter(t *testing.T) {
	adapter := NewAdapter("test-secret")
	if adapter == nil {
		t.Fatal("expected non-nil adapter")
	}
	if string(adapter.jwtSecret) != "test-secret" {
		t.Error("expected jwt secret to be set")
	}
}

func TestGenerateToken(t *testing.T) {
	adapter := NewAdapter("test-jwt-secret")

	now := time.Now()
	token, err := adapter.GenerateToken(&domain.TokenClaims{
		Subject:   "relay",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(24 * time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	// JWT tokens have 3 parts separated by dots
	if got := strings.Count(token, "."); got != 2 {
		t.Errorf("expected JWT with 2 dots (3 parts), got %d dots", got)
	}
}

func TestIssueToken_RoundTrip(t *testing.T) {
	adapter := NewAdapter("test-jwt-secret")
	fixed := time.Unix(1_700_000_000, 0)
	adapter.now = func() time.Time { return fixed }

	token, err := adapter.IssueToken("ui", time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	claims, err := adapter.ParseToken(token)
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}
	if claims.Subject != "ui" {
		t.Errorf("expected subject ui, got %q", claims.Subject)
	}
	if claims.IssuedAt != fixed.Unix() {
		t.Errorf("expected iat %d, got %d", fixed.Unix(), claims.IssuedAt)
	}
	if claims.ExpiresAt != fixed.Add(time.Hour).Unix() {
		t.Errorf("expected exp %d, got %d", fixed.Add(time.Hour).Unix(), claims.ExpiresAt)
	}
}

func TestIssueToken_RejectsNonPositiveTTL(t *testing.T) {
	adapter := NewAdapter("secret")
	if _, err := adapter.IssueToken("ui", 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParseToken_ExpiredToken(t *testing.T) {
	adapter := NewAdapter("test-jwt-secret")

	pastTime := time.Now().Add(-2 * time.Hour)
	token, _ := adapter.GenerateToken(&domain.TokenClaims{
		Subject:   "ui",
		IssuedAt:  pastTime.Add(-24 * time.Hour).Unix(),
		ExpiresAt: pastTime.Unix(),
	})

	_, err := adapter.ParseToken(token)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_MissingExpiry(t *testing.T) {
	adapter := NewAdapter("test-jwt-secret")

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "ui"}).
		SignedString([]byte("test-jwt-secret"))
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	if _, err := adapter.ParseToken(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	adapter1 := NewAdapter("secret-1")
	adapter2 := NewAdapter("secret-2")

	token, _ := adapter1.IssueToken("ui", time.Hour)

	_, err := adapter2.ParseToken(token)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized when parsing with wrong secret, got %v", err)
	}
}

func TestParseToken_WrongAlgorithm(t *testing.T) {
	adapter := NewAdapter("secret")

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "ui",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	if _, err := adapter.ParseToken(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestParseToken_MalformedToken(t *testing.T) {
	adapter := NewAdapter("test-secret")

	testCases := []string{
		"",
		"not-a-jwt",
		"invalid.token.here",
		"only.two.parts.missing",
		"header.payload", // missing signature
	}

	for _, tc := range testCases {
		_, err := adapter.ParseToken(tc)
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized for malformed token %q, got %v", tc, err)
		}
	}
}
