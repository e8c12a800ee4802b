package driven

import "github.com/custodia-labs/checkprioritizer/internal/core/domain"

// TokenVerifier signs and verifies API bearer tokens.
type TokenVerifier interface {
	GenerateToken(claims *domain.TokenClaims) (string, error)
	// ParseToken returns domain.ErrTokenExpired or domain.ErrUnauthorized on failure
	ParseToken(token string) (*domain.TokenClaims, error)
}
