package domain

// TokenClaims is the payload of an API bearer token.
// The relay has no user accounts; Subject names the caller for logs.
type TokenClaims struct {
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
