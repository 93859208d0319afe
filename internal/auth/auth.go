package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims issued by the CFA backend.
type Claims struct {
	Role     string `json:"role,omitempty"`
	TenantID int64  `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the logged-in user as derived from the token.
type Identity struct {
	Subject  string
	Role     string
	TenantID int64
}

// Decode reads the identity and expiry from a bearer token without a server
// round-trip. The signature is not verified: the client never holds the
// signing key and the backend re-validates every request. A zero expiry means
// the token carries no exp claim.
func Decode(token string) (Identity, time.Time, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, time.Time{}, ErrInvalidToken
	}
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return Identity{}, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, time.Time{}, fmt.Errorf("%w: subject missing", ErrInvalidToken)
	}
	var expiry time.Time
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time.UTC()
	}
	return Identity{
		Subject:  claims.Subject,
		Role:     strings.TrimSpace(claims.Role),
		TenantID: claims.TenantID,
	}, expiry, nil
}
