package apitest

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type tokenClaims struct {
	Role     string `json:"role"`
	TenantID int64  `json:"tenant_id"`
	jwt.RegisteredClaims
}

type claimsKey struct{}

func withClaims(ctx context.Context, c *tokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func claimsFrom(ctx context.Context) *tokenClaims {
	c, _ := ctx.Value(claimsKey{}).(*tokenClaims)
	if c == nil {
		return &tokenClaims{}
	}
	return c
}

// AddUser registers a login. The token subject is the user id, as the backend does.
func (s *Server) AddUser(email, password string, tenantID int64, role string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next("user")
	s.users[email] = &user{id: id, email: email, password: password, tenantID: tenantID, role: role}
	return id
}

// IssueToken signs a token for a registered user.
func (s *Server) IssueToken(email string) (string, error) {
	s.mu.RLock()
	u, ok := s.users[email]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("apitest: unknown user %q", email)
	}
	return s.sign(u, s.now().Add(s.ttl))
}

// IssueExpiredToken signs a token whose exp is already past.
func (s *Server) IssueExpiredToken(email string) (string, error) {
	s.mu.RLock()
	u, ok := s.users[email]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("apitest: unknown user %q", email)
	}
	return s.sign(u, s.now().Add(-time.Minute))
}

func (s *Server) sign(u *user, exp time.Time) (string, error) {
	claims := tokenClaims{
		Role:     u.role,
		TenantID: u.tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.id, 10),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
