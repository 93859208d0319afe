package auth

import "errors"

var (
	// ErrInvalidToken indicates the token could not be decoded into an identity.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrTokenExpired indicates the token's exp claim is in the past.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrNotAuthenticated is returned by the route guard when no identity is present.
	ErrNotAuthenticated = errors.New("auth: not authenticated")
)
