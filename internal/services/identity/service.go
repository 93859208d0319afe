package identity

import (
	"context"
	"errors"
	"net/url"
)

const loginPath = "/auth/login"

// API is the transport the service needs.
type API interface {
	GetJSON(ctx context.Context, path string, out any) error
	PostForm(ctx context.Context, path string, form url.Values, out any) error
}

// Service exchanges credentials for a bearer token.
type Service struct {
	api API
}

func New(api API) *Service { return &Service{api: api} }

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Exchange posts username/password form-encoded and returns the access token.
func (s *Service) Exchange(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	var out tokenResponse
	if err := s.api.PostForm(ctx, loginPath, form, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("identity: empty access token")
	}
	return out.AccessToken, nil
}

// Profile is the account behind the current token.
type Profile struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	TenantID int64  `json:"tenant_id"`
	Role     string `json:"role"`
}

// Me returns the profile of the bearer.
func (s *Service) Me(ctx context.Context) (Profile, error) {
	var out Profile
	if err := s.api.GetJSON(ctx, "/users/me", &out); err != nil {
		return Profile{}, err
	}
	return out, nil
}
