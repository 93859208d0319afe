package apitest

import (
	"fmt"

	"cfadesk.org/internal/apiclient"
	"cfadesk.org/internal/auth"
)

// Client registers a user if needed and returns a client holding its token.
func (s *Server) Client(email string) (*apiclient.Client, *auth.MemoryStore, error) {
	s.mu.RLock()
	_, known := s.users[email]
	s.mu.RUnlock()
	if !known {
		s.AddUser(email, "pw", 1, "admin")
	}
	token, err := s.IssueToken(email)
	if err != nil {
		return nil, nil, fmt.Errorf("issue token for %s: %w", email, err)
	}
	store := auth.NewMemoryStore(token)
	client, err := apiclient.New(apiclient.Options{BaseURL: s.URL}, store)
	if err != nil {
		return nil, nil, err
	}
	return client, store, nil
}
