// Package apitesting wires the fake backend into tests.
package apitesting

import (
	"testing"

	"cfadesk.org/internal/apiclient"
	"cfadesk.org/internal/apitest"
	"cfadesk.org/internal/auth"
)

// NewServer starts a fake backend for the duration of the test.
func NewServer(t testing.TB, opts ...apitest.Option) *apitest.Server {
	t.Helper()
	s := apitest.New(opts...)
	if err := s.Start(); err != nil {
		t.Fatalf("start fake backend: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

// Login returns a client authenticated as email, registering the user if needed.
func Login(t testing.TB, s *apitest.Server, email string) (*apiclient.Client, *auth.MemoryStore) {
	t.Helper()
	client, store, err := s.Client(email)
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return client, store
}
