package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	claims := Claims{
		Role:     "admin",
		TenantID: 3,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: sub,
		},
	}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-known-to-client"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

type stubExchanger struct {
	token string
	err   error
	calls int
}

func (s *stubExchanger) Exchange(_ context.Context, _, _ string) (string, error) {
	s.calls++
	return s.token, s.err
}

func TestDecode(t *testing.T) {
	t.Parallel()
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	id, expiry, err := Decode(signToken(t, "admin@cfa.fr", exp))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if id.Subject != "admin@cfa.fr" || id.Role != "admin" || id.TenantID != 3 {
		t.Fatalf("unexpected identity %+v", id)
	}
	if !expiry.Equal(exp) {
		t.Fatalf("expiry = %v, want %v", expiry, exp)
	}

	for _, bad := range []string{"", "abc", "a.b.c", signToken(t, "", exp)} {
		if _, _, err := Decode(bad); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Decode(%q) err = %v, want ErrInvalidToken", bad, err)
		}
	}
}

func TestReduce(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	id := Identity{Subject: "u"}

	cases := []struct {
		name  string
		from  State
		event Event
		want  bool
	}{
		{"login", LoggedOut(), Authenticated{Identity: id, Expiry: now.Add(time.Hour), At: now}, true},
		{"login without exp", LoggedOut(), Authenticated{Identity: id, At: now}, true},
		{"expired token", LoggedOut(), Authenticated{Identity: id, Expiry: now.Add(-time.Second), At: now}, false},
		{"logout", LoggedIn(id, time.Time{}), SignedOut{}, false},
		{"tick before expiry", LoggedIn(id, now.Add(time.Minute)), Tick{At: now}, true},
		{"tick after expiry", LoggedIn(id, now.Add(time.Minute)), Tick{At: now.Add(2 * time.Minute)}, false},
		{"tick logged out", LoggedOut(), Tick{At: now}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Reduce(tc.from, tc.event)
			if got.Authenticated() != tc.want {
				t.Fatalf("Authenticated() = %v, want %v", got.Authenticated(), tc.want)
			}
			if _, ok := got.Identity(); ok != tc.want {
				t.Fatalf("Identity() ok = %v, want %v", ok, tc.want)
			}
		})
	}
}

func TestSessionInitRestoresOrEvicts(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := WithClock(func() time.Time { return now })

	store := NewMemoryStore(signToken(t, "u1", now.Add(time.Hour)))
	s := NewSession(store, nil, clock)
	if st := s.Init(); !st.Authenticated() {
		t.Fatalf("expected restored session")
	}

	expired := NewMemoryStore(signToken(t, "u1", now.Add(-time.Hour)))
	s = NewSession(expired, nil, clock)
	if st := s.Init(); st.Authenticated() {
		t.Fatalf("expired token must not authenticate")
	}
	if tok, _ := expired.Load(); tok != "" {
		t.Fatalf("expired token should be evicted, got %q", tok)
	}

	garbage := NewMemoryStore("garbage")
	s = NewSession(garbage, nil, clock)
	if st := s.Init(); st.Authenticated() {
		t.Fatalf("garbage token must not authenticate")
	}
	if tok, _ := garbage.Load(); tok != "" {
		t.Fatalf("garbage token should be evicted")
	}
}

func TestSessionLoginLogout(t *testing.T) {
	t.Parallel()
	now := time.Now()
	store := NewMemoryStore("")
	ex := &stubExchanger{token: signToken(t, "admin@cfa.fr", now.Add(time.Hour))}
	s := NewSession(store, ex)

	st, err := s.Login(context.Background(), "admin@cfa.fr", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	id, ok := st.Identity()
	if !ok || id.Subject != "admin@cfa.fr" {
		t.Fatalf("unexpected state after login: %+v", id)
	}
	if tok, _ := store.Load(); tok != ex.token {
		t.Fatalf("token not persisted")
	}

	st = s.Logout()
	if st.Authenticated() {
		t.Fatalf("still authenticated after logout")
	}
	if tok, _ := store.Load(); tok != "" {
		t.Fatalf("token not cleared on logout")
	}
}

func TestSessionLoginFailureKeepsState(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore("")
	boom := errors.New("401")
	s := NewSession(store, &stubExchanger{err: boom})
	st, err := s.Login(context.Background(), "x", "y")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if st.Authenticated() {
		t.Fatalf("failed login must not authenticate")
	}

	s = NewSession(store, &stubExchanger{token: "not-a-jwt"})
	if _, err := s.Login(context.Background(), "x", "y"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
	if tok, _ := store.Load(); tok != "" {
		t.Fatalf("undecodable token must not be persisted")
	}
}

func TestRequireNoticesEviction(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore(signToken(t, "u", time.Now().Add(time.Hour)))
	s := NewSession(store, nil)
	s.Init()
	if _, err := s.Require(); err != nil {
		t.Fatalf("Require: %v", err)
	}
	_ = store.Clear()
	if _, err := s.Require(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
	if s.Current().Authenticated() {
		t.Fatalf("session should be logged out after eviction")
	}
}

func TestFileStore(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	fs := NewFileStore(path)
	if tok, err := fs.Load(); err != nil || tok != "" {
		t.Fatalf("Load on missing file = %q, %v", tok, err)
	}
	if err := fs.Save("abc"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if tok, err := fs.Load(); err != nil || tok != "abc" {
		t.Fatalf("Load = %q, %v", tok, err)
	}
	if err := fs.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := fs.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
	if tok, _ := fs.Load(); tok != "" {
		t.Fatalf("expected empty token after clear")
	}
}

func TestStateFromContext(t *testing.T) {
	t.Parallel()
	if StateFromContext(context.Background()).Authenticated() {
		t.Fatalf("empty context should be logged out")
	}
	ctx := ContextWithState(context.Background(), LoggedIn(Identity{Subject: "s"}, time.Time{}))
	id, ok := IdentityFromContext(ctx)
	if !ok || id.Subject != "s" {
		t.Fatalf("unexpected identity %+v", id)
	}
}
