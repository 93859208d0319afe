// Package apitest is an in-memory stand-in for the CFA REST backend. It keeps
// enough of the backend's observable behaviour (versioning, calendar
// generation, tenant tokens) to exercise the client end to end.
package apitest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"cfadesk.org/internal/domain"
)

type user struct {
	id       int64
	email    string
	password string
	tenantID int64
	role     string
}

type dossier struct {
	id          int64
	tenantID    int64
	candidateID int64
	companyID   int64
	versions    []domain.ContractVersion
}

type storedFile struct {
	name string
	data []byte
}

// Call is one request observed by the server.
type Call struct {
	Method        string
	Path          string
	Query         string
	ContentType   string
	Authorization string
	Body          []byte
}

// Server is the fake backend. Zero value is not usable; call New.
type Server struct {
	mu sync.RWMutex

	secret []byte
	ttl    time.Duration
	now    func() time.Time

	users      map[string]*user
	candidates []*domain.Candidate
	civilites  map[int64]string
	cvs        map[int64]storedFile
	companies  []*domain.Company
	dossiers   map[int64]*dossier
	sessions   []*domain.Session
	days       map[int64][]domain.SessionDay
	attendance map[attendanceKey]*domain.Attendance
	invoices   []*domain.Invoice
	revenue    decimal.Decimal
	hoursDone  float64
	nextID     map[string]int64

	failures map[string]int
	calls    []Call

	router chi.Router
	// URL is set once the server is started.
	URL string
	srv *http.Server
}

// Option configures Server.
type Option func(*Server)

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.ttl = d }
}

// WithClock overrides time.Now for issued tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithSecret sets the HS256 signing key.
func WithSecret(secret []byte) Option {
	return func(s *Server) { s.secret = append([]byte(nil), secret...) }
}

// New builds an unstarted server.
func New(opts ...Option) *Server {
	s := &Server{
		secret:     []byte("cfadesk-test-secret"),
		ttl:        30 * time.Minute,
		now:        time.Now,
		users:      make(map[string]*user),
		civilites:  make(map[int64]string),
		cvs:        make(map[int64]storedFile),
		dossiers:   make(map[int64]*dossier),
		days:       make(map[int64][]domain.SessionDay),
		attendance: make(map[attendanceKey]*domain.Attendance),
		nextID:     make(map[string]int64),
		failures:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Start serves on a loopback listener and sets URL.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("apitest: listen: %w", err)
	}
	s.srv = &http.Server{Handler: s.router, ReadHeaderTimeout: 5 * time.Second}
	s.URL = "http://" + ln.Addr().String()
	go func() { _ = s.srv.Serve(ln) }()
	return nil
}

func (s *Server) Close() {
	if s.srv != nil {
		_ = s.srv.Close()
	}
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Group(func(r chi.Router) {
		r.Use(s.injectFailures)
		r.Post("/auth/login", s.handleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Use(s.injectFailures)

		r.Get("/users/me", s.handleMe)

		r.Get("/candidats/", s.handleListCandidates)
		r.Post("/candidats/", s.handleCreateCandidate)
		r.Post("/candidats/upload", s.handleUpload)
		r.Patch("/candidats/{id}/status", s.handleUpdateStatus)

		r.Get("/entreprises/", s.handleListCompanies)
		r.Post("/entreprises/", s.handleCreateCompany)

		r.Get("/contrats/", s.handleListContracts)
		r.Post("/contrats/", s.handleCreateContract)
		r.Get("/contrats/{id}", s.handleGetContract)
		r.Put("/contrats/{id}/avenant", s.handleAmend)
		r.Get("/contrats/{id}/history", s.handleHistory)
		r.Get("/contrats/{id}/calendar", s.handleCalendar)
		r.Get("/contrats/{id}/export-zip", s.handleExport)

		r.Get("/sessions/", s.handleListSessions)
		r.Post("/sessions/", s.handleCreateSession)
		r.Post("/sessions/{id}/generate-calendar", s.handleGenerateCalendar)

		r.Post("/attendance", s.handleAttendance)
		r.Post("/invoices/generate", s.handleGenerateInvoice)

		r.Get("/analytics/dashboard", s.handleDashboard)
		r.Get("/analytics/bpf-preview", s.handleBPF)
	})
	return r
}

// record buffers the body so handlers and Calls both see it.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			ContentType:   r.Header.Get("Content-Type"),
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			unauthorized(w)
			return
		}
		claims := &tokenClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
		if err != nil {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		status, ok := s.failures[failureKey(r.Method, routePattern(r))]
		s.mu.RUnlock()
		if ok {
			writeError(w, status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// routePattern resolves the chi pattern of r before the handler runs.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	if p := rctx.RoutePattern(); p != "" && !strings.HasSuffix(p, "/*") {
		return p
	}
	tctx := chi.NewRouteContext()
	if rctx.Routes != nil && rctx.Routes.Match(tctx, r.Method, r.URL.Path) {
		return tctx.RoutePattern()
	}
	return r.URL.Path
}

// failureKey ignores a trailing slash: chi reports "/sessions/" as "/sessions".
func failureKey(method, pattern string) string {
	if pattern != "/" {
		pattern = strings.TrimSuffix(pattern, "/")
	}
	return method + " " + pattern
}

// Fail makes every request matching method and chi pattern answer status
// until Heal is called, e.g. Fail("PATCH", "/candidats/{id}/status", 500).
func (s *Server) Fail(method, pattern string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[failureKey(method, pattern)] = status
}

func (s *Server) Heal(method, pattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, failureKey(method, pattern))
}

// Calls returns a copy of the requests observed so far.
func (s *Server) Calls() []Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsTo filters Calls by method and path.
func (s *Server) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Server) next(kind string) int64 {
	s.nextID[kind]++
	return s.nextID[kind]
}

// Helpers -----------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, "Could not validate credentials")
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("body required")
		}
		return err
	}
	return nil
}

func validDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}
