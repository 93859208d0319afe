package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"cfadesk.org/internal/obs"
)

type memTokens struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (m *memTokens) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.cleared++
	return nil
}

func newClient(t *testing.T, h http.Handler, tokens TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL}, tokens)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "localhost:8000", "://nope"} {
		if _, err := New(Options{BaseURL: raw}, nil); err == nil {
			t.Fatalf("New(%q) expected error", raw)
		}
	}
}

func TestBearerAttachedWhenPresent(t *testing.T) {
	t.Parallel()
	var got []string
	var mu sync.Mutex
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = append(got, r.Header.Get("Authorization"))
		mu.Unlock()
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing X-Request-ID")
		}
		_, _ = io.WriteString(w, `[]`)
	})
	tokens := &memTokens{token: "abc"}
	c := newClient(t, h, tokens)
	var out []any
	if err := c.GetJSON(context.Background(), "/candidats/", &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	_ = tokens.Clear()
	if err := c.GetJSON(context.Background(), "/candidats/", &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if got[0] != "Bearer abc" || got[1] != "" {
		t.Fatalf("unexpected Authorization headers %q", got)
	}
}

func TestUnauthorizedEvictsToken(t *testing.T) {
	t.Parallel()
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"Could not validate credentials"}`)
	})
	tokens := &memTokens{token: "stale"}
	c := newClient(t, h, tokens)
	err := c.GetJSON(context.Background(), "/contrats/", nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if tok, _ := tokens.Load(); tok != "" || tokens.cleared != 1 {
		t.Fatalf("token not evicted: %q cleared=%d", tok, tokens.cleared)
	}
	if Classify(err) != KindUnauthorized {
		t.Fatalf("Classify = %v", Classify(err))
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Detail() != "Could not validate credentials" {
		t.Fatalf("unexpected error detail: %v", err)
	}
}

func TestNoRetryOnServerError(t *testing.T) {
	t.Parallel()
	var calls int
	var mu sync.Mutex
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	c := newClient(t, h, nil)
	err := c.PostJSON(context.Background(), "/contrats/", map[string]int{"candidat_id": 1}, nil)
	if Classify(err) != KindServer {
		t.Fatalf("Classify = %v, want server", Classify(err))
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("calls = %d, want exactly 1", calls)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"transport", fmt.Errorf("%w: dial", ErrTransport), KindTransport},
		{"unauthorized", &Error{Status: 401}, KindUnauthorized},
		{"not found", &Error{Status: 404}, KindValidation},
		{"unprocessable", fmt.Errorf("wrap: %w", &Error{Status: 422}), KindValidation},
		{"server", &Error{Status: 503}, KindServer},
		{"precondition", fmt.Errorf("%w: pick a candidate", ErrPrecondition), KindPrecondition},
		{"other", errors.New("x"), KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("Classify() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTransportFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()
	c, err := New(Options{BaseURL: base}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = c.GetJSON(context.Background(), "/sessions/", nil)
	if !errors.Is(err, ErrTransport) || Classify(err) != KindTransport {
		t.Fatalf("err = %v, want transport", err)
	}
}

func TestPostFormAndPatchQuery(t *testing.T) {
	t.Parallel()
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
				t.Errorf("content type = %q", ct)
			}
			_ = r.ParseForm()
			_, _ = fmt.Fprintf(w, `{"access_token":%q}`, r.PostForm.Get("username")+":"+r.PostForm.Get("password"))
		case http.MethodPatch:
			_, _ = fmt.Fprintf(w, `{"statut":%q}`, r.URL.Query().Get("status"))
		}
	})
	c := newClient(t, h, nil)

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	form := url.Values{"username": {"admin"}, "password": {"p&ss"}}
	if err := c.PostForm(context.Background(), "/auth/login", form, &tok); err != nil {
		t.Fatalf("PostForm: %v", err)
	}
	if tok.AccessToken != "admin:p&ss" {
		t.Fatalf("form not encoded: %q", tok.AccessToken)
	}

	var cand struct {
		Statut string `json:"statut"`
	}
	if err := c.PatchJSON(context.Background(), "/candidats/4/status?status=PLACE", nil, &cand); err != nil {
		t.Fatalf("PatchJSON: %v", err)
	}
	if cand.Statut != "PLACE" {
		t.Fatalf("statut = %q", cand.Statut)
	}
}

func TestPostMultipart(t *testing.T) {
	t.Parallel()
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)
		_, _ = fmt.Fprintf(w, `{"name":%q,"size":%d}`, hdr.Filename, len(data))
	})
	c := newClient(t, h, nil)
	var out struct {
		Name string `json:"name"`
		Size int    `json:"size"`
	}
	if err := c.PostMultipart(context.Background(), "/candidats/upload", "file", "cv.pdf", strings.NewReader("%PDF-1.4"), &out); err != nil {
		t.Fatalf("PostMultipart: %v", err)
	}
	if out.Name != "cv.pdf" || out.Size != 8 {
		t.Fatalf("unexpected upload echo %+v", out)
	}
}

func TestGetBlob(t *testing.T) {
	t.Parallel()
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="contrat_7.zip"`)
		_, _ = w.Write([]byte("PK\x03\x04"))
	})
	c := newClient(t, h, nil)
	blob, err := c.GetBlob(context.Background(), "/contrats/7/export-zip")
	if err != nil {
		t.Fatalf("GetBlob: %v", err)
	}
	if blob.Filename != "contrat_7.zip" || blob.ContentType != "application/zip" || len(blob.Data) != 4 {
		t.Fatalf("unexpected blob %+v", blob)
	}
}

func TestFailureLogCarriesKind(t *testing.T) {
	logger := obs.Logger()
	orig := logger.Writer()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(orig) })

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"bad salaire"}`, http.StatusUnprocessableEntity)
	})
	c := newClient(t, h, nil)
	if err := c.PutJSON(context.Background(), "/contrats/1/avenant", map[string]int{"salaire": 1}, nil); Classify(err) != KindValidation {
		t.Fatalf("Classify = %v, want validation", Classify(err))
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if entry["msg"] != "api request rejected" || entry["kind"] != "validation" {
		t.Fatalf("unexpected log entry %v", entry)
	}
}
