// Package gateway is the local development front door: it relays /api/* to
// the CFA backend with the prefix stripped and the Host rewritten, and serves
// health, readiness and metrics endpoints.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"cfadesk.org/internal/audit"
	"cfadesk.org/internal/auth"
	"cfadesk.org/internal/config"
	"cfadesk.org/internal/obs"
)

// Gateway is the HTTP layer.
type Gateway struct {
	cfg      config.Gateway
	upstream *url.URL
	version  string
	proxy    *httputil.ReverseProxy
	probe    *http.Client
	router   chi.Router
}

// New validates the upstream URL and builds the router.
func New(cfg config.Gateway, version string) (*Gateway, error) {
	upstream, err := url.Parse(cfg.Upstream)
	if err != nil {
		return nil, fmt.Errorf("gateway upstream: %w", err)
	}
	if (upstream.Scheme != "http" && upstream.Scheme != "https") || upstream.Host == "" {
		return nil, fmt.Errorf("gateway upstream must be an http(s) URL, got %q", cfg.Upstream)
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "/api"
	}
	cfg.Prefix = "/" + strings.Trim(cfg.Prefix, "/")

	g := &Gateway{
		cfg:      cfg,
		upstream: upstream,
		version:  version,
		probe:    &http.Client{Timeout: 2 * time.Second},
	}
	g.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(upstream)
			pr.SetXForwarded()
			if rid := RequestIDFromContext(pr.In.Context()); rid != "" {
				pr.Out.Header.Set(requestIDHeader, rid)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			obs.Error("upstream request failed", err, map[string]any{
				"request_id": RequestIDFromContext(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
			})
			writeError(w, r, http.StatusBadGateway, "upstream unavailable")
		},
	}
	g.router = g.routes()
	return g, nil
}

func (g *Gateway) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID, LoggingJSON, SecurityHeaders, CORS(g.cfg.AllowedOrigins))
	if g.cfg.RatePerSec > 0 {
		r.Use(NewRateLimiter(g.cfg.RatePerSec, g.cfg.RateBurst).Middleware)
	}
	r.Use(MaxBodyBytes(g.cfg.MaxBodyBytes))

	r.Get("/healthz", g.Healthz)
	r.Get("/readyz", g.Ready)
	r.Get("/v1/info", g.Info)
	r.Handle("/metrics", obs.Handler())

	relay := http.StripPrefix(g.cfg.Prefix, g.audited(g.proxy))
	r.Handle(g.cfg.Prefix, relay)
	r.Handle(g.cfg.Prefix+"/*", relay)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not found")
	})
	return r
}

// Handler returns the instrumented router.
func (g *Gateway) Handler() http.Handler {
	return obs.Instrument(g.router)
}

// audited emits an audit line for every mutating call relayed upstream,
// attributed to the bearer subject when the token decodes.
func (g *Gateway) audited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			next.ServeHTTP(w, r)
			return
		}
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		ctx := r.Context()
		if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
			if id, exp, err := auth.Decode(token); err == nil {
				ctx = auth.ContextWithState(ctx, auth.LoggedIn(id, exp))
			}
		}
		_ = audit.LogEvent(ctx, "proxy."+strings.ToLower(r.Method), map[string]any{
			"path":   r.URL.Path,
			"status": sw.code,
		})
	})
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func (g *Gateway) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "cfadesk-gateway",
		"version": g.version,
	})
}

// Ready reports whether the upstream answers HTTP at all; any status counts.
func (g *Gateway) Ready(w http.ResponseWriter, r *http.Request) {
	if err := g.checkUpstream(r.Context()); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (g *Gateway) checkUpstream(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.upstream.String(), nil)
	if err != nil {
		return err
	}
	resp, err := g.probe.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return fmt.Errorf("upstream %s unreachable", g.upstream.Host)
		}
		return err
	}
	_ = resp.Body.Close()
	return nil
}

func (g *Gateway) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":     "cfadesk-gateway",
		"time":     time.Now().UTC().Format(time.RFC3339),
		"version":  g.version,
		"upstream": g.upstream.String(),
		"prefix":   g.cfg.Prefix,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{"error": msg}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}
