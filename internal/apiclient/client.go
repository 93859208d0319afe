package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"cfadesk.org/internal/obs"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 64 << 10
)

// TokenSource yields the persisted bearer token and evicts it on 401.
type TokenSource interface {
	Load() (string, error)
	Clear() error
}

// Options configures Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// RatePerSecond paces outgoing calls when > 0. Calls are delayed, never retried.
	RatePerSecond float64
	Burst         int
	HTTPClient    *http.Client
	UserAgent     string
}

// Client is the single HTTP adapter to the CFA backend. It does not retry.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenSource
	limiter   *rate.Limiter
	userAgent string
}

// New validates the base URL and builds a client.
func New(opts Options, tokens TokenSource) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base url %q", opts.BaseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	c := &Client{
		baseURL:   base,
		http:      hc,
		tokens:    tokens,
		userAgent: opts.UserAgent,
	}
	if c.userAgent == "" {
		c.userAgent = "cfadesk"
	}
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// Do sends one request and returns the response when the status is 2xx.
// Any other status is read, closed and returned as *Error.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		token, err := c.tokens.Load()
		if err != nil {
			obs.Error("token load failed", err, map[string]any{"path": path})
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		obs.ObserveAPICall(method, path, 0, time.Since(start))
		err = fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
		obs.Error("api request failed", err, map[string]any{
			"method":     method,
			"path":       path,
			"kind":       Classify(err).String(),
			"request_id": req.Header.Get("X-Request-ID"),
		})
		return nil, err
	}
	obs.ObserveAPICall(method, path, resp.StatusCode, time.Since(start))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &Error{Method: method, Path: path, Status: resp.StatusCode, Body: string(data)}
	if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
		if err := c.tokens.Clear(); err != nil {
			obs.Error("token eviction failed", err, nil)
		}
	}
	obs.Error("api request rejected", apiErr, map[string]any{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"kind":       Classify(apiErr).String(),
		"request_id": req.Header.Get("X-Request-ID"),
	})
	return nil, apiErr
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	resp, err := c.Do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s %s: %w", resp.Request.Method, resp.Request.URL.Path, err)
	}
	return nil
}

func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.sendJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, in, out)
}

func (c *Client) PutJSON(ctx context.Context, path string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPut, path, in, out)
}

// PatchJSON sends a PATCH; in may be nil when parameters travel in the query.
func (c *Client) PatchJSON(ctx context.Context, path string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPatch, path, in, out)
}

// PostForm sends an application/x-www-form-urlencoded body.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	resp, err := c.Do(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	return decode(resp, out)
}

// PostMultipart uploads one file under field as multipart/form-data.
func (c *Client) PostMultipart(ctx context.Context, path, field, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("multipart: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("multipart: read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("multipart: %w", err)
	}
	resp, err := c.Do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType())
	if err != nil {
		return err
	}
	return decode(resp, out)
}

// Blob is a binary download.
type Blob struct {
	Data        []byte
	Filename    string
	ContentType string
}

// GetBlob downloads a binary body. Filename comes from Content-Disposition when set.
func (c *Client) GetBlob(ctx context.Context, path string) (Blob, error) {
	resp, err := c.Do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return Blob{}, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Blob{}, fmt.Errorf("%w: read %s: %v", ErrTransport, path, err)
	}
	blob := Blob{Data: data, ContentType: resp.Header.Get("Content-Type")}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			blob.Filename = params["filename"]
		}
	}
	return blob, nil
}
