package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized matches any 401 answer. The persisted token has already
	// been evicted when a caller sees it.
	ErrUnauthorized = errors.New("apiclient: unauthorized")
	// ErrTransport wraps failures to reach the server or read its answer.
	ErrTransport = errors.New("apiclient: transport failure")
	// ErrPrecondition marks client-side checks that stopped a request from being sent.
	ErrPrecondition = errors.New("precondition failed")
)

// Error is a non-2xx answer from the API.
type Error struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	if d := e.Detail(); d != "" {
		msg += ": " + d
	}
	return msg
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 answers.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Detail extracts the backend's {"detail": "..."} message when present.
func (e *Error) Detail() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return ""
	}
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	return string(payload.Detail)
}

// Kind is the failure taxonomy the views react to.
type Kind int

const (
	KindNone Kind = iota
	KindTransport
	KindUnauthorized
	KindValidation
	KindServer
	KindPrecondition
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindPrecondition:
		return "precondition"
	default:
		return "unknown"
	}
}

// Classify maps an error to its Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, ErrPrecondition) {
		return KindPrecondition
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusUnauthorized:
			return KindUnauthorized
		case apiErr.Status >= 500:
			return KindServer
		case apiErr.Status >= 400:
			return KindValidation
		}
		return KindUnknown
	}
	if errors.Is(err, ErrUnauthorized) {
		return KindUnauthorized
	}
	if errors.Is(err, ErrTransport) {
		return KindTransport
	}
	return KindUnknown
}
