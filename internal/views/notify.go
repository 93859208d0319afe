// Package views holds the view-models of the console: each one owns the state
// of a screen, talks to the services and reports outcomes through a Notifier.
package views

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"cfadesk.org/internal/apiclient"
	"cfadesk.org/internal/obs"
)

var (
	// ErrPreconditionFailed is returned when a client-side check stopped a submit.
	ErrPreconditionFailed = fmt.Errorf("views: %w", apiclient.ErrPrecondition)
	ErrCandidateNotFound  = errors.New("views: candidate not on the board")
	ErrNoActiveVersion    = errors.New("views: dossier has no active version")
	ErrNotLoaded          = errors.New("views: view not loaded")
)

// Level is the severity of a notice.
type Level int

const (
	Info Level = iota
	Alert
)

func (l Level) String() string {
	if l == Alert {
		return "alert"
	}
	return "info"
}

// Notifier shows a blocking message to the operator.
type Notifier interface {
	Notify(level Level, msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Level, string)

func (f NotifierFunc) Notify(level Level, msg string) { f(level, msg) }

// Notice is one message kept by Recorder.
type Notice struct {
	Level Level
	Text  string
}

// Recorder keeps every notice in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Level: level, Text: msg})
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Last returns the most recent notice, if any.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// WriterNotifier prints info to Out and alerts to Err.
type WriterNotifier struct {
	Out io.Writer
	Err io.Writer
}

func (w WriterNotifier) Notify(level Level, msg string) {
	dst := w.Out
	if level == Alert && w.Err != nil {
		dst = w.Err
	}
	if dst == nil {
		return
	}
	_, _ = fmt.Fprintln(dst, msg)
}

func notifierOrDiscard(n Notifier) Notifier {
	if n == nil {
		return NotifierFunc(func(Level, string) {})
	}
	return n
}

// logFailure writes an error line tagged with the failure kind the view
// reacted to.
func logFailure(msg string, err error, fields map[string]any) {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["kind"] = apiclient.Classify(err).String()
	obs.Error(msg, err, out)
}
