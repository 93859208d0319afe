package auth

import "time"

// State is the immutable session state: logged out, or logged in with an
// identity and an expiry. Transitions go through Reduce.
type State struct {
	loggedIn bool
	identity Identity
	expiry   time.Time
}

// LoggedOut is the zero state.
func LoggedOut() State { return State{} }

// LoggedIn builds an authenticated state. A zero expiry never expires.
func LoggedIn(id Identity, expiry time.Time) State {
	return State{loggedIn: true, identity: id, expiry: expiry}
}

func (s State) Authenticated() bool { return s.loggedIn }

// Identity returns the logged-in identity, if any.
func (s State) Identity() (Identity, bool) {
	if !s.loggedIn {
		return Identity{}, false
	}
	return s.identity, true
}

func (s State) Expiry() time.Time { return s.expiry }

// ExpiredAt reports whether a logged-in state is past its expiry at now.
func (s State) ExpiredAt(now time.Time) bool {
	return s.loggedIn && !s.expiry.IsZero() && !now.Before(s.expiry)
}

// Event is a session transition.
type Event interface{ sessionEvent() }

// Authenticated is raised when a token was decoded, at load or after login.
type Authenticated struct {
	Identity Identity
	Expiry   time.Time
	At       time.Time
}

// SignedOut is raised by logout, decode failure or token eviction.
type SignedOut struct{}

// Tick re-evaluates expiry at the given instant.
type Tick struct{ At time.Time }

func (Authenticated) sessionEvent() {}
func (SignedOut) sessionEvent()     {}
func (Tick) sessionEvent()          {}

// Reduce is the pure transition function of the session.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case Authenticated:
		next := LoggedIn(ev.Identity, ev.Expiry)
		if next.ExpiredAt(ev.At) {
			return LoggedOut()
		}
		return next
	case SignedOut:
		return LoggedOut()
	case Tick:
		if s.ExpiredAt(ev.At) {
			return LoggedOut()
		}
		return s
	default:
		return s
	}
}
