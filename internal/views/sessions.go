package views

import (
	"context"
	"fmt"
	"sync"

	"cfadesk.org/internal/domain"
	"cfadesk.org/internal/i18n"
)

// SessionAPI is what the session screen needs from the pedagogy service.
type SessionAPI interface {
	List(ctx context.Context) ([]domain.Session, error)
	Create(ctx context.Context, in domain.SessionCreate) (domain.Session, error)
	GenerateCalendar(ctx context.Context, sessionID int64, days domain.WeekdaySet) (domain.Message, error)
}

// SessionManager lists sessions and drives calendar generation. The weekday
// selection is forwarded as-is; an empty one is the server's call.
type SessionManager struct {
	api    SessionAPI
	notify Notifier
	lang   string

	mu       sync.RWMutex
	sessions []domain.Session
	selected int64
	days     domain.WeekdaySet
}

func NewSessionManager(api SessionAPI, n Notifier, lang string) *SessionManager {
	return &SessionManager{api: api, notify: notifierOrDiscard(n), lang: lang}
}

func (m *SessionManager) Load(ctx context.Context) error {
	list, err := m.api.List(ctx)
	if err != nil {
		logFailure("session list failed", err, nil)
		return err
	}
	m.mu.Lock()
	m.sessions = list
	m.mu.Unlock()
	return nil
}

func (m *SessionManager) Sessions() []domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Session(nil), m.sessions...)
}

// Create adds a session and reloads the list.
func (m *SessionManager) Create(ctx context.Context, in domain.SessionCreate) (domain.Session, error) {
	s, err := m.api.Create(ctx, in)
	if err != nil {
		logFailure("session create failed", err, map[string]any{"nom": in.Nom})
		m.notify.Notify(Alert, i18n.T(m.lang, "session_create_failed"))
		return domain.Session{}, err
	}
	if err := m.Load(ctx); err != nil {
		return s, err
	}
	return s, nil
}

// Select opens the generate form for a session, with Monday preselected.
func (m *SessionManager) Select(sessionID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = sessionID
	m.days = domain.WeekdaySet(0).Toggle(domain.Monday)
}

func (m *SessionManager) Selected() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selected
}

// ToggleDay adds the weekday to the selection, or removes it if present.
func (m *SessionManager) ToggleDay(d domain.Weekday) error {
	if !d.Valid() {
		return fmt.Errorf("%w: %d", domain.ErrUnknownWeekday, int(d))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days = m.days.Toggle(d)
	return nil
}

func (m *SessionManager) Selection() domain.WeekdaySet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.days
}

// Generate asks the server to materialise the selected weekdays of the
// selected session and shows its answer.
func (m *SessionManager) Generate(ctx context.Context) (string, error) {
	m.mu.RLock()
	id, days := m.selected, m.days
	m.mu.RUnlock()
	if id == 0 {
		m.notify.Notify(Alert, i18n.T(m.lang, "session_required"))
		return "", fmt.Errorf("%w: no session selected", ErrPreconditionFailed)
	}
	res, err := m.api.GenerateCalendar(ctx, id, days)
	if err != nil {
		logFailure("calendar generation failed", err, map[string]any{"session_id": id})
		m.notify.Notify(Alert, i18n.T(m.lang, "calendar_generate_failed"))
		return "", err
	}
	m.notify.Notify(Info, res.Message)
	return res.Message, nil
}
