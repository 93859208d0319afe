package views

import (
	"context"
	"strings"

	"cfadesk.org/internal/auth"
	"cfadesk.org/internal/i18n"
)

// Authenticator is the login half of auth.Session.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (auth.State, error)
}

// LoginView shows one generic message for any failure: the cause is never
// revealed to the operator.
type LoginView struct {
	auth   Authenticator
	notify Notifier
	lang   string
}

func NewLoginView(a Authenticator, n Notifier, lang string) *LoginView {
	return &LoginView{auth: a, notify: notifierOrDiscard(n), lang: lang}
}

func (l *LoginView) Submit(ctx context.Context, username, password string) (auth.State, error) {
	st, err := l.auth.Login(ctx, strings.TrimSpace(username), password)
	if err != nil {
		logFailure("login failed", err, nil)
		l.notify.Notify(Alert, i18n.T(l.lang, "login_failed"))
		return st, err
	}
	return st, nil
}
