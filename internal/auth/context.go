package auth

import "context"

type stateContextKey struct{}

// ContextWithState attaches the session state to the context.
func ContextWithState(ctx context.Context, s State) context.Context {
	return context.WithValue(ctx, stateContextKey{}, s)
}

// StateFromContext returns the session state attached to ctx, or LoggedOut.
func StateFromContext(ctx context.Context) State {
	if ctx == nil {
		return LoggedOut()
	}
	s, ok := ctx.Value(stateContextKey{}).(State)
	if !ok {
		return LoggedOut()
	}
	return s
}

// IdentityFromContext extracts the logged-in identity from context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	return StateFromContext(ctx).Identity()
}
