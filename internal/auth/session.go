package auth

import (
	"context"
	"strings"
)

// Session is the per-request authentication context handed to views.
// A zero Session means the visitor is not logged in.
type Session struct {
	ID    string
	Token string
}

// Authenticated reports whether the session carries a bearer token.
func (s Session) Authenticated() bool {
	return strings.TrimSpace(s.Token) != ""
}

// BearerHeader returns the Authorization header value for the session token.
func (s Session) BearerHeader() string {
	return "Bearer " + s.Token
}

type sessionKey struct{}

// WithSession stores the session in context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext retrieves the session from context. Missing sessions are zero.
func SessionFromContext(ctx context.Context) Session {
	s, _ := ctx.Value(sessionKey{}).(Session)
	return s
}
