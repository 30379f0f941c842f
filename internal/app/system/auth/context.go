package auth

import (
	"context"
	"net/http"

	"github.com/dalemusser/distrohub/internal/app/system/identity"
)

type ctxKey string

const currentSessionKey ctxKey = "currentSession"

// CurrentSession returns the session the auth middleware loaded into the
// request, and whether there was one.
func CurrentSession(r *http.Request) (*identity.Session, bool) {
	s, ok := r.Context().Value(currentSessionKey).(*identity.Session)
	return s, ok && s != nil
}

// WithSession returns a shallow copy of r carrying s.
func WithSession(r *http.Request, s *identity.Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentSessionKey, s))
}
