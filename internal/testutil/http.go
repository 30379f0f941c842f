package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/distrohub/internal/app/system/auth"
	"github.com/dalemusser/distrohub/internal/app/system/identity"
	"go.uber.org/zap"
)

// TestSessionKey is a 32+ char cookie key for tests.
const TestSessionKey = "test-session-key-must-be-32-chars-long"

// NewSessionManager returns a SessionManager over p that verifies tokens
// with TestJWTSecret.
func NewSessionManager(t testing.TB, p identity.Provider) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(auth.Config{
		Key:       TestSessionKey,
		Name:      "test-session",
		MaxAge:    24 * time.Hour,
		JWTSecret: TestJWTSecret,
	}, p, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

// SessionCookie stores s through sm and returns the cookie it wrote.
func SessionCookie(t testing.TB, sm *auth.SessionManager, s *identity.Session) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := sm.SaveSession(rec, req, s); err != nil {
		t.Fatalf("save session: %v", err)
	}
	if c := FindCookie(rec.Result(), sm.Name()); c != nil {
		return c
	}
	t.Fatalf("no %q cookie written", sm.Name())
	return nil
}

// FindCookie returns the named cookie set on res, or nil.
func FindCookie(res *http.Response, name string) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewFormRequest creates a url-encoded form request.
func NewFormRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// NewSignedInRequest creates a request carrying a session cookie for s.
func NewSignedInRequest(t testing.TB, sm *auth.SessionManager, method, target string, s *identity.Session) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	req.AddCookie(SessionCookie(t, sm, s))
	return req
}

// WithSession puts s on the request context, bypassing the cookie.
func WithSession(r *http.Request, s *identity.Session) *http.Request {
	return auth.WithSession(r, s)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertRedirect checks for a redirect to the expected location.
func (r *ResponseRecorder) AssertRedirect(t interface{ Errorf(string, ...any) }, expectedLocation string) {
	if r.Code != http.StatusSeeOther && r.Code != http.StatusFound && r.Code != http.StatusMovedPermanently {
		t.Errorf("expected redirect status, got %d", r.Code)
	}
	location := r.Header().Get("Location")
	if location != expectedLocation {
		t.Errorf("redirect location: got %q, want %q", location, expectedLocation)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// SessionCleared reports whether the response expired the named cookie.
func (r *ResponseRecorder) SessionCleared(name string) bool {
	c := FindCookie(r.Result(), name)
	return c != nil && c.MaxAge < 0
}
