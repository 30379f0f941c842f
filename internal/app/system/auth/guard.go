package auth

import (
	"net/http"

	"github.com/dalemusser/distrohub/internal/app/system/authz"
)

// Page guards read the session independently of RoleRouter.

// RequireSession sends visitors without a session to the sign-in page.
func (m *SessionManager) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.load(w, r)
		if s == nil {
			Redirect(w, r, authz.SignInPage)
			return
		}
		next.ServeHTTP(w, WithSession(r, s))
	})
}

// RequireRetailer admits only retailer sessions. Visitors without a
// session go to the sign-in page; other roles go to /dashboard.
func (m *SessionManager) RequireRetailer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.load(w, r)
		if s == nil {
			Redirect(w, r, authz.SignInPage)
			return
		}
		if !authz.IsRetailer(s.User.Role()) {
			Redirect(w, r, authz.DistributorHome)
			return
		}
		next.ServeHTTP(w, WithSession(r, s))
	})
}

// RedirectIfSignedIn keeps signed-in users off the sign-in form by sending
// them to their dashboard.
func (m *SessionManager) RedirectIfSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s := m.load(w, r); s != nil {
			Redirect(w, r, authz.DashboardFor(s.User.Role()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoadSession puts the session, if any, on the request without gating.
func (m *SessionManager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentSession(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		if s := m.load(w, r); s != nil {
			r = WithSession(r, s)
		}
		next.ServeHTTP(w, r)
	})
}
