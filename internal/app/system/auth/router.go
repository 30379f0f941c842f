package auth

import (
	"net/http"
	"strings"

	"github.com/dalemusser/distrohub/internal/app/system/authz"
	"github.com/dalemusser/distrohub/internal/app/system/identity"
	"go.uber.org/zap"
)

// routedPrefixes are the paths RoleRouter inspects. Everything else
// (static assets, health, API, auth POSTs) passes straight through.
var routedPrefixes = []string{"/dashboard", "/retailers-dashboard"}

// Routed reports whether path is one RoleRouter makes decisions for:
// "/", "/auth", and everything under /dashboard and /retailers-dashboard.
func Routed(path string) bool {
	path = normalizePath(path)
	if path == "/" || path == authz.SignInPage {
		return true
	}
	for _, p := range routedPrefixes {
		if underPrefix(path, p) {
			return true
		}
	}
	return false
}

// RoleRouter is the edge middleware that sends users to the dashboard
// their role allows before any page handler runs:
//
//   - signed in on /auth → their dashboard
//   - /retailers-dashboard/* without a session → /auth
//   - /retailers-dashboard/* as a non-retailer → /dashboard
//
// A session it loads is put on the request for later handlers.
func (m *SessionManager) RoleRouter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !Routed(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		path := normalizePath(r.URL.Path)
		s := m.load(w, r)

		switch {
		case path == authz.SignInPage && s != nil:
			Redirect(w, r, authz.DashboardFor(s.User.Role()))
			return

		case underPrefix(path, authz.RetailerHome):
			if s == nil {
				Redirect(w, r, authz.SignInPage)
				return
			}
			if !authz.IsRetailer(s.User.Role()) {
				Redirect(w, r, authz.DistributorHome)
				return
			}
		}

		if s != nil {
			r = WithSession(r, s)
		}
		next.ServeHTTP(w, r)
	})
}

// load fetches the session and treats any failure as signed out.
func (m *SessionManager) load(w http.ResponseWriter, r *http.Request) *identity.Session {
	s, err := m.GetSession(w, r)
	if err != nil {
		m.log.Warn("session unavailable; treating request as signed out",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		return nil
	}
	return s
}

func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func normalizePath(p string) string {
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			return "/"
		}
	}
	return p
}
