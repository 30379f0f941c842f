// internal/app/system/authz/authz.go
package authz

import "github.com/dalemusser/distrohub/internal/app/system/identity"

// RoleOf returns the role claim of s, or "" when s is nil.
func RoleOf(s *identity.Session) string {
	if s == nil {
		return ""
	}
	return s.User.Role()
}

// SessionIsRetailer reports whether s belongs to a retailer.
// A nil session is never a retailer.
func SessionIsRetailer(s *identity.Session) bool {
	return s != nil && IsRetailer(s.User.Role())
}

// HomeFor returns the landing page for s, or the sign-in page when nobody
// is signed in.
func HomeFor(s *identity.Session) string {
	if s == nil {
		return SignInPage
	}
	return DashboardFor(s.User.Role())
}
