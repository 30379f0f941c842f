// internal/app/system/authz/roles.go
package authz

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// RoleRetailer is the only role value the app distinguishes. Any other
// value, including an empty one, is treated as a distributor account.
const RoleRetailer = "retailer"

// Landing pages per account kind.
const (
	RetailerHome    = "/retailers-dashboard"
	DistributorHome = "/dashboard"
	SignInPage      = "/auth"
)

// IsRetailer reports whether role is exactly the retailer role.
// The comparison is case-sensitive; "Retailer" is not a retailer.
func IsRetailer(role string) bool {
	return role == RoleRetailer
}

// DashboardFor returns the landing page for a signed-in user with role.
func DashboardFor(role string) string {
	if IsRetailer(role) {
		return RetailerHome
	}
	return DistributorHome
}

// Label is the human-readable account kind shown in page chrome.
func Label(role string) string {
	if IsRetailer(role) {
		return "Retailer"
	}
	if r := strings.TrimSpace(role); r != "" {
		first, size := utf8.DecodeRuneInString(r)
		return string(unicode.ToUpper(first)) + r[size:]
	}
	return "Distributor"
}
