// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/distrohub/internal/app/system/auth"
	"github.com/dalemusser/distrohub/internal/app/system/authz"
	"github.com/dalemusser/distrohub/internal/app/system/prefs"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// SiteName is shown in the page title and header.
const SiteName = "DistroHub"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	IsRetailer bool
	Role       string
	RoleLabel  string
	Email      string
	HomeURL    string // dashboard for the user's role, or /auth

	// Preferences
	Theme            string
	Sidebar          string
	DarkMode         bool
	SidebarCollapsed bool

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string
}

var prefsService *prefs.Service

// SetPreferences sets the service NewBaseVM loads theme and sidebar state
// from. Call this once at startup from bootstrap. Without it every page
// renders with the default preferences.
func SetPreferences(svc *prefs.Service) {
	prefsService = svc
}

// NewBaseVM creates a fully populated BaseVM for a page. Preferences are
// loaded once here and passed down as plain fields.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	s, signedIn := auth.CurrentSession(r)

	vm := BaseVM{
		SiteName:    SiteName,
		IsLoggedIn:  signedIn,
		HomeURL:     authz.HomeFor(s),
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}

	owner := ""
	if signedIn {
		vm.Role = authz.RoleOf(s)
		vm.RoleLabel = authz.Label(vm.Role)
		vm.IsRetailer = authz.SessionIsRetailer(s)
		vm.Email = s.User.Email
		owner = s.User.ID.String()
	}

	p := prefsService.Load(r.Context(), owner)
	vm.Theme = p.Theme
	vm.Sidebar = p.Sidebar
	vm.DarkMode = p.Dark()
	vm.SidebarCollapsed = p.Collapsed()

	return vm
}
