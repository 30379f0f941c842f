// internal/app/features/preferences/routes.go
package preferences

import (
	"github.com/dalemusser/distrohub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /preferences.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.LoadSession)
	r.Post("/theme", h.HandleTheme)
	r.Post("/sidebar", h.HandleSidebar)
	return r
}
