// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/distrohub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the distributor dashboard under /dashboard. Every page
// checks the session again here even though RoleRouter already ran.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSession)

	r.Get("/", h.ServeOverview)
	r.Get("/retailers", h.ServeRetailers)
	r.Get("/inventory", h.ServeInventory)
	r.Get("/settings", h.ServeSettings)
	r.Post("/settings/password", h.HandlePassword)
	return r
}

// RetailerRoutes mounts the retailer area under /retailers-dashboard.
func RetailerRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRetailer)

	r.Get("/", h.ServeRetailerHome)
	return r
}
