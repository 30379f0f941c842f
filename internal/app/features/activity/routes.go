// internal/app/features/activity/routes.go
package activity

import "github.com/go-chi/chi/v5"

// Routes mounts on the dashboard router at /activity; that router's
// RequireSession has already put the session on the request.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	return r
}
