// internal/app/features/signout/routes.go
package signout

import "github.com/go-chi/chi/v5"

// Routes mounts under /api/auth. Only POST reaches the sign-out handler;
// chi answers other methods with 405.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/signout", h.ServeSignOut)
	r.Get("/user", h.ServeUser)
	return r
}
