// internal/app/features/authpage/routes.go
package authpage

import (
	"net/http"

	"github.com/dalemusser/distrohub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /auth. limit guards the POST endpoints (nil for none).
func Routes(h *Handler, sm *auth.SessionManager, limit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.With(sm.RedirectIfSignedIn).Get("/", h.ServeAuth)

	r.Group(func(pr chi.Router) {
		if limit != nil {
			pr.Use(limit)
		}
		pr.Post("/login", h.HandleLogin)
		pr.Post("/signup", h.HandleSignup)
		pr.Post("/signout", h.HandleSignout)
	})
	return r
}
