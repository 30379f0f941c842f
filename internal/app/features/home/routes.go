package home

import (
	"github.com/dalemusser/distrohub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves the landing page. LoadSession lets the page show the
// visitor's dashboard link when they are already signed in.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.LoadSession)
	r.Get("/", h.ServeRoot)
	return r
}
