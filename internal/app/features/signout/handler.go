// internal/app/features/signout/handler.go
package signout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/distrohub/internal/app/system/auth"
	"github.com/dalemusser/distrohub/internal/app/system/identity"
	"github.com/dalemusser/distrohub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// SignOuter ends the caller's session (provider and cookie).
type SignOuter interface {
	SignOut(w http.ResponseWriter, r *http.Request) error
}

// Handler serves the JSON auth API under /api/auth.
type Handler struct {
	Actions  SignOuter
	Sessions *auth.SessionManager
	Log      *zap.Logger
}

func NewHandler(actions SignOuter, sessions *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Actions:  actions,
		Sessions: sessions,
		Log:      logger,
	}
}

type userResponse struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Role         string         `json:"role"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/signout                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeSignOut responds 200 {"success":true} once the session is gone, or
// 500 {"error":"Failed to sign out"} when the provider could not end it.
func (h *Handler) ServeSignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.Actions.SignOut(w, r); err != nil {
		h.Log.Error("api sign out failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to sign out"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/auth/user                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeUser returns the provider's current record for the signed-in user.
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	s, err := h.Sessions.GetSession(w, r)
	if err != nil {
		h.Log.Warn("api user: session unavailable", zap.Error(err))
	}
	if s == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Provider(), h.Log, "get user")
	defer cancel()

	u, err := h.Sessions.Provider().GetUser(ctx, s.Token.AccessToken)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, identity.ErrUnavailable):
			status = http.StatusServiceUnavailable
		case identity.StatusOf(err) == http.StatusUnauthorized || identity.StatusOf(err) == http.StatusForbidden:
			status = http.StatusUnauthorized
		}
		h.Log.Warn("api user: provider lookup failed", zap.Int("status", status), zap.Error(err))
		writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		ID:           u.ID.String(),
		Email:        u.Email,
		Role:         u.Role(),
		UserMetadata: u.UserMetadata,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
