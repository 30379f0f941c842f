// internal/app/features/preferences/handler.go
package preferences

import (
	"errors"
	"net/http"

	"github.com/dalemusser/distrohub/internal/app/system/auth"
	"github.com/dalemusser/distrohub/internal/app/system/authz"
	"github.com/dalemusser/distrohub/internal/app/system/prefs"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// Handler toggles the signed-in user's theme and sidebar preferences.
type Handler struct {
	Prefs *prefs.Service
	Log   *zap.Logger
}

func NewHandler(svc *prefs.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Prefs: svc,
		Log:   logger,
	}
}

// HandleTheme serves POST /preferences/theme.
func (h *Handler) HandleTheme(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, prefs.KeyTheme)
}

// HandleSidebar serves POST /preferences/sidebar.
func (h *Handler) HandleSidebar(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, prefs.KeySidebar)
}

// toggle flips key and sends the user back where they came from. Anonymous
// visitors have nothing to persist, so for them this is only a redirect.
func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, key string) {
	s, signedIn := auth.CurrentSession(r)

	fallback := "/"
	if signedIn {
		fallback = authz.HomeFor(s)
	}
	dest := urlutil.SafeReturn(r.FormValue("return"), "", fallback)

	if !signedIn {
		auth.Redirect(w, r, dest)
		return
	}

	owner := s.User.ID.String()
	next, err := h.Prefs.Toggle(r.Context(), owner, key)
	if err != nil {
		if errors.Is(err, prefs.ErrUnknownKey) {
			http.Error(w, "unknown preference", http.StatusBadRequest)
			return
		}
		// The page still works with the old value.
		h.Log.Warn("preference toggle failed",
			zap.String("key", key),
			zap.String("owner", owner),
			zap.Error(err))
	} else {
		h.Log.Debug("preference toggled",
			zap.String("key", key),
			zap.String("value", next),
			zap.String("owner", owner))
	}
	auth.Redirect(w, r, dest)
}
