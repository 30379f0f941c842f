// internal/app/features/dashboard/settings.go
package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/distrohub/internal/app/system/auth"
	"github.com/dalemusser/distrohub/internal/app/system/identity"
	"github.com/dalemusser/distrohub/internal/app/system/timeouts"
	"github.com/dalemusser/distrohub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// MinPasswordLength matches the provider's default password policy.
const MinPasswordLength = 6

const (
	MsgPasswordMismatch = "New passwords do not match."
	MsgPasswordTooShort = "Password must be at least 6 characters long."
	MsgPasswordUpdated  = "Password updated successfully!"
	MsgPasswordFailed   = "Failed to update password."
	MsgServiceDown      = "Authentication service unavailable. Please try again later."
)

type settingsData struct {
	viewdata.BaseVM
	AccountEmail string
	Success      string
	Error        string
}

// ServeSettings renders GET /dashboard/settings.
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	h.renderSettings(w, r, http.StatusOK, "", "")
}

// HandlePassword serves POST /dashboard/settings/password.
func (h *Handler) HandlePassword(w http.ResponseWriter, r *http.Request) {
	s, ok := auth.CurrentSession(r)
	if !ok {
		auth.Redirect(w, r, "/auth")
		return
	}
	userID := s.User.ID.String()

	if msg := validatePassword(r.FormValue("new_password"), r.FormValue("confirm_password")); msg != "" {
		h.Audit.PasswordChangeFailed(r.Context(), r, userID, msg)
		h.renderSettings(w, r, http.StatusBadRequest, "", msg)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Provider(), h.Log, "update password")
	defer cancel()

	if _, err := h.Provider.UpdateUser(ctx, s.Token.AccessToken, identity.UserAttributes{
		Password: r.FormValue("new_password"),
	}); err != nil {
		h.Log.Warn("password update failed", zap.String("user_id", userID), zap.Error(err))
		h.Audit.PasswordChangeFailed(r.Context(), r, userID, err.Error())
		status, msg := passwordFailure(err)
		h.renderSettings(w, r, status, "", msg)
		return
	}

	h.Audit.PasswordChanged(r.Context(), r, userID, s.User.Email)
	h.renderSettings(w, r, http.StatusOK, MsgPasswordUpdated, "")
}

// validatePassword returns the user-facing problem with a new password,
// or "" when it is acceptable.
func validatePassword(newPassword, confirm string) string {
	if newPassword != confirm {
		return MsgPasswordMismatch
	}
	if len(newPassword) < MinPasswordLength {
		return MsgPasswordTooShort
	}
	return ""
}

func passwordFailure(err error) (int, string) {
	switch {
	case errors.Is(err, identity.ErrUnavailable):
		return http.StatusServiceUnavailable, MsgServiceDown
	case identity.MessageContains(err, "Password should be"):
		return http.StatusBadRequest, MsgPasswordTooShort
	default:
		return http.StatusBadRequest, MsgPasswordFailed
	}
}

// accountEmail asks the provider for the current email, falling back to
// the one in the access token.
func (h *Handler) accountEmail(r *http.Request) string {
	s, ok := auth.CurrentSession(r)
	if !ok {
		return ""
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Provider(), h.Log, "get user")
	defer cancel()

	u, err := h.Provider.GetUser(ctx, s.Token.AccessToken)
	if err != nil {
		h.Log.Warn("settings: provider user lookup failed", zap.Error(err))
		return s.User.Email
	}
	return u.Email
}

// renderSettings re-renders the settings page with the outcome. JSON
// callers get {"message": ...} or {"error": ...} with status instead.
func (h *Handler) renderSettings(w http.ResponseWriter, r *http.Request, status int, success, errMsg string) {
	if auth.WantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		body := map[string]string{"message": success}
		if errMsg != "" {
			body = map[string]string{"error": errMsg}
		}
		_ = json.NewEncoder(w).Encode(body)
		return
	}

	data := settingsData{
		BaseVM:       viewdata.NewBaseVM(r, "Settings", "/dashboard"),
		AccountEmail: h.accountEmail(r),
		Success:      success,
		Error:        errMsg,
	}
	templates.Render(w, r, "dashboard_settings", data)
}
