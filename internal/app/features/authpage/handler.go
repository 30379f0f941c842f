// internal/app/features/authpage/handler.go
package authpage

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dalemusser/distrohub/internal/app/system/auth"
	"github.com/dalemusser/distrohub/internal/app/system/authz"
	"github.com/dalemusser/distrohub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Form modes.
const (
	ModeLogin  = "login"
	ModeSignup = "signup"
)

// maxFormBytes bounds auth request bodies.
const maxFormBytes = 16 << 10

type Handler struct {
	Actions *Actions
	Log     *zap.Logger
}

func NewHandler(actions *Actions, logger *zap.Logger) *Handler {
	return &Handler{
		Actions: actions,
		Log:     logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type authFormData struct {
	viewdata.BaseVM
	Mode  string
	Email string
	Error string
}

// IsSignup is used by the template to switch headings and the form action.
func (d authFormData) IsSignup() bool { return d.Mode == ModeSignup }

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeAuth renders the sign-in / sign-up form. Signed-in users never get
// here; RedirectIfSignedIn sends them on.
func (h *Handler) ServeAuth(w http.ResponseWriter, r *http.Request) {
	mode := ModeLogin
	if query.Get(r, "mode") == ModeSignup {
		mode = ModeSignup
	}
	h.renderForm(w, r, mode, "", "")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/login, /auth/signup                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.readCredentials(w, r)
	if !ok {
		return
	}
	h.respond(w, r, ModeLogin, creds, h.Actions.SignIn(w, r, creds))
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.readCredentials(w, r)
	if !ok {
		return
	}
	h.respond(w, r, ModeSignup, creds, h.Actions.SignUp(w, r, creds))
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/signout                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSignout(w http.ResponseWriter, r *http.Request) {
	if err := h.Actions.SignOut(w, r); err != nil {
		if auth.WantsJSON(r) {
			writeJSON(w, http.StatusInternalServerError, Result{Err: &ActionError{Message: MsgSignOutFailed}})
			return
		}
		http.Error(w, MsgSignOutFailed, http.StatusInternalServerError)
		return
	}
	auth.Redirect(w, r, authz.SignInPage)
}

/*─────────────────────────────────────────────────────────────────────────────*
| helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, mode string, creds Credentials, res Result) {
	if res.OK() {
		auth.Redirect(w, r, res.Redirect)
		return
	}

	if auth.WantsJSON(r) {
		status := http.StatusBadRequest
		if res.Err != nil && res.Err.Message == MsgUnavailable {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, res)
		return
	}

	msg := MsgLoginFailed
	if res.Err != nil {
		msg = res.Err.Message
	}
	h.renderForm(w, r, mode, creds.Normalize().Email, msg)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, mode, email, errMsg string) {
	title := "Sign in"
	if mode == ModeSignup {
		title = "Create an account"
	}
	templates.Render(w, r, "auth_form", authFormData{
		BaseVM: viewdata.NewBaseVM(r, title, "/"),
		Mode:   mode,
		Email:  email,
		Error:  errMsg,
	})
}

// readCredentials accepts a form post or a JSON body.
func (h *Handler) readCredentials(w http.ResponseWriter, r *http.Request) (Credentials, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var c Credentials
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			h.Log.Debug("auth: bad json body", zap.Error(err))
			writeJSON(w, http.StatusBadRequest, Result{Err: &ActionError{Message: "Invalid request body."}})
			return Credentials{}, false
		}
		return c, true
	}

	if err := r.ParseForm(); err != nil {
		h.Log.Debug("auth: bad form body", zap.Error(err))
		http.Error(w, "bad request", http.StatusBadRequest)
		return Credentials{}, false
	}
	return Credentials{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
