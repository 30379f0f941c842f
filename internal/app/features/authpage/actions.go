package authpage

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/distrohub/internal/app/system/auditlog"
	"github.com/dalemusser/distrohub/internal/app/system/auth"
	"github.com/dalemusser/distrohub/internal/app/system/authz"
	"github.com/dalemusser/distrohub/internal/app/system/identity"
	"github.com/dalemusser/distrohub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Credentials is what the auth form posts.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims both fields and lowercases the email.
func (c Credentials) Normalize() Credentials {
	return Credentials{
		Email:    strings.ToLower(strings.TrimSpace(c.Email)),
		Password: strings.TrimSpace(c.Password),
	}
}

// ActionError is a user-facing failure. It serializes as
// {"message": "..."} inside an "error" envelope.
type ActionError struct {
	Message string `json:"message"`
}

func (e *ActionError) Error() string { return e.Message }

// Result is the outcome of an auth action: either a redirect target or an
// error to show. Exactly one is set.
type Result struct {
	Redirect string       `json:"-"`
	Err      *ActionError `json:"error,omitempty"`
}

// OK reports whether the action ended in a redirect.
func (r Result) OK() bool { return r.Err == nil && r.Redirect != "" }

func redirectTo(dest string) Result { return Result{Redirect: dest} }

func failure(msg string) Result { return Result{Err: &ActionError{Message: msg}} }

// Actions performs sign-in, sign-up and sign-out against the identity
// provider and keeps the session cookie in step.
type Actions struct {
	Provider identity.Provider
	Sessions *auth.SessionManager
	Audit    *auditlog.Logger
	Log      *zap.Logger

	// SiteURL is the public base URL used for the sign-up confirmation link.
	SiteURL string
}

// NewActions wires Actions.
func NewActions(provider identity.Provider, sessions *auth.SessionManager, audit *auditlog.Logger, siteURL string, logger *zap.Logger) *Actions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Actions{
		Provider: provider,
		Sessions: sessions,
		Audit:    audit,
		Log:      logger,
		SiteURL:  strings.TrimRight(siteURL, "/"),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Sign in                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// SignIn authenticates c and, on success, stores the session and returns a
// redirect to the dashboard for the user's role.
func (a *Actions) SignIn(w http.ResponseWriter, r *http.Request, c Credentials) Result {
	c = c.Normalize()

	res, err := a.signIn(r.Context(), c)
	if err != nil {
		a.Log.Warn("sign in failed", zap.String("email", c.Email), zap.Error(err))
		a.Audit.SignInFailed(r.Context(), r, c.Email, err.Error())
		return failure(signInMessage(err))
	}

	if res == nil || res.Session == nil {
		// The provider accepted the credentials but returned no session.
		// Look at the cookie once before giving up.
		s, err := a.Sessions.GetSession(w, r)
		if err != nil || s == nil {
			a.Log.Warn("no session after sign in", zap.String("email", c.Email), zap.Error(err))
			a.Audit.SignInFailed(r.Context(), r, c.Email, "no session after sign in")
			return failure(MsgNoSessionAfterLogin)
		}
		return redirectTo(authz.DashboardFor(s.User.Role()))
	}

	s, err := a.Sessions.SaveSession(w, r, res.Session)
	if err != nil {
		a.Log.Error("store session after sign in", zap.String("email", c.Email), zap.Error(err))
		return failure(MsgLoginFailed)
	}

	role := s.User.Role()
	a.Log.Info("signed in", zap.String("user_id", s.User.ID.String()), zap.String("role", role))
	a.Audit.SignInSuccess(r.Context(), r, s.User.ID.String(), s.User.Email, role)
	return redirectTo(authz.DashboardFor(role))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Sign up                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// SignUp registers c as a retailer. An email/password pair that already
// signs in is treated as a sign-in. After registering, the user is signed
// in; if that is not possible yet (e.g. email confirmation pending) the
// result asks them to log in.
func (a *Actions) SignUp(w http.ResponseWriter, r *http.Request, c Credentials) Result {
	c = c.Normalize()

	if res, err := a.signIn(r.Context(), c); err == nil && res != nil && res.Session != nil {
		if s, err := a.Sessions.SaveSession(w, r, res.Session); err == nil {
			a.Audit.SignInSuccess(r.Context(), r, s.User.ID.String(), s.User.Email, s.User.Role())
			return redirectTo(authz.DashboardFor(s.User.Role()))
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Provider(), a.Log, "sign up")
	created, err := a.Provider.SignUp(ctx, c.Email, c.Password, identity.SignUpOptions{
		Data:       map[string]any{"role": authz.RoleRetailer},
		RedirectTo: a.SiteURL + authz.RetailerHome,
	})
	cancel()
	if err != nil {
		a.Log.Warn("sign up failed", zap.String("email", c.Email), zap.Error(err))
		a.Audit.SignUpFailed(r.Context(), r, c.Email, err.Error())
		return failure(signUpMessage(err))
	}

	user := createdUser(created)
	if user == nil {
		a.Log.Warn("sign up returned no user", zap.String("email", c.Email))
		a.Audit.SignUpFailed(r.Context(), r, c.Email, "no user returned")
		return failure(MsgSignupFailed)
	}
	a.Log.Info("signed up", zap.String("user_id", user.ID.String()))
	a.Audit.SignUpSuccess(r.Context(), r, user.ID.String(), c.Email, authz.RoleRetailer)

	res, err := a.signIn(r.Context(), c)
	if err != nil || res == nil || res.Session == nil {
		a.Log.Info("sign in after sign up deferred", zap.String("email", c.Email), zap.Error(err))
		return failure(MsgSignupThenLogin)
	}
	s, err := a.Sessions.SaveSession(w, r, res.Session)
	if err != nil {
		a.Log.Error("store session after sign up", zap.String("email", c.Email), zap.Error(err))
		return failure(MsgSignupThenLogin)
	}
	a.Audit.SignInSuccess(r.Context(), r, s.User.ID.String(), s.User.Email, s.User.Role())
	return redirectTo(authz.DashboardFor(s.User.Role()))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Sign out                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// SignOut revokes the current session at the provider and clears the
// cookie. A session the provider no longer knows (401, 403, 404) counts as
// signed out. Any other provider failure is returned and the cookie kept.
func (a *Actions) SignOut(w http.ResponseWriter, r *http.Request) error {
	s, err := a.Sessions.GetSession(w, r)
	if err != nil {
		a.Log.Warn("sign out: session unreadable; clearing cookie", zap.Error(err))
	}
	if s == nil {
		return a.Sessions.ClearSession(w, r)
	}

	userID := s.User.ID.String()
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Provider(), a.Log, "sign out")
	err = a.Provider.SignOut(ctx, s.Token.AccessToken)
	cancel()
	if err != nil && !sessionGone(err) {
		a.Log.Error("sign out failed", zap.String("user_id", userID), zap.Error(err))
		a.Audit.SignOutFailed(r.Context(), r, userID, err.Error())
		return err
	}

	if err := a.Sessions.ClearSession(w, r); err != nil {
		return err
	}
	a.Log.Info("signed out", zap.String("user_id", userID))
	a.Audit.SignOut(r.Context(), r, userID, s.User.Email)
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (a *Actions) signIn(ctx context.Context, c Credentials) (*identity.AuthResponse, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Provider(), a.Log, "sign in")
	defer cancel()
	return a.Provider.SignInWithPassword(ctx, c.Email, c.Password)
}

func createdUser(res *identity.AuthResponse) *identity.User {
	if res == nil {
		return nil
	}
	if res.User != nil {
		return res.User
	}
	if res.Session != nil {
		u := res.Session.User
		return &u
	}
	return nil
}

func sessionGone(err error) bool {
	if errors.Is(err, identity.ErrNoSession) {
		return true
	}
	switch identity.StatusOf(err) {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}
