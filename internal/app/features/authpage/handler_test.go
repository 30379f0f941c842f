package authpage_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/distrohub/internal/app/features/authpage"
	"github.com/dalemusser/distrohub/internal/app/system/identity"
	"github.com/dalemusser/distrohub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRouter(f fixture) http.Handler {
	h := authpage.NewHandler(f.actions, zap.NewNop())
	r := chi.NewRouter()
	r.Mount("/auth", authpage.Routes(h, f.sm, nil))
	return r
}

func jsonPost(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

func formPost(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *testutil.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Message
}

func TestLogin_JSON_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	rec := testutil.NewRecorder()
	newRouter(f).ServeHTTP(rec, jsonPost("/auth/login", `{"email":"shop@example.com","password":"nope"}`))

	rec.AssertStatus(t, http.StatusBadRequest)
	assert.Equal(t, authpage.MsgInvalidCredentials, decodeError(t, rec))
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestLogin_JSON_Unavailable(t *testing.T) {
	f := newFixture(t)
	f.fp.SignInErr = identity.ErrUnavailable
	rec := testutil.NewRecorder()
	newRouter(f).ServeHTTP(rec, jsonPost("/auth/login", `{"email":"shop@example.com","password":"secret1"}`))

	rec.AssertStatus(t, http.StatusServiceUnavailable)
	assert.Equal(t, authpage.MsgUnavailable, decodeError(t, rec))
}

func TestLogin_JSON_BadBody(t *testing.T) {
	f := newFixture(t)
	rec := testutil.NewRecorder()
	newRouter(f).ServeHTTP(rec, jsonPost("/auth/login", `{`))
	rec.AssertStatus(t, http.StatusBadRequest)
	assert.Zero(t, f.fp.Calls("SignInWithPassword"))
}

func TestLogin_Form_RedirectsWithCookie(t *testing.T) {
	f := newFixture(t)
	rec := testutil.NewRecorder()
	newRouter(f).ServeHTTP(rec, formPost("/auth/login", url.Values{
		"email":    {"shop@example.com"},
		"password": {"secret1"},
	}))

	rec.AssertRedirect(t, "/retailers-dashboard")
	assert.NotNil(t, testutil.FindCookie(rec.Result(), f.sm.Name()))
}

func TestLogin_HTMX_UsesHXRedirect(t *testing.T) {
	f := newFixture(t)
	req := formPost("/auth/login", url.Values{"email": {"dist@example.com"}, "password": {"secret1"}})
	req.Header.Set("HX-Request", "true")
	rec := testutil.NewRecorder()
	newRouter(f).ServeHTTP(rec, req)

	assert.Equal(t, "/dashboard", rec.Header().Get("HX-Redirect"))
}

func TestLogin_Form_ErrorRendersForm(t *testing.T) {
	f := newFixture(t)
	rec := testutil.NewRecorder()

	// Template rendering may panic without an initialized engine.
	func() {
		defer func() { _ = recover() }()
		newRouter(f).ServeHTTP(rec, formPost("/auth/login", url.Values{
			"email":    {"shop@example.com"},
			"password": {"nope"},
		}))
	}()

	assert.Empty(t, rec.Header().Get("Location"))
	assert.Equal(t, 1, f.fp.Calls("SignInWithPassword"))
}

func TestSignup_JSON_CreatesRetailer(t *testing.T) {
	f := newFixture(t)
	rec := testutil.NewRecorder()
	newRouter(f).ServeHTTP(rec, jsonPost("/auth/signup", `{"email":"new@example.com","password":"secret1"}`))

	rec.AssertRedirect(t, "/retailers-dashboard")
	u, ok := f.fp.User("new@example.com")
	require.True(t, ok)
	assert.Equal(t, "retailer", u.Role())
}

func TestSignup_JSON_AlreadyRegistered(t *testing.T) {
	f := newFixture(t)
	rec := testutil.NewRecorder()
	newRouter(f).ServeHTTP(rec, jsonPost("/auth/signup", `{"email":"shop@example.com","password":"different"}`))

	rec.AssertStatus(t, http.StatusBadRequest)
	assert.Equal(t, authpage.MsgAlreadyRegistered, decodeError(t, rec))
}

func TestSignout_RedirectsToAuth(t *testing.T) {
	f := newFixture(t)
	req := testutil.NewSignedInRequest(t, f.sm, http.MethodPost, "/auth/signout", f.fp.Issue("shop@example.com", time.Hour))
	rec := testutil.NewRecorder()
	newRouter(f).ServeHTTP(rec, req)

	rec.AssertRedirect(t, "/auth")
	assert.True(t, rec.SessionCleared(f.sm.Name()))
}

func TestSignout_FailureIs500(t *testing.T) {
	f := newFixture(t)
	f.fp.SignOutErr = &identity.APIError{Status: 502, Message: "bad gateway"}
	req := testutil.NewSignedInRequest(t, f.sm, http.MethodPost, "/auth/signout", f.fp.Issue("shop@example.com", time.Hour))
	req.Header.Set("Accept", "application/json")
	rec := testutil.NewRecorder()
	newRouter(f).ServeHTTP(rec, req)

	rec.AssertStatus(t, http.StatusInternalServerError)
	assert.Equal(t, authpage.MsgSignOutFailed, decodeError(t, rec))
}

func TestServeAuth_SignedInIsRedirected(t *testing.T) {
	f := newFixture(t)
	for email, want := range map[string]string{
		"shop@example.com": "/retailers-dashboard",
		"dist@example.com": "/dashboard",
	} {
		req := testutil.NewSignedInRequest(t, f.sm, http.MethodGet, "/auth", f.fp.Issue(email, time.Hour))
		rec := testutil.NewRecorder()
		newRouter(f).ServeHTTP(rec, req)
		rec.AssertRedirect(t, want)
	}
}

func TestLogin_GetNotAllowed(t *testing.T) {
	f := newFixture(t)
	rec := testutil.NewRecorder()
	newRouter(f).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	rec.AssertStatus(t, http.StatusMethodNotAllowed)
}
