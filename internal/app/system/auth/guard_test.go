package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/distrohub/internal/app/system/auth"
	"github.com/dalemusser/distrohub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(reached *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*reached = true
		w.WriteHeader(http.StatusOK)
	})
}

func guardFixture(t *testing.T) (*testutil.FakeProvider, *auth.SessionManager) {
	t.Helper()
	fp := testutil.NewFakeProvider()
	fp.AddUser("shop@example.com", "secret1", "retailer")
	fp.AddUser("dist@example.com", "secret1", "distributor")
	return fp, testutil.NewSessionManager(t, fp)
}

func TestRequireSession_NoSession_RedirectsToAuth(t *testing.T) {
	_, sm := guardFixture(t)
	var reached bool
	rec := testutil.NewRecorder()
	sm.RequireSession(okHandler(&reached)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	rec.AssertRedirect(t, "/auth")
	assert.False(t, reached)
}

func TestRequireSession_WithSession_LoadsContext(t *testing.T) {
	fp, sm := guardFixture(t)
	var got string
	h := sm.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := auth.CurrentSession(r)
		require.True(t, ok)
		got = s.User.Email
	}))
	req := testutil.NewSignedInRequest(t, sm, http.MethodGet, "/dashboard", fp.Issue("shop@example.com", time.Hour))
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "shop@example.com", got)
}

func TestRequireSession_HTMX(t *testing.T) {
	_, sm := guardFixture(t)
	var reached bool
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("HX-Request", "true")
	rec := testutil.NewRecorder()
	sm.RequireSession(okHandler(&reached)).ServeHTTP(rec, req)

	assert.Equal(t, "/auth", rec.Header().Get("HX-Redirect"))
	assert.False(t, reached)
}

func TestRequireRetailer(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		want    string
		reached bool
	}{
		{"no session", "", "/auth", false},
		{"distributor", "dist@example.com", "/dashboard", false},
		{"retailer", "shop@example.com", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp, sm := guardFixture(t)
			req := httptest.NewRequest(http.MethodGet, "/retailers-dashboard", nil)
			if tt.email != "" {
				req = testutil.NewSignedInRequest(t, sm, http.MethodGet, "/retailers-dashboard", fp.Issue(tt.email, time.Hour))
			}
			var reached bool
			rec := testutil.NewRecorder()
			sm.RequireRetailer(okHandler(&reached)).ServeHTTP(rec, req)

			assert.Equal(t, tt.reached, reached)
			if tt.want != "" {
				rec.AssertRedirect(t, tt.want)
			}
		})
	}
}

func TestRedirectIfSignedIn(t *testing.T) {
	fp, sm := guardFixture(t)

	var reached bool
	rec := testutil.NewRecorder()
	sm.RedirectIfSignedIn(okHandler(&reached)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth", nil))
	assert.True(t, reached, "visitors see the form")

	for email, want := range map[string]string{
		"shop@example.com": "/retailers-dashboard",
		"dist@example.com": "/dashboard",
	} {
		reached = false
		rec = testutil.NewRecorder()
		req := testutil.NewSignedInRequest(t, sm, http.MethodGet, "/auth", fp.Issue(email, time.Hour))
		sm.RedirectIfSignedIn(okHandler(&reached)).ServeHTTP(rec, req)
		rec.AssertRedirect(t, want)
		assert.False(t, reached, email)
	}
}

func TestLoadSession_DoesNotGate(t *testing.T) {
	_, sm := guardFixture(t)
	var reached bool
	rec := testutil.NewRecorder()
	sm.LoadSession(okHandler(&reached)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	rec.AssertStatus(t, http.StatusOK)
	assert.True(t, reached)
}
