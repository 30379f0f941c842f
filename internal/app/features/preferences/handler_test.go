package preferences_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/dalemusser/distrohub/internal/app/features/preferences"
	"github.com/dalemusser/distrohub/internal/app/system/prefs"
	"github.com/dalemusser/distrohub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memKV struct {
	vals   map[string]string
	setErr error
}

func newMemKV() *memKV { return &memKV{vals: map[string]string{}} }

func (m *memKV) Get(_ context.Context, owner, key string) (string, bool, error) {
	v, ok := m.vals[owner+"/"+key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, owner, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.vals[owner+"/"+key] = value
	return nil
}

type fixture struct {
	fp  *testutil.FakeProvider
	kv  *memKV
	svc *prefs.Service
	h   http.Handler
}

func setup(t *testing.T) *fixture {
	t.Helper()
	fp := testutil.NewFakeProvider()
	fp.AddUser("dist@example.com", "secret1", "distributor")
	fp.AddUser("shop@example.com", "secret1", "retailer")
	sm := testutil.NewSessionManager(t, fp)
	kv := newMemKV()
	svc := prefs.NewService(kv, zap.NewNop())

	r := chi.NewRouter()
	r.Mount("/preferences", preferences.Routes(preferences.NewHandler(svc, zap.NewNop()), sm))

	return &fixture{fp: fp, kv: kv, svc: svc, h: r}
}

func postForm(target string, form url.Values) *http.Request {
	return testutil.NewFormRequest(http.MethodPost, target, form)
}

func TestThemeToggle_PersistsAndReturns(t *testing.T) {
	f := setup(t)
	s := f.fp.Issue("dist@example.com", time.Hour)
	owner := s.User.ID.String()

	req := postForm("/preferences/theme", url.Values{"return": {"/dashboard/inventory"}})
	req = testutil.WithSession(req, s)
	rec := testutil.NewRecorder()
	f.h.ServeHTTP(rec, req)

	rec.AssertRedirect(t, "/dashboard/inventory")
	assert.True(t, f.svc.Load(context.Background(), owner).Dark())

	// Second toggle flips back.
	req = testutil.WithSession(postForm("/preferences/theme", url.Values{}), s)
	rec = testutil.NewRecorder()
	f.h.ServeHTTP(rec, req)
	assert.False(t, f.svc.Load(context.Background(), owner).Dark())
}

func TestSidebarToggle_DefaultsToRoleHome(t *testing.T) {
	f := setup(t)
	s := f.fp.Issue("shop@example.com", time.Hour)

	req := testutil.WithSession(postForm("/preferences/sidebar", url.Values{}), s)
	rec := testutil.NewRecorder()
	f.h.ServeHTTP(rec, req)

	rec.AssertRedirect(t, "/retailers-dashboard")
	assert.True(t, f.svc.Load(context.Background(), s.User.ID.String()).Collapsed())
}

func TestToggle_RejectsOffsiteReturn(t *testing.T) {
	f := setup(t)
	s := f.fp.Issue("dist@example.com", time.Hour)

	req := testutil.WithSession(postForm("/preferences/theme", url.Values{"return": {"https://evil.example.com/"}}), s)
	rec := testutil.NewRecorder()
	f.h.ServeHTTP(rec, req)

	rec.AssertRedirect(t, "/dashboard")
}

func TestToggle_AnonymousIsRedirectOnly(t *testing.T) {
	f := setup(t)

	rec := testutil.NewRecorder()
	f.h.ServeHTTP(rec, postForm("/preferences/theme", url.Values{"return": {"/"}}))

	rec.AssertRedirect(t, "/")
	assert.Empty(t, f.kv.vals)
}

func TestToggle_StorageFailureStillRedirects(t *testing.T) {
	f := setup(t)
	f.kv.setErr = errors.New("disk full")
	s := f.fp.Issue("dist@example.com", time.Hour)

	req := testutil.WithSession(postForm("/preferences/sidebar", url.Values{"return": {"/dashboard"}}), s)
	rec := testutil.NewRecorder()
	f.h.ServeHTTP(rec, req)

	rec.AssertRedirect(t, "/dashboard")
	require.Empty(t, f.kv.vals)
}

func TestToggle_HTMXGetsHeader(t *testing.T) {
	f := setup(t)
	s := f.fp.Issue("dist@example.com", time.Hour)

	req := testutil.WithSession(postForm("/preferences/theme", url.Values{"return": {"/dashboard"}}), s)
	req.Header.Set("HX-Request", "true")
	rec := testutil.NewRecorder()
	f.h.ServeHTTP(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	assert.Equal(t, "/dashboard", rec.Header().Get("HX-Redirect"))
}
