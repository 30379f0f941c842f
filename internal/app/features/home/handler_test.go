package home_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/distrohub/internal/app/features/home"
	"github.com/dalemusser/distrohub/internal/app/system/auth"
	"github.com/dalemusser/distrohub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fixture struct {
	fp *testutil.FakeProvider
	sm *auth.SessionManager
	h  http.Handler
}

func setup(t *testing.T) fixture {
	t.Helper()
	fp := testutil.NewFakeProvider()
	fp.AddUser("shop@example.com", "secret1", "retailer")
	sm := testutil.NewSessionManager(t, fp)

	r := chi.NewRouter()
	r.Mount("/", home.Routes(home.NewHandler(zap.NewNop()), sm))
	return fixture{fp: fp, sm: sm, h: r}
}

func (f fixture) serve(req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	// Template rendering may panic in tests without a booted engine.
	func() {
		defer func() { _ = recover() }()
		f.h.ServeHTTP(rec, req)
	}()
	return rec
}

func TestServeRoot_Anonymous(t *testing.T) {
	f := setup(t)
	rec := f.serve(testutil.NewRequest(http.MethodGet, "/"))
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestServeRoot_SignedInIsNotRedirected(t *testing.T) {
	f := setup(t)
	s := f.fp.Issue("shop@example.com", time.Hour)

	rec := f.serve(testutil.NewSignedInRequest(t, f.sm, http.MethodGet, "/", s))
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestServeRoot_PostNotAllowed(t *testing.T) {
	f := setup(t)
	rec := f.serve(testutil.NewRequest(http.MethodPost, "/"))
	rec.AssertStatus(t, http.StatusMethodNotAllowed)
}
