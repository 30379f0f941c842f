package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/distrohub/internal/app/features/health"
	"github.com/dalemusser/distrohub/internal/app/system/identity"
	"github.com/dalemusser/distrohub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type stubDB struct{ err error }

func (s stubDB) Ping(context.Context, *readpref.ReadPref) error { return s.err }

type stubProvider struct{ err error }

func (s stubProvider) Health(context.Context) error { return s.err }

type response struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Identity string `json:"identity"`
	Message  string `json:"message"`
}

func serve(t *testing.T, h *health.Handler) (*httptest.ResponseRecorder, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestServe_AllHealthy(t *testing.T) {
	rec, resp := serve(t, health.NewHandler(stubDB{}, stubProvider{}, zap.NewNop()))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "connected", resp.Database)
	assert.Equal(t, "reachable", resp.Identity)
}

func TestServe_DatabaseDown(t *testing.T) {
	rec, resp := serve(t, health.NewHandler(stubDB{err: errors.New("no reachable servers")}, stubProvider{}, zap.NewNop()))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "disconnected", resp.Database)
	assert.Equal(t, "Database unavailable", resp.Message)
}

func TestServe_ProviderDownIsDegraded(t *testing.T) {
	rec, resp := serve(t, health.NewHandler(stubDB{}, stubProvider{err: identity.ErrUnavailable}, zap.NewNop()))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "unreachable", resp.Identity)
}

func TestServe_NoProviderConfigured(t *testing.T) {
	_, resp := serve(t, health.NewHandler(stubDB{}, nil, zap.NewNop()))
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.Identity)
}

func TestServe_LiveDatabase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	rec, resp := serve(t, health.NewHandler(db.Client(), nil, zap.NewNop()))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "connected", resp.Database)
}
