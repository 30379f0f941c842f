package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/distrohub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// DBPinger is satisfied by *mongo.Client.
type DBPinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// ProviderChecker is satisfied by *identity.Client.
type ProviderChecker interface {
	Health(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB       DBPinger
	Provider ProviderChecker
	Log      *zap.Logger
}

// NewHandler constructs a health Handler. provider may be nil, in which
// case the identity provider is not probed.
func NewHandler(db DBPinger, provider ProviderChecker, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Provider: provider,
		Log:      logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Identity string `json:"identity,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "identity":"reachable" }
//
// An unreachable identity provider is reported but keeps the 200; the
// landing page and static assets still work without it.
//
// On DB failure: 503 and
//
//	{ "status":"error", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}

	if err := h.DB.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	if h.Provider != nil {
		if err := h.Provider.Health(ctx); err != nil {
			h.Log.Warn("health-check: identity provider unreachable", zap.Error(err))
			resp.Status = "degraded"
			resp.Identity = "unreachable"
		} else {
			resp.Identity = "reachable"
		}
	}

	_ = json.NewEncoder(w).Encode(resp)
}
