// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/distrohub/internal/app/system/auth"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// MsgTooMany is shown when a client exceeds the auth limit.
const MsgTooMany = "Too many attempts. Please wait a minute before trying again."

// Defaults: 10 auth submissions per IP per minute.
const (
	DefaultRequests = 10
	DefaultWindow   = time.Minute
)

// Config bounds how many auth submissions one client IP may make per
// window. Requests <= 0 disables the limit.
type Config struct {
	Requests int
	Window   time.Duration
}

// AuthLimiter returns middleware that limits auth form posts per client IP.
// The client IP honors True-Client-IP, X-Real-IP and X-Forwarded-For, so
// deploy it only behind a proxy that sets them.
//
// A nil return means no limit; callers should skip Use in that case.
func AuthLimiter(cfg Config, logger *zap.Logger) func(http.Handler) http.Handler {
	if cfg.Requests <= 0 {
		return nil
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return httprate.Limit(cfg.Requests, cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("auth rate limit exceeded",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr))
			tooMany(w, r)
		}),
	)
}

func tooMany(w http.ResponseWriter, r *http.Request) {
	if auth.WantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": MsgTooMany},
		})
		return
	}
	http.Error(w, MsgTooMany, http.StatusTooManyRequests)
}
