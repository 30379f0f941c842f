package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/distrohub/internal/app/system/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func post(h http.Handler, remote string, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = remote
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthLimiter_Disabled(t *testing.T) {
	assert.Nil(t, ratelimit.AuthLimiter(ratelimit.Config{}, zap.NewNop()))
}

func TestAuthLimiter_BlocksAfterLimit(t *testing.T) {
	mw := ratelimit.AuthLimiter(ratelimit.Config{Requests: 2, Window: time.Minute}, zap.NewNop())
	require.NotNil(t, mw)
	h := mw(ok)

	assert.Equal(t, http.StatusNoContent, post(h, "198.51.100.7:5000", "").Code)
	assert.Equal(t, http.StatusNoContent, post(h, "198.51.100.7:5001", "").Code)

	rec := post(h, "198.51.100.7:5002", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), ratelimit.MsgTooMany)

	// Other clients are unaffected.
	assert.Equal(t, http.StatusNoContent, post(h, "203.0.113.9:6000", "").Code)
}

func TestAuthLimiter_JSONBody(t *testing.T) {
	h := ratelimit.AuthLimiter(ratelimit.Config{Requests: 1, Window: time.Minute}, nil)(ok)

	post(h, "198.51.100.8:5000", "application/json")
	rec := post(h, "198.51.100.8:5000", "application/json")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":{"message":"`+ratelimit.MsgTooMany+`"}}`, rec.Body.String())
}
