// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/dalemusser/distrohub/internal/app/store/audit"
	"go.uber.org/zap"
)

// Destinations for an audit category.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off" // disabled
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events
	// (sign-in, sign-up, sign-out, password change).
	Auth string
}

// Logger provides convenience methods for logging audit events.
// It logs to MongoDB (via audit.Store) and/or structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil when the mode never
// writes to the database.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// ValidMode reports whether m is a recognised destination setting.
func ValidMode(m string) bool {
	switch m {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// getClientIP returns the address the edge proxy saw. The right-most
// X-Forwarded-For entry is the one the proxy appended; anything left of it
// came from the client. Values that are not IPs are ignored.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		if ip := parseIP(hops[len(hops)-1]); ip != "" {
			return ip
		}
	}
	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.Email != "" {
		fields = append(fields, zap.String("email", event.Email))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op, so handlers and tests can run without one.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := ModeAll
	if event.Category == audit.CategoryAuth && l.config.Auth != "" {
		setting = l.config.Auth
	}
	if setting == ModeOff {
		return
	}

	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}

	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func authEvent(r *http.Request, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  audit.CategoryAuth,
		EventType: eventType,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// --- Authentication Events ---

// SignInSuccess logs a successful password sign-in.
func (l *Logger) SignInSuccess(ctx context.Context, r *http.Request, userID, email, role string) {
	e := authEvent(r, audit.EventSignInSuccess, true)
	e.UserID, e.Email = userID, email
	e.Details = map[string]string{"role": role}
	l.Log(ctx, e)
}

// SignInFailed logs a rejected or failed sign-in attempt.
func (l *Logger) SignInFailed(ctx context.Context, r *http.Request, email, reason string) {
	e := authEvent(r, audit.EventSignInFailed, false)
	e.Email, e.FailureReason = email, reason
	l.Log(ctx, e)
}

// SignUpSuccess logs a new registration.
func (l *Logger) SignUpSuccess(ctx context.Context, r *http.Request, userID, email, role string) {
	e := authEvent(r, audit.EventSignUpSuccess, true)
	e.UserID, e.Email = userID, email
	e.Details = map[string]string{"role": role}
	l.Log(ctx, e)
}

// SignUpFailed logs a registration the provider refused.
func (l *Logger) SignUpFailed(ctx context.Context, r *http.Request, email, reason string) {
	e := authEvent(r, audit.EventSignUpFailed, false)
	e.Email, e.FailureReason = email, reason
	l.Log(ctx, e)
}

// SignOut logs a completed sign-out.
func (l *Logger) SignOut(ctx context.Context, r *http.Request, userID, email string) {
	e := authEvent(r, audit.EventSignOut, true)
	e.UserID, e.Email = userID, email
	l.Log(ctx, e)
}

// SignOutFailed logs a sign-out the provider could not complete.
func (l *Logger) SignOutFailed(ctx context.Context, r *http.Request, userID, reason string) {
	e := authEvent(r, audit.EventSignOutFailed, false)
	e.UserID, e.FailureReason = userID, reason
	l.Log(ctx, e)
}

// PasswordChanged logs a successful password update.
func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, userID, email string) {
	e := authEvent(r, audit.EventPasswordChanged, true)
	e.UserID, e.Email = userID, email
	l.Log(ctx, e)
}

// PasswordChangeFailed logs a rejected password update.
func (l *Logger) PasswordChangeFailed(ctx context.Context, r *http.Request, userID, reason string) {
	e := authEvent(r, audit.EventPasswordChangeFailed, false)
	e.UserID, e.FailureReason = userID, reason
	l.Log(ctx, e)
}
