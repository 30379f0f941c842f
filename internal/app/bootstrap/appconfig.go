// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (DISTROHUB_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers ports, TLS, logging and CORS; everything DistroHub itself needs
// lives here and is passed to each lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: distrohub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime; the provider's refresh token bounds the real session

	// CSRFKey is the 32-byte key for gorilla/csrf. Blank generates a random
	// key at startup, which only suits a single dev instance.
	CSRFKey string

	// Identity provider (GoTrue-compatible auth API)
	ProviderURL       string        // e.g. https://xyz.supabase.co
	ProviderAnonKey   string        // public API key
	ProviderJWTSecret string        // verifies access-token signatures when set
	ProviderTimeout   time.Duration // per-request timeout for provider calls

	// SiteURL is this app's public base URL; sign-up confirmation links
	// point back to SiteURL + /retailers-dashboard.
	SiteURL string

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth string

	// Auth form rate limit per client IP (0 disables)
	AuthRateLimit  int
	AuthRateWindow time.Duration
}
