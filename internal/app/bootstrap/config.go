// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/distrohub/internal/app/system/auditlog"
	"github.com/dalemusser/distrohub/internal/app/system/auth"
	"github.com/dalemusser/distrohub/internal/app/system/ratelimit"
	"github.com/dalemusser/distrohub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for DistroHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, provider_url, etc.
//   - Environment variables: DISTROHUB_MONGO_URI, DISTROHUB_PROVIDER_URL, etc.
//   - Command-line flags: --mongo_uri, --provider_url, etc.
// devSessionKey is the published default; it signs cookies anyone can forge.
const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "distrohub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size (default: 5)"},

	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: auth.DefaultSessionName, Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "168h", Desc: "Session cookie lifetime (e.g., 24h, 168h)"},
	{Name: "csrf_key", Default: "", Desc: "32+ char CSRF key (blank generates one per process; dev only)"},

	// Identity provider
	{Name: "provider_url", Default: "", Desc: "Identity provider base URL (required), e.g. https://xyz.supabase.co"},
	{Name: "provider_anon_key", Default: "", Desc: "Identity provider public API key (required)"},
	{Name: "provider_jwt_secret", Default: "", Desc: "Secret to verify access-token signatures (blank trusts the cookie)"},
	{Name: "provider_timeout", Default: "10s", Desc: "Timeout for one identity provider request"},

	{Name: "site_url", Default: "http://localhost:8080", Desc: "Public base URL used in sign-up confirmation links"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Rate limiting of auth form posts
	{Name: "auth_rate_limit", Default: ratelimit.DefaultRequests, Desc: "Auth submissions allowed per IP per window (0 disables)"},
	{Name: "auth_rate_window", Default: "1m", Desc: "Auth rate limit window"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, DISTROHUB_* for app) and
// command-line flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "DISTROHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 7*24*time.Hour),
		CSRFKey:       appValues.String("csrf_key"),

		ProviderURL:       strings.TrimSpace(appValues.String("provider_url")),
		ProviderAnonKey:   strings.TrimSpace(appValues.String("provider_anon_key")),
		ProviderJWTSecret: appValues.String("provider_jwt_secret"),
		ProviderTimeout:   appValues.Duration("provider_timeout", timeouts.DefaultProvider),

		SiteURL: strings.TrimRight(appValues.String("site_url"), "/"),

		AuditLogAuth: appValues.String("audit_log_auth"),

		AuthRateLimit:  appValues.Int("auth_rate_limit"),
		AuthRateWindow: appValues.Duration("auth_rate_window", ratelimit.DefaultWindow),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// A missing or malformed provider setting fails here so the app never
// starts with an auth client that cannot work.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if err := validateApp(appCfg); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}

	if coreCfg != nil && coreCfg.Env == "prod" {
		if err := validateProd(appCfg); err != nil {
			logger.Error("invalid production configuration", zap.Error(err))
			return err
		}
		if appCfg.CSRFKey == "" {
			logger.Warn("csrf_key is blank; tokens will not survive restarts or span instances")
		}
	} else if appCfg.ProviderJWTSecret == "" {
		logger.Warn("provider_jwt_secret is blank; access tokens are read without signature checks")
	}
	return nil
}

// validateProd rejects settings that let a client forge a session: the
// published dev session key, a short key, or unverified access tokens.
func validateProd(appCfg AppConfig) error {
	var problems []error

	switch {
	case appCfg.SessionKey == devSessionKey:
		problems = append(problems, errors.New("session_key is the development default; set a private key in production"))
	case len(appCfg.SessionKey) < 32:
		problems = append(problems, errors.New("session_key must be at least 32 characters in production"))
	}
	if appCfg.ProviderJWTSecret == "" {
		problems = append(problems, errors.New("provider_jwt_secret is required in production"))
	}

	return errors.Join(problems...)
}

// validateApp checks the app-level settings that do not depend on core
// config.
func validateApp(appCfg AppConfig) error {
	var problems []error

	if appCfg.ProviderURL == "" {
		problems = append(problems, errors.New("provider_url is required"))
	} else if u, err := url.Parse(appCfg.ProviderURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Errorf("provider_url %q must be an absolute URL", appCfg.ProviderURL))
	}
	if appCfg.ProviderAnonKey == "" {
		problems = append(problems, errors.New("provider_anon_key is required"))
	}
	if appCfg.SessionKey == "" {
		problems = append(problems, errors.New("session_key is required"))
	}
	if appCfg.CSRFKey != "" && len(appCfg.CSRFKey) < 32 {
		problems = append(problems, errors.New("csrf_key must be at least 32 characters"))
	}
	if !auditlog.ValidMode(appCfg.AuditLogAuth) {
		problems = append(problems, fmt.Errorf("audit_log_auth %q must be one of all, db, log, off", appCfg.AuditLogAuth))
	}
	if appCfg.AuthRateLimit < 0 {
		problems = append(problems, errors.New("auth_rate_limit must not be negative"))
	}

	return errors.Join(problems...)
}
