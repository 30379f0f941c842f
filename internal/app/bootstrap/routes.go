// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	activityfeature "github.com/dalemusser/distrohub/internal/app/features/activity"
	authpagefeature "github.com/dalemusser/distrohub/internal/app/features/authpage"
	dashboardfeature "github.com/dalemusser/distrohub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/distrohub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/distrohub/internal/app/features/health"
	homefeature "github.com/dalemusser/distrohub/internal/app/features/home"
	preferencesfeature "github.com/dalemusser/distrohub/internal/app/features/preferences"
	signoutfeature "github.com/dalemusser/distrohub/internal/app/features/signout"
	auditstore "github.com/dalemusser/distrohub/internal/app/store/audit"
	prefstore "github.com/dalemusser/distrohub/internal/app/store/preferences"
	"github.com/dalemusser/distrohub/internal/app/system/auditlog"
	"github.com/dalemusser/distrohub/internal/app/system/auth"
	"github.com/dalemusser/distrohub/internal/app/system/identity"
	"github.com/dalemusser/distrohub/internal/app/system/prefs"
	"github.com/dalemusser/distrohub/internal/app/system/ratelimit"
	"github.com/dalemusser/distrohub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// services bundles what the router hands to feature handlers.
type services struct {
	Provider       identity.Provider
	ProviderHealth healthfeature.ProviderChecker
	Sessions       *auth.SessionManager
	Audit          *auditlog.Logger
	Prefs          *prefs.Service
	Events         activityfeature.EventReader
	DB             healthfeature.DBPinger

	CSRFKey     []byte
	Secure      bool
	SiteURL     string
	AuthLimiter func(http.Handler) http.Handler
}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook. DistroHub builds the identity client and session
// manager here, boots the template engine, and mounts the feature routers
// behind CSRF protection and the role router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"

	client, err := identity.NewClient(identity.Config{
		URL:     appCfg.ProviderURL,
		AnonKey: appCfg.ProviderAnonKey,
	}, logger.Named("identity"))
	if err != nil {
		logger.Error("identity client init failed", zap.Error(err))
		return nil, err
	}

	sessionMgr, err := auth.NewSessionManager(auth.Config{
		Key:       appCfg.SessionKey,
		Name:      appCfg.SessionName,
		Domain:    appCfg.SessionDomain,
		MaxAge:    appCfg.SessionMaxAge,
		Secure:    secure,
		JWTSecret: appCfg.ProviderJWTSecret,
	}, client, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	key, err := csrfKey(appCfg.CSRFKey, logger)
	if err != nil {
		return nil, err
	}

	db := deps.MongoDatabase
	events := auditstore.New(db)
	prefsSvc := prefs.NewService(prefstore.New(db), logger)
	viewdata.SetPreferences(prefsSvc)

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	svc := services{
		Provider:       client,
		ProviderHealth: client,
		Sessions:       sessionMgr,
		Audit:          auditlog.New(events, logger, auditlog.Config{Auth: appCfg.AuditLogAuth}),
		Prefs:          prefsSvc,
		Events:         events,
		DB:             deps.MongoClient,
		CSRFKey:        key,
		Secure:         secure,
		SiteURL:        appCfg.SiteURL,
		AuthLimiter: ratelimit.AuthLimiter(ratelimit.Config{
			Requests: appCfg.AuthRateLimit,
			Window:   appCfg.AuthRateWindow,
		}, logger),
	}
	return newRouter(svc, logger), nil
}

// newRouter mounts every feature on a fresh chi router.
func newRouter(svc services, logger *zap.Logger) http.Handler {
	sm := svc.Sessions

	r := chi.NewRouter()

	// Set before mounting so sub-routers inherit it.
	errorsHandler := errorsfeature.NewHandler(logger)
	r.NotFound(errorsHandler.NotFound)

	// Health sits outside CSRF and the role router; probes carry no cookies.
	healthHandler := healthfeature.NewHandler(svc.DB, svc.ProviderHealth, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Group(func(app chi.Router) {
		app.Use(csrfProtect(svc.CSRFKey, svc.Secure, logger))
		// Edge routing by session and role for /, /auth and the dashboards.
		app.Use(sm.RoleRouter)

		homeHandler := homefeature.NewHandler(logger)
		app.Mount("/", homefeature.Routes(homeHandler, sm))

		actions := authpagefeature.NewActions(svc.Provider, sm, svc.Audit, svc.SiteURL, logger)
		authHandler := authpagefeature.NewHandler(actions, logger)
		app.Mount("/auth", authpagefeature.Routes(authHandler, sm, svc.AuthLimiter))

		apiHandler := signoutfeature.NewHandler(actions, sm, logger)
		app.Mount("/api/auth", signoutfeature.Routes(apiHandler))

		dashHandler := dashboardfeature.NewHandler(svc.Provider, svc.Audit, logger)
		dashRouter := dashboardfeature.Routes(dashHandler, sm)
		activityHandler := activityfeature.NewHandler(svc.Events, logger)
		dashRouter.Mount("/activity", activityfeature.Routes(activityHandler))
		app.Mount("/dashboard", dashRouter)

		app.Mount("/retailers-dashboard", dashboardfeature.RetailerRoutes(dashHandler, sm))

		prefsHandler := preferencesfeature.NewHandler(svc.Prefs, logger)
		app.Mount("/preferences", preferencesfeature.Routes(prefsHandler, sm))
	})

	return r
}
