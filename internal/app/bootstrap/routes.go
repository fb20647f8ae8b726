// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	activityfeature "github.com/dalemusser/tokenvote/internal/app/features/activity"
	dashboardfeature "github.com/dalemusser/tokenvote/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/tokenvote/internal/app/features/errors"
	healthfeature "github.com/dalemusser/tokenvote/internal/app/features/health"
	heartbeatfeature "github.com/dalemusser/tokenvote/internal/app/features/heartbeat"
	homefeature "github.com/dalemusser/tokenvote/internal/app/features/home"
	"github.com/dalemusser/tokenvote/internal/app/system/ratelimit"
	"github.com/dalemusser/tokenvote/internal/app/system/websession"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// TokenVote initializes the template engine, gives every browser a session
// id, and mounts the dashboard, activity, health and metrics endpoints.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := websession.NewManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.SessionIdleTimeout, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	key, err := csrfKey(appCfg.CSRFKey, secure, logger)
	if err != nil {
		logger.Error("csrf init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Health check and metrics for load balancers and scrapers; no session.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Ledger, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", promhttp.Handler())

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)

	r.Group(func(sr chi.Router) {
		// Every page and action below belongs to a dashboard session, and
		// every POST must carry the session's CSRF token.
		sr.Use(sessionMgr.Middleware)
		sr.Use(csrfProtect(key, secure, errorsHandler.Forbidden, logger))

		homeHandler := homefeature.NewHandler(logger)
		sr.Mount("/", homefeature.Routes(homeHandler))

		var mint *ratelimit.MintLimiter
		if appCfg.MintRateLimit > 0 {
			// Validated in ValidateConfig.
			proxies, _ := ratelimit.ParsePrefixes(appCfg.TrustedProxies)
			mint = ratelimit.NewMintLimiter(appCfg.MintRateLimit, proxies)
		}
		var keystore dashboardfeature.AccountLister
		if deps.Keystore != nil {
			keystore = deps.Keystore
		}
		dashboardHandler := dashboardfeature.NewHandler(deps.Sessions, deps.Jobs, mint, keystore, errLog, logger)
		sr.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))

		activityHandler := activityfeature.NewHandler(deps.Activity, deps.Sessions, errLog, logger)
		sr.Mount("/activity", activityfeature.Routes(activityHandler))

		heartbeatHandler := heartbeatfeature.NewHandler(deps.Sessions, logger)
		sr.Mount("/heartbeat", heartbeatfeature.Routes(heartbeatHandler))

		sr.Get("/slow-down", errorsHandler.TooManyRequests)
	})

	return r, nil
}
