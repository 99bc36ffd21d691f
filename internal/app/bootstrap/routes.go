// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	bookmarksfeature "github.com/markhold/markhold/internal/app/features/bookmarks"
	extensionfeature "github.com/markhold/markhold/internal/app/features/extension"
	groupsfeature "github.com/markhold/markhold/internal/app/features/groups"
	healthfeature "github.com/markhold/markhold/internal/app/features/health"
	loginfeature "github.com/markhold/markhold/internal/app/features/login"
	logoutfeature "github.com/markhold/markhold/internal/app/features/logout"
	signupfeature "github.com/markhold/markhold/internal/app/features/signup"
	bookmarkstore "github.com/markhold/markhold/internal/app/store/bookmarks"
	groupstore "github.com/markhold/markhold/internal/app/store/groups"
	userstore "github.com/markhold/markhold/internal/app/store/users"
	"github.com/markhold/markhold/internal/app/system/auth"
	"github.com/markhold/markhold/internal/app/system/origin"
	"github.com/markhold/markhold/internal/app/system/ratelimit"
	"github.com/markhold/markhold/internal/app/system/timeouts"
	"github.com/markhold/markhold/internal/app/system/urlmeta"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. The router mounts:
//   - /health for load balancers and orchestrators
//   - /signup, /login, /logout for account and session management
//   - /bookmark-ingest for the browser extension's CORS-gated capture
//   - /bookmarks and /groups, the signed-in JSON API used by the web app
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser fetches fresh user data on each request, so profile
	// updates and deleted accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	groups := groupstore.New(deps.MongoDatabase)
	bookmarks := bookmarkstore.New(deps.MongoDatabase)

	// Page-metadata fetching, wrapped in the Redis cache when configured.
	var meta urlmeta.Fetcher = urlmeta.NewHTTPFetcher(timeouts.Fetch(), logger)
	if deps.RedisClient != nil {
		meta = urlmeta.NewCachedFetcher(meta, deps.RedisClient, urlmeta.DefaultCacheTTL, logger)
	}

	// The localhost origin is admitted only in dev proper; staging and
	// test environments keep the extension-only allow-list.
	origins := origin.New(appCfg.ExtensionID, coreCfg.Env == "dev")

	// One shared throttle across the anonymous account endpoints.
	limits := ratelimit.NewAccountLimiter()

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.RedisClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Account and session endpoints
	signupHandler := signupfeature.NewHandler(deps.MongoDatabase, sessionMgr, limits, logger)
	r.Mount("/signup", signupfeature.Routes(signupHandler))

	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, limits, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Browser extension capture. Not behind RequireSignedIn: the handler
	// produces its own CORS-readable auth errors.
	captureHandler := extensionfeature.NewHandler(groups, bookmarks, meta, origins, logger)
	r.Mount("/bookmark-ingest", extensionfeature.Routes(captureHandler))

	// Signed-in JSON API for the web app
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)

		groupsHandler := groupsfeature.NewHandler(groups, bookmarks, logger)
		r.Mount("/groups", groupsfeature.Routes(groupsHandler))

		bookmarksHandler := bookmarksfeature.NewHandler(bookmarks, groups, meta, logger)
		r.Mount("/bookmarks", bookmarksfeature.Routes(bookmarksHandler))
	})

	return r, nil
}
