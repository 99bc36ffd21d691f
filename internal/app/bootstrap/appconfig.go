// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration: WAFFLE's CoreConfig
// handles framework-level settings like HTTP ports, TLS, and log level.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: markhold-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Browser extension configuration
	ExtensionID string // Installed extension id allowed to call the capture endpoint

	// Metadata cache configuration
	RedisAddr string // Redis address for the page-metadata cache (blank disables caching)

	// Page fetch configuration
	FetchTimeout time.Duration // Budget for fetching a page's title and favicon
}
