// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/markhold/markhold/internal/app/system/timeouts"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{Fetch: appCfg.FetchTimeout})
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeout overrides applied from environment", zap.Int("count", n))
	}
	return nil
}
