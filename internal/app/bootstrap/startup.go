// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/tokenvote/internal/app/resources"
	"github.com/dalemusser/tokenvote/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It loads
// shared templates, applies timeout overrides and starts the session
// cleanup worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	timeouts.Configure(timeouts.Config{TxWait: appCfg.TxWaitTimeout})
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts configured from environment", zap.Int("count", n))
	}
	cur := timeouts.Current()
	logger.Info("timeouts",
		zap.Duration("ping", cur.Ping),
		zap.Duration("medium", cur.Medium),
		zap.Duration("tx_wait", cur.TxWait))

	deps.Cleanup.Start()
	return nil
}
