// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown waits for in-flight delegations, drops every session's keys and
// closes the ledger and MongoDB connections.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Jobs != nil {
		if err := deps.Jobs.Shutdown(ctx); err != nil {
			logger.Warn("background jobs canceled at shutdown", zap.Error(err))
		}
	}
	if deps.Cleanup != nil {
		deps.Cleanup.Stop()
	}
	if deps.Sessions != nil {
		deps.Sessions.Close()
	}
	if deps.Ledger != nil {
		deps.Ledger.Close()
	}
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
