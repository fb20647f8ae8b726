// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/tokenvote/internal/app/store/activity"
	"github.com/dalemusser/tokenvote/internal/app/system/auditlog"
	"github.com/dalemusser/tokenvote/internal/app/system/backend"
	"github.com/dalemusser/tokenvote/internal/app/system/controller"
	"github.com/dalemusser/tokenvote/internal/app/system/ledger"
	"github.com/dalemusser/tokenvote/internal/app/system/tasks"
	"github.com/dalemusser/tokenvote/internal/app/system/timeouts"
	"github.com/dalemusser/tokenvote/internal/app/system/websession"
	"github.com/dalemusser/tokenvote/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// cleanupInterval is how often idle sessions are looked for.
const cleanupInterval = time.Minute

// ConnectDB connects to MongoDB and the ledger and builds the long-lived
// services shared by every session.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	var deps DBDeps

	mctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	client, err := mongo.Connect(mctx, options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize))
	if err != nil {
		return deps, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(mctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return deps, fmt.Errorf("mongo ping: %w", err)
	}
	deps.MongoClient = client
	deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	lctx, lcancel := context.WithTimeout(ctx, timeouts.Medium())
	defer lcancel()
	conn, err := ledger.Dial(lctx, appCfg.RPCURL, appCfg.ChainID, logger)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return deps, err
	}
	deps.Ledger = conn

	if appCfg.KeystoreDir != "" {
		deps.Keystore = ledger.OpenKeystore(appCfg.KeystoreDir, logger)
		logger.Info("keystore opened",
			zap.String("dir", appCfg.KeystoreDir),
			zap.Int("accounts", len(deps.Keystore.Accounts())))
	}

	deps.Backend = backend.New(appCfg.BackendURL, backend.Paths{
		TokenAddress:  appCfg.TokenAddressPath,
		BallotAddress: appCfg.BallotAddressPath,
		RequestTokens: appCfg.RequestTokensPath,
	}, &http.Client{Timeout: timeouts.Long()}, logger)

	deps.Activity = activity.New(deps.MongoDatabase)
	deps.Audit = auditlog.New(deps.Activity, logger, appCfg.ActivityLog)

	deps.Sessions = websession.NewRegistry(newControllerFactory(deps, appCfg, logger), logger)
	deps.Jobs = tasks.NewTracker(logger)
	deps.Cleanup = workers.NewSessionCleanup(deps.Sessions, logger, cleanupInterval, appCfg.SessionIdleTimeout)

	return deps, nil
}

// newControllerFactory builds each session's controller over the shared
// ledger connection, backend client and activity recorder.
func newControllerFactory(deps DBDeps, appCfg AppConfig, logger *zap.Logger) websession.Factory {
	l := controller.FromConn(deps.Ledger)
	var wallets controller.Wallets
	if deps.Keystore != nil {
		wallets = deps.Keystore
	}
	return func(sessionID string) *controller.Controller {
		return controller.New(l, deps.Backend, controller.Options{
			SessionID: sessionID,
			Decimals:  appCfg.TokenDecimals,
			Wallets:   wallets,
			Recorder:  deps.Audit,
			Logger:    logger,
		})
	}
}

// EnsureSchema creates the activity indexes.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()
	if err := deps.Activity.EnsureIndexes(ctx); err != nil {
		logger.Error("activity indexes failed", zap.Error(err))
		return fmt.Errorf("activity indexes: %w", err)
	}
	return nil
}
