// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/tokenvote/internal/app/store/activity"
	"github.com/dalemusser/tokenvote/internal/app/system/auditlog"
	"github.com/dalemusser/tokenvote/internal/app/system/backend"
	"github.com/dalemusser/tokenvote/internal/app/system/ledger"
	"github.com/dalemusser/tokenvote/internal/app/system/tasks"
	"github.com/dalemusser/tokenvote/internal/app/system/websession"
	"github.com/dalemusser/tokenvote/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Ledger   *ledger.Conn
	Keystore *ledger.Keystore // nil when keystore_dir is blank
	Backend  *backend.Client

	Activity *activity.Store
	Audit    *auditlog.Logger

	// Per-session controllers and the work that outlives a request.
	Sessions *websession.Registry
	Jobs     *tasks.Tracker
	Cleanup  *workers.SessionCleanup
}
