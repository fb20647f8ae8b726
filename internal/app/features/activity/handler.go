// internal/app/features/activity/handler.go
package activity

import (
	"context"

	uierrors "github.com/dalemusser/tokenvote/internal/app/features/errors"
	"github.com/dalemusser/tokenvote/internal/app/store/activity"
	"github.com/dalemusser/tokenvote/internal/app/system/controller"
	"go.uber.org/zap"
)

// Lister reads recorded activity. *activity.Store satisfies it.
type Lister interface {
	GetByAddress(ctx context.Context, address string, limit int64) ([]activity.Event, error)
	CountByKind(ctx context.Context, address, kind string) (int64, error)
}

// Sessions finds a session's controller without creating one.
type Sessions interface {
	Lookup(id string) (*controller.Controller, bool)
}

// Handler owns the activity page.
type Handler struct {
	Activity Lister
	Sessions Sessions
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

// NewHandler creates a new activity Handler.
func NewHandler(activityStore Lister, sessions Sessions, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Activity: activityStore,
		Sessions: sessions,
		ErrLog:   errLog,
		Log:      logger,
	}
}
