// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	uierrors "github.com/dalemusser/tokenvote/internal/app/features/errors"
	"github.com/dalemusser/tokenvote/internal/app/system/controller"
	"github.com/dalemusser/tokenvote/internal/app/system/ratelimit"
	"github.com/dalemusser/tokenvote/internal/app/system/tasks"
	"github.com/dalemusser/tokenvote/internal/app/system/websession"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	_ "github.com/dalemusser/tokenvote/internal/app/features/dashboard/views"
)

// AccountLister lists the keystore accounts a user may connect.
type AccountLister interface {
	Accounts() []common.Address
}

// Handler serves the dashboard page and its actions. Each browser session
// has its own controller in Sessions.
type Handler struct {
	Sessions *websession.Registry
	Jobs     *tasks.Tracker
	Mint     *ratelimit.MintLimiter // nil disables mint throttling
	Keystore AccountLister          // nil hides the keystore form
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(sessions *websession.Registry, jobs *tasks.Tracker, mint *ratelimit.MintLimiter, keystore AccountLister, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Sessions: sessions,
		Jobs:     jobs,
		Mint:     mint,
		Keystore: keystore,
		ErrLog:   errLog,
		Log:      logger,
	}
}

// session returns the caller's controller. It writes an error response and
// returns false when the request carries no session.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*controller.Controller, string, bool) {
	id, ok := websession.ID(r)
	if !ok {
		h.ErrLog.LogServerError(w, r, "request has no session", nil,
			"Your session could not be loaded. Please reload the page.", "/dashboard")
		return nil, "", false
	}
	return h.Sessions.Get(id), id, true
}
