// internal/app/features/dashboard/respond.go
package dashboard

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/tokenvote/internal/app/features/errors"
	"github.com/dalemusser/tokenvote/internal/app/system/backend"
	"github.com/dalemusser/tokenvote/internal/app/system/controller"
	"github.com/dalemusser/tokenvote/internal/app/system/ledger"
	"github.com/dalemusser/tokenvote/internal/app/system/tasks"
	"github.com/dalemusser/tokenvote/internal/app/system/units"
	"go.uber.org/zap"
)

// done answers a successful action. JSON callers get the snapshot, browsers
// go back to the dashboard.
func (h *Handler) done(w http.ResponseWriter, r *http.Request, c *controller.Controller, status int) {
	if uierrors.WantsJSON(r) {
		uierrors.WriteJSON(w, status, c.Snapshot())
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// fail answers a failed action. Upstream failures are already shown next to
// the field they concern, so browsers are sent back to the dashboard for
// those; precondition and input errors get the error page.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := classify(err)
	if status >= 500 && !uierrors.WantsJSON(r) {
		h.Log.Warn(op+" failed", zap.Error(err))
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.ErrLog.LogStatus(w, r, status, op+" failed", err, msg, "/dashboard")
}

// classify maps an action error to a status and a message safe to show.
func classify(err error) (int, string) {
	var se *backend.StatusError
	switch {
	case errors.Is(err, controller.ErrNoWallet):
		return http.StatusConflict, "Connect a wallet first."
	case errors.Is(err, controller.ErrNoTokenAddress):
		return http.StatusConflict, "The token address is not known yet. Refresh the block first."
	case errors.Is(err, controller.ErrNoBallotAddress):
		return http.StatusConflict, "The ballot address is not known yet."
	case errors.Is(err, controller.ErrNotReady):
		return http.StatusConflict, "Connect a wallet and load the token before delegating."
	case errors.Is(err, controller.ErrNoKeystore):
		return http.StatusNotImplemented, "This server has no keystore configured."
	case errors.Is(err, ledger.ErrAccessDenied):
		return http.StatusForbidden, "The passphrase was not accepted."
	case errors.Is(err, ledger.ErrUnknownAccount):
		return http.StatusNotFound, "That account is not in the keystore."
	case errors.Is(err, units.ErrEmptyAmount),
		errors.Is(err, units.ErrNegativeAmount),
		errors.Is(err, units.ErrInvalidAmount),
		errors.Is(err, units.ErrTooManyDecimals):
		return http.StatusBadRequest, "Enter a valid token amount."
	case errors.Is(err, controller.ErrTxFailed):
		return http.StatusBadGateway, "The transaction was reverted."
	case errors.Is(err, tasks.ErrShuttingDown):
		return http.StatusServiceUnavailable, "The server is shutting down. Please try again shortly."
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "The request timed out."
	case errors.As(err, &se), errors.Is(err, backend.ErrBadAddress):
		return http.StatusBadGateway, "The token service returned an error."
	default:
		return http.StatusBadGateway, "The ledger or token service could not be reached."
	}
}
