// internal/app/features/activity/list.go
package activity

import (
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/tokenvote/internal/app/features/errors"
	"github.com/dalemusser/tokenvote/internal/app/store/activity"
	"github.com/dalemusser/tokenvote/internal/app/system/timeouts"
	"github.com/dalemusser/tokenvote/internal/app/system/viewdata"
	"github.com/dalemusser/tokenvote/internal/app/system/websession"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
)

const (
	defaultLimit = 25
	maxLimit     = 200
)

type listData struct {
	viewdata.BaseVM `json:"-"`

	Address   string           `json:"address"`
	Mints     int64            `json:"mints"`
	Delegates int64            `json:"delegations"`
	Events    []activity.Event `json:"events"`
}

// ServeList handles GET /activity. It lists the recent activity of the
// wallet connected in the caller's session.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	data := listData{
		BaseVM: viewdata.NewBaseVM(r, "Activity", "/dashboard"),
		Events: []activity.Event{},
	}

	if id, ok := websession.ID(r); ok {
		if c, ok := h.Sessions.Lookup(id); ok {
			data.Address = c.Snapshot().UserAddress
		}
	}

	if data.Address != "" {
		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list activity")
		defer cancel()

		events, err := h.Activity.GetByAddress(ctx, data.Address, parseLimit(query.Get(r, "limit")))
		if err != nil {
			h.ErrLog.LogServerError(w, r, "list activity failed", err, "A database error occurred.", "/dashboard")
			return
		}
		if events != nil {
			data.Events = events
		}

		if data.Mints, err = h.Activity.CountByKind(ctx, data.Address, activity.KindMint); err != nil {
			h.ErrLog.LogServerError(w, r, "count mints failed", err, "A database error occurred.", "/dashboard")
			return
		}
		if data.Delegates, err = h.Activity.CountByKind(ctx, data.Address, activity.KindDelegate); err != nil {
			h.ErrLog.LogServerError(w, r, "count delegations failed", err, "A database error occurred.", "/dashboard")
			return
		}
	}

	if uierrors.WantsJSON(r) {
		uierrors.WriteJSON(w, http.StatusOK, data)
		return
	}
	templates.Render(w, r, "activity_list", data)
}

func parseLimit(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}
