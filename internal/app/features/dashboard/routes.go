// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard feature under whatever mount point
// the top-level router chooses (e.g., "/dashboard").
//
// Every POST answers JSON callers (Accept: application/json) with the
// updated snapshot and redirects browsers back to the page.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeDashboard)
	r.Get("/state", h.ServeState)

	r.Post("/block/refresh", h.RefreshBlock)
	r.Post("/block/clear", h.ClearBlock)
	r.Post("/token/refresh", h.RefreshToken)
	r.Post("/ballot/address", h.RefreshBallotAddress)
	r.Post("/ballot/refresh", h.RefreshBallot)
	r.Post("/wallet/create", h.CreateWallet)
	r.Post("/wallet/connect", h.ConnectWallet)
	r.Post("/tokens/request", h.RequestTokens)
	r.Post("/delegate", h.Delegate)

	return r
}
