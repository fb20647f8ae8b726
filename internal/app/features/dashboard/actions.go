// internal/app/features/dashboard/actions.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/tokenvote/internal/app/system/controller"
	"github.com/dalemusser/tokenvote/internal/app/system/limits"
	"github.com/dalemusser/tokenvote/internal/app/system/tasks"
	"github.com/dalemusser/tokenvote/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type action func(ctx context.Context, c *controller.Controller, r *http.Request) error

// run adapts an action to a handler: it resolves the session controller,
// bounds the call with timeout and answers with the resulting snapshot.
func (h *Handler) run(op string, timeout func() time.Duration, fn action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, _, ok := h.session(w, r)
		if !ok {
			return
		}
		ctx, cancel := timeouts.WithTimeout(r.Context(), timeout(), h.Log, op)
		defer cancel()

		if err := fn(ctx, c, r); err != nil {
			h.fail(w, r, op, err)
			return
		}
		h.done(w, r, c, http.StatusOK)
	}
}

// RefreshBlock handles POST /dashboard/block/refresh.
func (h *Handler) RefreshBlock(w http.ResponseWriter, r *http.Request) {
	h.run("refresh block", timeouts.Medium, func(ctx context.Context, c *controller.Controller, _ *http.Request) error {
		return c.RefreshBlock(ctx)
	})(w, r)
}

// ClearBlock handles POST /dashboard/block/clear.
func (h *Handler) ClearBlock(w http.ResponseWriter, r *http.Request) {
	h.run("clear block", timeouts.Short, func(_ context.Context, c *controller.Controller, _ *http.Request) error {
		c.ClearBlock()
		return nil
	})(w, r)
}

// RefreshToken handles POST /dashboard/token/refresh.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	h.run("refresh token", timeouts.Medium, func(ctx context.Context, c *controller.Controller, _ *http.Request) error {
		return c.RefreshTokenInfo(ctx)
	})(w, r)
}

// RefreshBallotAddress handles POST /dashboard/ballot/address.
func (h *Handler) RefreshBallotAddress(w http.ResponseWriter, r *http.Request) {
	h.run("refresh ballot address", timeouts.Medium, func(ctx context.Context, c *controller.Controller, _ *http.Request) error {
		return c.RefreshBallotAddress(ctx)
	})(w, r)
}

// RefreshBallot handles POST /dashboard/ballot/refresh.
func (h *Handler) RefreshBallot(w http.ResponseWriter, r *http.Request) {
	h.run("refresh ballot", timeouts.Medium, func(ctx context.Context, c *controller.Controller, _ *http.Request) error {
		return c.RefreshBallotInfo(ctx)
	})(w, r)
}

// CreateWallet handles POST /dashboard/wallet/create.
func (h *Handler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	h.run("create wallet", timeouts.Medium, func(ctx context.Context, c *controller.Controller, _ *http.Request) error {
		return c.CreateWallet(ctx)
	})(w, r)
}

// ConnectWallet handles POST /dashboard/wallet/connect.
// Keystore decryption is slow, so it gets the long timeout.
func (h *Handler) ConnectWallet(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxActionFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/dashboard")
		return
	}
	h.run("connect wallet", timeouts.Long, func(ctx context.Context, c *controller.Controller, r *http.Request) error {
		return c.ConnectWallet(ctx, r.PostFormValue("account"), r.PostFormValue("passphrase"))
	})(w, r)
}

// RequestTokens handles POST /dashboard/tokens/request.
func (h *Handler) RequestTokens(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxActionFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/dashboard")
		return
	}
	c, sid, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.Mint != nil {
		if allowed, reason := h.Mint.Check(r, sid); !allowed {
			h.ErrLog.LogStatus(w, r, http.StatusTooManyRequests, "mint rate limited", nil, reason, "/dashboard")
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "request tokens")
	defer cancel()
	if err := c.RequestTokenMint(ctx, r.PostFormValue("amount")); err != nil {
		h.fail(w, r, "request tokens", err)
		return
	}
	h.done(w, r, c, http.StatusOK)
}

// Delegate handles POST /dashboard/delegate. The transaction is sent while
// the request waits; mining is awaited by a background job so the response
// returns with the delegation marked pending.
func (h *Handler) Delegate(w http.ResponseWriter, r *http.Request) {
	c, sid, ok := h.session(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delegate")
	defer cancel()
	tx, err := c.StartDelegation(ctx)
	if err != nil {
		h.fail(w, r, "delegate", err)
		return
	}

	hash := tx.Hash().Hex()
	err = h.Jobs.Go(tasks.Job{
		Name:    "delegation " + hash,
		Timeout: timeouts.TxWait(),
		Run: func(ctx context.Context) error {
			return c.FinishDelegation(ctx, tx)
		},
	})
	if err != nil {
		h.fail(w, r, "delegate", err)
		return
	}

	h.Log.Info("delegation submitted", zap.String("session", sid), zap.String("tx", hash))
	h.done(w, r, c, http.StatusAccepted)
}
