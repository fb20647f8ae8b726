package activity_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	activityfeature "github.com/dalemusser/tokenvote/internal/app/features/activity"
	uierrors "github.com/dalemusser/tokenvote/internal/app/features/errors"
	"github.com/dalemusser/tokenvote/internal/app/store/activity"
	"github.com/dalemusser/tokenvote/internal/app/system/controller"
	"github.com/dalemusser/tokenvote/internal/app/system/websession"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLister struct {
	events    []activity.Event
	err       error
	lastAddr  string
	lastLimit int64
}

func (f *fakeLister) GetByAddress(ctx context.Context, address string, limit int64) ([]activity.Event, error) {
	f.lastAddr, f.lastLimit = address, limit
	return f.events, f.err
}

func (f *fakeLister) CountByKind(ctx context.Context, address, kind string) (int64, error) {
	var n int64
	for _, e := range f.events {
		if e.Kind == kind {
			n++
		}
	}
	return n, f.err
}

type fakeSessions map[string]*controller.Controller

func (f fakeSessions) Lookup(id string) (*controller.Controller, bool) {
	c, ok := f[id]
	return c, ok
}

// connectedController returns a controller with a generated wallet. The
// ledger is only asked for its chain id and balance.
func connectedController(t *testing.T) *controller.Controller {
	t.Helper()
	c := controller.New(chainOnly{}, nil, controller.Options{})
	t.Cleanup(c.Close)
	require.NoError(t, c.CreateWallet(context.Background()))
	return c
}

type response struct {
	Address     string           `json:"address"`
	Mints       int64            `json:"mints"`
	Delegations int64            `json:"delegations"`
	Events      []activity.Event `json:"events"`
}

func get(t *testing.T, h *activityfeature.Handler, target, session string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Accept", "application/json")
	if session != "" {
		req = websession.WithID(req, session)
	}
	rec := httptest.NewRecorder()
	activityfeature.Routes(h).ServeHTTP(rec, req)
	return rec
}

func newHandler(lister *fakeLister, sessions fakeSessions) *activityfeature.Handler {
	logger := zap.NewNop()
	return activityfeature.NewHandler(lister, sessions, uierrors.NewErrorLogger(logger), logger)
}

func TestServeList_NoWallet(t *testing.T) {
	lister := &fakeLister{}
	rec := get(t, newHandler(lister, fakeSessions{}), "/", "s1")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Address)
	assert.Empty(t, resp.Events)
	assert.Empty(t, lister.lastAddr, "no query without a wallet")
}

func TestServeList_ConnectedWallet(t *testing.T) {
	c := connectedController(t)
	addr := c.Snapshot().UserAddress
	lister := &fakeLister{events: []activity.Event{
		{Kind: activity.KindMint, Amount: "5", Status: activity.StatusConfirmed, Timestamp: time.Now()},
		{Kind: activity.KindDelegate, TxHash: "0x1", Status: activity.StatusSubmitted, Timestamp: time.Now()},
		{Kind: activity.KindMint, Amount: "1", Status: activity.StatusFailed, Timestamp: time.Now()},
	}}

	rec := get(t, newHandler(lister, fakeSessions{"s1": c}), "/?limit=10", "s1")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, addr, resp.Address)
	assert.Len(t, resp.Events, 3)
	assert.Equal(t, int64(2), resp.Mints)
	assert.Equal(t, int64(1), resp.Delegations)
	assert.Equal(t, addr, lister.lastAddr)
	assert.Equal(t, int64(10), lister.lastLimit)
}

func TestServeList_LimitIsClamped(t *testing.T) {
	c := connectedController(t)
	lister := &fakeLister{}
	h := newHandler(lister, fakeSessions{"s1": c})

	get(t, h, "/?limit=100000", "s1")
	assert.Equal(t, int64(200), lister.lastLimit)

	get(t, h, "/?limit=nope", "s1")
	assert.Equal(t, int64(25), lister.lastLimit)
}

func TestServeList_StoreError(t *testing.T) {
	c := connectedController(t)
	lister := &fakeLister{err: errors.New("server selection timeout")}

	rec := get(t, newHandler(lister, fakeSessions{"s1": c}), "/", "s1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

