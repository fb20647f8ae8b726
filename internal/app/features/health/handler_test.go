package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/tokenvote/internal/app/features/health"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context, rp *readpref.ReadPref) error { return f.err }

type fakeLedger struct {
	block uint64
	err   error
}

func (f fakeLedger) BlockNumber(ctx context.Context) (uint64, error) { return f.block, f.err }

type response struct {
	Status   string  `json:"status"`
	Database string  `json:"database"`
	Ledger   string  `json:"ledger"`
	Block    *uint64 `json:"block"`
	Message  string  `json:"message"`
}

func serve(t *testing.T, h *health.Handler) (*httptest.ResponseRecorder, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec, resp
}

func TestServe_Healthy(t *testing.T) {
	h := health.NewHandler(fakePinger{}, fakeLedger{block: 99}, zap.NewNop())
	rec, resp := serve(t, h)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	if resp.Status != "ok" || resp.Database != "connected" || resp.Ledger != "connected" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Block == nil || *resp.Block != 99 {
		t.Errorf("block: got %v, want 99", resp.Block)
	}
}

func TestServe_DatabaseDown(t *testing.T) {
	h := health.NewHandler(fakePinger{err: errors.New("no reachable servers")}, fakeLedger{block: 1}, zap.NewNop())
	rec, resp := serve(t, h)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	if resp.Database != "disconnected" || resp.Message != "Database unavailable" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Ledger != "connected" {
		t.Errorf("ledger: got %q, want connected", resp.Ledger)
	}
}

func TestServe_LedgerDown(t *testing.T) {
	h := health.NewHandler(fakePinger{}, fakeLedger{err: errors.New("connection refused")}, zap.NewNop())
	rec, resp := serve(t, h)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	if resp.Ledger != "disconnected" || resp.Message != "Ledger unavailable" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Block != nil {
		t.Errorf("block should be omitted, got %d", *resp.Block)
	}
}
