package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/tokenvote/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// BlockReader is satisfied by *ledger.Conn.
type BlockReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB     Pinger
	Ledger BlockReader
	Log    *zap.Logger
}

// NewHandler constructs a health Handler with the Mongo client, the ledger
// connection and logger.
func NewHandler(db Pinger, ledger BlockReader, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Ledger: ledger,
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string  `json:"status"`
	Database string  `json:"database"`
	Ledger   string  `json:"ledger"`
	Block    *uint64 `json:"block,omitempty"`
	Message  string  `json:"message,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "ledger":"connected", "block":1234 }
//
// If either dependency fails: 503 and
//
//	{ "status":"error", "database":"disconnected", "ledger":"connected", "message":"Database unavailable", "error":"..." }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Ledger:   "connected",
	}

	if err := h.DB.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
	}

	n, err := h.Ledger.BlockNumber(ctx)
	if err != nil {
		h.Log.Error("health-check: ledger unreachable", zap.Error(err))
		resp.Ledger = "disconnected"
		if resp.Status == "ok" {
			resp.Message = "Ledger unavailable"
			resp.Error = err.Error()
		}
		resp.Status = "error"
	} else {
		resp.Block = &n
	}

	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
