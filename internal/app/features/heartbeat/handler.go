// internal/app/features/heartbeat/handler.go
package heartbeat

import (
	"net/http"

	"github.com/dalemusser/tokenvote/internal/app/system/websession"
	"go.uber.org/zap"
)

// Toucher marks a session active. *websession.Registry satisfies it.
type Toucher interface {
	Touch(id string) bool
}

// Handler keeps open dashboards from being evicted as idle.
type Handler struct {
	Sessions Toucher
	Log      *zap.Logger
}

// NewHandler creates a new heartbeat handler.
func NewHandler(sessions Toucher, logger *zap.Logger) *Handler {
	return &Handler{
		Sessions: sessions,
		Log:      logger,
	}
}

// ServeHeartbeat handles POST /heartbeat.
// It never creates a controller; a session that was already evicted gets a
// fresh one on the next dashboard request.
func (h *Handler) ServeHeartbeat(w http.ResponseWriter, r *http.Request) {
	id, ok := websession.ID(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent) // Silent fail - no session
		return
	}
	if !h.Sessions.Touch(id) {
		h.Log.Debug("heartbeat for unknown session", zap.String("session", id))
	}
	w.WriteHeader(http.StatusNoContent)
}
