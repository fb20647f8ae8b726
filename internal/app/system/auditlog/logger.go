// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"

	"github.com/dalemusser/tokenvote/internal/app/store/activity"
	"go.uber.org/zap"
)

// Modes control where transaction activity is written.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off" // disabled
)

// ValidMode reports whether m is a known mode.
func ValidMode(m string) bool {
	switch m {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Logger records mint and delegation activity to MongoDB (via activity.Store)
// and structured logs (via zap).
type Logger struct {
	store  *activity.Store
	zapLog *zap.Logger
	mode   string
}

// New creates a new Logger. A nil store turns "all" into "log" and "db" into
// "off".
func New(store *activity.Store, zapLog *zap.Logger, mode string) *Logger {
	if !ValidMode(mode) {
		mode = ModeAll
	}
	if store == nil {
		switch mode {
		case ModeAll:
			mode = ModeLog
		case ModeDB:
			mode = ModeOff
		}
	}
	return &Logger{store: store, zapLog: zapLog, mode: mode}
}

func (l *Logger) toLog() bool { return l.mode == ModeAll || l.mode == ModeLog }
func (l *Logger) toDB() bool  { return l.mode == ModeAll || l.mode == ModeDB }

// Record stores one event. If the logger is nil, this is a no-op.
func (l *Logger) Record(ctx context.Context, event activity.Event) {
	if l == nil || l.mode == ModeOff {
		return
	}

	if l.toLog() {
		fields := []zap.Field{
			zap.Bool("activity", true),
			zap.String("kind", event.Kind),
			zap.String("address", event.Address),
			zap.String("status", event.Status),
		}
		if event.Amount != "" {
			fields = append(fields, zap.String("amount", event.Amount))
		}
		if event.TxHash != "" {
			fields = append(fields, zap.String("tx_hash", event.TxHash))
		}
		if event.Error != "" {
			fields = append(fields, zap.String("error", event.Error))
		}
		if event.Status == activity.StatusFailed {
			l.zapLog.Warn("tx activity", fields...)
		} else {
			l.zapLog.Info("tx activity", fields...)
		}
	}

	if l.toDB() {
		if err := l.store.Create(ctx, event); err != nil {
			l.zapLog.Error("failed to store tx activity",
				zap.Error(err),
				zap.String("kind", event.Kind),
			)
		}
	}
}

// SetStatus moves the event for txHash to status. If the logger is nil,
// this is a no-op.
func (l *Logger) SetStatus(ctx context.Context, txHash, status, errMsg string) {
	if l == nil || l.mode == ModeOff {
		return
	}

	if l.toLog() {
		l.zapLog.Info("tx activity status",
			zap.Bool("activity", true),
			zap.String("tx_hash", txHash),
			zap.String("status", status),
			zap.String("error", errMsg))
	}

	if l.toDB() {
		if err := l.store.SetStatus(ctx, txHash, status, errMsg); err != nil {
			l.zapLog.Error("failed to update tx activity",
				zap.Error(err),
				zap.String("tx_hash", txHash),
			)
		}
	}
}
