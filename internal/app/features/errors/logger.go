// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/tokenvote/internal/app/system/websession"
	"go.uber.org/zap"
)

// ErrorLogger logs a handler failure with request context and answers the
// caller with a friendly message. The internal error never reaches the
// response.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger creates an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if id, ok := websession.ID(r); ok {
		fields = append(fields, zap.String("session", id))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	return fields
}

// LogServerError logs at Error and responds 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.Log.Error(logMsg, e.fields(r, err)...)
	Render(w, r, http.StatusInternalServerError, userMsg, backURL)
}

// LogBadRequest logs at Warn and responds 400.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.LogStatus(w, r, http.StatusBadRequest, logMsg, err, userMsg, backURL)
}

// LogStatus logs at Warn and responds with status. Use it for client and
// upstream failures that are expected in normal operation.
func (e *ErrorLogger) LogStatus(w http.ResponseWriter, r *http.Request, status int, logMsg string, err error, userMsg, backURL string) {
	e.Log.Warn(logMsg, append(e.fields(r, err), zap.Int("status", status))...)
	Render(w, r, status, userMsg, backURL)
}
