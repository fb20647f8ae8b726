// internal/app/bootstrap/csrf.go
package bootstrap

import (
	"fmt"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

const csrfCookieName = "tokenvote-csrf"

// csrfKey returns the key used to sign CSRF tokens. A blank key is allowed
// outside production, where a random key is generated per process.
func csrfKey(raw string, secure bool, logger *zap.Logger) ([]byte, error) {
	switch {
	case raw == "" && secure:
		return nil, fmt.Errorf("csrf_key is empty; provide 32 random chars")
	case raw == "":
		key := securecookie.GenerateRandomKey(32)
		if key == nil {
			return nil, fmt.Errorf("csrf key: random source unavailable")
		}
		logger.Warn("csrf_key is empty; using a random key for this process")
		return key, nil
	case len(raw) < 32:
		return nil, fmt.Errorf("csrf_key must be at least 32 chars, got %d", len(raw))
	}
	return []byte(raw), nil
}

// csrfProtect rejects unsafe requests that lack a valid token. Requests
// over plain http (dev) skip the Origin/Referer check, which gorilla/csrf
// only makes for https.
func csrfProtect(key []byte, secure bool, onFail http.HandlerFunc, logger *zap.Logger) func(http.Handler) http.Handler {
	protect := csrf.Protect(key,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName(csrfCookieName),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("csrf check failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(csrf.FailureReason(r)))
			onFail(w, r)
		})),
	)
	return func(next http.Handler) http.Handler {
		h := protect(next)
		if secure {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
