// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxActionFormSize is the maximum size for dashboard action forms
	// (mint amount, keystore account and passphrase).
	MaxActionFormSize = 4 << 10 // 4 KB
)
