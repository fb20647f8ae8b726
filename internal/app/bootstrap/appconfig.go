// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig carries everything the dashboard needs to reach the ledger, the
// token backend and MongoDB, plus session and throttling settings.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Ledger configuration
	RPCURL        string // JSON-RPC endpoint (http, https, ws or wss)
	ChainID       int64  // 0 asks the node
	TokenDecimals int    // Fixed-point scale of the governance token
	KeystoreDir   string // Encrypted key directory; blank disables wallet connect

	// Token backend configuration
	BackendURL        string
	TokenAddressPath  string
	BallotAddressPath string
	RequestTokensPath string

	// Session management configuration
	SessionKey         string        // Secret key for signing session cookies (must be strong in production)
	SessionName        string        // Cookie name for sessions (default: tokenvote-session)
	SessionDomain      string        // Cookie domain (blank means current host)
	SessionIdleTimeout time.Duration // Idle dashboards are evicted after this long
	CSRFKey            string        // Signs CSRF tokens; blank generates a per-process key outside prod

	// Transactions
	TxWaitTimeout time.Duration // How long a delegation may take to be mined
	MintRateLimit int           // Mint requests per minute per session; 0 disables the limit

	// Comma-separated CIDRs or IPs of reverse proxies whose X-Forwarded-For
	// is believed by the mint limiter. Blank trusts none.
	TrustedProxies string

	// Activity logging: 'all' (db+log), 'db', 'log', or 'off'
	ActivityLog string
}
