// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dalemusser/tokenvote/internal/app/system/auditlog"
	"github.com/dalemusser/tokenvote/internal/app/system/backend"
	"github.com/dalemusser/tokenvote/internal/app/system/ratelimit"
	"github.com/dalemusser/tokenvote/internal/app/system/timeouts"
	"github.com/dalemusser/tokenvote/internal/app/system/units"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for TokenVote.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: rpc_url, backend_url, etc.
//   - Environment variables: TOKENVOTE_RPC_URL, TOKENVOTE_BACKEND_URL, etc.
//   - Command-line flags: --rpc_url, --backend_url, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "tokenvote", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size (default: 5)"},

	// Ledger
	{Name: "rpc_url", Default: "http://localhost:8545", Desc: "Ledger JSON-RPC endpoint"},
	{Name: "chain_id", Default: 0, Desc: "Chain ID used to sign transactions (0 asks the node)"},
	{Name: "token_decimals", Default: units.DefaultDecimals, Desc: "Decimal places of the governance token"},
	{Name: "keystore_dir", Default: "", Desc: "Encrypted keystore directory (blank disables wallet connect)"},

	// Token backend
	{Name: "backend_url", Default: "http://localhost:3000", Desc: "Token backend base URL"},
	{Name: "token_address_path", Default: backend.DefaultPaths().TokenAddress, Desc: "Backend path returning the token address"},
	{Name: "ballot_address_path", Default: backend.DefaultPaths().BallotAddress, Desc: "Backend path returning the ballot address"},
	{Name: "request_tokens_path", Default: backend.DefaultPaths().RequestTokens, Desc: "Backend path that mints tokens"},

	// Sessions
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "tokenvote-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_idle_timeout", Default: "30m", Desc: "Evict dashboards idle this long (e.g., 30m, 2h)"},
	{Name: "csrf_key", Default: "", Desc: "CSRF token signing key, 32+ chars (blank generates one outside prod)"},

	// Transactions
	{Name: "tx_wait_timeout", Default: "2m", Desc: "How long to wait for a delegation to be mined"},
	{Name: "mint_rate_limit", Default: 5, Desc: "Token requests per minute per session (0 disables)"},
	{Name: "trusted_proxies", Default: "", Desc: "Comma-separated proxy CIDRs/IPs whose X-Forwarded-For is trusted"},

	// Activity logging
	{Name: "activity_log", Default: "all", Desc: "Transaction activity logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, TOKENVOTE_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TOKENVOTE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		RPCURL:        appValues.String("rpc_url"),
		ChainID:       int64(appValues.Int("chain_id")),
		TokenDecimals: appValues.Int("token_decimals"),
		KeystoreDir:   appValues.String("keystore_dir"),

		BackendURL:        appValues.String("backend_url"),
		TokenAddressPath:  appValues.String("token_address_path"),
		BallotAddressPath: appValues.String("ballot_address_path"),
		RequestTokensPath: appValues.String("request_tokens_path"),

		SessionKey:         appValues.String("session_key"),
		SessionName:        appValues.String("session_name"),
		SessionDomain:      appValues.String("session_domain"),
		SessionIdleTimeout: appValues.Duration("session_idle_timeout", 30*time.Minute),
		CSRFKey:            appValues.String("csrf_key"),

		TxWaitTimeout:  appValues.Duration("tx_wait_timeout", timeouts.DefaultTxWait),
		MintRateLimit:  appValues.Int("mint_rate_limit"),
		TrustedProxies: appValues.String("trusted_proxies"),

		ActivityLog: appValues.String("activity_log"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Endpoints and numeric ranges are checked here so a typo fails fast
// instead of surfacing as a dashboard error on the first click.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if err := validateURL(appCfg.RPCURL, "http", "https", "ws", "wss"); err != nil {
		return fmt.Errorf("invalid rpc_url: %w", err)
	}
	if err := validateURL(appCfg.BackendURL, "http", "https"); err != nil {
		return fmt.Errorf("invalid backend_url: %w", err)
	}
	if appCfg.ChainID < 0 {
		return fmt.Errorf("chain_id must not be negative, got %d", appCfg.ChainID)
	}
	if appCfg.TokenDecimals < 0 || appCfg.TokenDecimals > units.MaxDecimals {
		return fmt.Errorf("token_decimals must be between 0 and %d, got %d", units.MaxDecimals, appCfg.TokenDecimals)
	}
	if appCfg.CSRFKey != "" && len(appCfg.CSRFKey) < 32 {
		return fmt.Errorf("csrf_key must be at least 32 chars, got %d", len(appCfg.CSRFKey))
	}
	if appCfg.SessionIdleTimeout <= 0 {
		return fmt.Errorf("session_idle_timeout must be positive")
	}
	if appCfg.TxWaitTimeout <= 0 {
		return fmt.Errorf("tx_wait_timeout must be positive")
	}
	if appCfg.MintRateLimit < 0 {
		return fmt.Errorf("mint_rate_limit must not be negative, got %d", appCfg.MintRateLimit)
	}
	if _, err := ratelimit.ParsePrefixes(appCfg.TrustedProxies); err != nil {
		return fmt.Errorf("invalid trusted_proxies: %w", err)
	}
	if !auditlog.ValidMode(appCfg.ActivityLog) {
		return fmt.Errorf("activity_log must be one of all, db, log, off; got %q", appCfg.ActivityLog)
	}
	return nil
}

func validateURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("%q: scheme must be one of %v", raw, schemes)
}
