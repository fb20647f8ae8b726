package bootstrap

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:           "mongodb://localhost:27017",
		MongoDatabase:      "tokenvote",
		RPCURL:             "http://localhost:8545",
		TokenDecimals:      18,
		BackendURL:         "http://localhost:3000",
		SessionIdleTimeout: 30 * time.Minute,
		TxWaitTimeout:      2 * time.Minute,
		MintRateLimit:      5,
		ActivityLog:        "all",
	}
}

func TestValidateConfig_Valid(t *testing.T) {
	if err := ValidateConfig(nil, validConfig(), zap.NewNop()); err != nil {
		t.Fatalf("ValidateConfig: %v", err)
	}
}

func TestValidateConfig_WebsocketRPC(t *testing.T) {
	cfg := validConfig()
	cfg.RPCURL = "wss://node.example.com/ws"
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err != nil {
		t.Fatalf("ValidateConfig: %v", err)
	}
}

func TestValidateConfig_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		want   string
	}{
		{"rpc scheme", func(c *AppConfig) { c.RPCURL = "ftp://node:21" }, "rpc_url"},
		{"rpc host", func(c *AppConfig) { c.RPCURL = "http://" }, "rpc_url"},
		{"backend scheme", func(c *AppConfig) { c.BackendURL = "ws://backend" }, "backend_url"},
		{"negative chain", func(c *AppConfig) { c.ChainID = -1 }, "chain_id"},
		{"decimals", func(c *AppConfig) { c.TokenDecimals = 78 }, "token_decimals"},
		{"idle timeout", func(c *AppConfig) { c.SessionIdleTimeout = 0 }, "session_idle_timeout"},
		{"tx wait", func(c *AppConfig) { c.TxWaitTimeout = -time.Second }, "tx_wait_timeout"},
		{"rate limit", func(c *AppConfig) { c.MintRateLimit = -1 }, "mint_rate_limit"},
		{"activity log", func(c *AppConfig) { c.ActivityLog = "verbose" }, "activity_log"},
		{"trusted proxies", func(c *AppConfig) { c.TrustedProxies = "10.0.0.0/8, nope" }, "trusted_proxies"},
		{"short csrf key", func(c *AppConfig) { c.CSRFKey = "short" }, "csrf_key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(nil, cfg, zap.NewNop())
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestAppConfigKeys_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for _, k := range appConfigKeys {
		if seen[k.Name] {
			t.Errorf("duplicate config key %q", k.Name)
		}
		seen[k.Name] = true
	}
	for _, name := range []string{"rpc_url", "backend_url", "keystore_dir", "activity_log", "mint_rate_limit"} {
		if !seen[name] {
			t.Errorf("missing config key %q", name)
		}
	}
}
