// Package timeouts holds the deadlines used for ledger, backend and database
// calls.
//
// Tiers:
//   - Ping: health probes (mongo ping, latest block)
//   - Short: one contract read or one backend lookup
//   - Medium: a dashboard action that fans out to several reads
//   - Long: wallet connection, mint requests, startup connections
//   - TxWait: waiting for a submitted transaction to be mined
//
// Values start at the defaults and may be changed once at startup with
// Configure or ConfigureFromEnv.
package timeouts

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultTxWait = 2 * time.Minute
)

// Config is a full set of timeouts. Zero fields are ignored by Configure.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	TxWait time.Duration
}

func defaults() Config {
	return Config{
		Ping:   DefaultPing,
		Short:  DefaultShort,
		Medium: DefaultMedium,
		Long:   DefaultLong,
		TxWait: DefaultTxWait,
	}
}

var (
	mu  sync.RWMutex
	cur = defaults()
)

// envVars maps each environment variable to the field it sets.
var envVars = []struct {
	name  string
	field func(*Config) *time.Duration
}{
	{"TIMEOUT_PING", func(c *Config) *time.Duration { return &c.Ping }},
	{"TIMEOUT_SHORT", func(c *Config) *time.Duration { return &c.Short }},
	{"TIMEOUT_MEDIUM", func(c *Config) *time.Duration { return &c.Medium }},
	{"TIMEOUT_LONG", func(c *Config) *time.Duration { return &c.Long }},
	{"TIMEOUT_TX_WAIT", func(c *Config) *time.Duration { return &c.TxWait }},
}

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(cur)
}

// Ping bounds health probes.
func Ping() time.Duration { return get(func(c Config) time.Duration { return c.Ping }) }

// Short bounds a single read.
func Short() time.Duration { return get(func(c Config) time.Duration { return c.Short }) }

// Medium bounds a dashboard refresh.
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }

// Long bounds wallet connection, mint requests and startup dials.
func Long() time.Duration { return get(func(c Config) time.Duration { return c.Long }) }

// TxWait bounds the wait for a transaction receipt.
func TxWait() time.Duration { return get(func(c Config) time.Duration { return c.TxWait }) }

// Current returns the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// Configure overrides every non-zero field of cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	for _, v := range envVars {
		if d := *v.field(&cfg); d > 0 {
			*v.field(&cur) = d
		}
	}
}

// ConfigureFromEnv applies TIMEOUT_* variables (Go duration strings such as
// "90s"). Unset, unparsable and non-positive values are skipped. It returns
// how many values were applied.
func ConfigureFromEnv() int {
	var cfg Config
	n := 0
	for _, v := range envVars {
		raw := os.Getenv(v.name)
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			*v.field(&cfg) = d
			n++
		}
	}
	Configure(cfg)
	return n
}

// Reset restores the defaults. Tests call it in cleanup.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = defaults()
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline was what ended the operation.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "wallet connect")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if log != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout))
		}
		cancel()
	}
}
