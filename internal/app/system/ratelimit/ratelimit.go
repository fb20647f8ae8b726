// internal/app/system/ratelimit/ratelimit.go

// Package ratelimit throttles requests that cost the operator something,
// currently token mints paid for by the backend.
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"
)

// Limiter counts requests per key in fixed windows. It is safe for
// concurrent use and needs no background goroutine: expired windows are
// swept during Allow once the map has grown past sweepAt entries.
type Limiter struct {
	limit  int
	period time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]bucket
	sweepAt int
}

type bucket struct {
	used  int
	reset time.Time
}

const minSweep = 256

// New allows limit requests per key in every period.
func New(limit int, period time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		period:  period,
		now:     time.Now,
		buckets: make(map[string]bucket),
		sweepAt: minSweep,
	}
}

// Allow counts one request for key and reports whether it is within the
// limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || !now.Before(b.reset) {
		l.sweep(now)
		l.buckets[key] = bucket{used: 1, reset: now.Add(l.period)}
		return true
	}
	if b.used >= l.limit {
		return false
	}
	b.used++
	l.buckets[key] = b
	return true
}

// sweep drops expired buckets when the map is large. Caller holds mu.
func (l *Limiter) sweep(now time.Time) {
	if len(l.buckets) < l.sweepAt {
		return
	}
	for k, b := range l.buckets {
		if !now.Before(b.reset) {
			delete(l.buckets, k)
		}
	}
	l.sweepAt = max(2*len(l.buckets), minSweep)
}

// ClientIP returns the address of the client that sent r. Forwarding
// headers are only believed when the direct peer is one of trusted: then
// X-Forwarded-For is walked from the right, skipping trusted hops, and
// X-Real-IP is the fallback. Without trusted proxies the peer address is
// returned as is.
func ClientIP(r *http.Request, trusted []netip.Prefix) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	if !isTrusted(peer, trusted) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !isTrusted(hop, trusted) {
			return hop
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ParsePrefixes parses a comma-separated list of CIDRs or bare IPs.
func ParsePrefixes(list string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", item, err)
			}
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", item, err)
		}
		a = a.Unmap()
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, nil
}

// MintLimiter throttles mint requests per client IP and per session. A
// client that drops its session cookie gets a fresh session budget, so the
// per-IP budget is the one that holds.
type MintLimiter struct {
	byIP      *Limiter
	bySession *Limiter
	trusted   []netip.Prefix
}

// NewMintLimiter allows perMinute mints per session and twice that per IP,
// so a few sessions behind one NAT are not starved. A non-positive value
// means 5. trustedProxies lists the reverse proxies whose forwarding
// headers are believed.
func NewMintLimiter(perMinute int, trustedProxies []netip.Prefix) *MintLimiter {
	if perMinute <= 0 {
		perMinute = 5
	}
	return &MintLimiter{
		byIP:      New(perMinute*2, time.Minute),
		bySession: New(perMinute, time.Minute),
		trusted:   trustedProxies,
	}
}

// Check counts one mint for the request's client and session. When the
// mint is refused it returns false and a message for the user.
func (ml *MintLimiter) Check(r *http.Request, sessionID string) (bool, string) {
	if !ml.byIP.Allow(ClientIP(r, ml.trusted)) {
		return false, "Too many token requests from this address. Please wait a minute."
	}
	if sessionID != "" && !ml.bySession.Allow(sessionID) {
		return false, "Too many token requests. Please wait a minute before asking again."
	}
	return true, ""
}
