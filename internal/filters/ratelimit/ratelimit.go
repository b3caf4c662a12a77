// Package ratelimit implements a supplemental filter that gates per-client
// packet rate with a token bucket, built the same way as the capture filter
// family: one Filter implementation, one metrics handle, one config struct.
package ratelimit

import (
	"net/netip"
	"sync"

	"golang.org/x/time/rate"

	"udpgate/internal/metrics"
	"udpgate/internal/router"
)

// DefaultMetadataKey is written (as Bool(true)) when a packet is allowed
// through; nothing is written on drop, matching Capture's silent-drop
// convention for the metadata layer.
const DefaultMetadataKey = "quilkin.dev/rate_limited"

// Config configures the per-client token bucket.
type Config struct {
	// AveragePerSecond is the steady-state rate, in packets per second.
	AveragePerSecond float64
	// Burst is the maximum number of packets allowed in a single instant.
	Burst int
	// MetadataKey overrides DefaultMetadataKey.
	MetadataKey string
}

// RateLimit drops datagrams once a client's token bucket is exhausted. It
// is read-only on the write (reply) path.
type RateLimit struct {
	rps   float64
	burst int

	metrics    *metrics.FilterMetrics
	allowedKey router.MetadataKey

	mu       sync.Mutex
	limiters map[netip.AddrPort]*rate.Limiter
}

func New(cfg Config) (*RateLimit, error) {
	key := cfg.MetadataKey
	if key == "" {
		key = DefaultMetadataKey
	}

	return &RateLimit{
		rps:        cfg.AveragePerSecond,
		burst:      cfg.Burst,
		metrics:    metrics.NewFilterMetrics("ratelimit"),
		allowedKey: router.InternKey(key),
		limiters:   make(map[netip.AddrPort]*rate.Limiter),
	}, nil
}

func (r *RateLimit) Name() string { return "ratelimit" }

func (r *RateLimit) Metrics() *metrics.FilterMetrics { return r.metrics }

func (r *RateLimit) Read(ctx *router.ReadContext) router.FilterResult {
	limiter := r.limiterFor(ctx.Source)

	if !limiter.Allow() {
		r.metrics.PacketsDroppedTotal.Inc()
		return router.Drop
	}

	ctx.Metadata.Insert(r.allowedKey, router.BoolValue(true))
	return router.Accept
}

// Write is a pass-through: rate limiting only applies to client-originated
// traffic.
func (r *RateLimit) Write(ctx *router.WriteContext) router.FilterResult {
	return router.Accept
}

func (r *RateLimit) limiterFor(addr netip.AddrPort) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[addr]
	if !ok {
		l = rate.NewLimiter(rate.Limit(r.rps), r.burst)
		r.limiters[addr] = l
	}
	return l
}
