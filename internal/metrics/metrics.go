// Package metrics is a minimal, concurrency-safe counter/gauge registry for
// the router's filter instances and session registry.
//
// The production deployment of udpgate is expected to scrape these through
// whatever metrics backend the operator runs; this package keeps the core
// decoupled from any particular client library, the same role the counter
// map in a webrtc-udp-relay's internal/metrics package plays for that relay.
package metrics

import "sync/atomic"

// Counter is a monotonically increasing, concurrency-safe counter.
type Counter struct {
	v atomic.Uint64
}

func (c *Counter) Inc()              { c.v.Add(1) }
func (c *Counter) Add(delta uint64)  { c.v.Add(delta) }
func (c *Counter) Get() uint64       { return c.v.Load() }

// Gauge is a concurrency-safe up/down counter.
type Gauge struct {
	v atomic.Int64
}

func (g *Gauge) Inc()        { g.v.Add(1) }
func (g *Gauge) Dec()        { g.v.Add(-1) }
func (g *Gauge) Set(v int64) { g.v.Store(v) }
func (g *Gauge) Get() int64  { return g.v.Load() }

// FilterMetrics is the counter set kept by every filter instance per spec:
// one packets_dropped_total counter, labeled implicitly by the owning
// filter's name and kind.
type FilterMetrics struct {
	Name                string
	PacketsDroppedTotal Counter
}

func NewFilterMetrics(name string) *FilterMetrics {
	return &FilterMetrics{Name: name}
}

// Registry tracks session-lifecycle gauges/counters shared across the
// server loop and the session registry.
type Registry struct {
	ActiveSessions Gauge
	EvictedTotal   Counter
}

func NewRegistry() *Registry {
	return &Registry{}
}
