package router

import (
	"context"
	"time"

	cache "github.com/patrickmn/go-cache"

	"udpgate/internal/flog"
	"udpgate/internal/metrics"
)

// Registry is the concurrent AddrPair -> *Session map. It is backed by a
// TTL cache rather than a bare mutex-guarded map so that idle sessions are
// swept automatically: every Ensure and every send/receive on a Session
// refreshes its entry's expiration (Contains does not), and the cache's own janitor goroutine
// evicts (and closes) sessions that go quiet for longer than idleTimeout.
//
// Ensure is an atomic check-and-insert: the underlying cache's Add only
// succeeds if the key is still absent, so a racing pair of Ensure calls for
// the same AddrPair always has exactly one winner. The loser's freshly
// bound Session is closed immediately rather than abandoned.
type Registry struct {
	cache   *cache.Cache
	metrics *metrics.Registry
}

func NewRegistry(idleTimeout, sweepInterval time.Duration, m *metrics.Registry) *Registry {
	c := cache.New(idleTimeout, sweepInterval)
	r := &Registry{cache: c, metrics: m}
	c.OnEvicted(func(key string, v interface{}) {
		sess, ok := v.(*Session)
		if !ok {
			return
		}
		sess.Close()
		m.ActiveSessions.Dec()
		m.EvictedTotal.Inc()
		flog.Debugf("session %s evicted after idle timeout", key)
	})
	return r
}

// Ensure returns the Session for pair, creating it (with chain applied to
// its reply path) if absent.
func (r *Registry) Ensure(ctx context.Context, pair AddrPair, returnCh chan<- Packet, chain *Chain) (*Session, error) {
	key := pair.String()

	if v, ok := r.cache.Get(key); ok {
		sess := v.(*Session)
		r.cache.SetDefault(key, sess)
		return sess, nil
	}

	refresh := func() {
		if v, ok := r.cache.Get(key); ok {
			r.cache.SetDefault(key, v)
		}
	}

	sess, err := newSession(ctx, pair.Client, pair.Upstream, returnCh, refresh, chain)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Add(key, sess, cache.DefaultExpiration); err != nil {
		// Another goroutine won the race for this pair; ours is redundant.
		sess.Close()
		if v, ok := r.cache.Get(key); ok {
			return v.(*Session), nil
		}
		return nil, err
	}

	r.metrics.ActiveSessions.Inc()
	flog.Debugf("session created for %s", key)
	return sess, nil
}

// Contains reports whether a Session currently exists for pair.
func (r *Registry) Contains(pair AddrPair) bool {
	_, ok := r.cache.Get(pair.String())
	return ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.cache.ItemCount()
}

// Close evicts and closes every session, used on shutdown.
func (r *Registry) Close() {
	for key, item := range r.cache.Items() {
		if sess, ok := item.Object.(*Session); ok {
			sess.Close()
		}
		r.cache.Delete(key)
	}
}
