package capture

import (
	"fmt"

	"udpgate/internal/metrics"
	"udpgate/internal/router"
)

// Config is the capture filter's configuration: exactly one Strategy must
// be supplied.
type Config struct {
	MetadataKey string
	Strategy    Strategy
}

// Capture extracts a routing token from a packet's payload using the
// configured Strategy and attaches it as metadata. It is read-only on the
// write (reply) path.
type Capture struct {
	strategy     Strategy
	metrics      *metrics.FilterMetrics
	metadataKey  router.MetadataKey
	isPresentKey router.MetadataKey
}

// New constructs a Capture filter. cfg.Strategy must be non-nil.
func New(cfg Config) (*Capture, error) {
	if cfg.Strategy == nil {
		return nil, fmt.Errorf("capture: exactly one strategy (prefix, suffix, or regex) must be configured")
	}

	key := cfg.MetadataKey
	if key == "" {
		key = router.DefaultCaptureMetadataKey
	}

	return &Capture{
		strategy:     cfg.Strategy,
		metrics:      metrics.NewFilterMetrics("capture"),
		metadataKey:  router.InternKey(key),
		isPresentKey: router.IsPresentKey(key),
	}, nil
}

func (c *Capture) Name() string { return "capture" }

func (c *Capture) Metrics() *metrics.FilterMetrics { return c.metrics }

func (c *Capture) Read(ctx *router.ReadContext) router.FilterResult {
	value, ok := c.strategy.Capture(&ctx.Payload, c.metrics)
	ctx.Metadata.Insert(c.isPresentKey, router.BoolValue(ok))

	if !ok {
		return router.Drop
	}
	ctx.Metadata.Insert(c.metadataKey, value)
	return router.Accept
}

// Write is a pass-through: Capture never inspects or mutates the reply path.
func (c *Capture) Write(ctx *router.WriteContext) router.FilterResult {
	return router.Accept
}
