package conf

import (
	"fmt"

	"udpgate/internal/filters/capture"
	"udpgate/internal/filters/ratelimit"
	"udpgate/internal/router"
)

// routerEndpoints converts the loaded config's endpoint list into
// router.Endpoint values ready to hand to router.NewServer.
func (c *Conf) routerEndpoints() []router.Endpoint {
	out := make([]router.Endpoint, 0, len(c.Endpoints))
	for _, e := range c.Endpoints {
		out = append(out, router.Endpoint{Address: e.AddrPort})
	}
	return out
}

// Chain builds the filter chain described by the config's filters list, in
// the order given, each filter constructed from its own sub-config.
func (c *Conf) Chain() (*router.Chain, error) {
	filters := make([]router.Filter, 0, len(c.Filters))
	for i, spec := range c.Filters {
		f, err := buildFilter(spec)
		if err != nil {
			return nil, fmt.Errorf("filters[%d]: %w", i, err)
		}
		filters = append(filters, f)
	}
	return router.NewChain(filters...), nil
}

func buildFilter(spec FilterSpec) (router.Filter, error) {
	switch {
	case spec.Capture != nil:
		return buildCapture(spec.Capture)
	case spec.RateLimit != nil:
		return buildRateLimit(spec.RateLimit)
	default:
		return nil, fmt.Errorf("empty filter entry")
	}
}

func buildCapture(spec *CaptureSpec) (router.Filter, error) {
	var strategy capture.Strategy
	switch {
	case spec.Prefix != nil:
		strategy = capture.Prefix{Size: spec.Prefix.Size, Remove: spec.Prefix.Remove}
	case spec.Suffix != nil:
		strategy = capture.Suffix{Size: spec.Suffix.Size, Remove: spec.Suffix.Remove}
	case spec.Regex != nil:
		strategy = capture.Regex{Pattern: spec.Regex.Compiled}
	default:
		return nil, fmt.Errorf("capture: no strategy configured")
	}

	return capture.New(capture.Config{
		MetadataKey: spec.MetadataKey,
		Strategy:    strategy,
	})
}

func buildRateLimit(spec *RateLimitSpec) (router.Filter, error) {
	return ratelimit.New(ratelimit.Config{
		AveragePerSecond: spec.AveragePerSecond,
		Burst:            spec.Burst,
		MetadataKey:      spec.MetadataKey,
	})
}
