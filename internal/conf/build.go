package conf

import (
	"udpgate/internal/metrics"
	"udpgate/internal/router"
)

// Server builds a router.Server from the loaded configuration and a shared
// metrics registry.
func (c *Conf) Server(m *metrics.Registry) (*router.Server, error) {
	chain, err := c.Chain()
	if err != nil {
		return nil, err
	}

	return router.NewServer(
		c.Local.Port,
		c.routerEndpoints(),
		chain,
		c.Session.IdleTimeout,
		c.Session.SweepInterval,
		m,
	), nil
}
