package conf

import (
	"fmt"
	"net/netip"
)

// Endpoint names one upstream address a datagram may be fanned out to.
type Endpoint struct {
	Address string `yaml:"address"`

	AddrPort netip.AddrPort `yaml:"-"`
}

func (e *Endpoint) setDefaults() {}

func (e *Endpoint) validate() error {
	if e.Address == "" {
		return fmt.Errorf("address is required")
	}
	addrPort, err := netip.ParseAddrPort(e.Address)
	if err != nil {
		return fmt.Errorf("address: %w", err)
	}
	e.AddrPort = addrPort
	return nil
}
