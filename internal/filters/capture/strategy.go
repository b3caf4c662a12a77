// Package capture implements the capture filter family: Prefix, Suffix, and
// Regex strategies that extract a routing token from a packet's payload and
// attach it as metadata, optionally stripping the captured bytes.
package capture

import (
	"regexp"

	"udpgate/internal/metrics"
	"udpgate/internal/router"
)

// Strategy inspects (and optionally mutates) a payload, returning the
// captured value on success. payload is a pointer to the slice header so
// Prefix/Suffix can reslice it in place when remove is set.
type Strategy interface {
	Capture(payload *[]byte, fm *metrics.FilterMetrics) (router.Value, bool)
}

// Suffix captures the last Size bytes of the payload, optionally truncating
// them off.
type Suffix struct {
	Size   uint32
	Remove bool
}

func (s Suffix) Capture(payload *[]byte, fm *metrics.FilterMetrics) (router.Value, bool) {
	p := *payload
	if uint32(len(p)) < s.Size {
		fm.PacketsDroppedTotal.Inc()
		return router.Value{}, false
	}

	cut := len(p) - int(s.Size)
	token := make([]byte, s.Size)
	copy(token, p[cut:])

	if s.Remove {
		*payload = p[:cut]
	}
	return router.BytesValue(token), true
}

// Prefix captures the first Size bytes of the payload, optionally shifting
// the remainder to the front.
type Prefix struct {
	Size   uint32
	Remove bool
}

func (s Prefix) Capture(payload *[]byte, fm *metrics.FilterMetrics) (router.Value, bool) {
	p := *payload
	if uint32(len(p)) < s.Size {
		fm.PacketsDroppedTotal.Inc()
		return router.Value{}, false
	}

	token := make([]byte, s.Size)
	copy(token, p[:s.Size])

	if s.Remove {
		*payload = p[s.Size:]
	}
	return router.BytesValue(token), true
}

// Regex captures the first match of Pattern in the payload. It never
// mutates the payload.
type Regex struct {
	Pattern *regexp.Regexp
}

func (s Regex) Capture(payload *[]byte, fm *metrics.FilterMetrics) (router.Value, bool) {
	match := s.Pattern.Find(*payload)
	if match == nil {
		fm.PacketsDroppedTotal.Inc()
		return router.Value{}, false
	}
	token := make([]byte, len(match))
	copy(token, match)
	return router.BytesValue(token), true
}
