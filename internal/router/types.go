package router

import "net/netip"

// AddrPair is the session registry key: one client talking to one upstream.
type AddrPair struct {
	Client   netip.AddrPort
	Upstream netip.AddrPort
}

func (p AddrPair) String() string {
	return p.Client.String() + "->" + p.Upstream.String()
}

// Packet is an outbound datagram waiting to be written to Dest. It moves
// through the return-path channel from a Session's background receive task
// to the listen socket's send half.
type Packet struct {
	Dest     netip.AddrPort
	Contents []byte
}

// Endpoint is one configured upstream. ConnectionIDs is optional and, when
// non-empty, restricts which connection tokens a token-router-style filter
// would accept for this endpoint; the capture/rate-limit filters in this
// repository don't consume it, but it's carried so downstream filter
// implementations have somewhere to read it from.
type Endpoint struct {
	Address       netip.AddrPort
	ConnectionIDs [][]byte
}

// MetadataMap carries per-datagram key/value metadata through the filter
// chain. It is owned by exactly one context for exactly one datagram.
type MetadataMap struct {
	m map[MetadataKey]Value
}

func NewMetadataMap() MetadataMap {
	return MetadataMap{m: make(map[MetadataKey]Value, 4)}
}

func (m MetadataMap) Insert(key MetadataKey, v Value) {
	m.m[key] = v
}

func (m MetadataMap) Get(key MetadataKey) (Value, bool) {
	v, ok := m.m[key]
	return v, ok
}

func (m MetadataMap) Len() int { return len(m.m) }

// Clone returns an independent copy of the map.
func (m MetadataMap) Clone() MetadataMap {
	cp := make(map[MetadataKey]Value, len(m.m))
	for k, v := range m.m {
		cp[k] = v
	}
	return MetadataMap{m: cp}
}

// ReadContext is threaded through the filter chain's read pass for one
// inbound datagram.
type ReadContext struct {
	Endpoints []Endpoint
	Source    netip.AddrPort
	Payload   []byte
	Metadata  MetadataMap
}

func NewReadContext(endpoints []Endpoint, source netip.AddrPort, payload []byte) *ReadContext {
	return &ReadContext{
		Endpoints: endpoints,
		Source:    source,
		Payload:   payload,
		Metadata:  NewMetadataMap(),
	}
}

// WriteContext is threaded through the filter chain's write pass for one
// reply datagram heading back toward a client via one endpoint.
type WriteContext struct {
	Endpoint Endpoint
	Source   netip.AddrPort
	Payload  []byte
	Metadata MetadataMap
}

func NewWriteContext(endpoint Endpoint, source netip.AddrPort, payload []byte) *WriteContext {
	return &WriteContext{
		Endpoint: endpoint,
		Source:   source,
		Payload:  payload,
		Metadata: NewMetadataMap(),
	}
}
