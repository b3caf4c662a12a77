package router

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"udpgate/internal/flog"
	"udpgate/internal/metrics"
	"udpgate/internal/pkg/buffer"
)

// Server owns the listening socket, the session registry, and the
// return-path channel. It dispatches downstream -> upstream on the forward
// loop and upstream -> downstream on the return-path task.
type Server struct {
	port      uint16
	endpoints []Endpoint
	chain     *Chain
	metrics   *metrics.Registry

	idleTimeout   time.Duration
	sweepInterval time.Duration
}

func NewServer(port uint16, endpoints []Endpoint, chain *Chain, idleTimeout, sweepInterval time.Duration, m *metrics.Registry) *Server {
	return &Server{
		port:          port,
		endpoints:     endpoints,
		chain:         chain,
		metrics:       m,
		idleTimeout:   idleTimeout,
		sweepInterval: sweepInterval,
	}
}

// Run binds the listen socket and blocks, servicing the forward and
// return-path loops until ctx is cancelled or a fatal bind error occurs.
func (s *Server) Run(ctx context.Context) error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: int(s.port)})
	if err != nil {
		return fmt.Errorf("bind listen socket on :%d: %w", s.port, err)
	}
	defer conn.Close()

	conn.SetReadBuffer(8 * 1024 * 1024)
	conn.SetWriteBuffer(8 * 1024 * 1024)

	flog.Infof("listening on %s, %d endpoint(s)", conn.LocalAddr(), len(s.endpoints))

	registry := NewRegistry(s.idleTimeout, s.sweepInterval, s.metrics)
	defer registry.Close()

	returnCh := make(chan Packet, 1024)

	go s.returnPathLoop(ctx, conn, returnCh)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	return s.forwardLoop(ctx, conn, registry, returnCh)
}

// returnPathLoop consumes Packets from the return-path channel and writes
// each one to the listen socket's send half, addressed back to the
// original client. I/O errors are logged and non-fatal.
func (s *Server) returnPathLoop(ctx context.Context, conn *net.UDPConn, returnCh <-chan Packet) {
	for {
		select {
		case <-ctx.Done():
			return
		case pkt := <-returnCh:
			if _, err := conn.WriteToUDPAddrPort(pkt.Contents, pkt.Dest); err != nil {
				flog.Errorf("return path: write to %s failed: %v", pkt.Dest, err)
			}
		}
	}
}

// forwardLoop reads inbound datagrams and spawns one short-lived fanOut
// task per datagram, which applies the read-direction filter chain and
// sends the (possibly mutated) payload to every configured endpoint. Read
// throughput is never coupled to per-packet fan-out latency: the loop
// never awaits the spawned task.
func (s *Server) forwardLoop(ctx context.Context, conn *net.UDPConn, registry *Registry, returnCh chan<- Packet) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		bufp := buffer.UPool.Get().(*[]byte)
		buf := *bufp

		n, from, err := conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			buffer.UPool.Put(bufp)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			flog.Errorf("forward loop: read error: %v", err)
			continue
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])
		buffer.UPool.Put(bufp)

		go s.fanOut(ctx, registry, from, payload, returnCh)
	}
}

// fanOut applies the read-direction filter chain once, then ensures a
// session and sends the resulting payload to every configured endpoint.
// Errors at any step are logged; they never terminate the forward loop.
func (s *Server) fanOut(ctx context.Context, registry *Registry, from netip.AddrPort, payload []byte, returnCh chan<- Packet) {
	rctx := NewReadContext(s.endpoints, from, payload)

	if s.chain != nil && s.chain.Read(rctx) == Drop {
		return
	}

	for _, ep := range rctx.Endpoints {
		pair := AddrPair{Client: from, Upstream: ep.Address}

		sess, err := registry.Ensure(ctx, pair, returnCh, s.chain)
		if err != nil {
			flog.Errorf("ensure session %s: %v", pair, err)
			continue
		}

		if _, err := sess.SendTo(rctx.Payload); err != nil {
			flog.Errorf("session %s: send to upstream failed: %v", pair, err)
		}
	}
}
