package router

import (
	"context"
	"net"
	"net/netip"
	"sync/atomic"
	"time"

	"udpgate/internal/flog"
	"udpgate/internal/pkg/buffer"
)

// Session is one half-duplex path from this router to a single upstream,
// correlated with one downstream client. It owns a dedicated ephemeral UDP
// socket and a background task that funnels upstream replies onto the
// shared return-path channel.
type Session struct {
	client   netip.AddrPort
	upstream netip.AddrPort
	conn     *net.UDPConn

	lastActivity atomic.Int64 // UnixNano
	refresh      func()       // bumps this session's TTL in the owning registry
	chain        *Chain       // write-direction filters applied to upstream replies; nil is a no-op pass-through

	cancel context.CancelFunc
}

// newSession binds a fresh 0.0.0.0:0 socket and spawns the background
// receive task. refresh is called on every send/receive so the owning
// registry can keep the idle-expiration clock reset. chain, if non-nil, is
// applied (in write/reverse order) to every reply before it is queued on
// the return-path channel.
func newSession(ctx context.Context, client, upstream netip.AddrPort, returnCh chan<- Packet, refresh func(), chain *Chain) (*Session, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, err
	}

	sessCtx, cancel := context.WithCancel(ctx)
	s := &Session{
		client:   client,
		upstream: upstream,
		conn:     conn,
		refresh:  refresh,
		chain:    chain,
		cancel:   cancel,
	}
	s.touch()

	go s.recvLoop(sessCtx, returnCh)
	return s, nil
}

// SendTo forwards payload to the upstream via this session's socket.
func (s *Session) SendTo(payload []byte) (int, error) {
	n, err := s.conn.WriteToUDPAddrPort(payload, s.upstream)
	if err != nil {
		return n, err
	}
	s.touch()
	return n, nil
}

// LastActivity returns the time of the most recent send or receive.
func (s *Session) LastActivity() time.Time {
	return time.Unix(0, s.lastActivity.Load())
}

func (s *Session) touch() {
	s.lastActivity.Store(time.Now().UnixNano())
	if s.refresh != nil {
		s.refresh()
	}
}

// Close tears down the session's socket and background task. Safe to call
// more than once.
func (s *Session) Close() {
	s.cancel()
	s.conn.Close()
}

// recvLoop reads upstream replies and emits them as Packets destined for
// the original client. I/O errors are logged and non-fatal to the loop;
// only context cancellation (registry eviction or shutdown) ends it.
func (s *Session) recvLoop(ctx context.Context, returnCh chan<- Packet) {
	bufp := buffer.UPool.Get().(*[]byte)
	defer buffer.UPool.Put(bufp)
	buf := *bufp

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, _, err := s.conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			flog.Errorf("session %s<-%s: read error: %v", s.client, s.upstream, err)
			continue
		}
		s.touch()

		contents := make([]byte, n)
		copy(contents, buf[:n])

		if s.chain != nil {
			wctx := NewWriteContext(Endpoint{Address: s.upstream}, s.client, contents)
			if s.chain.Write(wctx) == Drop {
				continue
			}
			contents = wctx.Payload
		}

		select {
		case returnCh <- Packet{Dest: s.client, Contents: contents}:
		case <-ctx.Done():
			return
		}
	}
}
