package router

import (
	"context"
	"net"
	"net/netip"
	"testing"
	"time"

	"udpgate/internal/metrics"
)

// S - a datagram sent by a client to the proxy appears verbatim at the
// configured upstream, and a reply datagram from that upstream appears
// verbatim at the client, end to end through fanOut -> Session -> recvLoop.
func TestFanOutRoundTripVerbatimWithoutChain(t *testing.T) {
	upstream, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("bind fake upstream: %v", err)
	}
	defer upstream.Close()
	upstreamAddr := netip.MustParseAddrPort(upstream.LocalAddr().String())

	registry := NewRegistry(time.Minute, time.Minute, metrics.NewRegistry())
	defer registry.Close()

	server := &Server{endpoints: []Endpoint{{Address: upstreamAddr}}}

	returnCh := make(chan Packet, 4)
	client := netip.MustParseAddrPort("127.0.0.1:40000")
	sent := []byte("hello-upstream")

	ctx := context.Background()
	server.fanOut(ctx, registry, client, sent, returnCh)

	upstream.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1500)
	n, sessionAddr, err := upstream.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("upstream did not receive forwarded datagram: %v", err)
	}
	if got := string(buf[:n]); got != string(sent) {
		t.Fatalf("upstream received %q, want %q (verbatim)", got, sent)
	}

	reply := []byte("hello-client")
	if _, err := upstream.WriteToUDP(reply, sessionAddr); err != nil {
		t.Fatalf("upstream reply: %v", err)
	}

	select {
	case pkt := <-returnCh:
		if pkt.Dest != client {
			t.Fatalf("reply addressed to %s, want %s", pkt.Dest, client)
		}
		if got := string(pkt.Contents); got != string(reply) {
			t.Fatalf("client received %q, want %q (verbatim)", got, reply)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reply on the return-path channel")
	}
}

// writeTagFilter appends a fixed suffix to every reply on the write path and
// never touches the read path, so it can be distinguished from a no-op
// pass-through filter like Capture's or RateLimit's Write.
type writeTagFilter struct{ tag string }

func (writeTagFilter) Name() string { return "write-tag" }

func (writeTagFilter) Read(ctx *ReadContext) FilterResult { return Accept }

func (f writeTagFilter) Write(ctx *WriteContext) FilterResult {
	ctx.Payload = append(append([]byte{}, ctx.Payload...), []byte(f.tag)...)
	return Accept
}

// dropReplyFilter drops every reply on the write path, leaving the read path
// untouched.
type dropReplyFilter struct{}

func (dropReplyFilter) Name() string { return "drop-reply" }

func (dropReplyFilter) Read(ctx *ReadContext) FilterResult { return Accept }

func (dropReplyFilter) Write(ctx *WriteContext) FilterResult { return Drop }

// S4.6[ADDED] - the write-direction chain is applied inside Session.recvLoop
// before a reply reaches the return-path channel: this covers both the
// mutating case and the drop-short-circuit case.
func TestFanOutAppliesWriteChainToReplies(t *testing.T) {
	upstream, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("bind fake upstream: %v", err)
	}
	defer upstream.Close()
	upstreamAddr := netip.MustParseAddrPort(upstream.LocalAddr().String())

	chain := NewChain(writeTagFilter{tag: "-tagged"})
	registry := NewRegistry(time.Minute, time.Minute, metrics.NewRegistry())
	defer registry.Close()

	server := &Server{endpoints: []Endpoint{{Address: upstreamAddr}}, chain: chain}

	returnCh := make(chan Packet, 4)
	client := netip.MustParseAddrPort("127.0.0.1:40001")

	ctx := context.Background()
	server.fanOut(ctx, registry, client, []byte("request"), returnCh)

	upstream.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1500)
	n, sessionAddr, err := upstream.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("upstream did not receive forwarded datagram: %v", err)
	}
	if got := string(buf[:n]); got != "request" {
		t.Fatalf("upstream received %q, want %q (chain must not mutate the read path)", got, "request")
	}

	if _, err := upstream.WriteToUDP([]byte("reply"), sessionAddr); err != nil {
		t.Fatalf("upstream reply: %v", err)
	}

	select {
	case pkt := <-returnCh:
		want := "reply-tagged"
		if got := string(pkt.Contents); got != want {
			t.Fatalf("client received %q after write chain, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reply on the return-path channel")
	}
}

func TestFanOutWriteChainDropSuppressesReply(t *testing.T) {
	upstream, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("bind fake upstream: %v", err)
	}
	defer upstream.Close()
	upstreamAddr := netip.MustParseAddrPort(upstream.LocalAddr().String())

	chain := NewChain(dropReplyFilter{})
	registry := NewRegistry(time.Minute, time.Minute, metrics.NewRegistry())
	defer registry.Close()

	server := &Server{endpoints: []Endpoint{{Address: upstreamAddr}}, chain: chain}

	returnCh := make(chan Packet, 4)
	client := netip.MustParseAddrPort("127.0.0.1:40002")

	ctx := context.Background()
	server.fanOut(ctx, registry, client, []byte("request"), returnCh)

	upstream.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1500)
	_, sessionAddr, err := upstream.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("upstream did not receive forwarded datagram: %v", err)
	}

	if _, err := upstream.WriteToUDP([]byte("reply"), sessionAddr); err != nil {
		t.Fatalf("upstream reply: %v", err)
	}

	select {
	case pkt := <-returnCh:
		t.Fatalf("expected no packet on the return path, got %+v", pkt)
	case <-time.After(100 * time.Millisecond):
	}
}
