package rtnet_test

import (
	"testing"

	"github.com/seregonwar/rtnetstack/internal/bufpool"
	"github.com/seregonwar/rtnetstack/internal/neighbor"
	"github.com/seregonwar/rtnetstack/internal/platform"
	"github.com/seregonwar/rtnetstack/internal/route"
	"github.com/seregonwar/rtnetstack/internal/rtnet"
	"github.com/seregonwar/rtnetstack/internal/tcplite"
	"github.com/seregonwar/rtnetstack/internal/wire"
)

// fakeClock is a manually advanced platform.Clock, used so aging tests do
// not depend on wall-clock time.
type fakeClock struct{ now uint32 }

func (f *fakeClock) NowMillis() uint32 { return f.now }

func addr(lastByte byte) [wire.IPv6AddrSize]byte {
	var a [wire.IPv6AddrSize]byte
	a[0] = 0x20
	a[1] = 0x01
	a[15] = lastByte
	return a
}

func mac(lastByte byte) [wire.MACSize]byte {
	var m [wire.MACSize]byte
	m[0] = 0x02
	m[5] = lastByte
	return m
}

func newTestContext(t *testing.T) (*rtnet.Context, *fakeClock) {
	t.Helper()
	clk := &fakeClock{now: 1_000}
	ctx := rtnet.NewContext(rtnet.WithClock(clk), rtnet.WithTX(platform.NewLoopbackTX(nil)))
	if err := ctx.Initialize(addr(0x10), mac(0x01)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return ctx, clk
}

func TestInitializeZeroesStatisticsAndInstallsLinkLocalRoute(t *testing.T) {
	ctx, _ := newTestContext(t)

	snap := ctx.Statistics()
	if snap.RXPackets != 0 || snap.TXPackets != 0 || snap.RXErrors != 0 {
		t.Fatalf("Statistics() after Initialize = %+v, want all-zero", snap)
	}

	routes := ctx.RouteSnapshot()
	found := false
	for _, r := range routes {
		if r.PrefixLen == route.LinkLocalPrefixLen && r.DestPrefix[0] == 0xfe && r.DestPrefix[1] == 0x80 {
			found = true
		}
	}
	if !found {
		t.Fatal("RouteSnapshot() does not contain the link-local fe80::/10 route")
	}
}

func TestInitializeRejectsZeroLocalIdentity(t *testing.T) {
	ctx := rtnet.NewContext()
	if err := ctx.Initialize([wire.IPv6AddrSize]byte{}, mac(1)); err == nil {
		t.Fatal("Initialize with zero local address succeeded, want error")
	}
	if err := ctx.Initialize(addr(1), [wire.MACSize]byte{}); err == nil {
		t.Fatal("Initialize with zero local mac succeeded, want error")
	}
}

// TestAddRouteThenUDPSendSucceeds follows spec.md Section 8 scenario 2.
func TestAddRouteThenUDPSendSucceeds(t *testing.T) {
	ctx, clk := newTestContext(t)

	dst := addr(0x01)
	if err := ctx.AddRoute(dst, 128, nil, 1); err != nil {
		t.Fatalf("AddRoute: %v", err)
	}

	// directly connected: seed the neighbor cache as if NDP had resolved it.
	seedNeighbor(t, ctx, dst, mac(0xaa))

	clk.now += 10
	if err := ctx.UDPSend(dst, 12345, 0, []byte("hello from host"), bufpool.QoSNormal); err != nil {
		t.Fatalf("UDPSend: %v", err)
	}

	snap := ctx.Statistics()
	if snap.TXPackets != 1 {
		t.Errorf("TXPackets = %d, want 1", snap.TXPackets)
	}
	if snap.TXDropped != 0 {
		t.Errorf("TXDropped = %d, want 0", snap.TXDropped)
	}
}

// TestUDPSendOversizedPayloadIsInvalidParam follows spec.md Section 8
// scenario 3.
func TestUDPSendOversizedPayloadIsInvalidParam(t *testing.T) {
	ctx, _ := newTestContext(t)

	before := ctx.Statistics()
	payload := make([]byte, 2000)
	err := ctx.UDPSend(addr(0x01), 80, 1234, payload, bufpool.QoSNormal)
	if rtnet.CodeOf(err) != rtnet.CodeInvalidParam {
		t.Fatalf("UDPSend(2000 bytes) code = %v, want invalid_param", rtnet.CodeOf(err))
	}

	after := ctx.Statistics()
	if after != before {
		t.Errorf("counters changed on invalid_param: before=%+v after=%+v", before, after)
	}
}

// TestAddRouteOverflowsAtCapacity follows spec.md Section 8 scenario 4.
func TestAddRouteOverflowsAtCapacity(t *testing.T) {
	ctx := rtnet.NewContext(rtnet.WithTableSizes(2, 1, 1, 1))
	if err := ctx.Initialize(addr(0x10), mac(1)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	// The link-local route occupies a slot reserved beyond the configured
	// capacity (internal/route.New), so exactly 2 explicit AddRoute calls
	// succeed before the 3rd overflows.
	if err := ctx.AddRoute(addr(1), 128, nil, 1); err != nil {
		t.Fatalf("first AddRoute: %v", err)
	}
	if err := ctx.AddRoute(addr(2), 128, nil, 1); err != nil {
		t.Fatalf("second AddRoute: %v", err)
	}
	err := ctx.AddRoute(addr(3), 128, nil, 1)
	if rtnet.CodeOf(err) != rtnet.CodeOverflow {
		t.Fatalf("AddRoute past capacity code = %v, want overflow", rtnet.CodeOf(err))
	}
}

// TestTCPConnectSendCloseThenSendFails follows spec.md Section 8 scenario 5.
func TestTCPConnectSendCloseThenSendFails(t *testing.T) {
	ctx, clk := newTestContext(t)

	dst := addr(0x01)
	if err := ctx.AddRoute(dst, 128, nil, 1); err != nil {
		t.Fatalf("AddRoute: %v", err)
	}
	seedNeighbor(t, ctx, dst, mac(0xbb))

	handle, err := ctx.TCPConnect(dst, 80)
	if err != nil {
		t.Fatalf("TCPConnect: %v", err)
	}

	// Simulate the remote's SYN+ACK arriving, completing the active open.
	completeHandshake(t, ctx, handle, dst, clk)

	if err := ctx.TCPSend(handle, []byte("GET / HTTP/1.1\r\nHost: demo\r\n\r\n")); err != nil {
		t.Fatalf("TCPSend: %v", err)
	}
	if err := ctx.TCPClose(handle); err != nil {
		t.Fatalf("TCPClose: %v", err)
	}

	err = ctx.TCPSend(handle, []byte("too late"))
	if rtnet.CodeOf(err) != rtnet.CodeConnection && rtnet.CodeOf(err) != rtnet.CodeInvalidParam {
		t.Fatalf("TCPSend after close code = %v, want connection or invalid_param", rtnet.CodeOf(err))
	}
}

// TestTCPConnectNoRouteFails exercises the no_route branch of
// spec.md Section 6: "tcp_connect(dst, dport) -> handle | invalid_param |
// no_route | no_buffer".
func TestTCPConnectNoRouteFails(t *testing.T) {
	ctx, _ := newTestContext(t)

	_, err := ctx.TCPConnect(addr(0x99), 80)
	if rtnet.CodeOf(err) != rtnet.CodeNoRoute {
		t.Fatalf("TCPConnect with no route code = %v, want no_route", rtnet.CodeOf(err))
	}
}

// TestProcessRXBadChecksumIncrementsChecksumErrors follows spec.md
// Section 8 scenario 6.
func TestProcessRXBadChecksumIncrementsChecksumErrors(t *testing.T) {
	ctx, _ := newTestContext(t)

	frame := buildEchoRequestWithBadChecksum(t, addr(0x10))
	err := ctx.ProcessRX(frame)
	if rtnet.CodeOf(err) != rtnet.CodeChecksum {
		t.Fatalf("ProcessRX bad-checksum code = %v, want checksum", rtnet.CodeOf(err))
	}

	snap := ctx.Statistics()
	if snap.ChecksumErrors != 1 {
		t.Errorf("ChecksumErrors = %d, want 1", snap.ChecksumErrors)
	}
	if snap.RXPackets != 1 {
		t.Errorf("RXPackets = %d, want 1 (counted past length/version acceptance)", snap.RXPackets)
	}
}

func TestMDNSQueryMissReturnsTimeout(t *testing.T) {
	ctx, _ := newTestContext(t)

	_, err := ctx.MDNSQuery("_http._tcp.local")
	if rtnet.CodeOf(err) != rtnet.CodeTimeout {
		t.Fatalf("MDNSQuery miss code = %v, want timeout", rtnet.CodeOf(err))
	}
}

func TestMDNSAnnounceThenQueryHits(t *testing.T) {
	ctx, _ := newTestContext(t)

	if err := ctx.MDNSAnnounce("_http._tcp.local", 8080, 120); err != nil {
		t.Fatalf("MDNSAnnounce: %v", err)
	}
	rec, err := ctx.MDNSQuery("_http._tcp.local")
	if err != nil {
		t.Fatalf("MDNSQuery: %v", err)
	}
	if rec.Port != 8080 {
		t.Errorf("Record.Port = %d, want 8080", rec.Port)
	}
}

func TestPeriodicTaskAgesStaleNeighbor(t *testing.T) {
	ctx, clk := newTestContext(t)
	seedNeighbor(t, ctx, addr(0x55), mac(0x55))

	clk.now += neighbor.AgeHorizonMS + 1
	ctx.PeriodicTask()

	for _, n := range ctx.NeighborSnapshot() {
		if wire.AddrEqual(n.Addr, addr(0x55)) {
			t.Fatal("stale neighbor entry survived PeriodicTask")
		}
	}
}

func TestAddRouteThenPeriodicTaskKeepsFreshRoute(t *testing.T) {
	ctx, clk := newTestContext(t)
	dst := addr(0x02)
	if err := ctx.AddRoute(dst, 128, nil, 1); err != nil {
		t.Fatalf("AddRoute: %v", err)
	}

	clk.now += 10
	ctx.PeriodicTask()

	found := false
	for _, r := range ctx.RouteSnapshot() {
		if wire.AddrEqual(r.DestPrefix, dst) {
			found = true
		}
	}
	if !found {
		t.Fatal("freshly added route was aged out despite being well within the horizon")
	}
}

// --- helpers -----------------------------------------------------------

func seedNeighbor(t *testing.T, ctx *rtnet.Context, a [wire.IPv6AddrSize]byte, m [wire.MACSize]byte) {
	t.Helper()
	// ApplyAdvertisement is the only externally triggerable path into the
	// neighbor cache (spec.md Section 4.4); simulate an inbound Neighbor
	// Advertisement.
	frame := buildNeighborAdvertisement(t, ctx, a, m)
	if err := ctx.ProcessRX(frame); err != nil {
		t.Fatalf("seedNeighbor ProcessRX: %v", err)
	}
}

// completeHandshake feeds a SYN+ACK segment for handle's connection through
// ProcessRX, the same path a real peer's reply would take, driving the
// connection SYN_SENT -> ESTABLISHED.
func completeHandshake(t *testing.T, ctx *rtnet.Context, handle int, remote [wire.IPv6AddrSize]byte, clk *fakeClock) {
	t.Helper()

	var conn *tcplite.Conn
	for i, c := range ctx.TCPSnapshot() {
		if i == handle {
			conn = &c
		}
	}
	if conn == nil {
		t.Fatalf("completeHandshake: no connection at handle %d", handle)
	}

	frame := make([]byte, wire.EthernetHeaderSize+wire.IPv6HeaderSize+wire.TCPLiteHeaderSize)
	eth := wire.EthernetHeader{Dst: ctxLocalMAC(), Src: mac(0xbb), EtherType: wire.EtherTypeIPv6}
	if err := wire.PutEthernet(frame, eth); err != nil {
		t.Fatalf("PutEthernet: %v", err)
	}

	ip := wire.IPv6Header{
		Version:    wire.IPv6Version,
		PayloadLen: wire.TCPLiteHeaderSize,
		NextHeader: wire.NextHeaderTCP,
		HopLimit:   64,
		Src:        remote,
		Dst:        conn.LocalAddr,
	}
	if err := wire.PutIPv6(frame[wire.EthernetHeaderSize:], ip); err != nil {
		t.Fatalf("PutIPv6: %v", err)
	}

	tcpOff := wire.EthernetHeaderSize + wire.IPv6HeaderSize
	hdr := wire.TCPLiteHeader{
		SrcPort: conn.RemotePort,
		DstPort: conn.LocalPort,
		Seq:     5000,
		Ack:     conn.SendNext,
		Flags:   wire.TCPFlagSYN | wire.TCPFlagACK,
		Window:  tcplite.MSS,
	}
	if err := wire.PutTCPLite(frame[tcpOff:], hdr); err != nil {
		t.Fatalf("PutTCPLite: %v", err)
	}

	header := frame[tcpOff : tcpOff+wire.TCPLiteHeaderSize]
	checksum := wire.UpperLayerChecksum(ip.Src, ip.Dst, ip.NextHeader, header, nil)
	// Low byte first at the odd offset, as transmitTCPSegment writes it.
	frame[tcpOff+15] = byte(checksum)
	frame[tcpOff+16] = byte(checksum >> 8)

	if err := ctx.ProcessRX(frame); err != nil {
		t.Fatalf("completeHandshake ProcessRX: %v", err)
	}

	clk.now += 5
}

func ctxLocalMAC() [wire.MACSize]byte { return mac(0x01) }

func buildNeighborAdvertisement(t *testing.T, ctx *rtnet.Context, target [wire.IPv6AddrSize]byte, srcMAC [wire.MACSize]byte) []byte {
	t.Helper()

	local := addr(0x10)
	frame := make([]byte, wire.EthernetHeaderSize+wire.IPv6HeaderSize+wire.ICMPv6HeaderSize+wire.NeighborSolicitationSize)

	eth := wire.EthernetHeader{Dst: mac(0x01), Src: srcMAC, EtherType: wire.EtherTypeIPv6}
	if err := wire.PutEthernet(frame, eth); err != nil {
		t.Fatalf("PutEthernet: %v", err)
	}

	payloadLen := wire.ICMPv6HeaderSize + wire.NeighborSolicitationSize
	ip := wire.IPv6Header{
		Version:    wire.IPv6Version,
		PayloadLen: uint16(payloadLen),
		NextHeader: wire.NextHeaderICMPv6,
		HopLimit:   255,
		Src:        target,
		Dst:        local,
	}
	if err := wire.PutIPv6(frame[wire.EthernetHeaderSize:], ip); err != nil {
		t.Fatalf("PutIPv6: %v", err)
	}

	icmpOff := wire.EthernetHeaderSize + wire.IPv6HeaderSize
	icmpHdr := wire.ICMPv6Header{Type: 136 /* NA */, Code: 0}
	if err := wire.PutICMPv6(frame[icmpOff:], icmpHdr); err != nil {
		t.Fatalf("PutICMPv6: %v", err)
	}

	msgOff := icmpOff + wire.ICMPv6HeaderSize
	msg := wire.NeighborMessage{SolicitedFlag: true, Target: target}
	if err := wire.PutNeighborMessage(frame[msgOff:], msg); err != nil {
		t.Fatalf("PutNeighborMessage: %v", err)
	}

	header := frame[icmpOff : icmpOff+wire.ICMPv6HeaderSize+wire.NeighborSolicitationSize]
	checksum := wire.UpperLayerChecksum(ip.Src, ip.Dst, ip.NextHeader, header, nil)
	frame[icmpOff+2] = byte(checksum >> 8)
	frame[icmpOff+3] = byte(checksum)

	return frame
}

func buildEchoRequestWithBadChecksum(t *testing.T, local [wire.IPv6AddrSize]byte) []byte {
	t.Helper()

	frame := make([]byte, wire.MinFrameLen+wire.ICMPv6HeaderSize+wire.NeighborSolicitationSize)
	eth := wire.EthernetHeader{Dst: mac(0x01), Src: mac(0x02), EtherType: wire.EtherTypeIPv6}
	if err := wire.PutEthernet(frame, eth); err != nil {
		t.Fatalf("PutEthernet: %v", err)
	}

	payloadLen := wire.ICMPv6HeaderSize + wire.NeighborSolicitationSize
	ip := wire.IPv6Header{
		Version:    wire.IPv6Version,
		PayloadLen: uint16(payloadLen),
		NextHeader: wire.NextHeaderICMPv6,
		HopLimit:   64,
		Src:        addr(0x02),
		Dst:        local,
	}
	if err := wire.PutIPv6(frame[wire.EthernetHeaderSize:], ip); err != nil {
		t.Fatalf("PutIPv6: %v", err)
	}

	icmpOff := wire.EthernetHeaderSize + wire.IPv6HeaderSize
	icmpHdr := wire.ICMPv6Header{Type: wire.ICMPv6TypeEchoRequest, Code: 0, Checksum: 0xdead}
	if err := wire.PutICMPv6(frame[icmpOff:], icmpHdr); err != nil {
		t.Fatalf("PutICMPv6: %v", err)
	}

	return frame
}
