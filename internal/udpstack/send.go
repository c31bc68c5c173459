package udpstack

import (
	"errors"
	"fmt"

	"github.com/seregonwar/rtnetstack/internal/bufpool"
	"github.com/seregonwar/rtnetstack/internal/ndp"
	"github.com/seregonwar/rtnetstack/internal/neighbor"
	"github.com/seregonwar/rtnetstack/internal/platform"
	"github.com/seregonwar/rtnetstack/internal/route"
	"github.com/seregonwar/rtnetstack/internal/wire"
)

// ErrInvalidParam indicates dport was zero or payload length was 0 or
// exceeded wire.MTU (spec.md Section 4.6).
var ErrInvalidParam = errors.New("invalid parameter")

// Send assembles and transmits a UDP datagram, following spec.md
// Section 4.6 exactly: validate, resolve the route, resolve the next hop's
// link-layer address, allocate a TX buffer matching qos, assemble
// Ethernet+IPv6+UDP headers, checksum, hand off to tx, then free the
// buffer.
//
// sport must already be resolved to a nonzero value by the caller — the
// ephemeral-port allocator is context-wide state owned by internal/rtnet
// (spec.md Section 4.9), not this stateless engine.
//
// Returns ndp.ErrNoRoute or ndp.ErrUnresolved (both surfaced to callers as
// the core's no_route code — spec.md Section 4.6 does not carry a distinct
// "neighbor unresolved" status in its egress API) or bufpool.ErrNoBuffer on
// failure, wrapped with call context.
func Send(
	pool *bufpool.Pool,
	routes *route.Table,
	neighbors *neighbor.Cache,
	tx platform.TX,
	localMAC [wire.MACSize]byte,
	localAddr [wire.IPv6AddrSize]byte,
	dst [wire.IPv6AddrSize]byte,
	dport, sport uint16,
	payload []byte,
	qos bufpool.QoS,
	now uint32,
) error {
	if dport == 0 || sport == 0 {
		return fmt.Errorf("udp send: port is zero: %w", ErrInvalidParam)
	}
	if len(payload) == 0 || len(payload) > wire.MTU {
		return fmt.Errorf("udp send: payload_len=%d: %w", len(payload), ErrInvalidParam)
	}

	destMAC, err := ndp.NextHop(routes, neighbors, dst, now)
	if err != nil {
		return fmt.Errorf("udp send: %w", err)
	}

	idx, err := pool.Allocate(qos, now)
	if err != nil {
		return fmt.Errorf("udp send: %w", err)
	}
	defer pool.Free(idx)

	buf := pool.Get(idx)
	frame := buf.Data[:]

	eth := wire.EthernetHeader{Dst: destMAC, Src: localMAC, EtherType: wire.EtherTypeIPv6}
	if err := wire.PutEthernet(frame, eth); err != nil {
		return fmt.Errorf("udp send: %w", err)
	}

	ipPayloadLen := wire.UDPHeaderSize + len(payload)
	ip := wire.IPv6Header{
		Version:    wire.IPv6Version,
		PayloadLen: uint16(ipPayloadLen),
		NextHeader: wire.NextHeaderUDP,
		HopLimit:   wire.DefaultHopLimit,
		Src:        localAddr,
		Dst:        dst,
	}
	if err := wire.PutIPv6(frame[wire.EthernetHeaderSize:], ip); err != nil {
		return fmt.Errorf("udp send: %w", err)
	}

	udpOff := wire.EthernetHeaderSize + wire.IPv6HeaderSize
	udp := wire.UDPHeader{SrcPort: sport, DstPort: dport, Length: uint16(ipPayloadLen)}
	if err := wire.PutUDP(frame[udpOff:], udp); err != nil {
		return fmt.Errorf("udp send: %w", err)
	}
	copy(frame[udpOff+wire.UDPHeaderSize:], payload)

	header := frame[udpOff : udpOff+wire.UDPHeaderSize]
	checksum := wire.UpperLayerChecksum(ip.Src, ip.Dst, ip.NextHeader, header, payload)
	frame[udpOff+6] = byte(checksum >> 8)
	frame[udpOff+7] = byte(checksum)

	total := wire.EthernetHeaderSize + wire.IPv6HeaderSize + ipPayloadLen
	if err := tx.Transmit(frame[:total]); err != nil {
		return fmt.Errorf("udp send: transmit: %w", err)
	}

	return nil
}
