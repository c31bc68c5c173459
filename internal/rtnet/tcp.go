package rtnet

import (
	"fmt"
	"log/slog"

	"github.com/seregonwar/rtnetstack/internal/bufpool"
	"github.com/seregonwar/rtnetstack/internal/ndp"
	"github.com/seregonwar/rtnetstack/internal/tcplite"
	"github.com/seregonwar/rtnetstack/internal/wire"
)

// TCPConnect opens a TCP-Lite connection (spec.md Section 4.7: "find free
// slot, route-check, populate fields, ... transition CLOSED -> SYN_SENT,
// emit SYN"). Returns the connection's handle.
func (c *Context) TCPConnect(dst [wire.IPv6AddrSize]byte, dport uint16) (int, error) {
	release := c.guard.Enter()
	defer release()

	if !c.initialized {
		return -1, fmt.Errorf("tcp connect: %w", ErrNotInitialized)
	}
	if dport == 0 {
		return -1, fmt.Errorf("tcp connect: %w", ErrInvalidParam)
	}

	now := c.clock.NowMillis()

	destMAC, err := ndp.NextHop(c.routes, c.neighbors, dst, now)
	if err != nil {
		c.stats.RoutingErrors++
		return -1, fmt.Errorf("tcp connect: %w", err)
	}

	localPort := c.nextEphemeralPort()
	initialSeq := c.nextSeq()

	handle, err := c.tcp.Connect(c.localAddr, localPort, dst, dport, initialSeq, now)
	if err != nil {
		c.stats.TXDropped++
		return -1, fmt.Errorf("tcp connect: %w", err)
	}

	conn := c.tcp.Get(handle)
	if txErr := c.transmitTCPSegment(conn, destMAC, initialSeq, wire.TCPFlagSYN, nil); txErr != nil {
		c.stats.TXErrors++
		c.logger.Warn("tcp connect: syn transmit failed", slog.Any("error", txErr), slog.Int("handle", handle))
	} else {
		c.stats.TXPackets++
	}

	return handle, nil
}

// TCPSend segments data into MSS-sized chunks, records them in the
// connection table, and transmits each chunk
// (spec.md Section 4.7: "send(handle, data, len)").
func (c *Context) TCPSend(handle int, data []byte) error {
	release := c.guard.Enter()
	defer release()

	if !c.initialized {
		return fmt.Errorf("tcp send: %w", ErrNotInitialized)
	}

	conn := c.tcp.Get(handle)
	if conn == nil {
		return fmt.Errorf("tcp send: %w", tcplite.ErrInvalidParam)
	}
	startSeq := conn.SendNext
	remote := conn.RemoteAddr

	now := c.clock.NowMillis()
	if err := c.tcp.Send(handle, data, now); err != nil {
		return fmt.Errorf("tcp send: %w", err)
	}

	destMAC, err := ndp.NextHop(c.routes, c.neighbors, remote, now)
	if err != nil {
		c.logger.Warn("tcp send: neighbor unresolved, relying on retransmission", slog.Int("handle", handle))
		return nil
	}

	for offset := 0; offset < len(data); offset += tcplite.MSS {
		end := offset + tcplite.MSS
		if end > len(data) {
			end = len(data)
		}
		chunk := data[offset:end]
		seq := startSeq + uint32(offset)
		if err := c.transmitTCPSegment(conn, destMAC, seq, wire.TCPFlagACK, chunk); err != nil {
			c.stats.TXErrors++
			c.logger.Warn("tcp send: transmit failed", slog.Any("error", err), slog.Int("handle", handle))
			break
		}
		c.stats.TXPackets++
	}

	return nil
}

// TCPClose begins graceful teardown of handle (spec.md Section 4.7:
// "close(handle)").
func (c *Context) TCPClose(handle int) error {
	release := c.guard.Enter()
	defer release()

	if !c.initialized {
		return fmt.Errorf("tcp close: %w", ErrNotInitialized)
	}

	conn := c.tcp.Get(handle)
	if conn == nil {
		return fmt.Errorf("tcp close: %w", tcplite.ErrInvalidParam)
	}
	emitFIN := conn.State == tcplite.StateEstablished || conn.State == tcplite.StateCloseWait
	seq := conn.SendNext
	remote := conn.RemoteAddr

	now := c.clock.NowMillis()
	if err := c.tcp.Close(handle, now); err != nil {
		return fmt.Errorf("tcp close: %w", err)
	}

	if emitFIN {
		destMAC, err := ndp.NextHop(c.routes, c.neighbors, remote, now)
		if err != nil {
			c.logger.Warn("tcp close: neighbor unresolved, fin not sent", slog.Int("handle", handle))
			return nil
		}
		if err := c.transmitTCPSegment(conn, destMAC, seq, wire.TCPFlagFIN|wire.TCPFlagACK, nil); err != nil {
			c.stats.TXErrors++
		} else {
			c.stats.TXPackets++
		}
	}

	return nil
}

// transmitTCPSegment assembles and transmits one TCP-Lite segment for conn:
// Ethernet + IPv6 + TCP-Lite headers, checksum, then the platform TX hook.
// ack is always conn.RecvNext, matching every inbound segment this stack
// sends being a cumulative acknowledgment.
func (c *Context) transmitTCPSegment(conn *tcplite.Conn, destMAC [wire.MACSize]byte, seq uint32, flags uint8, payload []byte) error {
	idx, err := c.txPool.Allocate(bufpool.QoSNormal, c.clock.NowMillis())
	if err != nil {
		return fmt.Errorf("transmit tcp segment: %w", err)
	}
	defer c.txPool.Free(idx)

	buf := c.txPool.Get(idx)
	frame := buf.Data[:]

	eth := wire.EthernetHeader{Dst: destMAC, Src: c.localMAC, EtherType: wire.EtherTypeIPv6}
	if err := wire.PutEthernet(frame, eth); err != nil {
		return fmt.Errorf("transmit tcp segment: %w", err)
	}

	ipPayloadLen := wire.TCPLiteHeaderSize + len(payload)
	ip := wire.IPv6Header{
		Version:    wire.IPv6Version,
		PayloadLen: uint16(ipPayloadLen),
		NextHeader: wire.NextHeaderTCP,
		HopLimit:   wire.DefaultHopLimit,
		Src:        conn.LocalAddr,
		Dst:        conn.RemoteAddr,
	}
	if err := wire.PutIPv6(frame[wire.EthernetHeaderSize:], ip); err != nil {
		return fmt.Errorf("transmit tcp segment: %w", err)
	}

	tcpOff := wire.EthernetHeaderSize + wire.IPv6HeaderSize
	hdr := wire.TCPLiteHeader{
		SrcPort: conn.LocalPort,
		DstPort: conn.RemotePort,
		Seq:     seq,
		Ack:     conn.RecvNext,
		Flags:   flags,
		Window:  conn.RecvWindow,
	}
	if err := wire.PutTCPLite(frame[tcpOff:], hdr); err != nil {
		return fmt.Errorf("transmit tcp segment: %w", err)
	}
	copy(frame[tcpOff+wire.TCPLiteHeaderSize:], payload)

	header := frame[tcpOff : tcpOff+wire.TCPLiteHeaderSize]
	checksum := wire.UpperLayerChecksum(ip.Src, ip.Dst, ip.NextHeader, header, payload)
	// The checksum field starts at odd offset 15, so its two bytes fall in
	// different 16-bit words of the one's-complement sum; storing it low
	// byte first makes the sum over the whole segment verify to zero.
	frame[tcpOff+15] = byte(checksum)
	frame[tcpOff+16] = byte(checksum >> 8)

	total := wire.EthernetHeaderSize + wire.IPv6HeaderSize + ipPayloadLen
	if err := c.tx.Transmit(frame[:total]); err != nil {
		return fmt.Errorf("transmit tcp segment: %w", err)
	}
	return nil
}
