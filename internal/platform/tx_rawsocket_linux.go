//go:build linux

package platform

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// RawSocketTX transmits frames onto a real interface via an AF_PACKET
// SOCK_RAW socket, bypassing the kernel's IPv6 stack entirely — this
// process is its own IPv6 implementation, so frames go out exactly as
// built, headers and all, the same "we own the wire format" posture the
// teacher's LinuxPacketConn takes for BFD Control packets over UDP.
type RawSocketTX struct {
	mu     sync.Mutex
	fd     int
	ifIdx  int
	closed bool
}

// NewRawSocketTX opens an AF_PACKET/SOCK_RAW socket bound to the interface
// identified by ifIndex (as returned by net.InterfaceByName("eth0").Index).
// The socket is opened with ETH_P_ALL so RawSocketTX can coexist with a
// receive path bound to the same interface.
func NewRawSocketTX(ifIndex int) (*RawSocketTX, error) {
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	if err != nil {
		return nil, fmt.Errorf("open AF_PACKET socket: %w", err)
	}

	addr := unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  ifIndex,
	}
	if err := unix.Bind(fd, &addr); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("bind AF_PACKET socket to ifindex %d: %w", ifIndex, err)
	}

	return &RawSocketTX{fd: fd, ifIdx: ifIndex}, nil
}

// Transmit sends frame verbatim on the bound interface. frame must already
// contain a complete Ethernet header; RawSocketTX adds nothing.
func (t *RawSocketTX) Transmit(frame []byte) error {
	if len(frame) < minEthernetFrame {
		return fmt.Errorf("frame too short to transmit: %d bytes", len(frame))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("send on closed raw socket")
	}

	addr := unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  t.ifIdx,
	}
	if err := unix.Sendto(t.fd, frame, 0, &addr); err != nil {
		return fmt.Errorf("sendto ifindex %d: %w", t.ifIdx, err)
	}
	return nil
}

// Receive blocks until one frame arrives on the bound interface and copies
// it into buf, returning the number of bytes written. Symmetric with
// Transmit: cmd/rtnetd drives the core's RX side by looping Receive into
// rtnet.Context.ProcessRX, the same fd Transmit writes to (ETH_P_ALL also
// delivers this process's own outbound frames back to itself unless the
// caller filters by source MAC).
func (t *RawSocketTX) Receive(buf []byte) (int, error) {
	n, _, err := unix.Recvfrom(t.fd, buf, 0)
	if err != nil {
		return 0, fmt.Errorf("recvfrom ifindex %d: %w", t.ifIdx, err)
	}
	return n, nil
}

// Close releases the underlying socket. Safe to call more than once;
// unblocks a concurrent Receive with an error so the reader goroutine can
// observe shutdown.
func (t *RawSocketTX) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	if err := unix.Close(t.fd); err != nil {
		return fmt.Errorf("close raw socket: %w", err)
	}
	return nil
}

// htons converts a 16-bit value from host to network byte order. AF_PACKET
// protocol fields are always big-endian regardless of host endianness.
func htons(v int) uint16 {
	return uint16(v<<8&0xFF00 | v>>8&0x00FF)
}
