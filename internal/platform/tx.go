package platform

import "github.com/seregonwar/rtnetstack/internal/wire"

// TX is the hardware-transmit collaborator spec.md Section 6 requires: the
// core hands it a fully framed Ethernet frame (header already stamped by
// the caller) and TX is responsible for getting those bytes onto the wire.
// The core never retries a failed transmit itself; a non-nil error is
// counted against tx_errors by the caller (internal/rtnet).
type TX interface {
	// Transmit sends frame, which is a complete Ethernet II frame
	// (destination MAC, source MAC, EtherType, payload). Implementations
	// must not retain frame past the call.
	Transmit(frame []byte) error
}

// LoopbackTX is a TX that delivers every frame it is given straight back to
// a registered receive callback, with no host networking involved. It
// exists for tests and for running the stack against itself without a
// real NIC, the same role the teacher's in-memory PacketConn mocks play
// for BFD session tests.
type LoopbackTX struct {
	receive func(frame []byte)
}

// NewLoopbackTX returns a LoopbackTX that invokes receive for every frame
// handed to Transmit. receive must not block and must not retain frame past
// the call — Transmit copies nothing.
func NewLoopbackTX(receive func(frame []byte)) *LoopbackTX {
	return &LoopbackTX{receive: receive}
}

// Transmit hands frame directly to the registered receive callback. Always
// succeeds: a loopback has no transmission failure mode of its own.
func (t *LoopbackTX) Transmit(frame []byte) error {
	if t.receive != nil {
		t.receive(frame)
	}
	return nil
}

// minEthernetFrame is the smallest frame RawSocketTX.Transmit accepts: an
// Ethernet header with zero payload. LoopbackTX does not check frame length.
const minEthernetFrame = wire.EthernetHeaderSize
