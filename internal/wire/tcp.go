package wire

import (
	"encoding/binary"
	"fmt"
)

// TCPLiteHeader is a decoded view of the reduced TCP-Lite header: no
// options, no window scaling, no urgent pointer, no ECE/CWR/URG/PSH flags
// (spec.md Section 4.7 — "no window scaling, no SACK, no delayed ACK").
type TCPLiteHeader struct {
	SrcPort  uint16
	DstPort  uint16
	Seq      uint32
	Ack      uint32
	Flags    uint8
	Window   uint16
	Checksum uint16
}

// HasFlag reports whether the given flag bit is set.
func (h TCPLiteHeader) HasFlag(flag uint8) bool {
	return h.Flags&flag != 0
}

// ParseTCPLite reads the fixed TCPLiteHeaderSize-byte header at the start of
// buf.
func ParseTCPLite(buf []byte) (TCPLiteHeader, error) {
	var h TCPLiteHeader

	if len(buf) < TCPLiteHeaderSize {
		return h, fmt.Errorf("parse tcp-lite: %w", ErrFrameTooShort)
	}

	h.SrcPort = binary.BigEndian.Uint16(buf[0:2])
	h.DstPort = binary.BigEndian.Uint16(buf[2:4])
	h.Seq = binary.BigEndian.Uint32(buf[4:8])
	h.Ack = binary.BigEndian.Uint32(buf[8:12])
	h.Flags = buf[12]
	h.Window = binary.BigEndian.Uint16(buf[13:15])
	h.Checksum = binary.BigEndian.Uint16(buf[15:17])
	// buf[17:20] is reserved padding, always zero on the wire.

	return h, nil
}

// PutTCPLite writes the fixed TCPLiteHeaderSize-byte header into the start
// of buf, zeroing the reserved trailer.
func PutTCPLite(buf []byte, h TCPLiteHeader) error {
	if len(buf) < TCPLiteHeaderSize {
		return fmt.Errorf("put tcp-lite: %w", ErrFrameTooShort)
	}

	binary.BigEndian.PutUint16(buf[0:2], h.SrcPort)
	binary.BigEndian.PutUint16(buf[2:4], h.DstPort)
	binary.BigEndian.PutUint32(buf[4:8], h.Seq)
	binary.BigEndian.PutUint32(buf[8:12], h.Ack)
	buf[12] = h.Flags
	binary.BigEndian.PutUint16(buf[13:15], h.Window)
	binary.BigEndian.PutUint16(buf[15:17], h.Checksum)
	buf[17] = 0
	buf[18] = 0
	buf[19] = 0

	return nil
}
