package wire

import (
	"encoding/binary"
	"fmt"
)

// UDPHeader is a decoded view of the fixed 8-byte UDP header (RFC 768).
type UDPHeader struct {
	SrcPort  uint16
	DstPort  uint16
	Length   uint16 // header + payload, in bytes
	Checksum uint16
}

// ParseUDP reads the 8-byte UDP header at the start of buf.
func ParseUDP(buf []byte) (UDPHeader, error) {
	var h UDPHeader

	if len(buf) < UDPHeaderSize {
		return h, fmt.Errorf("parse udp: %w", ErrFrameTooShort)
	}

	h.SrcPort = binary.BigEndian.Uint16(buf[0:2])
	h.DstPort = binary.BigEndian.Uint16(buf[2:4])
	h.Length = binary.BigEndian.Uint16(buf[4:6])
	h.Checksum = binary.BigEndian.Uint16(buf[6:8])

	return h, nil
}

// PutUDP writes the 8-byte UDP header into the first UDPHeaderSize bytes of
// buf.
func PutUDP(buf []byte, h UDPHeader) error {
	if len(buf) < UDPHeaderSize {
		return fmt.Errorf("put udp: %w", ErrFrameTooShort)
	}

	binary.BigEndian.PutUint16(buf[0:2], h.SrcPort)
	binary.BigEndian.PutUint16(buf[2:4], h.DstPort)
	binary.BigEndian.PutUint16(buf[4:6], h.Length)
	binary.BigEndian.PutUint16(buf[6:8], h.Checksum)

	return nil
}
