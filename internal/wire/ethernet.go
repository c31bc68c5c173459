package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrFrameTooShort indicates a frame is shorter than the minimum length the
// codec can interpret.
var ErrFrameTooShort = errors.New("frame shorter than minimum length")

// EthernetHeader is a decoded view of an Ethernet II header. Field names
// follow the wire layout; Dst/Src are MAC-48 addresses.
type EthernetHeader struct {
	Dst       [MACSize]byte
	Src       [MACSize]byte
	EtherType uint16
}

// ParseEthernet reads the 14-byte Ethernet II header at the start of frame.
// Returns ErrFrameTooShort if frame is shorter than EthernetHeaderSize.
func ParseEthernet(frame []byte) (EthernetHeader, error) {
	var h EthernetHeader

	if len(frame) < EthernetHeaderSize {
		return h, fmt.Errorf("parse ethernet: %w", ErrFrameTooShort)
	}

	copy(h.Dst[:], frame[0:6])
	copy(h.Src[:], frame[6:12])
	h.EtherType = binary.BigEndian.Uint16(frame[12:14])

	return h, nil
}

// PutEthernet writes an Ethernet II header into the first EthernetHeaderSize
// bytes of buf. Returns ErrFrameTooShort if buf is too small.
func PutEthernet(buf []byte, h EthernetHeader) error {
	if len(buf) < EthernetHeaderSize {
		return fmt.Errorf("put ethernet: %w", ErrFrameTooShort)
	}

	copy(buf[0:6], h.Dst[:])
	copy(buf[6:12], h.Src[:])
	binary.BigEndian.PutUint16(buf[12:14], h.EtherType)

	return nil
}
