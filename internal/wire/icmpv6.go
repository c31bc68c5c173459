package wire

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/net/ipv6"
)

// ICMPv6Header is a decoded view of the common 4-byte ICMPv6 header
// (RFC 4443 Section 2.1). Type uses golang.org/x/net/ipv6's ICMPType so
// callers get a readable String() for logging without this package
// maintaining its own name table.
type ICMPv6Header struct {
	Type     ipv6.ICMPType
	Code     uint8
	Checksum uint16
}

// ParseICMPv6 reads the 4-byte common ICMPv6 header at the start of buf.
func ParseICMPv6(buf []byte) (ICMPv6Header, error) {
	var h ICMPv6Header

	if len(buf) < ICMPv6HeaderSize {
		return h, fmt.Errorf("parse icmpv6: %w", ErrFrameTooShort)
	}

	h.Type = ipv6.ICMPType(buf[0])
	h.Code = buf[1]
	h.Checksum = binary.BigEndian.Uint16(buf[2:4])

	return h, nil
}

// PutICMPv6 writes the 4-byte common ICMPv6 header into the start of buf.
func PutICMPv6(buf []byte, h ICMPv6Header) error {
	if len(buf) < ICMPv6HeaderSize {
		return fmt.Errorf("put icmpv6: %w", ErrFrameTooShort)
	}

	buf[0] = byte(h.Type)
	buf[1] = h.Code
	binary.BigEndian.PutUint16(buf[2:4], h.Checksum)

	return nil
}

// NeighborMessage is the decoded body of a Neighbor Solicitation or
// Neighbor Advertisement (RFC 4861 Sections 4.3, 4.4), following the common
// ICMPv6Header. Options (e.g. Source/Target Link-Layer Address) are out of
// scope; the target address is read directly at its fixed offset.
type NeighborMessage struct {
	// RouterFlag, SolicitedFlag and OverrideFlag are only meaningful on a
	// Neighbor Advertisement (RFC 4861 Section 4.4); zero on a Solicitation.
	RouterFlag    bool
	SolicitedFlag bool
	OverrideFlag  bool
	Target        [IPv6AddrSize]byte
}

// ParseNeighborMessage reads the NS/NA body (reserved/flags word + target
// address) at the start of buf, i.e. immediately after the common ICMPv6
// header.
func ParseNeighborMessage(buf []byte) (NeighborMessage, error) {
	var m NeighborMessage

	if len(buf) < NeighborSolicitationSize {
		return m, fmt.Errorf("parse neighbor message: %w", ErrFrameTooShort)
	}

	flags := buf[0]
	m.RouterFlag = flags&0x80 != 0
	m.SolicitedFlag = flags&0x40 != 0
	m.OverrideFlag = flags&0x20 != 0

	copy(m.Target[:], buf[4:20])

	return m, nil
}

// PutNeighborMessage writes the NS/NA body into the start of buf.
func PutNeighborMessage(buf []byte, m NeighborMessage) error {
	if len(buf) < NeighborSolicitationSize {
		return fmt.Errorf("put neighbor message: %w", ErrFrameTooShort)
	}

	var flags byte
	if m.RouterFlag {
		flags |= 0x80
	}
	if m.SolicitedFlag {
		flags |= 0x40
	}
	if m.OverrideFlag {
		flags |= 0x20
	}

	buf[0] = flags
	buf[1], buf[2], buf[3] = 0, 0, 0
	copy(buf[4:20], m.Target[:])

	return nil
}
