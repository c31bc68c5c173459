package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// IPv6Version is the only valid value of the 4-bit Version field
// (RFC 8200 Section 3).
const IPv6Version uint8 = 6

// ErrBadVersion indicates the IPv6 header's Version field is not 6.
var ErrBadVersion = errors.New("ipv6 version field is not 6")

// ErrLengthMismatch indicates the frame's actual length disagrees with the
// IPv6 payload length field by more than the link-layer padding allowance.
var ErrLengthMismatch = errors.New("ipv6 payload length disagrees with frame length")

// paddingAllowance is the maximum number of trailing link-layer padding
// bytes tolerated beyond the declared IPv6 payload length (e.g. Ethernet's
// 60-byte minimum frame size on short datagrams).
const paddingAllowance = 18

// IPv6Header is a decoded view of the fixed 40-byte IPv6 header
// (RFC 8200 Section 3). The extension-header chain is out of scope; Next
// Header is read as the immediate upper-layer protocol.
type IPv6Header struct {
	Version      uint8
	TrafficClass uint8
	FlowLabel    uint32 // low 20 bits significant
	PayloadLen   uint16
	NextHeader   uint8
	HopLimit     uint8
	Src          [IPv6AddrSize]byte
	Dst          [IPv6AddrSize]byte
}

// ParseIPv6 reads the 40-byte IPv6 header starting at buf[0]. buf is the
// IPv6 header plus its payload (i.e. everything after the Ethernet header).
//
// frameLen is the total length of the link-layer frame the header was
// extracted from (Ethernet header + IPv6 header + payload), used to reject
// frames whose declared payload length disagrees with the actual frame
// length by more than the link-layer padding allowance.
func ParseIPv6(buf []byte, frameLen int) (IPv6Header, error) {
	var h IPv6Header

	if len(buf) < IPv6HeaderSize {
		return h, fmt.Errorf("parse ipv6: %w", ErrFrameTooShort)
	}

	word0 := binary.BigEndian.Uint32(buf[0:4])
	h.Version = uint8(word0 >> 28)
	h.TrafficClass = uint8(word0 >> 20)
	h.FlowLabel = word0 & 0x000FFFFF

	h.PayloadLen = binary.BigEndian.Uint16(buf[4:6])
	h.NextHeader = buf[6]
	h.HopLimit = buf[7]

	copy(h.Src[:], buf[8:24])
	copy(h.Dst[:], buf[24:40])

	if h.Version != IPv6Version {
		return h, fmt.Errorf("parse ipv6: version=%d: %w", h.Version, ErrBadVersion)
	}

	declared := EthernetHeaderSize + IPv6HeaderSize + int(h.PayloadLen)
	if frameLen < declared || frameLen-declared > paddingAllowance {
		return h, fmt.Errorf("parse ipv6: declared=%d actual=%d: %w",
			declared, frameLen, ErrLengthMismatch)
	}

	return h, nil
}

// PutIPv6 writes the 40-byte IPv6 header into the first IPv6HeaderSize
// bytes of buf.
func PutIPv6(buf []byte, h IPv6Header) error {
	if len(buf) < IPv6HeaderSize {
		return fmt.Errorf("put ipv6: %w", ErrFrameTooShort)
	}

	word0 := uint32(h.Version&0x0F)<<28 | uint32(h.TrafficClass)<<20 | (h.FlowLabel & 0x000FFFFF)
	binary.BigEndian.PutUint32(buf[0:4], word0)

	binary.BigEndian.PutUint16(buf[4:6], h.PayloadLen)
	buf[6] = h.NextHeader
	buf[7] = h.HopLimit

	copy(buf[8:24], h.Src[:])
	copy(buf[24:40], h.Dst[:])

	return nil
}

// AddrEqual reports whether two IPv6 addresses are byte-wise identical.
// Runs in constant time with respect to the address contents (always
// compares all 16 bytes), per the data model's equality contract.
func AddrEqual(a, b [IPv6AddrSize]byte) bool {
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

// PrefixMatch reports whether addr agrees with prefix over the leading
// prefixLen bits (0..128). prefixLen values outside 0..128 are clamped to
// that range. Implemented as full-byte comparison over prefixLen/8 bytes
// followed by a single masked-byte comparison on the remainder, per the
// data model's prefix-match contract.
func PrefixMatch(addr, prefix [IPv6AddrSize]byte, prefixLen int) bool {
	switch {
	case prefixLen <= 0:
		return true
	case prefixLen > 128:
		prefixLen = 128
	}

	fullBytes := prefixLen / 8
	remBits := prefixLen % 8

	for i := range fullBytes {
		if addr[i] != prefix[i] {
			return false
		}
	}

	if remBits == 0 {
		return true
	}

	mask := byte(0xFF << (8 - remBits))
	return addr[fullBytes]&mask == prefix[fullBytes]&mask
}
