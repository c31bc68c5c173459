package wire

import "golang.org/x/net/ipv6"

// -------------------------------------------------------------------------
// Frame size constants
// -------------------------------------------------------------------------

const (
	// EthernetHeaderSize is the fixed Ethernet II header size: dst MAC (6) +
	// src MAC (6) + EtherType (2).
	EthernetHeaderSize = 14

	// MACSize is the length in bytes of a MAC-48 address.
	MACSize = 6

	// IPv6HeaderSize is the fixed IPv6 header size (RFC 8200 Section 3).
	IPv6HeaderSize = 40

	// IPv6AddrSize is the length in bytes of an IPv6 address.
	IPv6AddrSize = 16

	// UDPHeaderSize is the fixed UDP header size (RFC 768).
	UDPHeaderSize = 8

	// TCPLiteHeaderSize is the fixed TCP-Lite header size: source port (2),
	// dest port (2), sequence number (4), ack number (4), flags (1),
	// window (2), checksum (2) — 17 bytes padded to 20 to keep the 32-bit
	// word alignment of the RFC 793 header this is a reduction of, with the
	// unused trailing 3 bytes reserved and always zero on the wire.
	TCPLiteHeaderSize = 20

	// ICMPv6HeaderSize is the fixed ICMPv6 header size: type (1), code (1),
	// checksum (2) (RFC 4443 Section 2.1).
	ICMPv6HeaderSize = 4

	// NeighborSolicitationSize is the ICMPv6 NS/NA body size after the
	// common header: reserved/flags (4) + target address (16)
	// (RFC 4861 Sections 4.3, 4.4).
	NeighborSolicitationSize = 20

	// MTU is the largest link-layer payload this stack transmits.
	MTU = 1500

	// MinFrameLen is the minimum byte length of a frame the codec accepts:
	// Ethernet header plus an IPv6 header.
	MinFrameLen = EthernetHeaderSize + IPv6HeaderSize

	// DefaultHopLimit is the hop limit stamped on originated IPv6 packets.
	DefaultHopLimit = 64
)

// EtherType identifies the payload protocol carried in an Ethernet frame.
const (
	// EtherTypeIPv6 is the EtherType for IPv6 (RFC 8200 Appendix B / IEEE 802).
	EtherTypeIPv6 uint16 = 0x86DD
)

// NextHeader identifies the IPv6 upper-layer protocol (IANA protocol numbers,
// reused verbatim as the IPv6 Next Header field per RFC 8200 Section 4).
const (
	NextHeaderICMPv6 uint8 = 58
	NextHeaderUDP    uint8 = 17
	NextHeaderTCP    uint8 = 6
)

// ICMPv6 message types used by the neighbor-discovery subset (RFC 4861).
// Typed as ipv6.ICMPType to compare directly against a parsed
// ICMPv6Header.Type.
const (
	ICMPv6TypeNeighborSolicitation  ipv6.ICMPType = 135
	ICMPv6TypeNeighborAdvertisement ipv6.ICMPType = 136
	ICMPv6TypeEchoRequest           ipv6.ICMPType = 128
	ICMPv6TypeEchoReply             ipv6.ICMPType = 129
	ICMPv6TypeRouterSolicitation    ipv6.ICMPType = 133
	ICMPv6TypeRouterAdvertisement   ipv6.ICMPType = 134
)

// TCPLite flag bits, packed into a single byte (RFC 793 subset — no ECE,
// CWR, URG, PSH: TCP-Lite never sets them).
const (
	TCPFlagFIN uint8 = 1 << 0
	TCPFlagSYN uint8 = 1 << 1
	TCPFlagRST uint8 = 1 << 2
	TCPFlagACK uint8 = 1 << 4
)
