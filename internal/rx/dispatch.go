package rx

import (
	"errors"
	"fmt"

	"github.com/seregonwar/rtnetstack/internal/route"
	"github.com/seregonwar/rtnetstack/internal/wire"
)

// Kind identifies which upper-layer engine a dispatched frame demultiplexes
// to (spec.md Section 4.5 step 7).
type Kind int

const (
	KindICMPv6 Kind = iota
	KindUDP
	KindTCP
)

// String returns the human-readable name of the Kind, for logging.
func (k Kind) String() string {
	switch k {
	case KindICMPv6:
		return "icmpv6"
	case KindUDP:
		return "udp"
	case KindTCP:
		return "tcp"
	default:
		return "unknown"
	}
}

// Sentinel errors, each a distinct classification per spec.md Section 4.5
// step 8 ("return a distinct error kind"). All but ErrChecksum map to the
// core's invalid_param code; ErrChecksum maps to the checksum code.
var (
	ErrHopLimitZero     = errors.New("hop limit is zero")
	ErrNotForUs         = errors.New("destination is neither local nor a joined multicast group")
	ErrUnknownProtocol  = errors.New("unknown next header")
	ErrChecksum         = errors.New("upper-layer checksum mismatch")
	ErrNotIPv6EtherType = errors.New("ethertype is not ipv6")
)

// Result is the classification of one accepted frame: which engine it
// demultiplexes to, its decoded headers, and the upper-layer payload slice
// (a sub-slice of the original frame — the caller must not retain it past
// the processing of this one frame, per spec.md's buffer-ownership model).
type Result struct {
	Kind    Kind
	Eth     wire.EthernetHeader
	IPv6    wire.IPv6Header
	Header  []byte // the upper-layer protocol header, raw wire bytes
	Payload []byte // the upper-layer payload following Header
}

// solicitedNodeMulticastPrefix is the fixed 13-byte prefix of a
// solicited-node multicast address, ff02::1:ff00:0/104 (RFC 4291
// Section 2.7.1). The low 24 bits are the target address's low 24 bits.
var solicitedNodeMulticastPrefix = [13]byte{0xff, 0x02, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0xff}

// linkLocalAllNodes is ff02::1, the link-local all-nodes multicast address
// (RFC 4291 Section 2.7.1).
var linkLocalAllNodes = [wire.IPv6AddrSize]byte{0xff, 0x02, 15: 1}

// isSolicitedNode reports whether addr is the solicited-node multicast
// address derived from local.
func isSolicitedNode(addr, local [wire.IPv6AddrSize]byte) bool {
	for i := 0; i < 13; i++ {
		if addr[i] != solicitedNodeMulticastPrefix[i] {
			return false
		}
	}
	return addr[13] == local[13] && addr[14] == local[14] && addr[15] == local[15]
}

// Dispatch validates frame against the steps of spec.md Section 4.5 and
// classifies it for delivery to the matching upper-layer engine.
//
// forward is the destination-acceptance policy: when false, a frame whose
// destination is neither local nor a joined multicast group is rejected
// with ErrNotForUs even if a matching route exists (spec.md Section 4.5
// step 5: "forwarding is OPTIONAL and OFF by default"). When true, a
// routing-table match additionally accepts the frame.
func Dispatch(frame []byte, localAddr [wire.IPv6AddrSize]byte, forward bool, routes *route.Table, now uint32) (Result, error) {
	var res Result

	if len(frame) < wire.MinFrameLen {
		return res, fmt.Errorf("dispatch: %w", wire.ErrFrameTooShort)
	}

	eth, err := wire.ParseEthernet(frame)
	if err != nil {
		return res, fmt.Errorf("dispatch: %w", err)
	}
	if eth.EtherType != wire.EtherTypeIPv6 {
		return res, fmt.Errorf("dispatch: ethertype=0x%04x: %w", eth.EtherType, ErrNotIPv6EtherType)
	}

	ip, err := wire.ParseIPv6(frame[wire.EthernetHeaderSize:], len(frame))
	if err != nil {
		return res, fmt.Errorf("dispatch: %w", err)
	}

	if ip.HopLimit == 0 {
		return res, fmt.Errorf("dispatch: %w", ErrHopLimitZero)
	}

	if !destinationAccepted(ip.Dst, localAddr, forward, routes, now) {
		return res, fmt.Errorf("dispatch: %w", ErrNotForUs)
	}

	headerStart := wire.EthernetHeaderSize + wire.IPv6HeaderSize
	upperLayer := frame[headerStart : headerStart+int(ip.PayloadLen)]

	var headerSize int
	var kind Kind
	switch ip.NextHeader {
	case wire.NextHeaderICMPv6:
		headerSize, kind = wire.ICMPv6HeaderSize, KindICMPv6
	case wire.NextHeaderUDP:
		headerSize, kind = wire.UDPHeaderSize, KindUDP
	case wire.NextHeaderTCP:
		headerSize, kind = wire.TCPLiteHeaderSize, KindTCP
	default:
		return res, fmt.Errorf("dispatch: next_header=%d: %w", ip.NextHeader, ErrUnknownProtocol)
	}

	if len(upperLayer) < headerSize {
		return res, fmt.Errorf("dispatch: %w", wire.ErrFrameTooShort)
	}
	header := upperLayer[:headerSize]
	payload := upperLayer[headerSize:]

	if wire.UpperLayerChecksum(ip.Src, ip.Dst, ip.NextHeader, header, payload) != 0 {
		return res, fmt.Errorf("dispatch: %w", ErrChecksum)
	}

	res.Kind = kind
	res.Eth = eth
	res.IPv6 = ip
	res.Header = header
	res.Payload = payload
	return res, nil
}

// destinationAccepted implements spec.md Section 4.5 step 5: the
// destination must match the local address, a joined multicast group
// (solicited-node or link-local all-nodes), or — only when forward is
// true — a routing-table entry.
func destinationAccepted(dst, local [wire.IPv6AddrSize]byte, forward bool, routes *route.Table, now uint32) bool {
	if wire.AddrEqual(dst, local) {
		return true
	}
	if wire.AddrEqual(dst, linkLocalAllNodes) {
		return true
	}
	if isSolicitedNode(dst, local) {
		return true
	}
	if forward && routes != nil {
		if _, ok := routes.Find(dst, now); ok {
			return true
		}
	}
	return false
}
