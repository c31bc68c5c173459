package ndp

import (
	"errors"
	"fmt"

	"github.com/seregonwar/rtnetstack/internal/neighbor"
	"github.com/seregonwar/rtnetstack/internal/route"
	"github.com/seregonwar/rtnetstack/internal/wire"
)

// ErrNoRoute indicates no routing-table entry matched the destination
// (spec.md Section 4.6: "'no route', routing_errors++").
var ErrNoRoute = errors.New("no route")

// ErrUnresolved indicates the next hop's link-layer address is not (yet)
// known. Transient: the caller should retry after the periodic task runs
// or after an advertisement resolves the entry (spec.md Section 4.4).
var ErrUnresolved = errors.New("neighbor unresolved")

// NextHop resolves dst to the link-layer address to transmit toward: the
// route's configured next hop if present, dst itself if the route is
// directly connected (spec.md Section 4.6: "the route's next_hop, or dst
// if directly connected"). It returns ErrNoRoute if no routing entry
// matches, or ErrUnresolved if the resolved next-hop address is not in the
// neighbor cache.
func NextHop(rt *route.Table, nc *neighbor.Cache, dst [wire.IPv6AddrSize]byte, now uint32) ([wire.MACSize]byte, error) {
	var zero [wire.MACSize]byte

	routeIdx, ok := rt.Find(dst, now)
	if !ok {
		return zero, fmt.Errorf("resolve %x: %w", dst, ErrNoRoute)
	}

	entry := rt.Get(routeIdx)
	target := dst
	if entry.HasNextHop {
		target = entry.NextHop
	}

	neighborIdx, ok := nc.Lookup(target, now)
	if !ok {
		return zero, fmt.Errorf("resolve %x: %w", target, ErrUnresolved)
	}

	return nc.Get(neighborIdx).MAC, nil
}

// ApplyAdvertisement installs or refreshes a neighbor-cache entry from an
// externally injected Neighbor Advertisement (RFC 4861 Section 4.4),
// marking it reachable. This is the only way a cache miss is resolved in
// this core: there is no outbound solicitation state machine
// (spec.md Section 4.4).
func ApplyAdvertisement(nc *neighbor.Cache, addr [wire.IPv6AddrSize]byte, mac [wire.MACSize]byte, now uint32) int {
	return nc.Insert(addr, mac, neighbor.StateReachable, now)
}
