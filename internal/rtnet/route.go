package rtnet

import (
	"fmt"

	"github.com/seregonwar/rtnetstack/internal/route"
	"github.com/seregonwar/rtnetstack/internal/wire"
)

// AddRoute installs a route entry (spec.md Section 4.3, Section 6:
// "add_route(dst_prefix, prefix_len, optional next_hop, metric)"). A nil
// nextHop means directly connected.
func (c *Context) AddRoute(dstPrefix [wire.IPv6AddrSize]byte, prefixLen int, nextHop *[wire.IPv6AddrSize]byte, metric uint16) error {
	release := c.guard.Enter()
	defer release()

	if !c.initialized {
		return fmt.Errorf("add route: %w", ErrNotInitialized)
	}
	if prefixLen < 0 || prefixLen > 128 {
		return fmt.Errorf("add route: prefix_len=%d: %w", prefixLen, ErrInvalidParam)
	}

	now := c.clock.NowMillis()

	var nh [wire.IPv6AddrSize]byte
	hasNextHop := nextHop != nil
	if hasNextHop {
		nh = *nextHop
	}

	if _, err := c.routes.Insert(dstPrefix, prefixLen, nh, hasNextHop, metric, now); err != nil {
		return fmt.Errorf("add route: %w", err)
	}
	return nil
}

// RouteSnapshot returns a copy of every valid routing-table entry, for
// cmd/rtnetctl inspection (spec.md Section 4.13 supplement: "A Snapshot()
// per table").
func (c *Context) RouteSnapshot() []route.Entry {
	release := c.guard.Enter()
	defer release()

	out := make([]route.Entry, 0, c.routes.Capacity())
	for i := 0; i < c.routes.Capacity(); i++ {
		if e := c.routes.Get(i); e != nil && e.Valid {
			out = append(out, *e)
		}
	}
	return out
}
