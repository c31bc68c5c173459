package ager

import (
	"github.com/seregonwar/rtnetstack/internal/mdns"
	"github.com/seregonwar/rtnetstack/internal/neighbor"
	"github.com/seregonwar/rtnetstack/internal/route"
	"github.com/seregonwar/rtnetstack/internal/tcplite"
)

// Hooks bundles the side-effecting actions Sweep needs but does not own:
// resending a TCP-Lite connection's outstanding segment, forcing a timed
// out connection closed, and emitting a scheduled mDNS announcement.
// internal/rtnet supplies these, since they require the buffer pool and
// the platform TX hook.
type Hooks struct {
	Retransmit func(handle int)
	TCPTimeout func(handle int)
	Announce   func(rec mdns.Record)
}

// Sweep runs one pass of spec.md Section 4.10 over every table: neighbor
// aging, route aging, TCP-Lite retransmit/timeout, and mDNS aging plus
// scheduled re-announcement. Bounded by the sum of the four tables'
// capacities, as the spec requires.
func Sweep(routes *route.Table, neighbors *neighbor.Cache, tcp *tcplite.Table, records *mdns.Cache, now uint32, hooks Hooks) {
	neighbors.Age(now)
	routes.Age(now)

	for handle := 0; handle < tcp.Capacity(); handle++ {
		// A due retransmission is checked first: a segment sent at the
		// same instant as the last activity makes both checks true together.
		switch {
		case tcp.RetransmitDue(handle, now):
			if hooks.Retransmit != nil {
				hooks.Retransmit(handle)
			}
			tcp.MarkRetransmitted(handle, now)
		case tcp.IdleTimedOut(handle, now) || tcp.RetransmitExhausted(handle, now):
			if hooks.TCPTimeout != nil {
				hooks.TCPTimeout(handle)
			}
			tcp.Abort(handle)
		}
	}

	records.Age(now)
	for _, idx := range records.DueAnnouncements(now) {
		if hooks.Announce != nil {
			if rec := records.Get(idx); rec != nil {
				hooks.Announce(*rec)
			}
		}
		records.Refresh(idx, now)
	}
}
