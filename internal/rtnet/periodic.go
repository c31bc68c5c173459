package rtnet

import (
	"log/slog"

	"github.com/seregonwar/rtnetstack/internal/ager"
	"github.com/seregonwar/rtnetstack/internal/mdns"
	"github.com/seregonwar/rtnetstack/internal/ndp"
	"github.com/seregonwar/rtnetstack/internal/wire"
)

// PeriodicTask runs one sweep of every table's aging and retransmission
// logic (spec.md Section 4.10, Section 6: "periodic_task()"). Callers drive
// this roughly every 100 ms (spec.md Section 2).
func (c *Context) PeriodicTask() {
	release := c.guard.Enter()
	defer release()

	if !c.initialized {
		return
	}

	now := c.clock.NowMillis()

	hooks := ager.Hooks{
		Retransmit: func(handle int) { c.retransmitTCP(handle, now) },
		TCPTimeout: func(handle int) { c.logger.Warn("tcp connection timed out", slog.Int("handle", handle)) },
		Announce:   func(rec mdns.Record) { c.sendMDNSAnnouncement(rec) },
	}

	ager.Sweep(c.routes, c.neighbors, c.tcp, c.records, now, hooks)
}

// retransmitTCP resends the connection's single outstanding segment
// (spec.md Section 4.7: "the periodic task retransmits any chunk older
// than RTNET_TCP_TIMEOUT_MS up to the retry cap").
func (c *Context) retransmitTCP(handle int, now uint32) {
	conn := c.tcp.Get(handle)
	if conn == nil || conn.PendingLen == 0 {
		return
	}

	destMAC, err := ndp.NextHop(c.routes, c.neighbors, conn.RemoteAddr, now)
	if err != nil {
		c.logger.Warn("tcp retransmit: neighbor unresolved", slog.Int("handle", handle))
		return
	}

	seq := conn.SendNext - uint32(conn.PendingLen)
	payload := append([]byte(nil), conn.Pending[:conn.PendingLen]...)
	if err := c.transmitTCPSegment(conn, destMAC, seq, wire.TCPFlagACK, payload); err != nil {
		c.stats.TXErrors++
		return
	}
	c.stats.TXPackets++
}

// sendMDNSAnnouncement logs a multicast advertisement for rec and counts
// it against tx_packets; no frame is built or passed to the TX hook. The
// actual DNS-SD record encoding is out of scope (spec.md Section 1: "the
// mDNS responder itself ... is not designed here"); the tx_packets count is
// the observable effect cmd/rtnetctl and the statistics snapshot care about.
func (c *Context) sendMDNSAnnouncement(rec mdns.Record) {
	c.logger.Debug("mdns announce", slog.String("name", rec.Name), slog.Int("port", int(rec.Port)))
	c.stats.TXPackets++
}
