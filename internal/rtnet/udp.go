package rtnet

import (
	"fmt"
	"log/slog"

	"github.com/seregonwar/rtnetstack/internal/bufpool"
	"github.com/seregonwar/rtnetstack/internal/udpstack"
	"github.com/seregonwar/rtnetstack/internal/wire"
)

// UDPSend assembles and transmits a UDP datagram (spec.md Section 4.6:
// "send(dst, dport, sport, payload, qos)"). sport == 0 auto-assigns the
// next ephemeral port.
func (c *Context) UDPSend(dst [wire.IPv6AddrSize]byte, dport, sport uint16, payload []byte, qos bufpool.QoS) error {
	release := c.guard.Enter()
	defer release()

	if !c.initialized {
		return fmt.Errorf("udp send: %w", ErrNotInitialized)
	}
	if dport == 0 || len(payload) == 0 || len(payload) > wire.MTU {
		// No engine work (buffer allocation, route lookup, TX) has happened
		// yet, so no statistics counter moves here
		// (spec.md Section 8 Scenario 3: "counters unchanged").
		return fmt.Errorf("udp send: %w", ErrInvalidParam)
	}

	if sport == 0 {
		sport = c.nextEphemeralPort()
	}

	now := c.clock.NowMillis()
	err := udpstack.Send(c.txPool, c.routes, c.neighbors, c.tx, c.localMAC, c.localAddr, dst, dport, sport, payload, qos, now)
	if err != nil {
		switch CodeOf(err) {
		case CodeNoBuffer:
			c.stats.TXDropped++
		case CodeNoRoute:
			c.stats.RoutingErrors++
		default:
			c.stats.TXErrors++
		}
		c.logger.Warn("udp send failed", slog.Any("error", err), slog.Int("dport", int(dport)))
		return err
	}

	c.stats.TXPackets++
	return nil
}
