package udpstack

import "github.com/seregonwar/rtnetstack/internal/wire"

// MaxListeners bounds the number of ports with a registered delivery
// callback, a fixed array per the no-heap contract
// (spec.md Section 4.6: "the RX dispatcher locates a registered port
// callback (registry out of scope here)").
const MaxListeners = 8

// DeliverFunc receives an inbound UDP datagram's payload, source address,
// and source port. Implementations must not retain payload past the call.
type DeliverFunc func(payload []byte, srcAddr [wire.IPv6AddrSize]byte, srcPort uint16)

// Registry is the fixed-capacity table of registered UDP port callbacks.
// The zero value is ready to use.
type Registry struct {
	slots [MaxListeners]struct {
		port   uint16
		active bool
		fn     DeliverFunc
	}
}

// Register installs fn as the delivery callback for port, replacing any
// existing registration for that port. Returns false if the registry is
// full and port has no existing registration.
func (r *Registry) Register(port uint16, fn DeliverFunc) bool {
	for i := range r.slots {
		if r.slots[i].active && r.slots[i].port == port {
			r.slots[i].fn = fn
			return true
		}
	}
	for i := range r.slots {
		if !r.slots[i].active {
			r.slots[i] = struct {
				port   uint16
				active bool
				fn     DeliverFunc
			}{port: port, active: true, fn: fn}
			return true
		}
	}
	return false
}

// Unregister removes the callback for port, if any.
func (r *Registry) Unregister(port uint16) {
	for i := range r.slots {
		if r.slots[i].active && r.slots[i].port == port {
			r.slots[i].active = false
			r.slots[i].fn = nil
		}
	}
}

// Deliver invokes the callback registered for dstPort, if any, with
// payload, srcAddr, srcPort. Returns true if a callback was found and
// invoked (spec.md Section 4.6: "If no registration exists, drop silently
// with rx_dropped++" — the caller checks this return value to decide
// whether to count the drop).
func (r *Registry) Deliver(dstPort uint16, payload []byte, srcAddr [wire.IPv6AddrSize]byte, srcPort uint16) bool {
	for i := range r.slots {
		if r.slots[i].active && r.slots[i].port == dstPort {
			if r.slots[i].fn != nil {
				r.slots[i].fn(payload, srcAddr, srcPort)
			}
			return true
		}
	}
	return false
}
