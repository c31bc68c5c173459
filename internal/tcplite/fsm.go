package tcplite

import "github.com/seregonwar/rtnetstack/internal/wire"

// State is a TCP-Lite connection state (spec.md Section 4.7: "states =
// CLOSED, LISTEN, SYN_SENT, SYN_RCVD, ESTABLISHED, FIN_WAIT, CLOSE_WAIT,
// CLOSING, TIME_WAIT").
type State uint8

const (
	StateClosed State = iota
	StateListen
	StateSynSent
	StateSynRcvd
	StateEstablished
	StateFinWait
	StateCloseWait
	StateClosing
	StateTimeWait
)

// String returns the human-readable name of the state, for logging.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateListen:
		return "listen"
	case StateSynSent:
		return "syn_sent"
	case StateSynRcvd:
		return "syn_rcvd"
	case StateEstablished:
		return "established"
	case StateFinWait:
		return "fin_wait"
	case StateCloseWait:
		return "close_wait"
	case StateClosing:
		return "closing"
	case StateTimeWait:
		return "time_wait"
	default:
		return "unknown"
	}
}

// HandleSegment applies an inbound TCP-Lite segment's flags to the
// connection at handle, following RFC 793's reduced graph
// (spec.md Section 4.7). It reports whether the segment drove an
// ESTABLISHED transition (SYN+ACK observed while SYN_SENT, or an ACK
// completing a passive open while SYN_RCVD).
func (t *Table) HandleSegment(handle int, hdr wire.TCPLiteHeader, now uint32) bool {
	c := t.Get(handle)
	if c == nil || !c.InUse {
		return false
	}

	established := false

	switch c.State {
	case StateSynSent:
		if hdr.HasFlag(wire.TCPFlagSYN) && hdr.HasFlag(wire.TCPFlagACK) {
			c.RecvNext = hdr.Seq + 1
			c.SendUnacked = hdr.Ack
			c.RetransmitCount = 0
			c.PendingLen = 0
			c.State = StateEstablished
			established = true
		}

	case StateListen:
		if hdr.HasFlag(wire.TCPFlagSYN) {
			c.RecvNext = hdr.Seq + 1
			c.State = StateSynRcvd
		}

	case StateSynRcvd:
		if hdr.HasFlag(wire.TCPFlagACK) {
			c.SendUnacked = hdr.Ack
			c.RetransmitCount = 0
			c.PendingLen = 0
			c.State = StateEstablished
			established = true
		}

	case StateEstablished:
		if hdr.HasFlag(wire.TCPFlagACK) && hdr.Ack == c.SendNext {
			c.SendUnacked = hdr.Ack
			c.RetransmitCount = 0
			c.PendingLen = 0
		}
		if hdr.HasFlag(wire.TCPFlagFIN) {
			c.RecvNext = hdr.Seq + 1
			c.State = StateCloseWait
		}

	case StateFinWait:
		if hdr.HasFlag(wire.TCPFlagACK) && hdr.Ack == c.SendNext {
			c.SendUnacked = hdr.Ack
			c.RetransmitCount = 0
			c.PendingLen = 0
		}
		if hdr.HasFlag(wire.TCPFlagFIN) {
			c.RecvNext = hdr.Seq + 1
			c.State = StateTimeWait
		}

	case StateClosing:
		if hdr.HasFlag(wire.TCPFlagACK) && hdr.Ack == c.SendNext {
			c.State = StateTimeWait
		}
	}

	c.LastActivity = now
	return established
}

// RetransmitDue reports whether the connection at handle has an
// outstanding segment older than RetransmitTimeoutMS that has not yet hit
// MaxRetries (spec.md Section 4.7: "the periodic task retransmits any
// chunk older than RTNET_TCP_TIMEOUT_MS up to the retry cap"). On true, the
// caller (internal/ager) is expected to resend Pending[:PendingLen] and
// then call MarkRetransmitted.
func (t *Table) RetransmitDue(handle int, now uint32) bool {
	c := t.Get(handle)
	if c == nil || !c.InUse || c.PendingLen == 0 {
		return false
	}
	return now-c.PendingTimestamp > RetransmitTimeoutMS && c.RetransmitCount < MaxRetries
}

// RetransmitExhausted reports whether the connection at handle has an
// outstanding segment that has already hit MaxRetries — the caller should
// abort the connection with a timeout error
// (spec.md Section 4.7: "if retransmission limit is exceeded, transition
// to CLOSED, counter tcp_errors++, return 'timeout' to any pending
// sender").
func (t *Table) RetransmitExhausted(handle int, now uint32) bool {
	c := t.Get(handle)
	if c == nil || !c.InUse || c.PendingLen == 0 {
		return false
	}
	return now-c.PendingTimestamp > RetransmitTimeoutMS && c.RetransmitCount >= MaxRetries
}

// MarkRetransmitted stamps the pending segment's timestamp and the
// connection's LastActivity to now and increments its retry count, called
// after internal/ager resends it.
func (t *Table) MarkRetransmitted(handle int, now uint32) {
	c := t.Get(handle)
	if c == nil {
		return
	}
	c.RetransmitCount++
	c.PendingTimestamp = now
	c.LastActivity = now
}

// IdleTimedOut reports whether the connection at handle has been idle
// (no segment sent or received) longer than RetransmitTimeoutMS, the
// periodic ager's signal to force the connection closed
// (spec.md Section 4.10: "if in_use and now - last_activity >
// RTNET_TCP_TIMEOUT_MS, force state=CLOSED, in_use=false").
func (t *Table) IdleTimedOut(handle int, now uint32) bool {
	c := t.Get(handle)
	if c == nil || !c.InUse {
		return false
	}
	return now-c.LastActivity > RetransmitTimeoutMS
}
