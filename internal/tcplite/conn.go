package tcplite

import (
	"errors"
	"fmt"

	"github.com/seregonwar/rtnetstack/internal/wire"
)

// MSS is the TCP-Lite maximum segment size: the IPv6 minimum MTU (1280
// bytes) minus headers are not subtracted here — spec.md's Glossary fixes
// MSS at 1280 directly ("IPv6 minimum MTU minus headers").
const MSS = 1280

// MaxRetries is the hard cap on retransmission attempts for a single
// outstanding segment before the connection is aborted
// (spec.md Section 4.7: "RTNET_TCP_MAX_RETRIES (3)").
const MaxRetries = 3

// RetransmitTimeoutMS is the idle horizon after which an unacknowledged
// segment is retransmitted, and also the idle-activity horizon the periodic
// ager uses to force a stalled connection closed
// (spec.md Section 4.7 "RTNET_TCP_TIMEOUT_MS", Section 4.10).
const RetransmitTimeoutMS = 3_000

// ErrNoBuffer indicates the connection table has no free slot
// (spec.md Section 4.7: "find free slot (return 'no buffer' if full)").
var ErrNoBuffer = errors.New("no buffer")

// ErrConnection indicates an operation was attempted against a handle whose
// state does not permit it (spec.md Section 4.7: "Return 'connection' error
// if the state check fails").
var ErrConnection = errors.New("connection")

// ErrInvalidParam indicates an out-of-range handle or a handle that does
// not currently reference an in-use connection.
var ErrInvalidParam = errors.New("invalid parameter")

// Conn is a single TCP-Lite connection-table row (spec.md Section 3:
// "TCP-Lite connection"). Its index in Table is the stable handle returned
// to callers.
//
// Invariant: no two InUse entries share an identical
// (LocalAddr, RemoteAddr, LocalPort, RemotePort) tuple.
type Conn struct {
	LocalAddr  [wire.IPv6AddrSize]byte
	RemoteAddr [wire.IPv6AddrSize]byte
	LocalPort  uint16
	RemotePort uint16

	State State

	SendNext    uint32
	SendUnacked uint32
	RecvNext    uint32
	SendWindow  uint16
	RecvWindow  uint16

	RetransmitCount int
	LastActivity    uint32
	InUse           bool

	// Pending holds the single outstanding unacknowledged segment this
	// connection's one retransmission timer tracks
	// (spec.md Section 4.7: "a single retransmission timer per
	// connection"). PendingLen == 0 means nothing is outstanding.
	Pending          [MSS]byte
	PendingLen       int
	PendingTimestamp uint32
}

// Table is the fixed-capacity TCP-Lite connection table. The zero value is
// not ready to use; construct with New.
type Table struct {
	conns []Conn
}

// New constructs a Table with exactly capacity slots, all initially free.
func New(capacity int) *Table {
	return &Table{conns: make([]Conn, capacity)}
}

// Capacity returns the fixed number of connection slots.
func (t *Table) Capacity() int {
	return len(t.conns)
}

// findFree returns the index of the first slot with InUse == false, or -1.
func (t *Table) findFree() int {
	for i := range t.conns {
		if !t.conns[i].InUse {
			return i
		}
	}
	return -1
}

// findByTuple returns the index of an InUse connection matching the given
// 4-tuple, enforcing the table's uniqueness invariant, or -1.
func (t *Table) findByTuple(local, remote [wire.IPv6AddrSize]byte, lport, rport uint16) int {
	for i := range t.conns {
		c := &t.conns[i]
		if c.InUse && wire.AddrEqual(c.LocalAddr, local) && wire.AddrEqual(c.RemoteAddr, remote) &&
			c.LocalPort == lport && c.RemotePort == rport {
			return i
		}
	}
	return -1
}

// Find returns the handle of the in-use connection matching the 4-tuple, for
// the RX dispatcher to locate the connection an inbound segment belongs to.
func (t *Table) Find(local, remote [wire.IPv6AddrSize]byte, lport, rport uint16) (int, bool) {
	idx := t.findByTuple(local, remote, lport, rport)
	if idx == -1 {
		return -1, false
	}
	return idx, true
}

// Get returns a pointer to the connection at handle, or nil if handle is
// out of range. Handles must be re-validated on every use
// (spec.md "Index handles vs pointers").
func (t *Table) Get(handle int) *Conn {
	if handle < 0 || handle >= len(t.conns) {
		return nil
	}
	return &t.conns[handle]
}

// Connect allocates a free slot for an outbound connection to
// (remoteAddr, remotePort), populates it, and transitions
// CLOSED -> SYN_SENT (spec.md Section 4.7: "populate fields, set local port
// from the ephemeral counter, transition CLOSED -> SYN_SENT, emit SYN").
// Returns the slot index (the handle). initialSeq is the context's seeded
// sequence counter, supplied by
// the caller (internal/rtnet owns sequence seeding per spec.md Section 4.9).
func (t *Table) Connect(localAddr [wire.IPv6AddrSize]byte, localPort uint16, remoteAddr [wire.IPv6AddrSize]byte, remotePort uint16, initialSeq uint32, now uint32) (int, error) {
	idx := t.findFree()
	if idx == -1 {
		return -1, fmt.Errorf("connect: %w", ErrNoBuffer)
	}

	t.conns[idx] = Conn{
		LocalAddr:    localAddr,
		RemoteAddr:   remoteAddr,
		LocalPort:    localPort,
		RemotePort:   remotePort,
		State:        StateSynSent,
		SendNext:     initialSeq + 1,
		SendUnacked:  initialSeq,
		RecvWindow:   MSS,
		SendWindow:   MSS,
		LastActivity: now,
		InUse:        true,
	}

	return idx, nil
}

// Send validates handle and segments data into MSS-sized chunks, as
// spec.md Section 4.7 requires: "validate handle in [0, MAX), validate
// in_use, validate state in {ESTABLISHED, CLOSE_WAIT}. Segment into
// MSS-sized chunks. Each chunk increments send_next and is timestamped."
//
// Only the final chunk is retained as the connection's single outstanding
// retransmission candidate; earlier chunks are assumed delivered back to
// back on the same reliable link-layer handoff, matching the "a single
// retransmission timer per connection" simplification.
func (t *Table) Send(handle int, data []byte, now uint32) error {
	c := t.Get(handle)
	if c == nil {
		return fmt.Errorf("send handle=%d: %w", handle, ErrInvalidParam)
	}
	if !c.InUse {
		return fmt.Errorf("send handle=%d: not in use: %w", handle, ErrInvalidParam)
	}
	if c.State != StateEstablished && c.State != StateCloseWait {
		return fmt.Errorf("send handle=%d state=%s: %w", handle, c.State, ErrConnection)
	}

	for offset := 0; offset < len(data); offset += MSS {
		end := offset + MSS
		if end > len(data) {
			end = len(data)
		}
		chunk := data[offset:end]

		c.SendNext += uint32(len(chunk))
		c.PendingLen = copy(c.Pending[:], chunk)
		c.PendingTimestamp = now
	}

	c.LastActivity = now
	return nil
}

// Close transitions the connection toward teardown per spec.md Section 4.7:
// ESTABLISHED -> FIN_WAIT (FIN emitted); CLOSE_WAIT -> CLOSING (the local
// FIN after a peer-initiated close); any other state goes directly to
// CLOSED, aborting a pending handshake. InUse is cleared the moment CLOSED
// is reached.
func (t *Table) Close(handle int, now uint32) error {
	c := t.Get(handle)
	if c == nil {
		return fmt.Errorf("close handle=%d: %w", handle, ErrInvalidParam)
	}
	if !c.InUse {
		return fmt.Errorf("close handle=%d: not in use: %w", handle, ErrInvalidParam)
	}

	switch c.State {
	case StateEstablished:
		c.State = StateFinWait
		c.SendNext++
	case StateCloseWait:
		c.State = StateClosing
		c.SendNext++
	default:
		c.State = StateClosed
		*c = Conn{}
	}
	if c.State != StateClosed {
		c.LastActivity = now
	}

	return nil
}

// Abort forces the connection at handle to CLOSED and frees its slot,
// bypassing the graceful teardown graph. Used by the periodic ager on
// timeout and by the retransmission-limit failure path
// (spec.md Section 4.7: "if retransmission limit is exceeded, transition
// to CLOSED"; Section 4.10: "force state=CLOSED, in_use=false").
func (t *Table) Abort(handle int) {
	c := t.Get(handle)
	if c == nil {
		return
	}
	*c = Conn{}
}

// Reset clears every connection slot, used by Context re-initialization.
func (t *Table) Reset() {
	for i := range t.conns {
		t.conns[i] = Conn{}
	}
}
