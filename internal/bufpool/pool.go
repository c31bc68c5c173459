package bufpool

import (
	"errors"
	"fmt"
)

// BufferSize is the fixed capacity of a single buffer: enough for an
// Ethernet header, an IPv6 header, the largest upper-layer header (UDP or
// TCP-Lite), and a full wire.MTU-sized payload, plus headroom
// (spec.md Section 3: "MTU plus headroom, e.g. 1536" — sized up from the
// spec's illustrative 1536 so that a MTU-sized UDP payload, the boundary
// case spec.md Section 8 requires to succeed, always fits a single buffer
// alongside its headers).
const BufferSize = 1600

// QoS is the class tag that biases buffer allocation toward warm affinity
// (spec.md Glossary: "QoS class").
type QoS uint8

const (
	QoSCritical QoS = iota
	QoSHigh
	QoSNormal
	QoSLow
)

// String returns the human-readable name of the QoS class.
func (q QoS) String() string {
	switch q {
	case QoSCritical:
		return "critical"
	case QoSHigh:
		return "high"
	case QoSNormal:
		return "normal"
	case QoSLow:
		return "low"
	default:
		return "unknown"
	}
}

// ErrNoBuffer indicates the pool has no free buffer to satisfy an allocate
// request (spec.md Section 4.2: "Failure returns 'no buffer'").
var ErrNoBuffer = errors.New("no buffer")

// Buffer is a fixed-capacity byte region with a current length, a
// read/write offset, a QoS tag, a millisecond timestamp, and an in_use
// flag (spec.md Section 3: "Buffer descriptor").
//
// Invariant: a Buffer is either in the free pool (InUse == false) or
// referenced by exactly one pipeline stage.
type Buffer struct {
	Data      [BufferSize]byte
	Len       int
	Offset    int
	QoS       QoS
	Timestamp uint32
	InUse     bool
}

// Bytes returns the buffer's logical contents: Data[Offset : Offset+Len].
func (b *Buffer) Bytes() []byte {
	return b.Data[b.Offset : b.Offset+b.Len]
}

// Pool is a fixed-size array of buffers with no coalescing and no
// shrinking (spec.md Section 4.2). The zero value is not ready to use;
// construct with New.
type Pool struct {
	buffers []Buffer
}

// New constructs a Pool with exactly capacity buffers, all initially free.
func New(capacity int) *Pool {
	return &Pool{buffers: make([]Buffer, capacity)}
}

// Capacity returns the fixed number of buffers in the pool.
func (p *Pool) Capacity() int {
	return len(p.buffers)
}

// Allocate performs the two-pass search from spec.md Section 4.2: first, the
// first free buffer whose prior QoS tag equals qos (warm affinity); failing
// that, any free buffer. On success, the buffer is marked in-use, its QoS is
// set, its length/offset are zeroed, and its timestamp is stamped with now
// (milliseconds, from the platform clock). Returns the buffer's index
// (its handle) or ErrNoBuffer.
//
// The caller must hold the context-wide critical section guard for the
// duration of this call.
func (p *Pool) Allocate(qos QoS, now uint32) (int, error) {
	for i := range p.buffers {
		if !p.buffers[i].InUse && p.buffers[i].QoS == qos {
			p.claim(i, qos, now)
			return i, nil
		}
	}

	for i := range p.buffers {
		if !p.buffers[i].InUse {
			p.claim(i, qos, now)
			return i, nil
		}
	}

	return -1, fmt.Errorf("allocate qos=%s: %w", qos, ErrNoBuffer)
}

func (p *Pool) claim(i int, qos QoS, now uint32) {
	b := &p.buffers[i]
	b.InUse = true
	b.QoS = qos
	b.Len = 0
	b.Offset = 0
	b.Timestamp = now
}

// Free marks the buffer at idx as no longer in use. No coalescing, no
// shrinking: the slot's QoS tag is left as-is so a subsequent Allocate can
// find it via warm affinity.
//
// Free on an out-of-range idx is a no-op (defensive against a stale handle
// surviving a re-init).
func (p *Pool) Free(idx int) {
	if idx < 0 || idx >= len(p.buffers) {
		return
	}
	p.buffers[idx].InUse = false
}

// Get returns a pointer to the buffer at idx, or nil if idx is out of
// range. Handles must be re-validated on every use (spec.md "Index handles
// vs pointers"); callers should also check InUse before trusting the
// contents.
func (p *Pool) Get(idx int) *Buffer {
	if idx < 0 || idx >= len(p.buffers) {
		return nil
	}
	return &p.buffers[idx]
}

// Reset marks every buffer free and clears its QoS/length/offset/timestamp,
// used by Context re-initialization (spec.md Section 3: "all fields zeroed
// at init").
func (p *Pool) Reset() {
	for i := range p.buffers {
		p.buffers[i] = Buffer{}
	}
}
