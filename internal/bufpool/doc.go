// Package bufpool implements the fixed-capacity TX/RX buffer pools
// (spec.md Section 4.2). There is no dynamic allocation: both the RX and TX
// pools are backed by a Go array sized at construction time and never grown.
//
// Buffer descriptors carry no lock of their own — spec.md Section 5 puts all
// mutation of in_use flags, QoS tags, and timestamps under the context-wide
// critical section, so Pool methods assume the caller already holds that
// guard (see internal/platform.Guard). This mirrors the teacher's
// PacketPool concern (reusable I/O buffers to avoid per-packet allocation)
// while dropping sync.Pool's dynamic backing store, which the no-heap
// contract forbids.
package bufpool
