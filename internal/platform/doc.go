// Package platform provides the external-collaborator hooks spec.md
// Section 6 requires from the host environment: a reentrant critical
// section, a monotonic millisecond clock, and hardware transmit.
//
// The core never reaches into this package's concrete implementations
// directly — internal/rtnet depends only on the Guard, Clock, and TX
// interfaces, so a bare-metal target can supply its own
// interrupt-disable-based Guard and DMA-based TX without touching the
// core. The implementations here (MutexGuard, SystemClock, LoopbackTX,
// and the Linux AF_PACKET RawSocketTX) exist to make the core runnable and
// testable on a hosted OS, the same role internal/netio plays for the
// teacher's BFD sessions.
package platform
