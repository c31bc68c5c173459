// Package tcplite implements the reduced connection-oriented transport
// described in spec.md Section 4.7: a fixed-capacity connection table
// indexed by handle, a pure state-transition table following RFC 793's
// reduced graph (no window scaling, no SACK, no delayed ACK), and a single
// retransmission timer per connection capped at MaxRetries attempts.
//
// The table is grounded on the teacher's internal/bfd/fsm.go (a pure
// transition-table FSM keyed by state+event) and internal/bfd/session.go
// (per-session fields living in a fixed-capacity table, not a map), adapted
// from BFD's Up/Down/AdminDown graph to the TCP-Lite handshake/teardown
// graph this spec requires.
package tcplite
