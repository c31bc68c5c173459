// Package ager implements the periodic maintenance sweep described in
// spec.md Section 4.10: aging the neighbor cache, the routing table, the
// TCP-Lite connection table, and the mDNS record cache, all in time
// proportional to the sum of their fixed capacities.
//
// Sweep never assembles or transmits a packet itself — retransmission and
// re-announcement are callbacks supplied by internal/rtnet, which owns the
// buffer pool and the platform TX hook those actions need. This keeps
// ager's own cost bounded and table-shaped, the same "sweep the
// fixed-capacity table" pattern internal/bfd/intervals.go uses for BFD
// timer bookkeeping, generalized across this spec's four tables instead of
// one session table.
package ager
