// Package rx implements the bounded IPv6 receive-dispatch pipeline
// described in spec.md Section 4.5: length and EtherType checks, IPv6
// header validation, destination acceptance (local, joined multicast, or
// forwarded when enabled), upper-layer checksum verification, and
// demultiplex by Next Header.
//
// Dispatch is a pure function: it classifies a frame and hands back the
// decoded headers and payload slice, touching no shared state. The caller
// (internal/rtnet) holds the context-wide critical section and is
// responsible for translating the classification into statistics counter
// updates and for routing the payload to the UDP/TCP-Lite/ND engines —
// grounded on internal/netio/receiver.go's context-free bounded receive
// pipeline in the teacher repository.
package rx
