// Package udpstack implements the UDP engine described in spec.md
// Section 4.6: checksummed datagram send through route lookup, neighbor
// resolution, QoS-aware buffer allocation, and hardware handoff; and a
// fixed-capacity port registry for receive delivery.
//
// Grounded on the teacher's internal/netio/sender.go (UDPSender: a
// context-free send path that borrows pool/route/neighbor state rather
// than owning it) and internal/bfd/packet.go's checksum helpers.
package udpstack
