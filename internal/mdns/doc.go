// Package mdns implements the service-discovery façade described in
// spec.md Section 4.8: a TTL-indexed record cache queried by exact name
// match, and a registry of locally announced services for periodic
// multicast re-advertisement.
//
// The actual DNS-SD label parser and the multicast query/response exchange
// are out of scope (spec.md Section 1, "the mDNS responder itself"); this
// package keeps the query/announce contract and the cache discipline only.
// Record field shape is cross-checked against other_examples' zeroconf
// service record (kdanielm-zeroconf), and the fixed-capacity table pattern
// is grounded on internal/bfd/manager.go's session table.
package mdns
