// Package wire implements the fixed-offset Ethernet+IPv6+ICMPv6/UDP/TCP
// header codec and the RFC 1071 Internet checksum used across the stack.
//
// There are no raw struct overlays here: every field is read and written at
// an explicit byte offset with explicit endianness conversion, so behavior
// is identical regardless of whether the underlying frame buffer happens to
// be aligned. All functions are pure and allocate nothing — callers always
// supply the backing buffer (typically one borrowed from internal/bufpool).
package wire
