// Package ndp glues the routing table to the neighbor cache: resolving a
// destination address to a next-hop link-layer address, and applying
// externally injected Neighbor Advertisements to the cache (spec.md
// Section 4.4, Section 4.5 step 5).
//
// This package implements no solicitation state machine: a cache miss on
// the egress path is a transient condition the caller retries after the
// periodic task or after ApplyAdvertisement processes an inbound NA, per
// spec.md Section 4.4.
package ndp
