// Package neighbor implements the fixed-capacity IPv6-to-MAC neighbor
// cache described in spec.md Section 4.4: linear lookup with a stamp
// refresh on hit, insertion into a free slot or, failing that, eviction of
// the oldest-confirmed entry.
package neighbor
