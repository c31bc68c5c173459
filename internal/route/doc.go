// Package route implements the fixed-capacity routing table described in
// spec.md Section 4.3: linear-scan insertion into the first invalid slot,
// longest-prefix-match lookup with a lower-metric tie-break, and aging by
// last-use.
//
// The table is a plain Go array under the hood — no trie, no map. This
// mirrors the data-structure choice a bare-metal target would make (a
// hand-rolled allocator pattern, as in the teacher's
// internal/bfd/discriminator.go fixed-capacity allocator) rather than a
// compressed trie such as gaissmai/bart: a trie's node structure is
// dynamically allocated and grows with Insert, which the no-heap contract
// (spec.md Section 9, "No heap") forbids for the core table. bart's
// documented longest-prefix-match contract is used only as a cross-check
// for this package's Find semantics, not as a dependency.
package route
