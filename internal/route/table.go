package route

import (
	"errors"
	"fmt"

	"github.com/seregonwar/rtnetstack/internal/wire"
)

// ErrOverflow indicates the routing table has no free slot for a new entry
// (spec.md Section 4.3: "If no slot is free, return 'overflow'").
var ErrOverflow = errors.New("overflow")

// LinkLocalPrefixLen is the prefix length of the always-present link-local
// route fe80::/10 (spec.md Section 4.3).
const LinkLocalPrefixLen = 10

// LinkLocalMetric is the metric assigned to the link-local default route.
const LinkLocalMetric = 1

// AgeHorizonMS is the last-used horizon beyond which a route is invalidated
// by the periodic ager (spec.md Section 4.10: 300,000 ms).
const AgeHorizonMS = 300_000

// Entry is a single routing-table row (spec.md Section 3: "Route entry").
//
// Invariant: when Valid, PrefixLen <= 128.
type Entry struct {
	DestPrefix [wire.IPv6AddrSize]byte
	PrefixLen  int
	NextHop    [wire.IPv6AddrSize]byte
	HasNextHop bool
	Metric     uint16
	LastUsed   uint32
	Valid      bool
}

// Table is the fixed-capacity routing table. The zero value is not ready to
// use; construct with New.
//
// entries holds one slot beyond the caller's requested capacity, reserved
// for the always-present link-local route: capacity is the number of
// explicit add_route slots spec.md Section 8's boundary property counts
// ("Routing table rejects insertion with overflow after exactly
// MAX_ROUTING_ENTRIES successful adds"), and the link-local route must not
// consume one of them.
type Table struct {
	entries []Entry
	linkLoc int // index of the always-present link-local route
}

// New constructs a Table with capacity explicit-insert slots plus one
// reserved slot for the always-present link-local route fe80::/10
// (spec.md Section 4.3: "Initialization always inserts a link-local
// route"), so that exactly capacity calls to Insert succeed before
// ErrOverflow, per spec.md Section 8's boundary property.
func New(capacity int, now uint32) *Table {
	t := &Table{entries: make([]Entry, capacity+1)}
	t.linkLoc = 0
	t.entries[0] = Entry{
		DestPrefix: [wire.IPv6AddrSize]byte{0xfe, 0x80},
		PrefixLen:  LinkLocalPrefixLen,
		Metric:     LinkLocalMetric,
		LastUsed:   now,
		Valid:      true,
	}
	return t
}

// Capacity returns the total fixed number of slots in the table, including
// the reserved link-local slot — i.e. one more than the explicit-insert
// capacity passed to New. Callers iterating every entry (snapshots, the
// periodic ager) want this total; callers reasoning about how many
// add_route calls can succeed want the value they originally passed to
// New.
func (t *Table) Capacity() int {
	return len(t.entries)
}

// Insert performs the linear scan from spec.md Section 4.3: the first
// invalid slot is filled with the given prefix, optional next-hop, and
// metric, stamped with now. Returns ErrOverflow if every slot is valid.
//
// prefixLen is clamped into 0..128 by the caller's validation layer before
// reaching Insert; Insert itself rejects out-of-range values to protect the
// PrefixLen <= 128 invariant.
func (t *Table) Insert(dest [wire.IPv6AddrSize]byte, prefixLen int, nextHop [wire.IPv6AddrSize]byte, hasNextHop bool, metric uint16, now uint32) (int, error) {
	if prefixLen < 0 || prefixLen > 128 {
		return -1, fmt.Errorf("insert prefix_len=%d: %w", prefixLen, errInvalidPrefixLen)
	}

	for i := range t.entries {
		if !t.entries[i].Valid {
			t.entries[i] = Entry{
				DestPrefix: dest,
				PrefixLen:  prefixLen,
				NextHop:    nextHop,
				HasNextHop: hasNextHop,
				Metric:     metric,
				LastUsed:   now,
				Valid:      true,
			}
			return i, nil
		}
	}

	return -1, fmt.Errorf("insert: %w", ErrOverflow)
}

// errInvalidPrefixLen is returned by Insert when prefixLen is outside
// 0..128. Kept unexported: callers at the public API boundary translate it
// to invalid_param.
var errInvalidPrefixLen = errors.New("prefix length out of range")

// ErrInvalidPrefixLen is the exported form of the prefix-length validation
// failure, for callers that need to errors.Is against it directly.
var ErrInvalidPrefixLen = errInvalidPrefixLen

// Find performs the single-pass longest-prefix-match lookup from spec.md
// Section 4.3: among all valid entries whose prefix matches dst, the
// longest prefix wins, ties broken by the strictly lower metric; no
// equal-cost multipath. On a match, the winning entry's LastUsed is
// stamped with now. Returns the winning entry's index, or false if no
// entry matches.
func (t *Table) Find(dst [wire.IPv6AddrSize]byte, now uint32) (int, bool) {
	best := -1

	for i := range t.entries {
		e := &t.entries[i]
		if !e.Valid || !wire.PrefixMatch(dst, e.DestPrefix, e.PrefixLen) {
			continue
		}

		if best == -1 {
			best = i
			continue
		}

		bestEntry := &t.entries[best]
		switch {
		case e.PrefixLen > bestEntry.PrefixLen:
			best = i
		case e.PrefixLen == bestEntry.PrefixLen && e.Metric < bestEntry.Metric:
			best = i
		}
	}

	if best == -1 {
		return -1, false
	}

	t.entries[best].LastUsed = now
	return best, true
}

// Get returns a pointer to the entry at idx, or nil if idx is out of range.
func (t *Table) Get(idx int) *Entry {
	if idx < 0 || idx >= len(t.entries) {
		return nil
	}
	return &t.entries[idx]
}

// Invalidate marks the entry at idx invalid. A no-op for the link-local
// route and for an out-of-range idx.
func (t *Table) Invalidate(idx int) {
	if idx < 0 || idx >= len(t.entries) || idx == t.linkLoc {
		return
	}
	t.entries[idx].Valid = false
}

// Age sweeps every valid, non-link-local entry and invalidates it if
// now - LastUsed exceeds AgeHorizonMS (spec.md Section 4.10). The
// link-local default route is never aged. Bounded by table capacity.
func (t *Table) Age(now uint32) {
	for i := range t.entries {
		if i == t.linkLoc {
			continue
		}
		e := &t.entries[i]
		if e.Valid && now-e.LastUsed > AgeHorizonMS {
			e.Valid = false
		}
	}
}

// Reset clears every entry and reinstalls the link-local default route,
// used by Context re-initialization.
func (t *Table) Reset(now uint32) {
	for i := range t.entries {
		t.entries[i] = Entry{}
	}
	t.entries[t.linkLoc] = Entry{
		DestPrefix: [wire.IPv6AddrSize]byte{0xfe, 0x80},
		PrefixLen:  LinkLocalPrefixLen,
		Metric:     LinkLocalMetric,
		LastUsed:   now,
		Valid:      true,
	}
}
