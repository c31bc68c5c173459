package neighbor

import "github.com/seregonwar/rtnetstack/internal/wire"

// State is the neighbor's reachability state (spec.md Section 3).
type State uint8

const (
	StateReachable State = iota
	StateStale
	StateProbe
)

// String returns the human-readable name of the reachability state.
func (s State) String() string {
	switch s {
	case StateReachable:
		return "reachable"
	case StateStale:
		return "stale"
	case StateProbe:
		return "probe"
	default:
		return "unknown"
	}
}

// AgeHorizonMS is the last-confirmed horizon beyond which a neighbor entry
// is invalidated by the periodic ager (spec.md Section 4.10: 30,000 ms).
const AgeHorizonMS = 30_000

// Entry is a single neighbor-cache row (spec.md Section 3: "Neighbor
// entry").
type Entry struct {
	Addr          [wire.IPv6AddrSize]byte
	MAC           [wire.MACSize]byte
	State         State
	LastConfirmed uint32
	Valid         bool
}

// Cache is the fixed-capacity neighbor cache. The zero value is not ready
// to use; construct with New.
type Cache struct {
	entries []Entry
}

// New constructs a Cache with exactly capacity slots, all initially
// invalid.
func New(capacity int) *Cache {
	return &Cache{entries: make([]Entry, capacity)}
}

// Capacity returns the fixed number of slots in the cache.
func (c *Cache) Capacity() int {
	return len(c.entries)
}

// Lookup performs the linear scan from spec.md Section 4.4: on a hit, the
// entry's LastConfirmed is refreshed to now and its index is returned.
func (c *Cache) Lookup(addr [wire.IPv6AddrSize]byte, now uint32) (int, bool) {
	for i := range c.entries {
		e := &c.entries[i]
		if e.Valid && wire.AddrEqual(e.Addr, addr) {
			e.LastConfirmed = now
			return i, true
		}
	}
	return -1, false
}

// Insert installs or overwrites a neighbor entry (spec.md Section 4.4:
// "Insertion selects a free slot if any, else evicts the entry with the
// oldest last_confirmed. Overwrites current fields.").
func (c *Cache) Insert(addr [wire.IPv6AddrSize]byte, mac [wire.MACSize]byte, state State, now uint32) int {
	for i := range c.entries {
		if !c.entries[i].Valid {
			c.set(i, addr, mac, state, now)
			return i
		}
	}

	oldest := 0
	for i := 1; i < len(c.entries); i++ {
		if c.entries[i].LastConfirmed < c.entries[oldest].LastConfirmed {
			oldest = i
		}
	}
	c.set(oldest, addr, mac, state, now)
	return oldest
}

func (c *Cache) set(i int, addr [wire.IPv6AddrSize]byte, mac [wire.MACSize]byte, state State, now uint32) {
	c.entries[i] = Entry{
		Addr:          addr,
		MAC:           mac,
		State:         state,
		LastConfirmed: now,
		Valid:         true,
	}
}

// Get returns a pointer to the entry at idx, or nil if idx is out of range.
func (c *Cache) Get(idx int) *Entry {
	if idx < 0 || idx >= len(c.entries) {
		return nil
	}
	return &c.entries[idx]
}

// Invalidate marks the entry at idx invalid. A no-op for an out-of-range
// idx.
func (c *Cache) Invalidate(idx int) {
	if idx < 0 || idx >= len(c.entries) {
		return
	}
	c.entries[idx].Valid = false
}

// Age sweeps every valid entry and invalidates it if now - LastConfirmed
// exceeds AgeHorizonMS (spec.md Section 4.10). Bounded by cache capacity.
func (c *Cache) Age(now uint32) {
	for i := range c.entries {
		e := &c.entries[i]
		if e.Valid && now-e.LastConfirmed > AgeHorizonMS {
			e.Valid = false
		}
	}
}

// Reset clears every entry, used by Context re-initialization.
func (c *Cache) Reset() {
	for i := range c.entries {
		c.entries[i] = Entry{}
	}
}
