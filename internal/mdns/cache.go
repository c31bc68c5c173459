package mdns

import (
	"errors"
	"fmt"

	"github.com/seregonwar/rtnetstack/internal/wire"
)

// MaxNameLen is the longest service name a record may carry
// (spec.md Section 3: "name (<=63 bytes)").
const MaxNameLen = 63

// ErrInvalidParam indicates a pointer-equivalent argument was absent, the
// name was empty or too long, or port/ttl were non-positive
// (spec.md Section 4.8).
var ErrInvalidParam = errors.New("invalid parameter")

// ErrTimeout indicates a Query found no cached record for the name
// (spec.md Section 4.8: "this specification treats the responder as an
// external collaborator and the façade returns 'timeout' when no cached
// record exists").
var ErrTimeout = errors.New("timeout")

// Record is a single mDNS cache row (spec.md Section 3: "mDNS record").
type Record struct {
	Name     string
	Addr     [wire.IPv6AddrSize]byte
	Port     uint16
	TTLMS    uint32
	LastSeen uint32
	Valid    bool
}

// Cache is the fixed-capacity TTL-indexed mDNS record cache. The zero
// value is not ready to use; construct with New.
type Cache struct {
	records []Record
}

// New constructs a Cache with exactly capacity slots, all initially
// invalid.
func New(capacity int) *Cache {
	return &Cache{records: make([]Record, capacity)}
}

// Capacity returns the fixed number of slots in the cache.
func (c *Cache) Capacity() int {
	return len(c.records)
}

// Query performs the exact-name lookup from spec.md Section 4.8: on a hit
// among valid records, the record is returned; on a miss, ErrTimeout (the
// façade never issues a live multicast query in this core).
func (c *Cache) Query(name string) (Record, error) {
	if name == "" {
		return Record{}, fmt.Errorf("query: %w", ErrInvalidParam)
	}

	for i := range c.records {
		if c.records[i].Valid && c.records[i].Name == name {
			return c.records[i], nil
		}
	}

	return Record{}, fmt.Errorf("query %q: %w", name, ErrTimeout)
}

// Announce registers (or refreshes, on a repeat announce of the same name)
// the local service for periodic multicast advertisement
// (spec.md Section 4.8: "Registers the local service for periodic
// multicast advertisement; TTL ms = ttl_sec*1000"). It reuses a free slot,
// or overwrites an existing record with the same name, or falls back to
// the oldest-seen slot when the cache is full — there is no capacity error
// in the spec's Announce contract, so a full cache evicts rather than
// rejecting the call.
func (c *Cache) Announce(name string, port uint16, ttlSec uint32, now uint32) error {
	if name == "" || len(name) > MaxNameLen {
		return fmt.Errorf("announce: %w", ErrInvalidParam)
	}
	if port == 0 || ttlSec == 0 {
		return fmt.Errorf("announce: %w", ErrInvalidParam)
	}

	ttlMS := ttlSec * 1000

	for i := range c.records {
		if c.records[i].Valid && c.records[i].Name == name {
			c.records[i].Port = port
			c.records[i].TTLMS = ttlMS
			c.records[i].LastSeen = now
			return nil
		}
	}

	for i := range c.records {
		if !c.records[i].Valid {
			c.set(i, name, port, ttlMS, now)
			return nil
		}
	}

	oldest := 0
	for i := 1; i < len(c.records); i++ {
		if c.records[i].LastSeen < c.records[oldest].LastSeen {
			oldest = i
		}
	}
	c.set(oldest, name, port, ttlMS, now)
	return nil
}

func (c *Cache) set(i int, name string, port uint16, ttlMS, now uint32) {
	c.records[i] = Record{
		Name:     name,
		Port:     port,
		TTLMS:    ttlMS,
		LastSeen: now,
		Valid:    true,
	}
}

// Get returns a pointer to the record at idx, or nil if idx is out of
// range.
func (c *Cache) Get(idx int) *Record {
	if idx < 0 || idx >= len(c.records) {
		return nil
	}
	return &c.records[idx]
}

// Age sweeps every valid record and invalidates it if now - LastSeen
// exceeds its own TTL (spec.md Section 4.10: "if now - last_seen >
// ttl_ms, invalidate"). Bounded by cache capacity.
func (c *Cache) Age(now uint32) {
	for i := range c.records {
		r := &c.records[i]
		if r.Valid && now-r.LastSeen > r.TTLMS {
			r.Valid = false
		}
	}
}

// DueAnnouncements returns the indices of valid records whose TTL has
// elapsed since LastSeen by at least half the TTL window, the periodic
// ager's cue to emit a fresh multicast announcement before the record
// would otherwise age out (spec.md Section 4.10: "emit queued mDNS
// announcements per TTL schedule"). Callers re-stamp LastSeen via
// Refresh after sending.
func (c *Cache) DueAnnouncements(now uint32) []int {
	var due []int
	for i := range c.records {
		r := &c.records[i]
		if r.Valid && r.TTLMS > 0 && now-r.LastSeen >= r.TTLMS/2 {
			due = append(due, i)
		}
	}
	return due
}

// Refresh re-stamps the record at idx's LastSeen to now, called after the
// periodic ager emits its scheduled announcement.
func (c *Cache) Refresh(idx int, now uint32) {
	if idx < 0 || idx >= len(c.records) {
		return
	}
	c.records[idx].LastSeen = now
}

// Reset clears every record, used by Context re-initialization.
func (c *Cache) Reset() {
	for i := range c.records {
		c.records[i] = Record{}
	}
}
