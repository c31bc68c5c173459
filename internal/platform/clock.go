package platform

import "time"

// Clock is the monotonic millisecond time source spec.md Section 6 requires
// as an external collaborator: "a free-running millisecond counter,
// wrapping at 2^32". All table ages (route, neighbor, TCP-Lite, mDNS) and
// TCP sequence-number seeding are derived from it.
type Clock interface {
	// NowMillis returns the current tick of a free-running millisecond
	// counter. Callers must tolerate wraparound: age comparisons use
	// unsigned subtraction, never direct ordering.
	NowMillis() uint32
}

// SystemClock implements Clock atop the host's monotonic clock, anchored at
// construction time so NowMillis starts near zero rather than at an
// arbitrary multi-decade Unix offset — closer in spirit to the free-running
// counter spec.md assumes than time.Now().UnixMilli() would be.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a SystemClock anchored to the current instant.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// NowMillis returns milliseconds elapsed since the clock was constructed,
// truncated to uint32; it wraps after about 49.7 days, same as the
// reference's free-running counter.
func (c *SystemClock) NowMillis() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}
