package rtnet

import (
	"fmt"

	"github.com/seregonwar/rtnetstack/internal/mdns"
)

// MDNSQuery looks up name in the record cache (spec.md Section 4.8:
// "query(service_name, &out)"). A cache miss returns ErrTimeout, since this
// façade treats the mDNS responder as an external collaborator and never
// issues a live multicast query itself.
func (c *Context) MDNSQuery(name string) (mdns.Record, error) {
	release := c.guard.Enter()
	defer release()

	if !c.initialized {
		return mdns.Record{}, fmt.Errorf("mdns query: %w", ErrNotInitialized)
	}

	rec, err := c.records.Query(name)
	if err != nil {
		return mdns.Record{}, fmt.Errorf("mdns query: %w", err)
	}
	return rec, nil
}

// MDNSAnnounce registers name for periodic multicast advertisement
// (spec.md Section 4.8: "announce(service_name, port, ttl_sec)").
func (c *Context) MDNSAnnounce(name string, port uint16, ttlSec uint32) error {
	release := c.guard.Enter()
	defer release()

	if !c.initialized {
		return fmt.Errorf("mdns announce: %w", ErrNotInitialized)
	}

	now := c.clock.NowMillis()
	if err := c.records.Announce(name, port, ttlSec, now); err != nil {
		return fmt.Errorf("mdns announce: %w", err)
	}
	return nil
}

// MDNSSnapshot returns a copy of every valid mDNS record, for
// cmd/rtnetctl inspection.
func (c *Context) MDNSSnapshot() []mdns.Record {
	release := c.guard.Enter()
	defer release()

	out := make([]mdns.Record, 0, c.records.Capacity())
	for i := 0; i < c.records.Capacity(); i++ {
		if r := c.records.Get(i); r != nil && r.Valid {
			out = append(out, *r)
		}
	}
	return out
}
