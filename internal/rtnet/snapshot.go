package rtnet

import (
	"github.com/seregonwar/rtnetstack/internal/neighbor"
	"github.com/seregonwar/rtnetstack/internal/tcplite"
)

// NeighborSnapshot returns a copy of every valid neighbor-cache entry, for
// cmd/rtnetctl inspection (spec.md Section 4.13 supplement).
func (c *Context) NeighborSnapshot() []neighbor.Entry {
	release := c.guard.Enter()
	defer release()

	out := make([]neighbor.Entry, 0, c.neighbors.Capacity())
	for i := 0; i < c.neighbors.Capacity(); i++ {
		if e := c.neighbors.Get(i); e != nil && e.Valid {
			out = append(out, *e)
		}
	}
	return out
}

// TCPSnapshot returns a copy of every in-use TCP-Lite connection, for
// cmd/rtnetctl inspection.
func (c *Context) TCPSnapshot() []tcplite.Conn {
	release := c.guard.Enter()
	defer release()

	out := make([]tcplite.Conn, 0, c.tcp.Capacity())
	for i := 0; i < c.tcp.Capacity(); i++ {
		if conn := c.tcp.Get(i); conn != nil && conn.InUse {
			out = append(out, *conn)
		}
	}
	return out
}
