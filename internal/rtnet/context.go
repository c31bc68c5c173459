package rtnet

import (
	"fmt"
	"log/slog"

	"github.com/seregonwar/rtnetstack/internal/bufpool"
	"github.com/seregonwar/rtnetstack/internal/mdns"
	"github.com/seregonwar/rtnetstack/internal/neighbor"
	"github.com/seregonwar/rtnetstack/internal/platform"
	"github.com/seregonwar/rtnetstack/internal/route"
	"github.com/seregonwar/rtnetstack/internal/stats"
	"github.com/seregonwar/rtnetstack/internal/tcplite"
	"github.com/seregonwar/rtnetstack/internal/udpstack"
	"github.com/seregonwar/rtnetstack/internal/wire"
)

// Default table and pool capacities, matching spec.md Section 3's ceilings
// (routing <=32, neighbor <=16, TCP <=4, mDNS <=8). internal/config applies
// the same ceilings when loading a daemon configuration; NewContext itself
// accepts any capacity an option supplies.
const (
	DefaultRoutingEntries  = 32
	DefaultNeighborEntries = 16
	DefaultTCPConnections  = 4
	DefaultMDNSRecords     = 8
	DefaultRXBuffers       = 8
	DefaultTXBuffers       = 8

	ephemeralPortBase = 49152
	seqStride         = 64_000
)

// Context is the single process-wide aggregate spec.md Section 3 describes:
// it exclusively owns the RX/TX pools, the routing table, the neighbor
// cache, the TCP-Lite connection table, the mDNS cache, the statistics
// counters, and the ephemeral-port/sequence counters. Construct with
// NewContext, then call Initialize before any other operation.
type Context struct {
	guard  platform.Guard
	clock  platform.Clock
	tx     platform.TX
	logger *slog.Logger

	rxPool    *bufpool.Pool
	txPool    *bufpool.Pool
	routes    *route.Table
	neighbors *neighbor.Cache
	tcp       *tcplite.Table
	records   *mdns.Cache
	listeners *udpstack.Registry

	stats stats.Counters

	localAddr [wire.IPv6AddrSize]byte
	localMAC  [wire.MACSize]byte

	ephemeralPort uint16
	seqSeed       uint32
	initialized   bool

	forward bool
}

// Option configures a Context at construction time (spec.md Section 4.13
// supplement: "WithXxx functional options on rtnet.NewContext", mirroring
// the teacher's bfd.WithManagerMetrics).
type Option func(*Context)

// WithLogger attaches logger for structured lifecycle and error logging. A
// nil logger (or omitting this option) defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithGuard overrides the default reentrant platform.MutexGuard, e.g. with
// a bare-metal IRQ-disable implementation.
func WithGuard(guard platform.Guard) Option {
	return func(c *Context) { c.guard = guard }
}

// WithClock overrides the default platform.SystemClock, e.g. with a fake
// clock for deterministic aging tests.
func WithClock(clock platform.Clock) Option {
	return func(c *Context) { c.clock = clock }
}

// WithTX attaches the hardware transmit hook. Without this option, a
// Context transmits to a no-op sink and every send succeeds without ever
// reaching a wire — only suitable for tests that do not assert on
// transmitted bytes.
func WithTX(tx platform.TX) Option {
	return func(c *Context) { c.tx = tx }
}

// WithTableSizes overrides the default table capacities
// (spec.md Section 3's <=32/<=16/<=4/<=8 ceilings are the zero-value
// defaults applied by NewContext when this option is omitted).
// routingEntries is the number of explicit add_route slots — route.New
// reserves one additional slot beyond it for the always-present
// link-local route (spec.md Section 8's MAX_ROUTING_ENTRIES boundary is
// about explicit adds only, see DESIGN.md Open Question (d)).
func WithTableSizes(routingEntries, neighborEntries, tcpConnections, mdnsRecords int) Option {
	return func(c *Context) {
		c.routes = route.New(routingEntries, 0)
		c.neighbors = neighbor.New(neighborEntries)
		c.tcp = tcplite.New(tcpConnections)
		c.records = mdns.New(mdnsRecords)
	}
}

// WithBufferCounts overrides the default RX/TX buffer pool sizes.
func WithBufferCounts(rxBuffers, txBuffers int) Option {
	return func(c *Context) {
		c.rxPool = bufpool.New(rxBuffers)
		c.txPool = bufpool.New(txBuffers)
	}
}

// WithForwarding enables destination-acceptance-by-route-match in ProcessRX
// (spec.md Section 4.5 step 5: "forwarding is OPTIONAL and OFF by
// default"). Off unless this option is supplied.
func WithForwarding(enabled bool) Option {
	return func(c *Context) { c.forward = enabled }
}

// NewContext constructs a Context with spec.md's default table capacities,
// a reentrant platform.MutexGuard, a platform.SystemClock, a discarding TX
// sink, and slog.Default(), then applies opts. Call Initialize before using
// any other operation.
func NewContext(opts ...Option) *Context {
	c := &Context{
		guard:     platform.NewMutexGuard(),
		clock:     platform.NewSystemClock(),
		tx:        discardTX{},
		logger:    slog.Default(),
		rxPool:    bufpool.New(DefaultRXBuffers),
		txPool:    bufpool.New(DefaultTXBuffers),
		routes:    route.New(DefaultRoutingEntries, 0),
		neighbors: neighbor.New(DefaultNeighborEntries),
		tcp:       tcplite.New(DefaultTCPConnections),
		records:   mdns.New(DefaultMDNSRecords),
		listeners: &udpstack.Registry{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// discardTX is the default TX sink: every frame vanishes, every send
// reports success. Used only until a real WithTX option is supplied.
type discardTX struct{}

func (discardTX) Transmit([]byte) error { return nil }

// Initialize zeroes every table and counter, installs the local address
// identity, resets the ephemeral-port counter to its base (49152), reseeds
// the sequence seed from the clock, and installs the link-local default route
// (spec.md Section 3: "all fields zeroed at init"; Section 4.3:
// "Initialization always inserts a link-local route").
func (c *Context) Initialize(localAddr [wire.IPv6AddrSize]byte, localMAC [wire.MACSize]byte) error {
	release := c.guard.Enter()
	defer release()

	var zeroAddr [wire.IPv6AddrSize]byte
	var zeroMAC [wire.MACSize]byte
	if localAddr == zeroAddr || localMAC == zeroMAC {
		return fmt.Errorf("initialize: local address/mac absent: %w", ErrInvalidParam)
	}

	now := c.clock.NowMillis()

	c.rxPool.Reset()
	c.txPool.Reset()
	c.routes.Reset(now)
	c.neighbors.Reset()
	c.tcp.Reset()
	c.records.Reset()
	c.listeners = &udpstack.Registry{}
	c.stats.Reset()

	c.localAddr = localAddr
	c.localMAC = localMAC
	c.ephemeralPort = ephemeralPortBase
	c.seqSeed = now

	c.initialized = true
	c.logger.Info("context initialized", slog.String("local_addr", fmt.Sprintf("%x", localAddr)))
	return nil
}

// Statistics returns a snapshot of the statistics counters
// (spec.md Section 6: "get_statistics() -> snapshot").
func (c *Context) Statistics() stats.Counters {
	release := c.guard.Enter()
	defer release()
	return c.stats.Snapshot()
}

// RegisterUDPListener registers fn to receive UDP datagrams delivered to
// port, for use by cmd/rtnetd's application-layer demo handlers. Not part
// of spec.md's public operation list (the receive-delivery registry is
// explicitly "out of scope" there); exposed here because something must
// call udpstack.Registry.Register.
func (c *Context) RegisterUDPListener(port uint16, fn udpstack.DeliverFunc) bool {
	release := c.guard.Enter()
	defer release()
	return c.listeners.Register(port, fn)
}

func (c *Context) nextEphemeralPort() uint16 {
	port := c.ephemeralPort
	c.ephemeralPort++
	if c.ephemeralPort < ephemeralPortBase {
		c.ephemeralPort = ephemeralPortBase
	}
	return port
}

func (c *Context) nextSeq() uint32 {
	seed := c.seqSeed
	c.seqSeed += seqStride
	return seed
}
