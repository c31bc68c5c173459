// Package config manages the rtnetd daemon's configuration using koanf/v2.
//
// The core engine (internal/rtnet) never imports this package: its table
// capacities are plain constructor arguments, fixed for the lifetime of a
// Context and never resized, per the no-heap contract (spec.md Section 9,
// "No heap"). config exists only so the demo daemon can load a local
// address, table sizes, and static routes from a YAML file instead of
// hard-coding them, validating the requested sizes against the same
// ceilings spec.md Section 3 lists as defaults before internal/rtnet ever
// sees them.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// -------------------------------------------------------------------------
// Configuration Structures
// -------------------------------------------------------------------------

// Config holds the complete rtnetd daemon configuration.
type Config struct {
	Local   LocalConfig    `koanf:"local"`
	Pools   PoolConfig     `koanf:"pools"`
	Tables  TableConfig    `koanf:"tables"`
	TCP     TCPConfig      `koanf:"tcp"`
	Routes  []StaticRoute  `koanf:"routes"`
	Log     LogConfig      `koanf:"log"`
	Metrics MetricsConfig  `koanf:"metrics"`
}

// LocalConfig identifies the stack's own link identity
// (spec.md Section 6: "initialize(local_ipv6, local_mac)").
type LocalConfig struct {
	// IPv6 is the stack's local address, e.g. "fe80::10".
	IPv6 string `koanf:"ipv6"`
	// MAC is the stack's local MAC-48 address, e.g. "00:de:ad:be:ef:01".
	MAC string `koanf:"mac"`
	// Interface names the host NIC internal/platform.RawSocketTX binds to.
	// Empty selects the software loopback instead.
	Interface string `koanf:"interface"`
}

// PoolConfig sizes the RX/TX buffer pools (spec.md Section 4.2).
type PoolConfig struct {
	RXBuffers int `koanf:"rx_buffers"`
	TXBuffers int `koanf:"tx_buffers"`
}

// TableConfig sizes the core's fixed-capacity tables
// (spec.md Section 3: "Context ... holding ... routing table (<=32),
// neighbor cache (<=16), TCP table (<=4), mDNS cache (<=8)").
type TableConfig struct {
	RoutingEntries  int `koanf:"routing_entries"`
	NeighborEntries int `koanf:"neighbor_entries"`
	TCPConnections  int `koanf:"tcp_connections"`
	MDNSRecords     int `koanf:"mdns_records"`
}

// TCPConfig carries the TCP-Lite knobs spec.md Section 6 lists as
// compile-time configuration: "TCP MSS and window, retry count, retry
// timeout".
type TCPConfig struct {
	MSS            int `koanf:"mss"`
	Window         int `koanf:"window"`
	RetryCount     int `koanf:"retry_count"`
	RetryTimeoutMS int `koanf:"retry_timeout_ms"`
}

// StaticRoute is one entry of the daemon's declarative route list, applied
// via internal/rtnet.Context.AddRoute at startup — a supplement beyond
// spec.md's silence on route provisioning, mirroring the teacher's
// declarative Sessions []SessionConfig list.
type StaticRoute struct {
	Prefix    string `koanf:"prefix"`
	PrefixLen int    `koanf:"prefix_len"`
	NextHop   string `koanf:"next_hop"`
	Metric    int    `koanf:"metric"`
}

// PrefixAddr parses Prefix as a 16-byte IPv6 address.
func (r StaticRoute) PrefixAddr() ([16]byte, error) {
	return parseIPv6(r.Prefix)
}

// NextHopAddr parses NextHop as a 16-byte IPv6 address. An empty NextHop
// means directly connected; ok is false in that case.
func (r StaticRoute) NextHopAddr() (addr [16]byte, ok bool, err error) {
	if r.NextHop == "" {
		return addr, false, nil
	}
	addr, err = parseIPv6(r.NextHop)
	return addr, err == nil, err
}

func parseIPv6(s string) ([16]byte, error) {
	var out [16]byte
	a, err := netip.ParseAddr(s)
	if err != nil {
		return out, fmt.Errorf("parse ipv6 %q: %w", s, err)
	}
	a16 := a.As16()
	return a16, nil
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsConfig holds the Prometheus metrics endpoint configuration.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
	Path string `koanf:"path"`
}

// -------------------------------------------------------------------------
// Capacity ceilings
// -------------------------------------------------------------------------

// Maximum table sizes the daemon will accept, matching the defaults
// spec.md Section 3 lists for the Context's tables. internal/rtnet itself
// enforces no such ceiling (a Context can be constructed with any capacity
// a test finds convenient); this package applies it only to the daemon's
// own configuration surface.
const (
	MaxRoutingEntries  = 32
	MaxNeighborEntries = 16
	MaxTCPConnections  = 4
	MaxMDNSRecords     = 8
)

// -------------------------------------------------------------------------
// Defaults
// -------------------------------------------------------------------------

// DefaultConfig returns a Config populated with the sizes and knobs
// spec.md Section 3/Section 6 list as defaults.
func DefaultConfig() *Config {
	return &Config{
		Local: LocalConfig{
			IPv6: "fe80::1",
			MAC:  "02:00:00:00:00:01",
		},
		Pools: PoolConfig{
			RXBuffers: 8,
			TXBuffers: 8,
		},
		Tables: TableConfig{
			RoutingEntries:  MaxRoutingEntries,
			NeighborEntries: MaxNeighborEntries,
			TCPConnections:  MaxTCPConnections,
			MDNSRecords:     MaxMDNSRecords,
		},
		TCP: TCPConfig{
			MSS:            1280,
			Window:         1280,
			RetryCount:     3,
			RetryTimeoutMS: 3000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Addr: ":9100",
			Path: "/metrics",
		},
	}
}

// -------------------------------------------------------------------------
// Loader
// -------------------------------------------------------------------------

// envPrefix is the environment variable prefix for rtnetd configuration.
// Variables are named RTNET_<section>_<key>, e.g. RTNET_LOCAL_IPV6.
const envPrefix = "RTNET_"

// Load reads configuration from a YAML file at path, overlays environment
// variable overrides (RTNET_ prefix), and merges on top of DefaultConfig().
// Missing fields inherit defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := loadDefaults(k, defaults); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load config from %s: %w", path, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config from %s: %w", path, err)
	}

	return cfg, nil
}

// envKeyMapper transforms RTNET_LOCAL_IPV6 -> local.ipv6.
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "_", ".")
}

// loadDefaults marshals the default config into koanf as the base layer.
func loadDefaults(k *koanf.Koanf, d *Config) error {
	defaultMap := map[string]any{
		"local.ipv6":             d.Local.IPv6,
		"local.mac":              d.Local.MAC,
		"local.interface":        d.Local.Interface,
		"pools.rx_buffers":       d.Pools.RXBuffers,
		"pools.tx_buffers":       d.Pools.TXBuffers,
		"tables.routing_entries": d.Tables.RoutingEntries,
		"tables.neighbor_entries": d.Tables.NeighborEntries,
		"tables.tcp_connections": d.Tables.TCPConnections,
		"tables.mdns_records":    d.Tables.MDNSRecords,
		"tcp.mss":                d.TCP.MSS,
		"tcp.window":             d.TCP.Window,
		"tcp.retry_count":        d.TCP.RetryCount,
		"tcp.retry_timeout_ms":   d.TCP.RetryTimeoutMS,
		"log.level":              d.Log.Level,
		"log.format":             d.Log.Format,
		"metrics.addr":           d.Metrics.Addr,
		"metrics.path":           d.Metrics.Path,
	}

	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}
	return nil
}

// -------------------------------------------------------------------------
// Validation
// -------------------------------------------------------------------------

var (
	ErrInvalidLocalIPv6    = errors.New("local.ipv6 is not a valid IPv6 address")
	ErrInvalidLocalMAC     = errors.New("local.mac is not a valid MAC-48 address")
	ErrInvalidPoolSize     = errors.New("pool size must be > 0")
	ErrTableSizeExceedsMax = errors.New("table size exceeds the compiled-in capacity ceiling")
	ErrTableSizeZero       = errors.New("table size must be > 0")
	ErrInvalidTCPKnob      = errors.New("tcp knob must be > 0")
	ErrInvalidRoutePrefix  = errors.New("route prefix is invalid")
	ErrInvalidPrefixLen    = errors.New("route prefix_len must be 0..128")
)

// Validate checks the configuration for logical errors, in particular that
// every requested table size fits under the compiled-in ceilings this
// package defines — the daemon-level analogue of spec.md's invalid_param
// boundary check, applied before internal/rtnet.NewContext ever allocates
// the tables.
func Validate(cfg *Config) error {
	if _, err := netip.ParseAddr(cfg.Local.IPv6); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLocalIPv6, err)
	}
	if _, err := net.ParseMAC(cfg.Local.MAC); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLocalMAC, err)
	}

	if cfg.Pools.RXBuffers <= 0 || cfg.Pools.TXBuffers <= 0 {
		return ErrInvalidPoolSize
	}

	if err := checkTableSize("routing_entries", cfg.Tables.RoutingEntries, MaxRoutingEntries); err != nil {
		return err
	}
	if err := checkTableSize("neighbor_entries", cfg.Tables.NeighborEntries, MaxNeighborEntries); err != nil {
		return err
	}
	if err := checkTableSize("tcp_connections", cfg.Tables.TCPConnections, MaxTCPConnections); err != nil {
		return err
	}
	if err := checkTableSize("mdns_records", cfg.Tables.MDNSRecords, MaxMDNSRecords); err != nil {
		return err
	}

	if cfg.TCP.MSS <= 0 || cfg.TCP.Window <= 0 || cfg.TCP.RetryCount <= 0 || cfg.TCP.RetryTimeoutMS <= 0 {
		return ErrInvalidTCPKnob
	}

	if err := validateRoutes(cfg.Routes); err != nil {
		return err
	}

	return nil
}

func checkTableSize(name string, size, max int) error {
	if size <= 0 {
		return fmt.Errorf("%s: %w", name, ErrTableSizeZero)
	}
	if size > max {
		return fmt.Errorf("%s=%d exceeds max=%d: %w", name, size, max, ErrTableSizeExceedsMax)
	}
	return nil
}

func validateRoutes(routes []StaticRoute) error {
	for i, r := range routes {
		if _, err := r.PrefixAddr(); err != nil {
			return fmt.Errorf("routes[%d]: %w: %v", i, ErrInvalidRoutePrefix, err)
		}
		if r.PrefixLen < 0 || r.PrefixLen > 128 {
			return fmt.Errorf("routes[%d] prefix_len=%d: %w", i, r.PrefixLen, ErrInvalidPrefixLen)
		}
		if _, _, err := r.NextHopAddr(); err != nil {
			return fmt.Errorf("routes[%d] next_hop: %w", i, err)
		}
	}
	return nil
}

// -------------------------------------------------------------------------
// Log Level Parsing
// -------------------------------------------------------------------------

// ParseLogLevel maps a configuration log level string to the corresponding
// slog.Level. Unknown values default to slog.LevelInfo.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// -------------------------------------------------------------------------
// Time knobs
// -------------------------------------------------------------------------

// PeriodicInterval is the cadence at which cmd/rtnetd drives
// internal/rtnet.Context.PeriodicTask, matching spec.md Section 2's
// "invoked from outside roughly every 100 ms".
const PeriodicInterval = 100 * time.Millisecond
