// Command rtnetd runs the deterministic IPv6 network stack as a daemon: it
// loads configuration, builds an internal/rtnet.Context bound to either a
// real interface or the software loopback, applies any statically
// configured routes, drives the periodic ager on a fixed tick, and serves
// Prometheus metrics plus a small JSON introspection surface for
// cmd/rtnetctl.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/seregonwar/rtnetstack/internal/config"
	"github.com/seregonwar/rtnetstack/internal/metrics"
	"github.com/seregonwar/rtnetstack/internal/platform"
	"github.com/seregonwar/rtnetstack/internal/rtnet"
)

// shutdownTimeout is the maximum time to wait for the HTTP server to drain
// in-flight requests during graceful shutdown.
const shutdownTimeout = 10 * time.Second

// rxBufferSize is the byte size of the scratch buffer the raw-socket RX
// loop reads one frame into, sized above the Ethernet MTU plus header so a
// full-size frame never truncates.
const rxBufferSize = 2048

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to configuration file (YAML)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to load configuration",
			slog.String("error", err.Error()),
		)
		return 1
	}

	logLevel := new(slog.LevelVar)
	logLevel.Set(config.ParseLogLevel(cfg.Log.Level))
	logger := newLoggerWithLevel(cfg.Log, logLevel)

	logger.Info("rtnetd starting",
		slog.String("local_addr", cfg.Local.IPv6),
		slog.String("interface", cfg.Local.Interface),
		slog.String("metrics_addr", cfg.Metrics.Addr),
	)

	ctx, tx, err := buildContext(cfg, logger)
	if err != nil {
		logger.Error("failed to build network context", slog.String("error", err.Error()))
		return 1
	}
	if closer, ok := tx.(interface{ Close() error }); ok {
		defer func() {
			if cerr := closer.Close(); cerr != nil {
				logger.Warn("failed to close tx", slog.String("error", cerr.Error()))
			}
		}()
	}

	if err := applyStaticRoutes(ctx, cfg.Routes); err != nil {
		logger.Error("failed to apply configured routes", slog.String("error", err.Error()))
		return 1
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewCollector(ctx.Statistics))

	if err := runServers(cfg, ctx, tx, reg, logger, *configPath, logLevel); err != nil {
		logger.Error("rtnetd exited with error", slog.String("error", err.Error()))
		return 1
	}

	logger.Info("rtnetd stopped")
	return 0
}

// buildContext constructs the rtnet.Context and its transmit hook from
// cfg. An empty Local.Interface selects the software loopback (suitable
// for demo/offline use); a non-empty one binds a platform.RawSocketTX to
// that interface, Linux-only.
func buildContext(cfg *config.Config, logger *slog.Logger) (*rtnet.Context, platform.TX, error) {
	addr, err := netip.ParseAddr(cfg.Local.IPv6)
	if err != nil {
		return nil, nil, fmt.Errorf("parse local address: %w", err)
	}
	localAddr := addr.As16()
	localMAC, err := net.ParseMAC(cfg.Local.MAC)
	if err != nil {
		return nil, nil, fmt.Errorf("parse local mac: %w", err)
	}
	var mac [6]byte
	copy(mac[:], localMAC)

	var tx platform.TX
	if cfg.Local.Interface == "" {
		tx = platform.NewLoopbackTX(nil)
	} else {
		iface, err := net.InterfaceByName(cfg.Local.Interface)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve interface %s: %w", cfg.Local.Interface, err)
		}
		rawTX, err := platform.NewRawSocketTX(iface.Index)
		if err != nil {
			return nil, nil, fmt.Errorf("open raw socket on %s: %w", cfg.Local.Interface, err)
		}
		tx = rawTX
	}

	ctx := rtnet.NewContext(
		rtnet.WithLogger(logger),
		rtnet.WithTX(tx),
		rtnet.WithTableSizes(cfg.Tables.RoutingEntries, cfg.Tables.NeighborEntries, cfg.Tables.TCPConnections, cfg.Tables.MDNSRecords),
		rtnet.WithBufferCounts(cfg.Pools.RXBuffers, cfg.Pools.TXBuffers),
	)
	if err := ctx.Initialize(localAddr, mac); err != nil {
		return nil, nil, fmt.Errorf("initialize context: %w", err)
	}
	return ctx, tx, nil
}

// applyStaticRoutes installs every configured route into ctx
// (spec.md Section 4.13 supplement: a config-driven static route list,
// applied the way the teacher's reconcileSessions applies declarative
// sessions at startup).
func applyStaticRoutes(ctx *rtnet.Context, routes []config.StaticRoute) error {
	for i, r := range routes {
		prefix, err := r.PrefixAddr()
		if err != nil {
			return fmt.Errorf("routes[%d]: %w", i, err)
		}
		nextHop, hasNextHop, err := r.NextHopAddr()
		if err != nil {
			return fmt.Errorf("routes[%d]: %w", i, err)
		}
		var nh *[16]byte
		if hasNextHop {
			nh = &nextHop
		}
		if err := ctx.AddRoute(prefix, r.PrefixLen, nh, uint16(r.Metric)); err != nil {
			return fmt.Errorf("routes[%d]: add route: %w", i, err)
		}
	}
	return nil
}

// runServers wires the HTTP (metrics + debug) server, the RX loop (when tx
// is a real raw socket), the periodic ager ticker, the systemd watchdog,
// and SIGHUP config reload into one errgroup bound to a signal-aware
// context, then waits for graceful shutdown.
func runServers(
	cfg *config.Config,
	ctx *rtnet.Context,
	tx platform.TX,
	reg *prometheus.Registry,
	logger *slog.Logger,
	configPath string,
	logLevel *slog.LevelVar,
) error {
	httpSrv := newHTTPServer(cfg.Metrics, reg, ctx)

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(sigCtx)

	if rawTX, ok := tx.(*platform.RawSocketTX); ok {
		g.Go(func() error {
			runReceiveLoop(gCtx, rawTX, ctx, logger)
			return nil
		})
	}

	g.Go(func() error {
		runPeriodicTicker(gCtx, ctx)
		return nil
	})

	lc := net.ListenConfig{}
	g.Go(func() error {
		logger.Info("metrics/debug server listening", slog.String("addr", cfg.Metrics.Addr))
		return listenAndServe(gCtx, &lc, httpSrv, cfg.Metrics.Addr)
	})

	g.Go(func() error {
		return runWatchdog(gCtx, logger)
	})

	sigHUP := make(chan os.Signal, 1)
	signal.Notify(sigHUP, syscall.SIGHUP)
	g.Go(func() error {
		defer signal.Stop(sigHUP)
		handleSIGHUP(gCtx, sigHUP, configPath, logLevel, logger)
		return nil
	})

	notifyReady(logger)

	g.Go(func() error {
		<-gCtx.Done()
		return gracefulShutdown(gCtx, logger, httpSrv)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run servers: %w", err)
	}
	return nil
}

// runReceiveLoop reads frames from rawTX until ctx.Done or a read error,
// feeding each into core.ProcessRX. A read error after the context is
// cancelled is the expected unblock from RawSocketTX.Close and is not
// logged as a failure.
func runReceiveLoop(ctx context.Context, rawTX *platform.RawSocketTX, core *rtnet.Context, logger *slog.Logger) {
	buf := make([]byte, rxBufferSize)
	for {
		n, err := rawTX.Receive(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("raw socket receive failed", slog.String("error", err.Error()))
			continue
		}
		if procErr := core.ProcessRX(buf[:n]); procErr != nil {
			logger.Debug("dropped inbound frame", slog.String("error", procErr.Error()))
		}
	}
}

// runPeriodicTicker drives core.PeriodicTask on config.PeriodicInterval
// until ctx is done (spec.md Section 2: "invoked from outside roughly
// every 100 ms").
func runPeriodicTicker(ctx context.Context, core *rtnet.Context) {
	ticker := time.NewTicker(config.PeriodicInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			core.PeriodicTask()
		}
	}
}

// -------------------------------------------------------------------------
// Systemd Integration — sd_notify + watchdog
// -------------------------------------------------------------------------

func notifyReady(logger *slog.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		logger.Warn("failed to notify systemd readiness", slog.String("error", err.Error()))
		return
	}
	if sent {
		logger.Info("notified systemd: READY")
	}
}

func notifyStopping(logger *slog.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyStopping)
	if err != nil {
		logger.Warn("failed to notify systemd stopping", slog.String("error", err.Error()))
		return
	}
	if sent {
		logger.Info("notified systemd: STOPPING")
	}
}

// runWatchdog sends periodic watchdog keepalives to systemd at half the
// configured watchdog interval. Exits immediately if no watchdog is
// configured.
func runWatchdog(ctx context.Context, logger *slog.Logger) error {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		logger.Warn("failed to check systemd watchdog", slog.String("error", err.Error()))
		return nil
	}
	if interval == 0 {
		logger.Debug("systemd watchdog not configured, skipping keepalive")
		return nil
	}

	tickInterval := interval / 2
	logger.Info("systemd watchdog enabled",
		slog.Duration("watchdog_sec", interval),
		slog.Duration("keepalive_interval", tickInterval),
	)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, wdErr := daemon.SdNotify(false, daemon.SdNotifyWatchdog); wdErr != nil {
				logger.Warn("failed to send watchdog keepalive", slog.String("error", wdErr.Error()))
			}
		}
	}
}

// -------------------------------------------------------------------------
// SIGHUP Reload — log level only; table sizes and local identity are fixed
// for the life of a Context (spec.md Section 9: "no heap, no resize").
// -------------------------------------------------------------------------

func handleSIGHUP(ctx context.Context, sigHUP <-chan os.Signal, configPath string, logLevel *slog.LevelVar, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sigHUP:
			logger.Info("received SIGHUP, reloading configuration")
			reloadConfig(configPath, logLevel, logger)
		}
	}
}

// reloadConfig loads a fresh configuration and applies the log level
// change. Route and table-size changes require a restart: the core
// allocates its tables once, at Initialize, and never resizes them.
func reloadConfig(configPath string, logLevel *slog.LevelVar, logger *slog.Logger) {
	newCfg, err := loadConfig(configPath)
	if err != nil {
		logger.Error("failed to reload configuration, keeping current settings", slog.String("error", err.Error()))
		return
	}

	oldLevel := logLevel.Level()
	newLevel := config.ParseLogLevel(newCfg.Log.Level)
	logLevel.Set(newLevel)

	logger.Info("configuration reloaded",
		slog.String("old_log_level", oldLevel.String()),
		slog.String("new_log_level", newLevel.String()),
	)
}

// -------------------------------------------------------------------------
// Shutdown
// -------------------------------------------------------------------------

func gracefulShutdown(ctx context.Context, logger *slog.Logger, srv *http.Server) error {
	logger.Info("initiating graceful shutdown")
	notifyStopping(logger)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// -------------------------------------------------------------------------
// Server Setup
// -------------------------------------------------------------------------

// listenAndServe creates a TCP listener using the ListenConfig (for noctx
// compliance) and serves HTTP requests until the server is shut down.
func listenAndServe(ctx context.Context, lc *net.ListenConfig, srv *http.Server, addr string) error {
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve on %s: %w", addr, err)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config from %s: %w", path, err)
		}
		return cfg, nil
	}
	return config.DefaultConfig(), nil
}

// newLoggerWithLevel creates a structured logger using a shared LevelVar
// for dynamic log level changes via SIGHUP reload.
func newLoggerWithLevel(cfg config.LogConfig, level *slog.LevelVar) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
