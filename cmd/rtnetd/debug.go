package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/netip"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seregonwar/rtnetstack/internal/config"
	"github.com/seregonwar/rtnetstack/internal/mdns"
	"github.com/seregonwar/rtnetstack/internal/neighbor"
	"github.com/seregonwar/rtnetstack/internal/route"
	"github.com/seregonwar/rtnetstack/internal/rtnet"
	"github.com/seregonwar/rtnetstack/internal/tcplite"
)

// newHTTPServer builds the daemon's single HTTP server: the Prometheus
// metrics endpoint plus a small set of JSON introspection endpoints under
// /debug/, which is how cmd/rtnetctl inspects a running daemon now that
// there is no RPC control plane to query (spec.md's scope excludes a wire
// control protocol; DESIGN.md records this as the chosen substitute for
// the teacher's ConnectRPC session-inspection surface).
func newHTTPServer(cfg config.MetricsConfig, reg *prometheus.Registry, core *rtnet.Context) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	mux.HandleFunc("/debug/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, core.Statistics())
	})
	mux.HandleFunc("/debug/routes", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, routesToView(core.RouteSnapshot()))
	})
	mux.HandleFunc("/debug/neighbors", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, neighborsToView(core.NeighborSnapshot()))
	})
	mux.HandleFunc("/debug/tcp", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, connsToView(core.TCPSnapshot()))
	})
	mux.HandleFunc("/debug/mdns", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, mdnsToView(core.MDNSSnapshot()))
	})

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("encode response: %v", err), http.StatusInternalServerError)
	}
}

// -------------------------------------------------------------------------
// View types — addresses rendered as text, not raw byte arrays, for a
// readable `rtnetctl` table/JSON output.
// -------------------------------------------------------------------------

type routeView struct {
	DestPrefix string `json:"dest_prefix"`
	PrefixLen  int    `json:"prefix_len"`
	NextHop    string `json:"next_hop,omitempty"`
	Metric     uint16 `json:"metric"`
	LastUsedMS uint32 `json:"last_used_ms"`
}

func routesToView(entries []route.Entry) []routeView {
	out := make([]routeView, 0, len(entries))
	for _, e := range entries {
		v := routeView{
			DestPrefix: fmt.Sprintf("%s/%d", addrString(e.DestPrefix), e.PrefixLen),
			PrefixLen:  e.PrefixLen,
			Metric:     e.Metric,
			LastUsedMS: e.LastUsed,
		}
		if e.HasNextHop {
			v.NextHop = addrString(e.NextHop)
		}
		out = append(out, v)
	}
	return out
}

type neighborView struct {
	Addr          string `json:"addr"`
	MAC           string `json:"mac"`
	State         string `json:"state"`
	LastConfirmed uint32 `json:"last_confirmed_ms"`
}

func neighborsToView(entries []neighbor.Entry) []neighborView {
	out := make([]neighborView, 0, len(entries))
	for _, e := range entries {
		out = append(out, neighborView{
			Addr:          addrString(e.Addr),
			MAC:           macString(e.MAC),
			State:         e.State.String(),
			LastConfirmed: e.LastConfirmed,
		})
	}
	return out
}

type tcpConnView struct {
	LocalAddr  string `json:"local_addr"`
	RemoteAddr string `json:"remote_addr"`
	LocalPort  uint16 `json:"local_port"`
	RemotePort uint16 `json:"remote_port"`
	State      string `json:"state"`
	SendNext   uint32 `json:"send_next"`
	RecvNext   uint32 `json:"recv_next"`
	PendingLen int    `json:"pending_len"`
}

func connsToView(conns []tcplite.Conn) []tcpConnView {
	out := make([]tcpConnView, 0, len(conns))
	for _, c := range conns {
		out = append(out, tcpConnView{
			LocalAddr:  addrString(c.LocalAddr),
			RemoteAddr: addrString(c.RemoteAddr),
			LocalPort:  c.LocalPort,
			RemotePort: c.RemotePort,
			State:      c.State.String(),
			SendNext:   c.SendNext,
			RecvNext:   c.RecvNext,
			PendingLen: c.PendingLen,
		})
	}
	return out
}

type mdnsRecordView struct {
	Name     string `json:"name"`
	Addr     string `json:"addr"`
	Port     uint16 `json:"port"`
	TTLMS    uint32 `json:"ttl_ms"`
	LastSeen uint32 `json:"last_seen_ms"`
}

func mdnsToView(records []mdns.Record) []mdnsRecordView {
	out := make([]mdnsRecordView, 0, len(records))
	for _, r := range records {
		out = append(out, mdnsRecordView{
			Name:     r.Name,
			Addr:     addrString(r.Addr),
			Port:     r.Port,
			TTLMS:    r.TTLMS,
			LastSeen: r.LastSeen,
		})
	}
	return out
}

func addrString(b [16]byte) string {
	return netip.AddrFrom16(b).String()
}

func macString(b [6]byte) string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", b[0], b[1], b[2], b[3], b[4], b[5])
}
