package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

// errUnsupportedFormat is returned when the requested output format is not
// supported.
var errUnsupportedFormat = errors.New("unsupported output format")

// statsView mirrors internal/stats.Counters field-for-field; the daemon's
// /debug/stats endpoint encodes it with Go's default (capitalized) JSON
// field names since stats.Counters carries no json tags of its own.
type statsView struct {
	RXPackets      uint64
	TXPackets      uint64
	RXErrors       uint64
	TXErrors       uint64
	RXDropped      uint64
	TXDropped      uint64
	ChecksumErrors uint64
	RoutingErrors  uint64
}

func formatStats(s statsView, format string) (string, error) {
	switch format {
	case formatJSON:
		return marshalIndent(s)
	case formatTable:
		var buf strings.Builder
		w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "RX Packets:\t%d\n", s.RXPackets)
		fmt.Fprintf(w, "TX Packets:\t%d\n", s.TXPackets)
		fmt.Fprintf(w, "RX Errors:\t%d\n", s.RXErrors)
		fmt.Fprintf(w, "TX Errors:\t%d\n", s.TXErrors)
		fmt.Fprintf(w, "RX Dropped:\t%d\n", s.RXDropped)
		fmt.Fprintf(w, "TX Dropped:\t%d\n", s.TXDropped)
		fmt.Fprintf(w, "Checksum Errors:\t%d\n", s.ChecksumErrors)
		fmt.Fprintf(w, "Routing Errors:\t%d\n", s.RoutingErrors)
		if err := w.Flush(); err != nil {
			return "", fmt.Errorf("flush tabwriter: %w", err)
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

type routeView struct {
	DestPrefix string `json:"dest_prefix"`
	PrefixLen  int    `json:"prefix_len"`
	NextHop    string `json:"next_hop,omitempty"`
	Metric     uint16 `json:"metric"`
	LastUsedMS uint32 `json:"last_used_ms"`
}

func formatRoutes(routes []routeView, format string) (string, error) {
	switch format {
	case formatJSON:
		return marshalIndent(routes)
	case formatTable:
		var buf strings.Builder
		w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PREFIX\tNEXT-HOP\tMETRIC\tLAST-USED-MS")
		for _, r := range routes {
			nh := r.NextHop
			if nh == "" {
				nh = "directly-connected"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", r.DestPrefix, nh, r.Metric, r.LastUsedMS)
		}
		if err := w.Flush(); err != nil {
			return "", fmt.Errorf("flush tabwriter: %w", err)
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

type neighborView struct {
	Addr          string `json:"addr"`
	MAC           string `json:"mac"`
	State         string `json:"state"`
	LastConfirmed uint32 `json:"last_confirmed_ms"`
}

func formatNeighbors(entries []neighborView, format string) (string, error) {
	switch format {
	case formatJSON:
		return marshalIndent(entries)
	case formatTable:
		var buf strings.Builder
		w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ADDR\tMAC\tSTATE\tLAST-CONFIRMED-MS")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", e.Addr, e.MAC, e.State, e.LastConfirmed)
		}
		if err := w.Flush(); err != nil {
			return "", fmt.Errorf("flush tabwriter: %w", err)
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
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

func formatTCPConns(conns []tcpConnView, format string) (string, error) {
	switch format {
	case formatJSON:
		return marshalIndent(conns)
	case formatTable:
		var buf strings.Builder
		w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LOCAL\tREMOTE\tSTATE\tSEND-NEXT\tRECV-NEXT\tPENDING")
		for _, c := range conns {
			fmt.Fprintf(w, "%s:%d\t%s:%d\t%s\t%d\t%d\t%d\n",
				c.LocalAddr, c.LocalPort, c.RemoteAddr, c.RemotePort, c.State, c.SendNext, c.RecvNext, c.PendingLen)
		}
		if err := w.Flush(); err != nil {
			return "", fmt.Errorf("flush tabwriter: %w", err)
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

type mdnsRecordView struct {
	Name     string `json:"name"`
	Addr     string `json:"addr"`
	Port     uint16 `json:"port"`
	TTLMS    uint32 `json:"ttl_ms"`
	LastSeen uint32 `json:"last_seen_ms"`
}

func formatMDNSRecords(records []mdnsRecordView, format string) (string, error) {
	switch format {
	case formatJSON:
		return marshalIndent(records)
	case formatTable:
		var buf strings.Builder
		w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tADDR\tPORT\tTTL-MS\tLAST-SEEN-MS")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", r.Name, r.Addr, r.Port, r.TTLMS, r.LastSeen)
		}
		if err := w.Flush(); err != nil {
			return "", fmt.Errorf("flush tabwriter: %w", err)
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

func marshalIndent(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal to JSON: %w", err)
	}
	return string(data), nil
}
