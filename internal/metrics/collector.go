// Package metrics exports the core's Statistics snapshot (spec.md
// Section 3, Section 6 "get_statistics") as Prometheus metrics for
// cmd/rtnetd's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/seregonwar/rtnetstack/internal/stats"
)

const namespace = "rtnet"

// StatsFunc returns the current statistics snapshot, typically
// *rtnet.Context.Statistics. Collect calls it fresh on every scrape so the
// exported values never lag the context's own counters.
type StatsFunc func() stats.Counters

// Collector is a prometheus.Collector that reports every field of
// stats.Counters as a counter-typed metric, computed on demand from
// StatsFunc rather than mutated inline by the core — the core has no
// Prometheus dependency of its own (spec.md's no-heap, bounded-WCET core
// stays free of the exporter's allocation and registry machinery).
//
// Grounded on the teacher's internal/metrics/collector.go shape (a struct
// of metric descriptors registered against a prometheus.Registerer), with
// the teacher's imperative Inc-on-every-event style replaced by a
// Collect-time snapshot read: this core's statistics already live behind
// the context-wide critical section, so re-deriving Prometheus state from
// one authoritative snapshot avoids a second, possibly-stale copy of the
// same counters.
type Collector struct {
	statsFn StatsFunc

	rxPackets      *prometheus.Desc
	txPackets      *prometheus.Desc
	rxErrors       *prometheus.Desc
	txErrors       *prometheus.Desc
	rxDropped      *prometheus.Desc
	txDropped      *prometheus.Desc
	checksumErrors *prometheus.Desc
	routingErrors  *prometheus.Desc
}

// NewCollector constructs a Collector that reads statsFn on every scrape.
// Callers register it with a prometheus.Registerer (prometheus.Register or
// a *prometheus.Registry).
func NewCollector(statsFn StatsFunc) *Collector {
	return &Collector{
		statsFn:        statsFn,
		rxPackets:      desc("rx_packets_total", "Total IPv6 frames accepted past length and version checks."),
		txPackets:      desc("tx_packets_total", "Total frames handed off to the platform transmit hook."),
		rxErrors:       desc("rx_errors_total", "Total inbound frames rejected by a validation check."),
		txErrors:       desc("tx_errors_total", "Total outbound operations that failed after buffer allocation."),
		rxDropped:      desc("rx_dropped_total", "Total inbound frames silently dropped (no matching delivery target)."),
		txDropped:      desc("tx_dropped_total", "Total outbound operations dropped for lack of a buffer."),
		checksumErrors: desc("checksum_errors_total", "Total inbound frames rejected for a bad upper-layer checksum."),
		routingErrors:  desc("routing_errors_total", "Total outbound operations rejected for lack of a matching route."),
	}
}

func desc(name, help string) *prometheus.Desc {
	return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, nil)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.rxPackets
	ch <- c.txPackets
	ch <- c.rxErrors
	ch <- c.txErrors
	ch <- c.rxDropped
	ch <- c.txDropped
	ch <- c.checksumErrors
	ch <- c.routingErrors
}

// Collect implements prometheus.Collector: it reads one statistics
// snapshot and emits all eight counters from it.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.statsFn()

	ch <- prometheus.MustNewConstMetric(c.rxPackets, prometheus.CounterValue, float64(s.RXPackets))
	ch <- prometheus.MustNewConstMetric(c.txPackets, prometheus.CounterValue, float64(s.TXPackets))
	ch <- prometheus.MustNewConstMetric(c.rxErrors, prometheus.CounterValue, float64(s.RXErrors))
	ch <- prometheus.MustNewConstMetric(c.txErrors, prometheus.CounterValue, float64(s.TXErrors))
	ch <- prometheus.MustNewConstMetric(c.rxDropped, prometheus.CounterValue, float64(s.RXDropped))
	ch <- prometheus.MustNewConstMetric(c.txDropped, prometheus.CounterValue, float64(s.TXDropped))
	ch <- prometheus.MustNewConstMetric(c.checksumErrors, prometheus.CounterValue, float64(s.ChecksumErrors))
	ch <- prometheus.MustNewConstMetric(c.routingErrors, prometheus.CounterValue, float64(s.RoutingErrors))
}
