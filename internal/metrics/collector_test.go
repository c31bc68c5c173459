package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/seregonwar/rtnetstack/internal/metrics"
	"github.com/seregonwar/rtnetstack/internal/stats"
)

// gather drives Describe and Collect directly (without a registry) and
// returns every reported counter value keyed by its descriptor, so a test
// can check that each field of a stats.Counters snapshot reaches the
// exporter.
func gather(t *testing.T, c *metrics.Collector) map[string]float64 {
	t.Helper()

	descCh := make(chan *prometheus.Desc, 16)
	go func() {
		c.Describe(descCh)
		close(descCh)
	}()
	descCount := 0
	for range descCh {
		descCount++
	}
	if descCount != 8 {
		t.Fatalf("Describe emitted %d descriptors, want 8", descCount)
	}

	metricCh := make(chan prometheus.Metric, 16)
	go func() {
		c.Collect(metricCh)
		close(metricCh)
	}()

	out := make(map[string]float64)
	for m := range metricCh {
		var pb dto.Metric
		if err := m.Write(&pb); err != nil {
			t.Fatalf("Write: %v", err)
		}
		out[m.Desc().String()] = pb.GetCounter().GetValue()
	}
	return out
}

func TestCollectorReportsSnapshotValues(t *testing.T) {
	snapshot := stats.Counters{
		RXPackets:      10,
		TXPackets:      5,
		RXErrors:       1,
		TXErrors:       2,
		RXDropped:      3,
		TXDropped:      4,
		ChecksumErrors: 6,
		RoutingErrors:  7,
	}
	c := metrics.NewCollector(func() stats.Counters { return snapshot })

	values := gather(t, c)
	if len(values) != 8 {
		t.Fatalf("expected 8 distinct metrics, got %d", len(values))
	}

	var total float64
	for _, v := range values {
		total += v
	}
	want := float64(10 + 5 + 1 + 2 + 3 + 4 + 6 + 7)
	if total != want {
		t.Errorf("sum of collected counters = %v, want %v", total, want)
	}
}

func TestCollectorReflectsLiveSnapshotOnEachScrape(t *testing.T) {
	snapshot := stats.Counters{}
	c := metrics.NewCollector(func() stats.Counters { return snapshot })

	before := gather(t, c)
	snapshot.RXPackets = 42
	after := gather(t, c)

	var beforeTotal, afterTotal float64
	for _, v := range before {
		beforeTotal += v
	}
	for _, v := range after {
		afterTotal += v
	}
	if afterTotal-beforeTotal != 42 {
		t.Errorf("expected a live 42-unit increase, got delta=%v", afterTotal-beforeTotal)
	}
}
