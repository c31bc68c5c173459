package route_test

import (
	"errors"
	"testing"

	"github.com/seregonwar/rtnetstack/internal/route"
	"github.com/seregonwar/rtnetstack/internal/wire"
)

func addr(lastByte byte) [wire.IPv6AddrSize]byte {
	var a [wire.IPv6AddrSize]byte
	a[15] = lastByte
	return a
}

func TestNewInstallsLinkLocalRoute(t *testing.T) {
	tbl := route.New(4, 0)

	idx, ok := tbl.Find([wire.IPv6AddrSize]byte{0xfe, 0x80, 15: 0x10}, 0)
	if !ok {
		t.Fatal("expected link-local route to match fe80::10")
	}
	e := tbl.Get(idx)
	if e.PrefixLen != route.LinkLocalPrefixLen || e.Metric != route.LinkLocalMetric {
		t.Errorf("unexpected link-local route: %+v", e)
	}
}

func TestLongestPrefixWins(t *testing.T) {
	tbl := route.New(8, 0)

	dst := addr(1)
	shortPrefix := addr(0)
	if _, err := tbl.Insert(shortPrefix, 120, [wire.IPv6AddrSize]byte{}, false, 5, 0); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := tbl.Insert(dst, 128, [wire.IPv6AddrSize]byte{}, false, 5, 0); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	idx, ok := tbl.Find(dst, 10)
	if !ok {
		t.Fatal("expected a match")
	}
	if tbl.Get(idx).PrefixLen != 128 {
		t.Errorf("expected the /128 entry to win, got prefix_len=%d", tbl.Get(idx).PrefixLen)
	}
}

func TestMetricTieBreak(t *testing.T) {
	tbl := route.New(8, 0)

	dst := addr(1)
	if _, err := tbl.Insert(dst, 128, [wire.IPv6AddrSize]byte{}, false, 10, 0); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	lowMetricIdx, err := tbl.Insert(dst, 128, [wire.IPv6AddrSize]byte{}, false, 5, 0)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	idx, ok := tbl.Find(dst, 10)
	if !ok || idx != lowMetricIdx {
		t.Errorf("expected lower-metric entry (%d) to win, got idx=%d ok=%v", lowMetricIdx, idx, ok)
	}
}

func TestFindStampsLastUsed(t *testing.T) {
	tbl := route.New(4, 0)
	dst := addr(1)
	idx, err := tbl.Insert(dst, 128, [wire.IPv6AddrSize]byte{}, false, 1, 0)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if _, ok := tbl.Find(dst, 12345); !ok {
		t.Fatal("expected match")
	}
	if tbl.Get(idx).LastUsed != 12345 {
		t.Errorf("LastUsed not updated: got %d", tbl.Get(idx).LastUsed)
	}
}

func TestInsertOverflow(t *testing.T) {
	// capacity 2: New reserves a slot beyond the requested capacity for the
	// link-local route, so exactly 2 explicit inserts succeed before the
	// 3rd overflows (spec.md Section 8: "rejects insertion with overflow
	// after exactly MAX_ROUTING_ENTRIES successful adds").
	tbl := route.New(2, 0)

	if _, err := tbl.Insert(addr(1), 128, [wire.IPv6AddrSize]byte{}, false, 1, 0); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := tbl.Insert(addr(2), 128, [wire.IPv6AddrSize]byte{}, false, 1, 0); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := tbl.Insert(addr(3), 128, [wire.IPv6AddrSize]byte{}, false, 1, 0); !errors.Is(err, route.ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}

func TestInsertRejectsOutOfRangePrefixLen(t *testing.T) {
	tbl := route.New(4, 0)
	if _, err := tbl.Insert(addr(1), 129, [wire.IPv6AddrSize]byte{}, false, 1, 0); !errors.Is(err, route.ErrInvalidPrefixLen) {
		t.Errorf("expected ErrInvalidPrefixLen, got %v", err)
	}
}

func TestAgeInvalidatesStaleNonLinkLocalRoutes(t *testing.T) {
	tbl := route.New(4, 0)
	idx, err := tbl.Insert(addr(1), 128, [wire.IPv6AddrSize]byte{}, false, 1, 0)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	tbl.Age(route.AgeHorizonMS)
	if !tbl.Get(idx).Valid {
		t.Error("route touched exactly at the horizon must not be invalidated")
	}

	tbl.Age(route.AgeHorizonMS + 1)
	if tbl.Get(idx).Valid {
		t.Error("route older than the horizon must be invalidated")
	}
}

func TestAgeNeverInvalidatesLinkLocalRoute(t *testing.T) {
	tbl := route.New(1, 0)
	tbl.Age(10_000_000)

	if _, ok := tbl.Find([wire.IPv6AddrSize]byte{0xfe, 0x80, 15: 1}, 10_000_000); !ok {
		t.Error("link-local route must survive aging")
	}
}

func TestFindNoMatch(t *testing.T) {
	tbl := route.New(1, 0)
	if _, ok := tbl.Find(addr(99), 0); ok {
		t.Error("global address must not match only the link-local route")
	}
}
