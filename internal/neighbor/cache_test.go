package neighbor_test

import (
	"testing"

	"github.com/seregonwar/rtnetstack/internal/neighbor"
	"github.com/seregonwar/rtnetstack/internal/wire"
)

func addr(b byte) [wire.IPv6AddrSize]byte {
	var a [wire.IPv6AddrSize]byte
	a[15] = b
	return a
}

func mac(b byte) [wire.MACSize]byte {
	var m [wire.MACSize]byte
	m[5] = b
	return m
}

func TestInsertAndLookup(t *testing.T) {
	c := neighbor.New(4)
	idx := c.Insert(addr(1), mac(1), neighbor.StateReachable, 100)

	got, ok := c.Lookup(addr(1), 200)
	if !ok || got != idx {
		t.Fatalf("Lookup: got idx=%d ok=%v, want idx=%d ok=true", got, ok, idx)
	}
	if c.Get(idx).LastConfirmed != 200 {
		t.Error("Lookup must refresh LastConfirmed on hit")
	}
}

func TestLookupMiss(t *testing.T) {
	c := neighbor.New(2)
	if _, ok := c.Lookup(addr(9), 0); ok {
		t.Error("expected miss on empty cache")
	}
}

func TestInsertEvictsOldest(t *testing.T) {
	c := neighbor.New(2)
	c.Insert(addr(1), mac(1), neighbor.StateReachable, 10)
	c.Insert(addr(2), mac(2), neighbor.StateReachable, 20)

	// Cache is full; inserting a third entry must evict addr(1) (oldest).
	c.Insert(addr(3), mac(3), neighbor.StateReachable, 30)

	if _, ok := c.Lookup(addr(1), 40); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Lookup(addr(2), 40); !ok {
		t.Error("newer entry should survive eviction")
	}
}

func TestAgeInvalidatesStaleEntries(t *testing.T) {
	c := neighbor.New(2)
	idx := c.Insert(addr(1), mac(1), neighbor.StateReachable, 0)

	// Probe with Get, not Lookup: a Lookup hit would refresh LastConfirmed.
	c.Age(neighbor.AgeHorizonMS)
	if !c.Get(idx).Valid {
		t.Error("entry at exactly the horizon must survive")
	}

	c.Age(neighbor.AgeHorizonMS + 1)
	if _, ok := c.Lookup(addr(1), neighbor.AgeHorizonMS+1); ok {
		t.Error("entry older than the horizon must be invalidated")
	}
}

func TestResetClearsCache(t *testing.T) {
	c := neighbor.New(2)
	c.Insert(addr(1), mac(1), neighbor.StateReachable, 0)
	c.Reset()
	if _, ok := c.Lookup(addr(1), 0); ok {
		t.Error("Reset must clear all entries")
	}
}
