package bufpool_test

import (
	"errors"
	"testing"

	"github.com/seregonwar/rtnetstack/internal/bufpool"
)

func TestAllocateWarmAffinity(t *testing.T) {
	p := bufpool.New(4)

	idx, err := p.Allocate(bufpool.QoSHigh, 100)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	p.Free(idx)

	// idx is now free but still tagged QoSHigh; a request for QoSHigh
	// should prefer it over an untouched (QoSCritical zero-value) slot.
	got, err := p.Allocate(bufpool.QoSHigh, 200)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if got != idx {
		t.Errorf("warm affinity: got slot %d, want %d", got, idx)
	}
}

func TestAllocateFallsBackToAnyFree(t *testing.T) {
	p := bufpool.New(2)

	if _, err := p.Allocate(bufpool.QoSNormal, 1); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	idx, err := p.Allocate(bufpool.QoSCritical, 2)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if idx != 1 {
		t.Errorf("expected fallback to slot 1, got %d", idx)
	}
}

func TestAllocateExhaustion(t *testing.T) {
	p := bufpool.New(2)

	for range 2 {
		if _, err := p.Allocate(bufpool.QoSNormal, 0); err != nil {
			t.Fatalf("Allocate: %v", err)
		}
	}

	if _, err := p.Allocate(bufpool.QoSNormal, 0); !errors.Is(err, bufpool.ErrNoBuffer) {
		t.Errorf("expected ErrNoBuffer, got %v", err)
	}
}

func TestFreeThenReallocate(t *testing.T) {
	p := bufpool.New(1)

	idx, err := p.Allocate(bufpool.QoSLow, 0)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	buf := p.Get(idx)
	buf.Len = 42

	p.Free(idx)
	if p.Get(idx).InUse {
		t.Error("buffer should be free after Free")
	}

	idx2, err := p.Allocate(bufpool.QoSLow, 5)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if p.Get(idx2).Len != 0 {
		t.Error("Allocate must zero length on claim")
	}
}

func TestGetOutOfRange(t *testing.T) {
	p := bufpool.New(1)
	if p.Get(-1) != nil || p.Get(1) != nil {
		t.Error("Get with out-of-range index must return nil")
	}
}

func TestFreeOutOfRangeIsNoop(t *testing.T) {
	p := bufpool.New(1)
	p.Free(-1)
	p.Free(5)
}

func TestReset(t *testing.T) {
	p := bufpool.New(2)
	if _, err := p.Allocate(bufpool.QoSHigh, 10); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	p.Reset()

	for i := range p.Capacity() {
		if p.Get(i).InUse {
			t.Errorf("buffer %d should be free after Reset", i)
		}
	}
}
