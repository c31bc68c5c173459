package platform_test

import (
	"testing"
	"time"

	"github.com/seregonwar/rtnetstack/internal/platform"
)

func TestSystemClockMonotonicallyIncreases(t *testing.T) {
	c := platform.NewSystemClock()

	first := c.NowMillis()
	time.Sleep(5 * time.Millisecond)
	second := c.NowMillis()

	if second < first {
		t.Errorf("clock went backwards: first=%d second=%d", first, second)
	}
}

func TestSystemClockStartsNearZero(t *testing.T) {
	c := platform.NewSystemClock()

	if got := c.NowMillis(); got > 1000 {
		t.Errorf("NowMillis() = %d immediately after construction, want near 0", got)
	}
}
