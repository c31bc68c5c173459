package platform_test

import (
	"sync"
	"testing"
	"time"

	"github.com/seregonwar/rtnetstack/internal/platform"
)

func TestMutexGuardExclusion(t *testing.T) {
	g := platform.NewMutexGuard()

	counter := 0
	var wg sync.WaitGroup
	const goroutines = 50
	const incrementsEach = 200

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < incrementsEach; j++ {
				release := g.Enter()
				counter++
				release()
			}
		}()
	}
	wg.Wait()

	if counter != goroutines*incrementsEach {
		t.Errorf("counter = %d, want %d", counter, goroutines*incrementsEach)
	}
}

func TestMutexGuardReentrantEnterDoesNotDeadlock(t *testing.T) {
	g := platform.NewMutexGuard()

	release1 := g.Enter()
	release2 := g.Enter()

	unblocked := make(chan struct{})
	go func() {
		release3 := g.Enter()
		release3()
		close(unblocked)
	}()

	select {
	case <-unblocked:
		t.Fatal("concurrent Enter succeeded while the guard was still held")
	case <-time.After(20 * time.Millisecond):
	}

	release2()
	release1()
	<-unblocked
}

func TestMutexGuardReleaseUnblocksNextEnter(t *testing.T) {
	g := platform.NewMutexGuard()

	release := g.Enter()
	done := make(chan struct{})
	go func() {
		release2 := g.Enter()
		release2()
		close(done)
	}()

	release()
	<-done
}
