package platform

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// Guard is the critical-section primitive spec.md Section 5 requires:
// "a guard object whose scoped acquisition corresponds 1-to-1 with the
// reference's enter/exit pairs, and which guarantees release on every exit
// path" (Design Note "Critical section as ambient authority").
//
// Enter returns a release function; callers always invoke it via defer:
//
//	release := guard.Enter()
//	defer release()
type Guard interface {
	Enter() (release func())
}

// MutexGuard is a reentrant Guard backed by a counting mutex, suitable for
// a hosted (non-bare-metal) build where "disable interrupts" has no
// meaning but concurrent goroutines still need the same mutual exclusion
// the reference gets from disabling IRQs. Reentrant: a goroutine that
// already holds the guard may Enter again without deadlocking, per spec.md
// Section 5 ("The critical section is assumed reentrant; a counting
// implementation is acceptable") — Enter tracks the owning goroutine and a
// hold depth, so a nested Enter on the same goroutine only increments the
// depth, and the underlying lock is released only when depth returns to
// zero.
type MutexGuard struct {
	mu    sync.Mutex
	cond  *sync.Cond
	owner int64 // 0 means unheld; goroutine IDs are always >0
	depth int
}

// NewMutexGuard constructs a ready-to-use reentrant Guard.
func NewMutexGuard() *MutexGuard {
	g := &MutexGuard{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Enter acquires the critical section and returns a function that releases
// it exactly once. A goroutine that already holds the guard may call Enter
// again (e.g. a public rtnet.Context method calling another that also
// enters the guard) without deadlocking; the matching release only
// unblocks other goroutines once every nested Enter on the owning
// goroutine has been released.
func (g *MutexGuard) Enter() func() {
	gid := goroutineID()

	g.mu.Lock()
	for g.owner != 0 && g.owner != gid {
		g.cond.Wait()
	}
	g.owner = gid
	g.depth++
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			g.depth--
			if g.depth == 0 {
				g.owner = 0
				g.cond.Signal()
			}
			g.mu.Unlock()
		})
	}
}

// goroutineID extracts the calling goroutine's numeric ID from its stack
// trace header ("goroutine 123 [running]: ..."), the standard
// runtime-introspection trick for a goroutine-aware reentrant lock: the
// standard library exposes no supported way to read it directly.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
