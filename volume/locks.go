package volume

import (
	"sync"
	"sync/atomic"
)

// brickGuard serializes read-modify-write cycles on one brick and counts
// committed writes so the read path can tell that a buffer it fetched
// predates the latest write.
type brickGuard struct {
	sync.Mutex

	// gen increments under the guard lock each time a write commits to
	// the backend.
	gen atomic.Uint64
}

// brickLocks is an arena of per-brick guards created on demand and scoped
// to one Volume instance; guards are never reclaimed, so memory is bounded
// by the number of distinct bricks touched through this instance.
type brickLocks struct {
	mu     sync.Mutex
	guards map[int64]*brickGuard
}

func newBrickLocks() *brickLocks {
	return &brickLocks{guards: make(map[int64]*brickGuard)}
}

// guard returns the guard for a brick index, creating it if needed,
// without locking it.
func (bl *brickLocks) guard(index int64) *brickGuard {
	bl.mu.Lock()
	g, found := bl.guards[index]
	if !found {
		g = new(brickGuard)
		bl.guards[index] = g
	}
	bl.mu.Unlock()
	return g
}

// acquire locks the guard for a brick index.  The caller must Unlock the
// returned guard when its update cycle completes.
func (bl *brickLocks) acquire(index int64) *brickGuard {
	g := bl.guard(index)
	g.Lock()
	return g
}
