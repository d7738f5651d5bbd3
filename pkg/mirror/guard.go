package mirror

import (
	"sync/atomic"

	"github.com/sidkik/emoji-mirror/pkg/errors"
)

// Guard allows at most one synchronization pass to run at a time. Passes
// that are requested while another is running are dropped, not queued.
type Guard struct {
	running atomic.Bool
}

// TryAcquire moves the guard from idle to running. It returns false if a
// pass is already running.
func (g *Guard) TryAcquire() bool {
	return g.running.CompareAndSwap(false, true)
}

// Release moves the guard back to idle.
func (g *Guard) Release() {
	g.running.Store(false)
}

// Running returns whether a pass currently holds the guard.
func (g *Guard) Running() bool {
	return g.running.Load()
}

// Do runs fn if no other pass is running. ran is false if fn was skipped.
func (g *Guard) Do(fn func() error) (ran bool, err error) {
	if !g.TryAcquire() {
		return false, nil
	}
	return true, g.Run(fn)
}

// Run runs fn on behalf of a caller that already acquired the guard, and
// releases it once fn returns. The guard is released even if fn panics, in
// which case the panic is returned as an error.
func (g *Guard) Run(fn func() error) (err error) {
	defer g.Release()
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("panic: %v", r)
		}
	}()
	return fn()
}
