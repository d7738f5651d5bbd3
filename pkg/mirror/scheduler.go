package mirror

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultInterval is the time between scheduled passes. Slack allows
// `emoji.list` to be called 20 times a minute, but there's no need to get
// close to that.
const DefaultInterval = 20 * time.Second

// Scheduler triggers a pass on startup, and then on a fixed interval.
// There's no jitter or backoff, and triggers that fire while a pass is
// running are dropped.
type Scheduler struct {
	syncer   *Syncer
	interval time.Duration
	clock    clockwork.Clock

	// mu orders inFlight.Add against Run's final inFlight.Wait.
	mu       sync.Mutex
	stopped  bool
	inFlight sync.WaitGroup
}

// NewScheduler creates a scheduler for syncer. A zero interval uses
// DefaultInterval.
func NewScheduler(syncer *Syncer, interval time.Duration, clock clockwork.Clock) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{syncer: syncer, interval: interval, clock: clock}
}

// Run triggers passes until ctx is cancelled. It then waits for the running
// pass, if any, before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.syncer.log.WithField("interval", s.interval).Info("Starting emoji sync loop")
	s.Trigger(ctx)
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.stopped = true
			s.mu.Unlock()
			s.inFlight.Wait()
			return nil
		case <-ticker.Chan():
			s.Trigger(ctx)
		}
	}
}

// Trigger starts a pass in the background. It returns false if the trigger
// was dropped because a pass is already running, or because ctx is done or
// Run is shutting down.
func (s *Scheduler) Trigger(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || ctx.Err() != nil {
		s.syncer.log.Debug("Shutting down. Skipping this trigger.")
		return false
	}
	if !s.syncer.guard.TryAcquire() {
		s.syncer.metrics.droppedTriggers.Inc()
		s.syncer.log.Debug("Previous pass still running. Skipping this trigger.")
		return false
	}

	s.inFlight.Add(1)
	go func() {
		defer s.inFlight.Done()
		// Errors are logged by the syncer.
		_, _ = s.syncer.runAcquired(ctx)
	}()
	return true
}
