package mirror

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/sidkik/emoji-mirror/pkg/emoji"
)

func TestSchedulerTriggersImmediatelyAndOnInterval(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.slack.index = emoji.EmptyRawIndex()

	clock := clockwork.NewFakeClock()
	scheduler := NewScheduler(env.syncer, 20*time.Second, clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- scheduler.Run(ctx)
	}()

	waitForCalls := func(exp int) {
		assert.Eventually(t, func() bool {
			return env.slack.indexCallCount() == exp && !env.syncer.Running()
		}, time.Second, time.Millisecond)
	}

	waitForCalls(1)

	clock.BlockUntil(1)
	clock.Advance(19 * time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, env.slack.indexCallCount())

	clock.Advance(time.Second)
	waitForCalls(2)

	clock.Advance(20 * time.Second)
	waitForCalls(3)

	cancel()
	assert.NoError(t, <-done)
}

func TestSchedulerDropsTriggersWhileRunning(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.slack.index = emoji.EmptyRawIndex()
	env.slack.entered = make(chan struct{})
	env.slack.release = make(chan struct{})

	clock := clockwork.NewFakeClock()
	scheduler := NewScheduler(env.syncer, time.Second, clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- scheduler.Run(ctx)
	}()

	// The first pass blocks inside FetchIndex.
	<-env.slack.entered

	clock.BlockUntil(1)
	clock.Advance(time.Second)
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(env.metrics.droppedTriggers) == 1
	}, time.Second, time.Millisecond)
	assert.False(t, scheduler.Trigger(ctx))
	assert.Equal(t, float64(2), testutil.ToFloat64(env.metrics.droppedTriggers))

	// Cancelling waits for the running pass.
	cancel()
	select {
	case <-done:
		t.Fatal("Run returned while a pass was still running")
	case <-time.After(10 * time.Millisecond):
	}

	close(env.slack.release)
	assert.NoError(t, <-done)
	assert.Equal(t, 1, env.slack.indexCallCount())
	assert.False(t, env.syncer.Running())
}

func TestSchedulerRefusesTriggersAfterShutdown(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.slack.index = emoji.EmptyRawIndex()

	scheduler := NewScheduler(env.syncer, time.Second, clockwork.NewFakeClock())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, scheduler.Trigger(ctx))

	// A cancelled Run refuses triggers made with any context.
	assert.NoError(t, scheduler.Run(ctx))
	assert.False(t, scheduler.Trigger(context.Background()))

	assert.Equal(t, 0, env.slack.indexCallCount())
	assert.False(t, env.syncer.Running())
	assert.Equal(t, float64(0), testutil.ToFloat64(env.metrics.droppedTriggers))
}
