package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sidkik/emoji-mirror/pkg/errors"
)

func TestGuardDo(t *testing.T) {
	var g Guard
	assert.False(t, g.Running())

	var innerRan bool
	ran, err := g.Do(func() error {
		assert.True(t, g.Running())

		// A nested trigger is dropped rather than queued.
		innerRan, _ = g.Do(func() error {
			t.Fatal("should not run")
			return nil
		})
		return nil
	})
	assert.True(t, ran)
	assert.NoError(t, err)
	assert.False(t, innerRan)
	assert.False(t, g.Running())
}

func TestGuardReleasesOnError(t *testing.T) {
	var g Guard
	expErr := errors.New("fetch failed")
	ran, err := g.Do(func() error { return expErr })
	assert.True(t, ran)
	assert.Equal(t, expErr, err)
	assert.False(t, g.Running())
}

func TestGuardReleasesOnPanic(t *testing.T) {
	var g Guard
	ran, err := g.Do(func() error { panic("unexpected") })
	assert.True(t, ran)
	assert.EqualError(t, err, "panic: unexpected")
	assert.False(t, g.Running())

	assert.True(t, g.TryAcquire())
	assert.False(t, g.TryAcquire())
	g.Release()
	assert.False(t, g.Running())
}
