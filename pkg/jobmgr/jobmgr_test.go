package jobmgr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartRunsAndRemoves(t *testing.T) {
	m := NewManager(zerolog.Nop())
	done := make(chan struct{})
	release := make(chan struct{})

	require.NoError(t, m.Start("sync", func(ctx context.Context) error {
		<-release
		close(done)
		return nil
	}))
	assert.True(t, m.Running("sync"))
	assert.Equal(t, "Running jobs: sync", m.Status())

	err := m.Start("sync", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrJobExists)

	close(release)
	<-done
	assert.Eventually(t, func() bool { return !m.Running("sync") }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "No jobs are running.", m.Status())
}

func TestAfterDelays(t *testing.T) {
	m := NewManager(zerolog.Nop())
	ran := make(chan time.Time, 1)
	start := time.Now()

	require.NoError(t, m.After("later", 20*time.Millisecond, func(context.Context) error {
		ran <- time.Now()
		return errors.New("logged, not returned")
	}))

	select {
	case at := <-ran:
		assert.GreaterOrEqual(t, at.Sub(start), 20*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestStopBeforeDelay(t *testing.T) {
	m := NewManager(zerolog.Nop())
	ran := make(chan struct{}, 1)

	require.NoError(t, m.After("b", time.Hour, func(context.Context) error {
		ran <- struct{}{}
		return nil
	}))
	require.NoError(t, m.After("a", time.Hour, func(context.Context) error { return nil }))
	assert.Equal(t, []string{"a", "b"}, m.List())

	require.NoError(t, m.Stop("b"))
	assert.ErrorIs(t, m.Stop("b"), ErrJobNotRunning)
	assert.Equal(t, []string{"a"}, m.List())

	m.StopAll()
	assert.Empty(t, m.List())

	select {
	case <-ran:
		t.Fatal("stopped job ran")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestStopCancelsRunningJob(t *testing.T) {
	m := NewManager(zerolog.Nop())
	started := make(chan struct{})
	stopped := make(chan error, 1)

	require.NoError(t, m.Start("loop", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		stopped <- ctx.Err()
		return nil
	}))
	<-started
	require.NoError(t, m.Stop("loop"))

	select {
	case err := <-stopped:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("job was not cancelled")
	}
}
