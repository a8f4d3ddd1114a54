package sdl

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dispatchedStream(t *testing.T, d *Dispatcher, calls *atomic.Int32) (*SoftwareBackend, *AudioStream) {
	t.Helper()
	b := newTestBackend(t)
	dev, err := DefaultPlaybackDevice(nil)
	require.NoError(t, err)
	s, err := NewAudioStream(DefaultAudioSpec, DefaultAudioSpec, AudioStreamOptions{
		Get:        func(*AudioStream, int, int) { calls.Add(1) },
		Dispatcher: d,
	})
	require.NoError(t, err)
	require.NoError(t, dev.BindStream(s))
	t.Cleanup(func() {
		_ = s.Destroy()
		_ = dev.Destroy()
	})
	return b, s
}

func TestDispatcher_Drain(t *testing.T) {
	d := NewDispatcher(0)
	var calls atomic.Int32
	b, _ := dispatchedStream(t, d, &calls)

	stepDriver(t, b, 3)
	assert.Equal(t, 3, d.Pending())
	assert.Zero(t, calls.Load(), "callbacks wait for the dispatcher")

	assert.Equal(t, 3, d.Drain())
	assert.EqualValues(t, 3, calls.Load())
	assert.Zero(t, d.Pending())
	assert.Zero(t, d.Drain())
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	quietLogger(t)
	d := NewDispatcher(4)
	var calls atomic.Int32
	b, _ := dispatchedStream(t, d, &calls)

	stepDriver(t, b, 10)
	assert.Equal(t, 4, d.Pending())
	assert.EqualValues(t, 6, d.Dropped())
}

func TestDispatcher_SkipsDestroyedStream(t *testing.T) {
	d := NewDispatcher(8)
	var calls atomic.Int32
	b, s := dispatchedStream(t, d, &calls)

	stepDriver(t, b, 2)
	require.NoError(t, s.Destroy())

	assert.Equal(t, 2, d.Drain())
	assert.Zero(t, calls.Load())
}

func TestDispatcher_Run(t *testing.T) {
	d := NewDispatcher(8)
	var calls atomic.Int32
	b, _ := dispatchedStream(t, d, &calls)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	stepDriver(t, b, 2)
	require.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
