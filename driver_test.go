package sdl

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullDriver_Supports(t *testing.T) {
	d := NewNullDriver()
	assert.Equal(t, "null", d.Name())
	assert.True(t, d.Supports(DefaultAudioSpec))
	assert.False(t, d.Supports(AudioSpec{Format: AudioFormatF32, Channels: 2}))
}

func TestNullDriver_ManualStep(t *testing.T) {
	d := &NullDriver{Manual: true}
	spec := AudioSpec{Format: AudioFormatS16, Channels: 1, Freq: 8000}

	var outLen, inLen int
	play, err := d.Start(spec, 80, true, func(out, in []byte) {
		assert.Nil(t, in)
		outLen = len(out)
	})
	require.NoError(t, err)
	rec, err := d.Start(spec, 40, false, func(out, in []byte) {
		assert.Nil(t, out)
		inLen = len(in)
	})
	require.NoError(t, err)

	d.Step()
	assert.Equal(t, 160, outLen)
	assert.Equal(t, 80, inLen)

	require.NoError(t, play.Pause())
	outLen = 0
	d.Step()
	assert.Zero(t, outLen, "paused port skips periods")
	require.NoError(t, play.Resume())
	d.Step()
	assert.Equal(t, 160, outLen)

	require.NoError(t, rec.Close())
	inLen = 0
	d.Step()
	assert.Zero(t, inLen, "closed port is not stepped")
	require.NoError(t, d.Close())
}

func TestNullDriver_Clocked(t *testing.T) {
	d := NewNullDriver()
	defer d.Close()
	spec := AudioSpec{Format: AudioFormatF32, Channels: 1, Freq: 48000}

	var periods atomic.Int32
	port, err := d.Start(spec, 48, true, func(out, in []byte) { // 1 ms
		periods.Add(1)
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return periods.Load() >= 5 }, 2*time.Second, time.Millisecond)

	require.NoError(t, port.Close())
	n := periods.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, periods.Load(), "no periods after Close")
}

func TestEnsureBackend(t *testing.T) {
	prev := newTestBackend(t)
	assert.Same(t, prev, EnsureBackend())

	RegisterBackend(nil)
	b := EnsureBackend()
	require.NotNil(t, b)
	assert.Same(t, b, CurrentBackend())
	if sb, ok := b.(*SoftwareBackend); ok {
		t.Cleanup(func() { _ = sb.Close() })
	}
}
