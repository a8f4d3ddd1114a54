//go:build (darwin || linux) && !nosdl3

package sdl

import (
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSDL3Backend(t *testing.T) *SDL3Backend {
	t.Helper()
	if !SDL3Available() {
		t.Skip("libSDL3 not available")
	}
	b, err := NewSDL3Backend()
	require.NoError(t, err)
	t.Cleanup(b.Close)
	return b
}

func TestSDL3_StructLayouts(t *testing.T) {
	assert.EqualValues(t, 12, unsafe.Sizeof(sdlAudioSpec{}))
	assert.EqualValues(t, 24, unsafe.Sizeof(sdlCameraSpec{}))
	assert.EqualValues(t, 24, unsafe.Offsetof(sdlSurface{}.pixels))
}

func TestSDL3_SpecConversion(t *testing.T) {
	spec := AudioSpec{Format: AudioFormatS16BE, Channels: 6, Freq: 96000}
	assert.Equal(t, spec, fromSDLAudioSpec(toSDLAudioSpec(spec)))

	cam := CameraSpec{Format: PixelFormatNV12, Colorspace: 3, Width: 1280, Height: 720, FPSNumerator: 60, FPSDenominator: 1}
	assert.Equal(t, cam, fromSDLCameraSpec(toSDLCameraSpec(cam)))
}

func TestSDL3_AudioStreamRoundTrip(t *testing.T) {
	b := newSDL3Backend(t)
	prev := CurrentBackend()
	RegisterBackend(b)
	t.Cleanup(func() { RegisterBackend(prev) })

	spec := AudioSpec{Format: AudioFormatF32, Channels: 2, Freq: 44100}
	s, err := NewAudioStream(spec, spec, AudioStreamOptions{})
	require.NoError(t, err)
	defer s.Destroy()

	in := sineFloats(1024 * 2)
	require.True(t, s.PutFloat32(in))
	out := make([]float32, len(in))
	require.Equal(t, len(in), s.GetFloat32(out))
	for i := range in {
		require.InDelta(t, in[i], out[i], 1e-4)
	}
}

func TestSDL3_StreamCallbacksStopAtDestroy(t *testing.T) {
	b := newSDL3Backend(t)

	var calls atomic.Int32
	spec := AudioSpec{Format: AudioFormatS16, Channels: 1, Freq: 48000}
	h, err := b.CreateAudioStream(spec, spec, StreamCallbacks{
		Put: func(additional, total int) {
			calls.Add(1)
			assert.Positive(t, additional)
		},
	})
	require.NoError(t, err)

	require.True(t, b.PutAudioStreamData(h, make([]byte, 256)))
	assert.EqualValues(t, 1, calls.Load())

	b.DestroyAudioStream(h)
	streamCallbacksMu.RLock()
	defer streamCallbacksMu.RUnlock()
	assert.NotContains(t, streamTokens, h)
	assert.Empty(t, streamCallbacks)
}
