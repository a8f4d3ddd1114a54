package sdl

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestBackend registers a software backend whose devices only advance
// on NullDriver.Step, and restores the previous backend afterwards.
func newTestBackend(t *testing.T, configure ...func(*SoftwareConfig)) *SoftwareBackend {
	t.Helper()
	config := DefaultSoftwareConfig()
	config.Driver = &NullDriver{Manual: true}
	for _, fn := range configure {
		fn(&config)
	}
	b := NewSoftwareBackend(config)
	prev := CurrentBackend()
	RegisterBackend(b)
	t.Cleanup(func() {
		RegisterBackend(prev)
		_ = b.Close()
	})
	return b
}

// withoutBackend unregisters the backend for the duration of the test.
func withoutBackend(t *testing.T) {
	t.Helper()
	prev := CurrentBackend()
	RegisterBackend(nil)
	t.Cleanup(func() { RegisterBackend(prev) })
}

func stepDriver(t *testing.T, b *SoftwareBackend, n int) {
	t.Helper()
	drv, ok := b.Driver().(*NullDriver)
	require.True(t, ok, "driver is %T", b.Driver())
	for i := 0; i < n; i++ {
		drv.Step()
	}
}

func TestSoftwareBackend_Defaults(t *testing.T) {
	b := NewSoftwareBackend(SoftwareConfig{})
	defer b.Close()

	assert.Equal(t, "software/null", b.Name())
	assert.Empty(t, b.AudioPlaybackDevices())
	assert.Empty(t, b.AudioRecordingDevices())
	cams, err := b.Cameras()
	require.NoError(t, err)
	assert.Empty(t, cams)
}

func TestSoftwareBackend_DeviceIDs(t *testing.T) {
	b := newTestBackend(t, func(c *SoftwareConfig) {
		c.PlaybackDevices = []string{"Speakers", "Headphones"}
		c.RecordingDevices = []string{"Microphone"}
	})

	assert.Equal(t, []AudioDeviceID{1, 2}, b.AudioPlaybackDevices())
	assert.Equal(t, []AudioDeviceID{3}, b.AudioRecordingDevices())
	assert.Equal(t, "Headphones", b.AudioDeviceName(2))
	assert.Equal(t, "Speakers", b.AudioDeviceName(AudioDeviceDefaultPlayback))
	assert.Equal(t, "Microphone", b.AudioDeviceName(AudioDeviceDefaultRecording))
	assert.True(t, b.IsAudioDevicePhysical(3))
	assert.False(t, b.IsAudioDevicePlayback(3))
	assert.Equal(t, "", b.AudioDeviceName(99))
}

func TestSoftwareBackend_PresentTexture(t *testing.T) {
	b := newTestBackend(t)

	w, err := NewWindow("present", 4, 4, 0)
	require.NoError(t, err)
	r, err := NewRenderer(w)
	require.NoError(t, err)
	tex, err := NewTexture(r, 4, 4, PixelFormatRGB24, TextureAccessStreaming)
	require.NoError(t, err)

	pixels := make([]byte, 4*4*3)
	for i := 0; i < len(pixels); i += 3 {
		pixels[i] = 255 // red
	}
	require.True(t, tex.Update(pixels, 4*3))
	require.True(t, r.Clear())
	require.True(t, r.Draw(tex))
	require.True(t, r.Present())

	img := b.WindowImage(w.Handle())
	require.NotNil(t, img)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(2, 2))

	require.NoError(t, tex.Destroy())
	require.NoError(t, r.Destroy())
	require.NoError(t, w.Destroy())
}

func TestSoftwareBackend_ScaledTexture(t *testing.T) {
	b := newTestBackend(t)

	w, err := NewWindow("scaled", 8, 8, WindowResizable)
	require.NoError(t, err)
	r, err := NewRenderer(w)
	require.NoError(t, err)
	tex, err := NewTexture(r, 2, 2, PixelFormatRGBA32, TextureAccessStatic)
	require.NoError(t, err)

	pixels := make([]byte, 2*2*4)
	for i := 0; i < len(pixels); i += 4 {
		pixels[i+1], pixels[i+3] = 255, 255 // opaque green
	}
	require.True(t, tex.Update(pixels, 8))
	require.True(t, r.Clear())
	require.True(t, r.Draw(tex))
	require.True(t, r.Present())

	img := b.WindowImage(w.Handle())
	assert.Equal(t, color.RGBA{G: 255, A: 255}, img.RGBAAt(7, 7))
}

func TestSoftwareBackend_TextureErrors(t *testing.T) {
	newTestBackend(t)

	w, err := NewWindow("tex", 16, 16, 0)
	require.NoError(t, err)
	r, err := NewRenderer(w)
	require.NoError(t, err)

	_, err = NewTexture(r, 16, 16, PixelFormatMJPG, TextureAccessStreaming)
	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "CreateTexture", be.Op)
	assert.Contains(t, be.Msg, "unsupported texture format")
	// The failed texture must not keep the renderer referenced.
	assert.Equal(t, 0, r.Refs())

	tex, err := NewTexture(r, 16, 16, 0, TextureAccessStreaming)
	require.NoError(t, err)
	assert.Equal(t, PixelFormatRGBA32, tex.Format())
	assert.False(t, tex.Update(make([]byte, 10), 64), "short buffer")
}

func TestSoftwareBackend_EventQueueDepth(t *testing.T) {
	b := newTestBackend(t, func(c *SoftwareConfig) { c.EventQueueDepth = 2 })

	assert.True(t, b.PushQuit())
	assert.True(t, b.PushKey(ScancodeA, true))
	assert.False(t, b.PushQuit())
	assert.Equal(t, "event queue full", b.LastError())
}
