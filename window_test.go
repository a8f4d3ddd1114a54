package sdl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWindow_NoBackend(t *testing.T) {
	withoutBackend(t)
	_, err := NewWindow("none", 10, 10, 0)
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestNewWindow_InvalidSize(t *testing.T) {
	newTestBackend(t)
	_, err := NewWindow("bad", 0, 10, 0)
	assert.ErrorIs(t, err, ErrType)
}

func TestNewWindow_ConflictingGraphicsAPIs(t *testing.T) {
	newTestBackend(t)
	_, err := NewWindow("gpu", 10, 10, WindowVulkan|WindowMetal)

	var be *BackendError
	require.True(t, errors.As(err, &be), "got %v", err)
	assert.Equal(t, "CreateWindow", be.Op)
}

func TestWindow_Accessors(t *testing.T) {
	newTestBackend(t)
	w, err := NewWindow("title", 320, 240, WindowResizable|WindowHidden)
	require.NoError(t, err)

	assert.Equal(t, "title", w.Title())
	width, height := w.Size()
	assert.Equal(t, 320, width)
	assert.Equal(t, 240, height)
	assert.Equal(t, WindowResizable|WindowHidden, w.Flags())

	require.NoError(t, w.Destroy())
	assert.Equal(t, "", w.Title())
	width, height = w.Size()
	assert.Zero(t, width)
	assert.Zero(t, height)
	assert.Zero(t, w.Flags())
	assert.ErrorIs(t, w.Destroy(), ErrDestroyed)
}

func TestRenderChain_ParentsStayAlive(t *testing.T) {
	newTestBackend(t)
	w, err := NewWindow("chain", 64, 64, 0)
	require.NoError(t, err)
	r, err := NewRenderer(w)
	require.NoError(t, err)
	tex, err := NewTexture(r, 32, 32, PixelFormatRGBA32, TextureAccessStreaming)
	require.NoError(t, err)

	assert.Equal(t, 1, w.Refs())
	assert.Equal(t, 1, r.Refs())
	assert.Same(t, w, r.Window())
	assert.Same(t, r, tex.Renderer())

	assert.ErrorIs(t, w.Destroy(), ErrInUse)
	assert.ErrorIs(t, r.Destroy(), ErrInUse)

	require.NoError(t, tex.Destroy())
	assert.Equal(t, 0, r.Refs())
	assert.Nil(t, tex.Renderer())
	assert.Equal(t, TextureAccessStatic, tex.Access())
	require.NoError(t, r.Destroy())
	assert.Equal(t, 0, w.Refs())
	assert.Nil(t, r.Window())
	require.NoError(t, w.Destroy())
}

func TestRenderChain_DeferredDestroy(t *testing.T) {
	newTestBackend(t)
	w, err := NewWindow("deferred", 64, 64, 0)
	require.NoError(t, err)
	r, err := NewRenderer(w)
	require.NoError(t, err)

	require.NoError(t, w.DestroyWhenUnused())
	assert.False(t, w.Destroyed())

	require.NoError(t, r.Destroy())
	assert.True(t, w.Destroyed(), "last unref runs the deferred destroy")
}

func TestRenderChain_TypeErrors(t *testing.T) {
	newTestBackend(t)

	_, err := NewRenderer(nil)
	assert.ErrorIs(t, err, ErrType)
	_, err = NewTexture(nil, 1, 1, 0, TextureAccessStatic)
	assert.ErrorIs(t, err, ErrType)

	w, err := NewWindow("dead", 8, 8, 0)
	require.NoError(t, err)
	r, err := NewRenderer(w)
	require.NoError(t, err)

	_, err = NewTexture(r, 0, 8, 0, TextureAccessStatic)
	assert.ErrorIs(t, err, ErrType)

	require.NoError(t, r.Destroy())
	_, err = NewTexture(r, 8, 8, 0, TextureAccessStatic)
	assert.ErrorIs(t, err, ErrType, "destroyed renderer")

	require.NoError(t, w.Destroy())
	_, err = NewRenderer(w)
	assert.ErrorIs(t, err, ErrType, "destroyed window")
}

func TestRenderChain_SecondRendererFails(t *testing.T) {
	newTestBackend(t)
	w, err := NewWindow("one", 8, 8, 0)
	require.NoError(t, err)
	r, err := NewRenderer(w)
	require.NoError(t, err)

	_, err = NewRenderer(w)
	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, 1, w.Refs(), "failed renderer must not hold the window")

	require.NoError(t, r.Destroy())
	r2, err := NewRenderer(w)
	require.NoError(t, err)
	require.NoError(t, r2.Destroy())
}

func TestRenderChain_ZeroValuesAfterDestroy(t *testing.T) {
	newTestBackend(t)
	w, err := NewWindow("zero", 8, 8, 0)
	require.NoError(t, err)
	r, err := NewRenderer(w)
	require.NoError(t, err)
	tex, err := NewTexture(r, 8, 8, PixelFormatRGB24, TextureAccessStatic)
	require.NoError(t, err)

	require.NoError(t, tex.Destroy())
	assert.Zero(t, tex.Width())
	assert.Zero(t, tex.Height())
	assert.Equal(t, PixelFormatUnknown, tex.Format())
	assert.False(t, tex.Update(make([]byte, 8*8*3), 8*3))
	assert.False(t, r.Draw(tex))

	require.NoError(t, r.Destroy())
	assert.False(t, r.Clear())
	assert.False(t, r.Present())
	assert.False(t, r.Draw(nil))
}
