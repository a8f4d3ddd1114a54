package sdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPixelFormat_String(t *testing.T) {
	tests := []struct {
		format PixelFormat
		want   string
	}{
		{PixelFormatIYUV, "IYUV"},
		{PixelFormatNV12, "NV12"},
		{PixelFormatRGB24, "RGB24"},
		{PixelFormatRGBA32, "ABGR8888"},
		{PixelFormatYUY2, "YUY2"},
		{PixelFormat(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.String())
		})
	}
}

func TestPixelFormat_BytesPerPixel(t *testing.T) {
	tests := []struct {
		format PixelFormat
		want   int
	}{
		{PixelFormatRGBA32, 4},
		{PixelFormatXRGB8888, 4},
		{PixelFormatRGB24, 3},
		{PixelFormatYUY2, 2},
		{PixelFormatIYUV, 1},
		{PixelFormatMJPG, 0},
		{PixelFormat(99), 0},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.BytesPerPixel())
		})
	}
}

func TestPixelFormat_FrameSize(t *testing.T) {
	assert.Equal(t, 640*4*480, PixelFormatRGBA32.FrameSize(640, 480, 640*4))
	// Y plane plus two 160x120 chroma planes
	assert.Equal(t, 320*240+2*160*120, PixelFormatIYUV.FrameSize(320, 240, 320))
	assert.Equal(t, 640*2*480, PixelFormatYUY2.FrameSize(640, 480, 1280))
	assert.True(t, PixelFormatNV12.Planar())
	assert.False(t, PixelFormatYUY2.Planar())
}

func TestAudioFormat_BytesPerSample(t *testing.T) {
	tests := []struct {
		format AudioFormat
		want   int
	}{
		{AudioFormatU8, 1},
		{AudioFormatS16, 2},
		{AudioFormatS32BE, 4},
		{AudioFormatF32, 4},
		{AudioFormat(99), 0},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.BytesPerSample())
		})
	}
}

func TestAudioFormat_Flags(t *testing.T) {
	assert.True(t, AudioFormatF32LE.IsFloat())
	assert.True(t, AudioFormatF32LE.IsSigned())
	assert.False(t, AudioFormatF32LE.IsBigEndian())
	assert.True(t, AudioFormatS16BE.IsBigEndian())
	assert.False(t, AudioFormatU8.IsSigned())
	assert.Equal(t, 16, AudioFormatS16LE.BitSize())
	assert.False(t, AudioFormatUnknown.Valid())
}

func TestTextureAccess_String(t *testing.T) {
	assert.Equal(t, "Static", TextureAccessStatic.String())
	assert.Equal(t, "Streaming", TextureAccessStreaming.String())
	assert.Equal(t, "Target", TextureAccessTarget.String())
	assert.Equal(t, "Unknown", TextureAccess(7).String())
}
