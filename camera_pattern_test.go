package sdl

import (
	"testing"
)

func TestPatternRenderer_AllPatterns(t *testing.T) {
	patterns := []PatternType{
		PatternColorBars,
		PatternGradient,
		PatternCheckerboard,
		PatternSolidColor,
		PatternNoise,
		PatternMovingBox,
	}
	formats := []PixelFormat{
		PixelFormatRGBA32, PixelFormatXRGB8888, PixelFormatRGB24, PixelFormatBGR24,
		PixelFormatYUY2, PixelFormatIYUV, PixelFormatNV12,
	}

	const w, h = 64, 48
	for _, pattern := range patterns {
		for _, format := range formats {
			t.Run(pattern.String()+"/"+format.String(), func(t *testing.T) {
				r := newPatternRenderer(PatternConfig{Pattern: pattern, SolidR: 10, SolidG: 200, SolidB: 30}, 1)
				pitch := patternPitch(format, w)
				dst := make([]byte, format.FrameSize(w, h, pitch))
				r.render(dst, format, w, h, pitch, 3)

				nonZero := false
				for _, b := range dst {
					if b != 0 {
						nonZero = true
						break
					}
				}
				if !nonZero {
					t.Error("frame is all zeros")
				}
			})
		}
	}
}

func TestPatternRenderer_ColorBars(t *testing.T) {
	r := newPatternRenderer(PatternConfig{Pattern: PatternColorBars}, 1)
	const w, h = 80, 2
	dst := make([]byte, w*h*3)
	r.render(dst, PixelFormatRGB24, w, h, w*3, 0)

	for bar, want := range colorBarsRGB {
		x := bar*10 + 5
		got := [3]uint8{dst[x*3], dst[x*3+1], dst[x*3+2]}
		if got != want {
			t.Errorf("bar %d = %v, want %v", bar, got, want)
		}
	}
}

func TestPatternRenderer_MovingBoxAnimates(t *testing.T) {
	r := newPatternRenderer(PatternConfig{Pattern: PatternMovingBox}, 1)
	const w, h = 64, 64
	a := make([]byte, w*h*4)
	b := make([]byte, w*h*4)
	r.render(a, PixelFormatRGBA32, w, h, w*4, 0)
	r.render(b, PixelFormatRGBA32, w, h, w*4, 30)

	if string(a) == string(b) {
		t.Error("frames 0 and 30 are identical")
	}
}

func TestPatternSupported(t *testing.T) {
	if !patternSupported(PixelFormatNV12) {
		t.Error("NV12 should be supported")
	}
	if patternSupported(PixelFormatMJPG) {
		t.Error("MJPG should not be supported")
	}
}

func TestRGBToYUV(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		name    string
	}{
		{255, 255, 255, "white"},
		{0, 0, 0, "black"},
		{255, 0, 0, "red"},
		{0, 255, 0, "green"},
		{0, 0, 255, "blue"},
		{128, 128, 128, "gray"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y, u, v := rgbToYUV(tt.r, tt.g, tt.b)

			if y < 16 || y > 235 {
				t.Errorf("Y value %d out of range [16, 235]", y)
			}
			if u < 16 || u > 240 {
				t.Errorf("U value %d out of range [16, 240]", u)
			}
			if v < 16 || v > 240 {
				t.Errorf("V value %d out of range [16, 240]", v)
			}
		})
	}
}

func TestPatternType_String(t *testing.T) {
	if got := PatternMovingBox.String(); got != "MovingBox" {
		t.Errorf("PatternMovingBox.String() = %q", got)
	}
	if got := PatternType(42).String(); got != "Unknown" {
		t.Errorf("PatternType(42).String() = %q", got)
	}
}
