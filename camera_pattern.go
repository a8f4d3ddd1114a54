package sdl

import (
	"math"
)

// PatternType selects the synthetic image a software camera produces.
type PatternType int

const (
	PatternColorBars    PatternType = iota // SMPTE color bars
	PatternGradient                        // Horizontal gradient
	PatternCheckerboard                    // Checkerboard pattern
	PatternSolidColor                      // Solid color
	PatternNoise                           // Random noise
	PatternMovingBox                       // Moving box (animated)
)

func (p PatternType) String() string {
	switch p {
	case PatternColorBars:
		return "ColorBars"
	case PatternGradient:
		return "Gradient"
	case PatternCheckerboard:
		return "Checkerboard"
	case PatternSolidColor:
		return "SolidColor"
	case PatternNoise:
		return "Noise"
	case PatternMovingBox:
		return "MovingBox"
	default:
		return "Unknown"
	}
}

// PatternConfig configures the image of a software camera.
type PatternConfig struct {
	Pattern PatternType

	// For SolidColor pattern
	SolidR, SolidG, SolidB uint8

	// For Checkerboard pattern
	CheckerSize int // Size of each checker square (default: 32)
}

// patternSupported reports whether renderPattern can produce f.
func patternSupported(f PixelFormat) bool {
	switch f {
	case PixelFormatRGBA32, PixelFormatARGB8888, PixelFormatXRGB8888,
		PixelFormatRGB24, PixelFormatBGR24,
		PixelFormatYUY2, PixelFormatIYUV, PixelFormatNV12:
		return true
	}
	return false
}

// patternPitch returns the row length in bytes of the first plane.
func patternPitch(f PixelFormat, width int) int {
	return width * f.BytesPerPixel()
}

// patternRenderer draws frames of a PatternConfig. It keeps the noise
// generator state between frames.
type patternRenderer struct {
	config   PatternConfig
	rngState uint64
}

func newPatternRenderer(config PatternConfig, seed uint64) *patternRenderer {
	if config.CheckerSize <= 0 {
		config.CheckerSize = 32
	}
	return &patternRenderer{config: config, rngState: seed | 1}
}

// SMPTE color bars (simplified 8-bar pattern)
var colorBarsRGB = [][3]uint8{
	{192, 192, 192}, // White (75%)
	{192, 192, 0},   // Yellow
	{0, 192, 192},   // Cyan
	{0, 192, 0},     // Green
	{192, 0, 192},   // Magenta
	{192, 0, 0},     // Red
	{0, 0, 192},     // Blue
	{16, 16, 16},    // Black
}

// rgbAt returns the pattern color of pixel x, y in frame frameNum.
func (p *patternRenderer) rgbAt(x, y, w, h int, frameNum uint64) (r, g, b uint8) {
	switch p.config.Pattern {
	case PatternGradient:
		v := uint8((x * 255) / w)
		return v, v, v
	case PatternCheckerboard:
		size := p.config.CheckerSize
		if ((x/size)+(y/size))%2 == 0 {
			return 235, 235, 235
		}
		return 16, 16, 16
	case PatternSolidColor:
		return p.config.SolidR, p.config.SolidG, p.config.SolidB
	case PatternNoise:
		// xorshift64
		p.rngState ^= p.rngState << 13
		p.rngState ^= p.rngState >> 7
		p.rngState ^= p.rngState << 17
		v := uint8(p.rngState)
		return v, v, v
	case PatternMovingBox:
		boxSize := max(min(w, h)/5, 1)
		radius := float64(min(w, h)) / 4
		angle := float64(frameNum) * 0.05 // Radians per frame
		boxX := w/2 + int(radius*math.Cos(angle)) - boxSize/2
		boxY := h/2 + int(radius*math.Sin(angle)) - boxSize/2
		if x >= boxX && x < boxX+boxSize && y >= boxY && y < boxY+boxSize {
			return 235, 235, 235
		}
		return 16, 16, 16
	default:
		barIdx := x / max(w/8, 1)
		if barIdx >= 8 {
			barIdx = 7
		}
		c := colorBarsRGB[barIdx]
		return c[0], c[1], c[2]
	}
}

// render draws frame frameNum into dst, which must hold
// format.FrameSize(width, height, pitch) bytes.
func (p *patternRenderer) render(dst []byte, format PixelFormat, width, height, pitch int, frameNum uint64) {
	switch format {
	case PixelFormatYUY2:
		for y := 0; y < height; y++ {
			row := dst[y*pitch:]
			for x := 0; x+1 < width; x += 2 {
				r0, g0, b0 := p.rgbAt(x, y, width, height, frameNum)
				r1, g1, b1 := p.rgbAt(x+1, y, width, height, frameNum)
				y0, u, v := rgbToYUV(r0, g0, b0)
				y1, _, _ := rgbToYUV(r1, g1, b1)
				row[x*2], row[x*2+1], row[x*2+2], row[x*2+3] = y0, u, y1, v
			}
		}
	case PixelFormatIYUV, PixelFormatNV12:
		ySize := pitch * height
		cw := (pitch + 1) / 2
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r, g, b := p.rgbAt(x, y, width, height, frameNum)
				yv, u, v := rgbToYUV(r, g, b)
				dst[y*pitch+x] = yv
				if x%2 != 0 || y%2 != 0 {
					continue
				}
				if format == PixelFormatIYUV {
					ch := (height + 1) / 2
					idx := (y/2)*cw + x/2
					dst[ySize+idx] = u
					dst[ySize+cw*ch+idx] = v
				} else {
					idx := ySize + (y/2)*pitch + x
					dst[idx], dst[idx+1] = u, v
				}
			}
		}
	default:
		bpp := format.BytesPerPixel()
		for y := 0; y < height; y++ {
			row := dst[y*pitch:]
			for x := 0; x < width; x++ {
				r, g, b := p.rgbAt(x, y, width, height, frameNum)
				px := row[x*bpp : x*bpp+bpp]
				switch format {
				case PixelFormatRGBA32:
					px[0], px[1], px[2], px[3] = r, g, b, 255
				case PixelFormatARGB8888, PixelFormatXRGB8888:
					px[0], px[1], px[2], px[3] = b, g, r, 255
				case PixelFormatRGB24:
					px[0], px[1], px[2] = r, g, b
				case PixelFormatBGR24:
					px[0], px[1], px[2] = b, g, r
				}
			}
		}
	}
}

// rgbToYUV converts RGB to YUV (BT.601)
func rgbToYUV(r, g, b uint8) (y, u, v uint8) {
	yf := 16.0 + 65.481*float64(r)/255.0 + 128.553*float64(g)/255.0 + 24.966*float64(b)/255.0
	uf := 128.0 - 37.797*float64(r)/255.0 - 74.203*float64(g)/255.0 + 112.0*float64(b)/255.0
	vf := 128.0 + 112.0*float64(r)/255.0 - 93.786*float64(g)/255.0 - 18.214*float64(b)/255.0

	y = uint8(clampFloat(yf, 16, 235))
	u = uint8(clampFloat(uf, 16, 240))
	v = uint8(clampFloat(vf, 16, 240))
	return
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
