// Pixel and sample format types shared by textures, cameras and audio.
package sdl

// PixelFormat is a backend pixel format code (SDL_PixelFormat values).
type PixelFormat uint32

const (
	PixelFormatUnknown  PixelFormat = 0
	PixelFormatRGB24    PixelFormat = 0x17101803 // Packed RGB, 3 bytes per pixel
	PixelFormatBGR24    PixelFormat = 0x17401803 // Packed BGR, 3 bytes per pixel
	PixelFormatXRGB8888 PixelFormat = 0x16161804
	PixelFormatARGB8888 PixelFormat = 0x16362004
	PixelFormatRGBA8888 PixelFormat = 0x16462004
	PixelFormatABGR8888 PixelFormat = 0x16762004
	PixelFormatBGRA8888 PixelFormat = 0x16862004
	PixelFormatYV12     PixelFormat = 0x32315659 // Planar Y + V + U
	PixelFormatIYUV     PixelFormat = 0x56555949 // Planar Y + U + V (I420)
	PixelFormatYUY2     PixelFormat = 0x32595559 // Packed Y0 U0 Y1 V0
	PixelFormatNV12     PixelFormat = 0x3231564e // Y + interleaved UV
	PixelFormatMJPG     PixelFormat = 0x47504a4d // Motion JPEG, camera only
)

// PixelFormatRGBA32 is the byte-order RGBA layout on little-endian hosts.
const PixelFormatRGBA32 = PixelFormatABGR8888

func (p PixelFormat) String() string {
	switch p {
	case PixelFormatRGB24:
		return "RGB24"
	case PixelFormatBGR24:
		return "BGR24"
	case PixelFormatXRGB8888:
		return "XRGB8888"
	case PixelFormatARGB8888:
		return "ARGB8888"
	case PixelFormatRGBA8888:
		return "RGBA8888"
	case PixelFormatABGR8888:
		return "ABGR8888"
	case PixelFormatBGRA8888:
		return "BGRA8888"
	case PixelFormatYV12:
		return "YV12"
	case PixelFormatIYUV:
		return "IYUV"
	case PixelFormatYUY2:
		return "YUY2"
	case PixelFormatNV12:
		return "NV12"
	case PixelFormatMJPG:
		return "MJPG"
	default:
		return "Unknown"
	}
}

// BytesPerPixel returns the size of one pixel for packed formats, and the
// size of the luma sample for planar YUV formats. Unknown and compressed
// formats return 0.
func (p PixelFormat) BytesPerPixel() int {
	switch p {
	case PixelFormatRGB24, PixelFormatBGR24:
		return 3
	case PixelFormatXRGB8888, PixelFormatARGB8888, PixelFormatRGBA8888,
		PixelFormatABGR8888, PixelFormatBGRA8888:
		return 4
	case PixelFormatYUY2:
		return 2
	case PixelFormatYV12, PixelFormatIYUV, PixelFormatNV12:
		return 1
	default:
		return 0
	}
}

// Planar reports whether the format stores luma and chroma in separate
// planes.
func (p PixelFormat) Planar() bool {
	switch p {
	case PixelFormatYV12, PixelFormatIYUV, PixelFormatNV12:
		return true
	default:
		return false
	}
}

// FrameSize returns the bytes needed for a width x height image with the
// given row pitch of the first plane.
func (p PixelFormat) FrameSize(width, height, pitch int) int {
	if p.Planar() {
		// Y plane plus two quarter-size chroma planes
		return pitch*height + 2*((pitch+1)/2)*((height+1)/2)
	}
	return pitch * height
}

// TextureAccess selects how a texture is updated.
type TextureAccess int32

const (
	TextureAccessStatic    TextureAccess = 0 // Changes rarely, not lockable
	TextureAccessStreaming TextureAccess = 1 // Changes frequently
	TextureAccessTarget    TextureAccess = 2 // Can be used as a render target
)

func (a TextureAccess) String() string {
	switch a {
	case TextureAccessStatic:
		return "Static"
	case TextureAccessStreaming:
		return "Streaming"
	case TextureAccessTarget:
		return "Target"
	default:
		return "Unknown"
	}
}

// AudioFormat is a backend sample format code (SDL_AudioFormat values).
// The low byte is the bit size; bit 15 marks signed, bit 12 big-endian,
// bit 8 float.
type AudioFormat uint32

const (
	AudioFormatUnknown AudioFormat = 0
	AudioFormatU8      AudioFormat = 0x0008
	AudioFormatS8      AudioFormat = 0x8008
	AudioFormatS16LE   AudioFormat = 0x8010
	AudioFormatS16BE   AudioFormat = 0x9010
	AudioFormatS32LE   AudioFormat = 0x8020
	AudioFormatS32BE   AudioFormat = 0x9020
	AudioFormatF32LE   AudioFormat = 0x8120
	AudioFormatF32BE   AudioFormat = 0x9120

	// Native-endian aliases (little-endian hosts).
	AudioFormatS16 = AudioFormatS16LE
	AudioFormatS32 = AudioFormatS32LE
	AudioFormatF32 = AudioFormatF32LE
)

const (
	audioMaskBitSize   = 0xFF
	audioMaskFloat     = 1 << 8
	audioMaskBigEndian = 1 << 12
	audioMaskSigned    = 1 << 15
)

func (a AudioFormat) String() string {
	switch a {
	case AudioFormatU8:
		return "U8"
	case AudioFormatS8:
		return "S8"
	case AudioFormatS16LE:
		return "S16LE"
	case AudioFormatS16BE:
		return "S16BE"
	case AudioFormatS32LE:
		return "S32LE"
	case AudioFormatS32BE:
		return "S32BE"
	case AudioFormatF32LE:
		return "F32LE"
	case AudioFormatF32BE:
		return "F32BE"
	default:
		return "Unknown"
	}
}

// Valid reports whether the format is one of the defined sample formats.
func (a AudioFormat) Valid() bool {
	return a.String() != "Unknown"
}

// BitSize returns the number of bits per sample.
func (a AudioFormat) BitSize() int { return int(a & audioMaskBitSize) }

// BytesPerSample returns the number of bytes per sample for this format.
func (a AudioFormat) BytesPerSample() int {
	if !a.Valid() {
		return 0
	}
	return a.BitSize() / 8
}

// IsFloat reports whether samples are IEEE floats.
func (a AudioFormat) IsFloat() bool { return a&audioMaskFloat != 0 }

// IsBigEndian reports whether multi-byte samples are big-endian.
func (a AudioFormat) IsBigEndian() bool { return a&audioMaskBigEndian != 0 }

// IsSigned reports whether integer samples are signed.
func (a AudioFormat) IsSigned() bool { return a&audioMaskSigned != 0 }
