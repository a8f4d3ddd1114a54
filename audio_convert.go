package sdl

import (
	"encoding/binary"
	"math"
)

// audioConverter turns bytes in one AudioSpec into bytes in another. It is
// stateful: partial input frames and resampler history carry over between
// calls. Identical specs are copied through untouched.
type audioConverter struct {
	src, dst AudioSpec

	passthrough bool
	srcFrame    int
	dstFrame    int

	partial []byte // incomplete trailing source frame

	// linear resampler state, in dst channel layout
	step     float64 // source frames advanced per output frame
	pos      float64 // next output position, relative to prev
	prev     []float32
	havePrev bool

	in  []float32 // decoded + remapped source frames
	out []float32 // resampled frames
}

func newAudioConverter(src, dst AudioSpec) *audioConverter {
	c := &audioConverter{
		src:         src,
		dst:         dst,
		passthrough: src == dst,
		srcFrame:    src.FrameSize(),
		dstFrame:    dst.FrameSize(),
		step:        float64(src.Freq) / float64(dst.Freq),
		prev:        make([]float32, dst.Channels),
	}
	return c
}

// maxOutput returns an upper bound of the bytes convert produces for n
// input bytes.
func (c *audioConverter) maxOutput(n int) int {
	if c.passthrough {
		return n
	}
	frames := (len(c.partial) + n) / c.srcFrame
	if c.src.Freq != c.dst.Freq {
		frames = int(math.Ceil(float64(frames+1)/c.step)) + 1
	}
	return frames * c.dstFrame
}

// convert appends the conversion of p to out.
func (c *audioConverter) convert(out, p []byte) []byte {
	if c.passthrough {
		return append(out, p...)
	}
	samples := c.decode(p)
	return c.encode(out, c.resample(samples))
}

// convertFloat appends the conversion of p to out as float32 samples in
// the destination channel layout and rate.
func (c *audioConverter) convertFloat(out []float32, p []byte) []float32 {
	return append(out, c.resample(c.decode(p))...)
}

// flush emits what the resampler still holds and drops an incomplete
// trailing frame.
func (c *audioConverter) flush(out []byte) []byte {
	c.partial = c.partial[:0]
	if c.passthrough || !c.havePrev || c.src.Freq == c.dst.Freq {
		c.havePrev = false
		c.pos = 0
		return out
	}
	c.out = c.out[:0]
	for c.pos < 1 {
		c.out = append(c.out, c.prev...)
		c.pos += c.step
	}
	c.havePrev = false
	c.pos = 0
	return c.encode(out, c.out)
}

func (c *audioConverter) reset() {
	c.partial = c.partial[:0]
	c.havePrev = false
	c.pos = 0
}

// decode turns whole source frames into float32 samples remapped to the
// destination channel count. Leftover bytes are kept for the next call.
func (c *audioConverter) decode(p []byte) []float32 {
	if len(c.partial) > 0 {
		need := c.srcFrame - len(c.partial)
		if len(p) < need {
			c.partial = append(c.partial, p...)
			return c.in[:0]
		}
		c.partial = append(c.partial, p[:need]...)
		p = p[need:]
	}

	c.in = c.in[:0]
	if len(c.partial) == c.srcFrame {
		c.in = c.decodeFrames(c.in, c.partial)
		c.partial = c.partial[:0]
	}
	whole := len(p) / c.srcFrame * c.srcFrame
	c.in = c.decodeFrames(c.in, p[:whole])
	c.partial = append(c.partial, p[whole:]...)
	return c.in
}

func (c *audioConverter) decodeFrames(out []float32, p []byte) []float32 {
	bps := c.src.Format.BytesPerSample()
	sc, dc := c.src.Channels, c.dst.Channels
	var frame [8]float32
	for off := 0; off+c.srcFrame <= len(p); off += c.srcFrame {
		for ch := 0; ch < sc; ch++ {
			frame[ch] = decodeSample(c.src.Format, p[off+ch*bps:])
		}
		out = remapChannels(out, frame[:sc], dc)
	}
	return out
}

// remapChannels appends one frame converted to dc channels. Mono is
// duplicated, downmix to mono averages, other layouts keep the leading
// channels and pad with silence.
func remapChannels(out []float32, frame []float32, dc int) []float32 {
	sc := len(frame)
	switch {
	case sc == dc:
		return append(out, frame...)
	case sc == 1:
		for i := 0; i < dc; i++ {
			out = append(out, frame[0])
		}
	case dc == 1:
		var sum float32
		for _, v := range frame {
			sum += v
		}
		out = append(out, sum/float32(sc))
	default:
		for i := 0; i < dc; i++ {
			if i < sc {
				out = append(out, frame[i])
			} else {
				out = append(out, 0)
			}
		}
	}
	return out
}

// resample converts interleaved frames from the source rate to the
// destination rate with linear interpolation.
func (c *audioConverter) resample(in []float32) []float32 {
	if c.src.Freq == c.dst.Freq || len(in) == 0 {
		return in
	}
	ch := c.dst.Channels
	frames := len(in) / ch

	// sample returns frame i of the sequence prev, in...
	base := 0
	if c.havePrev {
		base = 1
	}
	last := frames - 1 + base
	sample := func(i, k int) float32 {
		if c.havePrev {
			if i == 0 {
				return c.prev[k]
			}
			return in[(i-1)*ch+k]
		}
		return in[i*ch+k]
	}

	c.out = c.out[:0]
	for {
		i := int(c.pos)
		if i+1 > last {
			break
		}
		frac := float32(c.pos - float64(i))
		for k := 0; k < ch; k++ {
			a, b := sample(i, k), sample(i+1, k)
			c.out = append(c.out, a+(b-a)*frac)
		}
		c.pos += c.step
	}
	c.pos -= float64(last)
	copy(c.prev, in[(frames-1)*ch:])
	c.havePrev = true
	return c.out
}

func (c *audioConverter) encode(out []byte, samples []float32) []byte {
	bps := c.dst.Format.BytesPerSample()
	start := len(out)
	out = append(out, make([]byte, len(samples)*bps)...)
	for i, v := range samples {
		encodeSample(c.dst.Format, out[start+i*bps:], v)
	}
	return out
}

func decodeSample(f AudioFormat, b []byte) float32 {
	switch f {
	case AudioFormatU8:
		return (float32(b[0]) - 128) / 128
	case AudioFormatS8:
		return float32(int8(b[0])) / 128
	case AudioFormatS16LE:
		return float32(int16(binary.LittleEndian.Uint16(b))) / 32768
	case AudioFormatS16BE:
		return float32(int16(binary.BigEndian.Uint16(b))) / 32768
	case AudioFormatS32LE:
		return float32(float64(int32(binary.LittleEndian.Uint32(b))) / 2147483648)
	case AudioFormatS32BE:
		return float32(float64(int32(binary.BigEndian.Uint32(b))) / 2147483648)
	case AudioFormatF32LE:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case AudioFormatF32BE:
		return math.Float32frombits(binary.BigEndian.Uint32(b))
	}
	return 0
}

func encodeSample(f AudioFormat, b []byte, v float32) {
	if !f.IsFloat() {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
	}
	switch f {
	case AudioFormatU8:
		b[0] = uint8(math.Round(float64(v)*127) + 128)
	case AudioFormatS8:
		b[0] = uint8(int8(math.Round(float64(v) * 127)))
	case AudioFormatS16LE:
		binary.LittleEndian.PutUint16(b, uint16(int16(math.Round(float64(v)*32767))))
	case AudioFormatS16BE:
		binary.BigEndian.PutUint16(b, uint16(int16(math.Round(float64(v)*32767))))
	case AudioFormatS32LE:
		binary.LittleEndian.PutUint32(b, uint32(int32(math.Round(float64(v)*2147483647))))
	case AudioFormatS32BE:
		binary.BigEndian.PutUint32(b, uint32(int32(math.Round(float64(v)*2147483647))))
	case AudioFormatF32LE:
		binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	case AudioFormatF32BE:
		binary.BigEndian.PutUint32(b, math.Float32bits(v))
	}
}

// mixInto adds samples into dst, scaled by gain.
func mixInto(dst, samples []float32, gain float32) {
	n := min(len(dst), len(samples))
	for i := 0; i < n; i++ {
		dst[i] += samples[i] * gain
	}
}
