package sdl

import (
	"math"
	"sync"
	"time"
)

// AudioPatternType selects the waveform produced by a ToneGenerator.
type AudioPatternType int

const (
	AudioPatternSilence    AudioPatternType = iota // Silence
	AudioPatternSineWave                           // Sine wave tone
	AudioPatternSquareWave                         // Square wave tone
	AudioPatternWhiteNoise                         // White noise
	AudioPatternSweep                              // Logarithmic frequency sweep
)

func (p AudioPatternType) String() string {
	switch p {
	case AudioPatternSilence:
		return "Silence"
	case AudioPatternSineWave:
		return "SineWave"
	case AudioPatternSquareWave:
		return "SquareWave"
	case AudioPatternWhiteNoise:
		return "WhiteNoise"
	case AudioPatternSweep:
		return "Sweep"
	default:
		return "Unknown"
	}
}

// ToneConfig configures a ToneGenerator.
type ToneConfig struct {
	Spec      AudioSpec        // Output layout (default: DefaultAudioSpec)
	Pattern   AudioPatternType // Waveform
	Frequency float64          // Tone frequency in Hz (default: 440)
	Amplitude float64          // Amplitude 0.0-1.0 (default: 0.5)

	// Sweep settings
	SweepStartHz  float64
	SweepEndHz    float64
	SweepDuration time.Duration
}

// DefaultToneConfig returns a 440 Hz sine at half amplitude.
func DefaultToneConfig() ToneConfig {
	return ToneConfig{
		Spec:          DefaultAudioSpec,
		Pattern:       AudioPatternSineWave,
		Frequency:     440.0, // A4
		Amplitude:     0.5,
		SweepStartHz:  200,
		SweepEndHz:    2000,
		SweepDuration: 2 * time.Second,
	}
}

// ToneGenerator synthesizes test audio on demand. It is the pull side of a
// playback stream: Callback returns a get callback that answers every
// request with exactly the bytes asked for.
type ToneGenerator struct {
	config ToneConfig

	phase       float64
	sampleCount uint64
	rngState    uint64

	samples []float32
	bytes   []byte
	enc     *audioConverter

	mu sync.Mutex
}

// NewToneGenerator creates a generator, applying defaults for zero fields.
func NewToneGenerator(config ToneConfig) *ToneGenerator {
	def := DefaultToneConfig()
	if !config.Spec.Valid() {
		config.Spec = def.Spec
	}
	if config.Frequency <= 0 {
		config.Frequency = def.Frequency
	}
	if config.Amplitude <= 0 {
		config.Amplitude = def.Amplitude
	}
	if config.Amplitude > 1.0 {
		config.Amplitude = 1.0
	}
	if config.SweepStartHz <= 0 {
		config.SweepStartHz = def.SweepStartHz
	}
	if config.SweepEndHz <= 0 {
		config.SweepEndHz = def.SweepEndHz
	}
	if config.SweepDuration <= 0 {
		config.SweepDuration = def.SweepDuration
	}

	floatSpec := AudioSpec{Format: AudioFormatF32, Channels: config.Spec.Channels, Freq: config.Spec.Freq}
	return &ToneGenerator{
		config:   config,
		rngState: uint64(time.Now().UnixNano()) | 1,
		enc:      newAudioConverter(floatSpec, config.Spec),
	}
}

// Spec returns the output layout.
func (g *ToneGenerator) Spec() AudioSpec { return g.config.Spec }

// FillFloat32 writes interleaved samples for len(p)/channels frames.
func (g *ToneGenerator) FillFloat32(p []float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fill(p)
}

// Read fills p with whole frames in the output format and returns the
// number of bytes written. It never fails.
func (g *ToneGenerator) Read(p []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	frame := g.config.Spec.FrameSize()
	frames := len(p) / frame
	if cap(g.samples) < frames*g.config.Spec.Channels {
		g.samples = make([]float32, frames*g.config.Spec.Channels)
	}
	samples := g.samples[:frames*g.config.Spec.Channels]
	g.fill(samples)
	g.bytes = g.enc.convert(g.bytes[:0], float32Bytes(samples))
	return copy(p, g.bytes), nil
}

// Callback returns a get callback that puts exactly the requested number
// of bytes into the stream. The stream's source spec must equal Spec.
func (g *ToneGenerator) Callback() AudioStreamCallback {
	var buf []byte
	return func(s *AudioStream, additional, total int) {
		if additional <= 0 {
			return
		}
		frame := g.config.Spec.FrameSize()
		n := (additional + frame - 1) / frame * frame
		if cap(buf) < n {
			buf = make([]byte, n)
		}
		buf = buf[:n]
		g.Read(buf)
		s.Put(buf)
	}
}

func (g *ToneGenerator) fill(p []float32) {
	ch := g.config.Spec.Channels
	rate := float64(g.config.Spec.Freq)
	amp := g.config.Amplitude

	for i := 0; i+ch <= len(p); i += ch {
		var v float64
		switch g.config.Pattern {
		case AudioPatternSineWave:
			v = amp * math.Sin(g.phase)
			g.advance(g.config.Frequency, rate)
		case AudioPatternSquareWave:
			v = amp
			if math.Sin(g.phase) < 0 {
				v = -amp
			}
			g.advance(g.config.Frequency, rate)
		case AudioPatternWhiteNoise:
			// xorshift64
			g.rngState ^= g.rngState << 13
			g.rngState ^= g.rngState >> 7
			g.rngState ^= g.rngState << 17
			v = amp * ((float64(g.rngState)/float64(^uint64(0)))*2.0 - 1.0)
		case AudioPatternSweep:
			sweepSamples := rate * g.config.SweepDuration.Seconds()
			progress := math.Mod(float64(g.sampleCount), sweepSamples) / sweepSamples
			logStart := math.Log(g.config.SweepStartHz)
			logEnd := math.Log(g.config.SweepEndHz)
			v = amp * math.Sin(g.phase)
			g.advance(math.Exp(logStart+progress*(logEnd-logStart)), rate)
		}
		for c := 0; c < ch; c++ {
			p[i+c] = float32(v)
		}
		g.sampleCount++
	}
}

func (g *ToneGenerator) advance(freq, rate float64) {
	g.phase += 2.0 * math.Pi * freq / rate
	if g.phase > 2*math.Pi {
		g.phase -= 2 * math.Pi
	}
}
