package sdl

import "fmt"

// AudioSpec describes a PCM layout: sample format, interleaved channel
// count and sample rate in Hz.
type AudioSpec struct {
	Format   AudioFormat
	Channels int
	Freq     int
}

// DefaultAudioSpec is the layout used when a device is opened without a
// spec on the software backend.
var DefaultAudioSpec = AudioSpec{Format: AudioFormatF32, Channels: 2, Freq: 48000}

// Valid reports whether every field is usable for conversion.
func (s AudioSpec) Valid() bool {
	return s.Format.Valid() && s.Channels > 0 && s.Channels <= 8 && s.Freq > 0
}

// FrameSize returns the bytes of one sample frame (one sample per channel).
func (s AudioSpec) FrameSize() int {
	return s.Format.BytesPerSample() * s.Channels
}

// BytesPerSecond returns the byte rate of the layout.
func (s AudioSpec) BytesPerSecond() int {
	return s.FrameSize() * s.Freq
}

func (s AudioSpec) String() string {
	return fmt.Sprintf("%s/%dch/%dHz", s.Format, s.Channels, s.Freq)
}

// AudioDeviceFormat is the preferred format reported for a device.
type AudioDeviceFormat struct {
	Valid        bool
	SampleFrames int // device buffer size in sample frames
	Spec         AudioSpec
}
