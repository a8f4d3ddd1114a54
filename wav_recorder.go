package sdl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const wavBitDepth = 16

// ErrRecorderClosed is returned by writes after Close.
var ErrRecorderClosed = errors.New("sdl: wav recorder closed")

// WAVRecorder writes audio to a 16-bit PCM WAV file. Input in any AudioSpec
// is converted to signed 16-bit samples at the input's channel count and
// rate.
type WAVRecorder struct {
	mu     sync.Mutex
	enc    *wav.Encoder
	file   io.Closer // owned file, nil when the caller owns the writer
	src    AudioSpec
	out    AudioSpec
	conv   *audioConverter
	buf    *audio.IntBuffer
	pcm    []byte
	read   []byte
	frames int64
	err    error
	closed bool
}

// NewWAVRecorder starts a WAV stream on w for audio in the src spec.
func NewWAVRecorder(w io.WriteSeeker, src AudioSpec) (*WAVRecorder, error) {
	if !src.Valid() {
		return nil, typeError("invalid recorder spec %s", src)
	}
	out := AudioSpec{Format: AudioFormatS16LE, Channels: src.Channels, Freq: src.Freq}
	return &WAVRecorder{
		enc:  wav.NewEncoder(w, src.Freq, wavBitDepth, src.Channels, 1),
		src:  src,
		out:  out,
		conv: newAudioConverter(src, out),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{SampleRate: src.Freq, NumChannels: src.Channels},
			SourceBitDepth: wavBitDepth,
		},
	}, nil
}

// CreateWAVFile creates path (and its parent directories) and returns a
// recorder that closes the file on Close.
func CreateWAVFile(path string, src AudioSpec) (*WAVRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	r, err := NewWAVRecorder(f, src)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.file = f
	return r, nil
}

// Spec returns the input spec the recorder expects.
func (r *WAVRecorder) Spec() AudioSpec { return r.src }

// Write encodes p, given in the recorder's input spec.
func (r *WAVRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, ErrRecorderClosed
	}
	if r.err != nil {
		return 0, r.err
	}
	r.pcm = r.conv.convert(r.pcm[:0], p)
	if err := r.writePCM(r.pcm); err != nil {
		r.err = err
		return 0, err
	}
	return len(p), nil
}

func (r *WAVRecorder) writePCM(pcm []byte) error {
	n := len(pcm) / 2
	if n == 0 {
		return nil
	}
	if cap(r.buf.Data) < n {
		r.buf.Data = make([]int, n)
	}
	r.buf.Data = r.buf.Data[:n]
	for i := range r.buf.Data {
		r.buf.Data[i] = int(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
	}
	if err := r.enc.Write(r.buf); err != nil {
		return fmt.Errorf("failed to write to WAV encoder: %w", err)
	}
	r.frames += int64(n / r.out.Channels)
	return nil
}

// Drain reads everything s has available and records it. s must produce
// audio in the recorder's input spec. It returns the bytes consumed.
func (r *WAVRecorder) Drain(s *AudioStream) int {
	total := 0
	for {
		avail := s.Available()
		if avail <= 0 {
			return total
		}
		if cap(r.read) < avail {
			r.read = make([]byte, avail)
		}
		n := s.Get(r.read[:avail])
		if n <= 0 {
			return total
		}
		if _, err := r.Write(r.read[:n]); err != nil {
			return total
		}
		total += n
	}
}

// Callback returns a put callback that drains the stream into the file
// whenever the device delivers audio.
func (r *WAVRecorder) Callback() AudioStreamCallback {
	return func(s *AudioStream, additional, total int) {
		r.Drain(s)
	}
}

// Frames returns the number of sample frames written.
func (r *WAVRecorder) Frames() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Duration returns the recorded length.
func (r *WAVRecorder) Duration() time.Duration {
	return time.Duration(r.Frames()) * time.Second / time.Duration(r.src.Freq)
}

// Err returns the first encoding error, if any.
func (r *WAVRecorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Close finalizes the WAV header. It is safe to call more than once.
func (r *WAVRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.err == nil {
		if err := r.writePCM(r.conv.flush(r.pcm[:0])); err != nil {
			r.err = err
		}
	}
	err := r.enc.Close()
	if r.file != nil {
		if cerr := r.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// ReadWAV decodes a PCM WAV file into signed 16-bit little-endian samples.
func ReadWAV(rs io.ReadSeeker) (AudioSpec, []byte, error) {
	dec := wav.NewDecoder(rs)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return AudioSpec{}, nil, errors.New("sdl: invalid WAV file format")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return AudioSpec{}, nil, fmt.Errorf("sdl: failed to decode WAV: %w", err)
	}
	spec := AudioSpec{Format: AudioFormatS16LE, Channels: int(dec.NumChans), Freq: int(dec.SampleRate)}

	shift := int(dec.BitDepth) - wavBitDepth
	if dec.BitDepth != 16 && dec.BitDepth != 24 && dec.BitDepth != 32 {
		return AudioSpec{}, nil, fmt.Errorf("sdl: unsupported WAV bit depth %d", dec.BitDepth)
	}
	pcm := make([]byte, 2*len(buf.Data))
	for i, v := range buf.Data {
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(int16(v>>shift)))
	}
	return spec, pcm, nil
}
