package sdl

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readWAVFile(t *testing.T, path string) (AudioSpec, []byte) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	spec, pcm, err := ReadWAV(f)
	require.NoError(t, err)
	return spec, pcm
}

func TestWAVRecorder_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tone.wav")
	src := AudioSpec{Format: AudioFormatF32, Channels: 1, Freq: 16000}
	r, err := CreateWAVFile(path, src)
	require.NoError(t, err)
	assert.Equal(t, src, r.Spec())

	in := sineFloats(1600)
	n, err := r.Write(float32Bytes(in))
	require.NoError(t, err)
	assert.Equal(t, len(in)*4, n)
	assert.EqualValues(t, 1600, r.Frames())
	assert.Equal(t, 100*time.Millisecond, r.Duration())

	require.NoError(t, r.Close())
	require.NoError(t, r.Close(), "close is idempotent")
	_, err = r.Write([]byte{0, 0, 0, 0})
	assert.ErrorIs(t, err, ErrRecorderClosed)

	spec, pcm := readWAVFile(t, path)
	assert.Equal(t, AudioSpec{Format: AudioFormatS16LE, Channels: 1, Freq: 16000}, spec)
	require.Len(t, pcm, 1600*2)
	for i, want := range in {
		got := float64(int16(binary.LittleEndian.Uint16(pcm[2*i:]))) / 32767
		require.InDelta(t, want, got, 1e-3, "sample %d", i)
	}
}

func TestWAVRecorder_InvalidSpec(t *testing.T) {
	_, err := CreateWAVFile(filepath.Join(t.TempDir(), "x.wav"), AudioSpec{Channels: 2})
	assert.ErrorIs(t, err, ErrType)
}

func TestReadWAV_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a riff file"), 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, _, err = ReadWAV(f)
	assert.Error(t, err)
}

func TestWAVRecorder_DrainStream(t *testing.T) {
	newTestBackend(t)
	spec := AudioSpec{Format: AudioFormatS16, Channels: 2, Freq: 48000}
	s, err := NewAudioStream(spec, spec, AudioStreamOptions{})
	require.NoError(t, err)
	defer s.Destroy()

	path := filepath.Join(t.TempDir(), "drain.wav")
	r, err := CreateWAVFile(path, spec)
	require.NoError(t, err)

	require.True(t, s.Put(make([]byte, 1000)))
	assert.Equal(t, 1000, r.Drain(s))
	assert.Zero(t, r.Drain(s))
	require.NoError(t, r.Close())

	_, pcm := readWAVFile(t, path)
	assert.Len(t, pcm, 1000)
}

func TestWAVRecorder_RecordsFromDevice(t *testing.T) {
	b := newTestBackend(t, func(c *SoftwareConfig) {
		c.Driver = &NullDriver{
			Manual: true,
			Source: func(in []byte, spec AudioSpec) {
				for i := 0; i+4 <= len(in); i += 4 {
					binary.LittleEndian.PutUint32(in[i:], math.Float32bits(-0.5))
				}
			},
		}
	})

	dev, err := DefaultRecordingDevice(nil)
	require.NoError(t, err)
	defer dev.Destroy()

	target := AudioSpec{Format: AudioFormatS16, Channels: 1, Freq: 48000}
	path := filepath.Join(t.TempDir(), "mic.wav")
	r, err := CreateWAVFile(path, target)
	require.NoError(t, err)

	s, err := NewAudioStream(DefaultAudioSpec, target, AudioStreamOptions{Put: r.Callback()})
	require.NoError(t, err)
	require.NoError(t, dev.BindStream(s))

	stepDriver(t, b, 3)
	require.NoError(t, s.Destroy())
	require.NoError(t, r.Close())
	require.NoError(t, r.Err())
	assert.EqualValues(t, 3*1024, r.Frames())

	spec, pcm := readWAVFile(t, path)
	assert.Equal(t, 1, spec.Channels)
	require.Len(t, pcm, 3*1024*2)
	assert.Equal(t, int16(-16384), int16(binary.LittleEndian.Uint16(pcm[100:])))
}
