package sdl

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestL16Codec(t *testing.T) {
	c := L16Codec(AudioSpec{Format: AudioFormatF32, Channels: 2, Freq: 48000})
	assert.Equal(t, MimeTypeL16, c.MimeType)
	assert.EqualValues(t, 48000, c.ClockRate)
	assert.EqualValues(t, 2, c.Channels)
}

func TestNewL16Packetizer_Errors(t *testing.T) {
	_, err := NewL16Packetizer(AudioSpec{}, 1, DefaultL16PayloadType, 0)
	assert.ErrorIs(t, err, ErrType)

	spec := AudioSpec{Format: AudioFormatS16, Channels: 8, Freq: 48000}
	_, err = NewL16Packetizer(spec, 1, DefaultL16PayloadType, rtpHeaderSize+8)
	assert.ErrorIs(t, err, ErrType)
}

func TestL16Packetizer_Packets(t *testing.T) {
	spec := AudioSpec{Format: AudioFormatF32, Channels: 2, Freq: 48000}
	p, err := NewL16Packetizer(spec, 0x1234, DefaultL16PayloadType, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultMTU, p.MTU())

	// 20 ms of audio.
	in := sineFloats(960 * 2)
	start := p.Timestamp()
	packets, err := p.Packetize(float32Bytes(in))
	require.NoError(t, err)
	packets = append(packets, p.Flush()...)
	require.Len(t, packets, 4)

	frames := 0
	for i, pkt := range packets {
		raw, err := pkt.Marshal()
		require.NoError(t, err)
		assert.LessOrEqual(t, len(raw), DefaultMTU)
		assert.Zero(t, len(pkt.Payload)%4, "whole frames")

		assert.Equal(t, uint32(0x1234), pkt.SSRC)
		assert.Equal(t, DefaultL16PayloadType, pkt.PayloadType)
		assert.Equal(t, start+uint32(frames), pkt.Timestamp)
		if i > 0 {
			assert.Equal(t, packets[i-1].SequenceNumber+1, pkt.SequenceNumber)
		}
		frames += len(pkt.Payload) / 4
	}
	assert.Equal(t, 960, frames)
	assert.Equal(t, start+960, p.Timestamp())
	assert.Empty(t, p.Flush())
}

func TestL16Packetizer_HoldsPartialPacket(t *testing.T) {
	spec := AudioSpec{Format: AudioFormatS16, Channels: 1, Freq: 8000}
	p, err := NewL16Packetizer(spec, 1, 0, 112) // 50 frames per packet
	require.NoError(t, err)

	packets, err := p.Packetize(make([]byte, 60))
	require.NoError(t, err)
	assert.Empty(t, packets)

	packets, err = p.Packetize(make([]byte, 60))
	require.NoError(t, err)
	require.Len(t, packets, 1)
	assert.Len(t, packets[0].Payload, 100)

	rest := p.Flush()
	require.Len(t, rest, 1)
	assert.Len(t, rest[0].Payload, 20)
}

func TestL16Packetizer_BigEndianPayload(t *testing.T) {
	spec := AudioSpec{Format: AudioFormatS16LE, Channels: 1, Freq: 8000}
	p, err := NewL16Packetizer(spec, 1, DefaultL16PayloadType, 0)
	require.NoError(t, err)

	raw, err := p.PacketizeToBytes(s16le(0x0102))
	require.NoError(t, err)
	assert.Empty(t, raw)

	pkts := p.Flush()
	require.Len(t, pkts, 1)
	assert.Equal(t, []byte{0x01, 0x02}, pkts[0].Payload)
}

func TestL16_RoundTrip(t *testing.T) {
	spec := AudioSpec{Format: AudioFormatF32, Channels: 2, Freq: 48000}
	p, err := NewL16Packetizer(spec, 7, DefaultL16PayloadType, 0)
	require.NoError(t, err)
	d, err := NewL16Depacketizer(spec, spec)
	require.NoError(t, err)

	in := sineFloats(480 * 2)
	raw, err := p.PacketizeToBytes(float32Bytes(in))
	require.NoError(t, err)
	for _, pkt := range p.Flush() {
		b, err := pkt.Marshal()
		require.NoError(t, err)
		raw = append(raw, b)
	}

	var out []byte
	for _, b := range raw {
		pcm, err := d.DepacketizeBytes(b)
		require.NoError(t, err)
		out = append(out, pcm...)
	}
	require.Len(t, out, len(in)*4)
	for i, want := range in {
		got := math.Float32frombits(binary.LittleEndian.Uint32(out[4*i:]))
		require.InDelta(t, want, got, 1.0/16384, "sample %d", i)
	}
	assert.Zero(t, d.Lost())
}

func TestL16Depacketizer_Sequence(t *testing.T) {
	spec := AudioSpec{Format: AudioFormatS16, Channels: 1, Freq: 8000}
	d, err := NewL16Depacketizer(spec, spec)
	require.NoError(t, err)

	pkt := func(seq uint16) *RTPPacket {
		return &RTPPacket{Header: rtp.Header{Version: 2, SequenceNumber: seq}, Payload: []byte{0, 1}}
	}

	for _, tc := range []struct {
		seq  uint16
		keep bool
		lost uint64
	}{
		{65534, true, 0},
		{65535, true, 0},
		{1, true, 1},  // 0 missing across the wrap
		{1, false, 1}, // duplicate
		{60000, false, 1},
		{4, true, 3},
	} {
		out, err := d.Depacketize(pkt(tc.seq))
		require.NoError(t, err)
		assert.Equal(t, tc.keep, out != nil, "seq %d", tc.seq)
		assert.Equal(t, tc.lost, d.Lost(), "seq %d", tc.seq)
	}

	_, err = d.Depacketize(nil)
	assert.Error(t, err)
	_, err = d.DepacketizeBytes([]byte{0x80})
	assert.Error(t, err)

	d.Reset()
	assert.Zero(t, d.Lost())
}

func TestL16_WebRTCTrack(t *testing.T) {
	spec := AudioSpec{Format: AudioFormatS16, Channels: 2, Freq: 48000}

	m := &webrtc.MediaEngine{}
	require.NoError(t, m.RegisterCodec(webrtc.RTPCodecParameters{
		RTPCodecCapability: L16Codec(spec),
		PayloadType:        webrtc.PayloadType(DefaultL16PayloadType),
	}, webrtc.RTPCodecTypeAudio))

	track, err := webrtc.NewTrackLocalStaticRTP(L16Codec(spec), "audio", "sdl")
	require.NoError(t, err)
	assert.Equal(t, webrtc.RTPCodecTypeAudio, track.Kind())

	p, err := NewL16Packetizer(spec, 99, DefaultL16PayloadType, 0)
	require.NoError(t, err)
	packets, err := p.Packetize(make([]byte, 4*960))
	require.NoError(t, err)
	packets = append(packets, p.Flush()...)
	require.NotEmpty(t, packets)
	for _, pkt := range packets {
		// Unbound tracks accept and discard packets.
		require.NoError(t, track.WriteRTP(pkt))
	}
}
