package sdl

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

// Re-export pion/rtp types for convenience
type (
	// RTPPacket is an alias to pion's rtp.Packet
	RTPPacket = rtp.Packet

	// RTPHeader is an alias to pion's rtp.Header
	RTPHeader = rtp.Header
)

const (
	// DefaultMTU is the maximum packet size including the RTP header.
	DefaultMTU = 1200

	// MimeTypeL16 is the RFC 3551 linear 16-bit PCM media type.
	MimeTypeL16 = "audio/L16"

	// DefaultL16PayloadType is the dynamic payload type used when none is
	// given.
	DefaultL16PayloadType uint8 = 96

	rtpHeaderSize = 12
)

// L16Codec returns the WebRTC codec capability for raw PCM with the
// channel count and rate of spec.
func L16Codec(spec AudioSpec) webrtc.RTPCodecCapability {
	return webrtc.RTPCodecCapability{
		MimeType:  MimeTypeL16,
		ClockRate: uint32(spec.Freq),
		Channels:  uint16(spec.Channels),
	}
}

// l16Spec is the wire format for spec: signed 16-bit big-endian samples.
func l16Spec(spec AudioSpec) AudioSpec {
	return AudioSpec{Format: AudioFormatS16BE, Channels: spec.Channels, Freq: spec.Freq}
}

// L16Packetizer turns audio in any AudioSpec into L16 RTP packets. Each
// packet carries whole sample frames and the RTP timestamp advances by
// frames.
type L16Packetizer struct {
	spec        AudioSpec
	wire        AudioSpec
	conv        *audioConverter
	ssrc        uint32
	payloadType uint8
	mtu         int
	sequencer   rtp.Sequencer
	timestamp   uint32
	pending     []byte
	mu          sync.Mutex
}

// NewL16Packetizer creates a packetizer for audio in spec.
func NewL16Packetizer(spec AudioSpec, ssrc uint32, pt uint8, mtu int) (*L16Packetizer, error) {
	if !spec.Valid() {
		return nil, typeError("invalid audio spec %s", spec)
	}
	if mtu <= 0 {
		mtu = DefaultMTU
	}
	wire := l16Spec(spec)
	if mtu-rtpHeaderSize < wire.FrameSize() {
		return nil, typeError("mtu %d too small for one %d-channel frame", mtu, spec.Channels)
	}
	return &L16Packetizer{
		spec:        spec,
		wire:        wire,
		conv:        newAudioConverter(spec, wire),
		ssrc:        ssrc,
		payloadType: pt,
		mtu:         mtu,
		sequencer:   rtp.NewRandomSequencer(),
		timestamp:   rand.Uint32(),
	}, nil
}

// Packetize converts data and returns every full packet it completes. Data
// that does not fill a packet is held for the next call or Flush.
func (p *L16Packetizer) Packetize(data []byte) ([]*RTPPacket, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = p.conv.convert(p.pending, data)
	return p.emit(false), nil
}

// Flush packetizes whatever whole frames are still held.
func (p *L16Packetizer) Flush() []*RTPPacket {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = p.conv.flush(p.pending)
	return p.emit(true)
}

func (p *L16Packetizer) emit(partial bool) []*RTPPacket {
	frame := p.wire.FrameSize()
	limit := (p.mtu - rtpHeaderSize) / frame * frame
	var packets []*RTPPacket
	off := 0
	for {
		n := len(p.pending) - off
		if n >= limit {
			n = limit
		} else if !partial {
			break
		}
		n = n / frame * frame
		if n == 0 {
			break
		}
		payload := make([]byte, n)
		copy(payload, p.pending[off:off+n])
		packets = append(packets, &RTPPacket{
			Header: rtp.Header{
				Version:        2,
				PayloadType:    p.payloadType,
				SequenceNumber: p.sequencer.NextSequenceNumber(),
				Timestamp:      p.timestamp,
				SSRC:           p.ssrc,
			},
			Payload: payload,
		})
		p.timestamp += uint32(n / frame)
		off += n
	}
	p.pending = append(p.pending[:0], p.pending[off:]...)
	return packets
}

// PacketizeToBytes is Packetize with marshalled packets.
func (p *L16Packetizer) PacketizeToBytes(data []byte) ([][]byte, error) {
	packets, err := p.Packetize(data)
	if err != nil {
		return nil, err
	}
	result := make([][]byte, len(packets))
	for i, pkt := range packets {
		if result[i], err = pkt.Marshal(); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Spec returns the input audio spec.
func (p *L16Packetizer) Spec() AudioSpec { return p.spec }

func (p *L16Packetizer) SetSSRC(ssrc uint32)     { p.mu.Lock(); p.ssrc = ssrc; p.mu.Unlock() }
func (p *L16Packetizer) SSRC() uint32            { p.mu.Lock(); defer p.mu.Unlock(); return p.ssrc }
func (p *L16Packetizer) PayloadType() uint8      { p.mu.Lock(); defer p.mu.Unlock(); return p.payloadType }
func (p *L16Packetizer) SetPayloadType(pt uint8) { p.mu.Lock(); p.payloadType = pt; p.mu.Unlock() }
func (p *L16Packetizer) MTU() int                { p.mu.Lock(); defer p.mu.Unlock(); return p.mtu }
func (p *L16Packetizer) Timestamp() uint32       { p.mu.Lock(); defer p.mu.Unlock(); return p.timestamp }

// L16Depacketizer turns L16 RTP payloads back into audio in a target spec.
type L16Depacketizer struct {
	spec    AudioSpec
	conv    *audioConverter
	lastSeq uint16
	haveSeq bool
	lost    uint64
	mu      sync.Mutex
}

// NewL16Depacketizer creates a depacketizer for a wire stream with
// channels and rate taken from wire, producing audio in target.
func NewL16Depacketizer(wire, target AudioSpec) (*L16Depacketizer, error) {
	if !wire.Valid() || !target.Valid() {
		return nil, typeError("invalid audio spec")
	}
	return &L16Depacketizer{
		spec: target,
		conv: newAudioConverter(l16Spec(wire), target),
	}, nil
}

// Depacketize returns the packet's audio in the target spec. Sequence
// gaps are counted; reordered or repeated packets are dropped.
func (d *L16Depacketizer) Depacketize(packet *RTPPacket) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if packet == nil {
		return nil, errors.New("sdl: nil rtp packet")
	}
	seq := packet.SequenceNumber
	if d.haveSeq {
		delta := seq - d.lastSeq
		if delta == 0 || delta > 0x8000 {
			return nil, nil
		}
		d.lost += uint64(delta - 1)
	}
	d.lastSeq, d.haveSeq = seq, true
	if len(packet.Payload) == 0 {
		return nil, nil
	}
	return d.conv.convert(nil, packet.Payload), nil
}

// DepacketizeBytes processes raw RTP packet bytes.
func (d *L16Depacketizer) DepacketizeBytes(data []byte) ([]byte, error) {
	var pkt rtp.Packet
	if err := pkt.Unmarshal(data); err != nil {
		return nil, err
	}
	return d.Depacketize(&pkt)
}

// Spec returns the output audio spec.
func (d *L16Depacketizer) Spec() AudioSpec { return d.spec }

// Lost returns the number of packets missing from the sequence so far.
func (d *L16Depacketizer) Lost() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lost
}

// Reset forgets sequence and conversion state.
func (d *L16Depacketizer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.haveSeq = false
	d.lost = 0
	d.conv.reset()
}
