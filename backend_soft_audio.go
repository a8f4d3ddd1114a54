package sdl

import (
	"sync"
	"sync/atomic"

	"github.com/smallnest/ringbuffer"
)

type softPhysical struct {
	id       AudioDeviceID
	name     string
	playback bool
}

// softDevice is an opened logical device.
type softDevice struct {
	id       AudioDeviceID
	physical *softPhysical
	spec     AudioSpec
	frames   int
	port     DriverPort

	// guarded by SoftwareBackend.mu
	gain     float32
	paused   bool
	closed   bool
	streams  []*softStream
	snapshot []*softStream

	// owned by the driver callback
	mix     []float32
	scratch []byte
}

// softStream is a converting buffer. Input is converted on Put and the
// result is kept in a bounded ring in the target format.
type softStream struct {
	id       Handle
	src, dst AudioSpec
	cb       StreamCallbacks
	dead     atomic.Bool
	bound    atomic.Pointer[softDevice]

	mu      sync.Mutex
	conv    *audioConverter
	ring    *ringbuffer.RingBuffer
	scratch []byte

	// device side of the current binding, guarded by mu
	bridge  *audioConverter
	pending []float32
	read    []byte
	capture []byte
}

func (b *SoftwareBackend) AudioPlaybackDevices() []AudioDeviceID {
	return append([]AudioDeviceID(nil), b.playbackIDs...)
}

func (b *SoftwareBackend) AudioRecordingDevices() []AudioDeviceID {
	return append([]AudioDeviceID(nil), b.recordingIDs...)
}

// resolvePhysical maps a physical, logical or default id to its physical
// device. b.mu must be held.
func (b *SoftwareBackend) resolvePhysical(id AudioDeviceID) *softPhysical {
	switch id {
	case AudioDeviceDefaultPlayback:
		if len(b.playbackIDs) > 0 {
			return b.physical[b.playbackIDs[0]]
		}
		return nil
	case AudioDeviceDefaultRecording:
		if len(b.recordingIDs) > 0 {
			return b.physical[b.recordingIDs[0]]
		}
		return nil
	}
	if p, ok := b.physical[id]; ok {
		return p
	}
	if d, ok := b.devices[id]; ok {
		return d.physical
	}
	return nil
}

func (b *SoftwareBackend) AudioDeviceName(id AudioDeviceID) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p := b.resolvePhysical(id); p != nil {
		return p.name
	}
	return ""
}

func (b *SoftwareBackend) AudioDeviceFormat(id AudioDeviceID) (AudioSpec, int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d, ok := b.devices[id]; ok {
		return d.spec, d.frames, true
	}
	if b.resolvePhysical(id) != nil {
		return b.config.DeviceSpec, b.config.PeriodFrames, true
	}
	return AudioSpec{}, 0, false
}

func (b *SoftwareBackend) IsAudioDevicePlayback(id AudioDeviceID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.resolvePhysical(id)
	return p != nil && p.playback
}

func (b *SoftwareBackend) IsAudioDevicePhysical(id AudioDeviceID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.physical[id]
	return ok
}

func (b *SoftwareBackend) OpenAudioDevice(id AudioDeviceID, spec *AudioSpec) (AudioDeviceID, error) {
	b.mu.Lock()
	p := b.resolvePhysical(id)
	if p == nil {
		err := b.fail("OpenAudioDevice", "invalid audio device id %#x", uint32(id))
		b.mu.Unlock()
		return 0, err
	}
	devSpec := b.config.DeviceSpec
	if spec != nil {
		devSpec = *spec
	}
	if !b.driver.Supports(devSpec) {
		err := b.fail("OpenAudioDevice", "%s driver does not support %s", b.driver.Name(), devSpec)
		b.mu.Unlock()
		return 0, err
	}
	d := &softDevice{
		id:       AudioDeviceID(0x100 + uint32(b.handle())),
		physical: p,
		spec:     devSpec,
		frames:   b.config.PeriodFrames,
		gain:     1,
	}
	b.devices[d.id] = d
	b.mu.Unlock()

	port, err := b.driver.Start(devSpec, d.frames, p.playback, func(out, in []byte) {
		b.process(d, out, in)
	})
	if err != nil {
		b.mu.Lock()
		delete(b.devices, d.id)
		b.lastErr = err.Error()
		b.mu.Unlock()
		return 0, err
	}
	b.mu.Lock()
	d.port = port
	b.mu.Unlock()
	return d.id, nil
}

func (b *SoftwareBackend) CloseAudioDevice(id AudioDeviceID) {
	b.mu.Lock()
	d, ok := b.devices[id]
	if !ok {
		b.mu.Unlock()
		return
	}
	d.closed = true
	for _, s := range d.streams {
		s.unbindFrom(d)
	}
	d.streams = nil
	delete(b.devices, id)
	port := d.port
	b.mu.Unlock()

	if port != nil {
		port.Close()
	}
}

func (b *SoftwareBackend) device(id AudioDeviceID) (*softDevice, bool) {
	d, ok := b.devices[id]
	if !ok || d.closed {
		b.lastErr = "invalid audio device"
		return nil, false
	}
	return d, true
}

func (b *SoftwareBackend) PauseAudioDevice(id AudioDeviceID) bool {
	b.mu.Lock()
	d, ok := b.device(id)
	if ok {
		d.paused = true
	}
	port := d.portOrNil()
	b.mu.Unlock()
	if port != nil {
		port.Pause()
	}
	return ok
}

func (b *SoftwareBackend) ResumeAudioDevice(id AudioDeviceID) bool {
	b.mu.Lock()
	d, ok := b.device(id)
	if ok {
		d.paused = false
	}
	port := d.portOrNil()
	b.mu.Unlock()
	if port != nil {
		port.Resume()
	}
	return ok
}

func (d *softDevice) portOrNil() DriverPort {
	if d == nil {
		return nil
	}
	return d.port
}

func (b *SoftwareBackend) AudioDevicePaused(id AudioDeviceID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.device(id)
	return ok && d.paused
}

func (b *SoftwareBackend) AudioDeviceGain(id AudioDeviceID) float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d, ok := b.device(id); ok {
		return d.gain
	}
	return -1
}

func (b *SoftwareBackend) SetAudioDeviceGain(id AudioDeviceID, gain float32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.device(id)
	if !ok {
		return false
	}
	if gain < 0 {
		return b.failed("gain must be >= 0")
	}
	d.gain = gain
	return true
}

func (b *SoftwareBackend) CreateAudioStream(src, dst AudioSpec, callbacks StreamCallbacks) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !src.Valid() || !dst.Valid() {
		return 0, b.fail("CreateAudioStream", "invalid audio spec")
	}
	s := &softStream{
		id:   b.handle(),
		src:  src,
		dst:  dst,
		cb:   callbacks,
		conv: newAudioConverter(src, dst),
		ring: ringbuffer.New(b.config.StreamCapacity),
	}
	b.streams[s.id] = s
	return s.id, nil
}

func (b *SoftwareBackend) stream(h Handle) (*softStream, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.streams[h]
	if !ok {
		b.lastErr = "invalid audio stream"
	}
	return s, ok
}

func (b *SoftwareBackend) PutAudioStreamData(stream Handle, p []byte) bool {
	s, ok := b.stream(stream)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok = s.putLocked(p)
	return ok
}

func (b *SoftwareBackend) GetAudioStreamData(stream Handle, p []byte) int {
	s, ok := b.stream(stream)
	if !ok {
		return -1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(p)
}

func (b *SoftwareBackend) AudioStreamAvailable(stream Handle) int {
	s, ok := b.stream(stream)
	if !ok {
		return -1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.availableLocked()
}

func (b *SoftwareBackend) FlushAudioStream(stream Handle) bool {
	s, ok := b.stream(stream)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scratch = s.conv.flush(s.scratch[:0])
	tail := s.scratch
	if free := s.ring.Free() / s.dst.FrameSize() * s.dst.FrameSize(); len(tail) > free {
		tail = tail[:free]
	}
	if len(tail) > 0 {
		s.ring.Write(tail)
	}
	return true
}

func (b *SoftwareBackend) ClearAudioStream(stream Handle) bool {
	s, ok := b.stream(stream)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ring.Reset()
	s.conv.reset()
	if s.bridge != nil {
		s.bridge.reset()
	}
	s.pending = s.pending[:0]
	return true
}

func (b *SoftwareBackend) AudioStreamDevice(stream Handle) AudioDeviceID {
	s, ok := b.stream(stream)
	if !ok {
		return 0
	}
	if d := s.bound.Load(); d != nil {
		return d.id
	}
	return 0
}

func (b *SoftwareBackend) BindAudioStream(device AudioDeviceID, stream Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.device(device)
	if !ok {
		return false
	}
	s, ok := b.streams[stream]
	if !ok {
		return b.failed("invalid audio stream")
	}
	if s.bound.Load() != nil {
		return b.failed("audio stream already bound to a device")
	}

	s.mu.Lock()
	if d.physical.playback {
		s.bridge = newAudioConverter(s.dst, d.spec)
	} else {
		s.bridge = newAudioConverter(d.spec, s.src)
	}
	s.pending = s.pending[:0]
	s.mu.Unlock()

	s.bound.Store(d)
	d.streams = append(d.streams, s)
	return true
}

func (b *SoftwareBackend) UnbindAudioStream(stream Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.streams[stream]
	if !ok {
		return
	}
	d := s.bound.Load()
	if d == nil {
		return
	}
	for i, bs := range d.streams {
		if bs == s {
			d.streams = append(d.streams[:i], d.streams[i+1:]...)
			break
		}
	}
	s.unbindFrom(d)
}

// unbindFrom detaches s from d. SoftwareBackend.mu must be held.
func (s *softStream) unbindFrom(d *softDevice) {
	if !s.bound.CompareAndSwap(d, nil) {
		return
	}
	s.mu.Lock()
	s.bridge = nil
	s.pending = s.pending[:0]
	s.mu.Unlock()
}

func (b *SoftwareBackend) ResumeAudioStreamDevice(stream Handle) bool {
	s, ok := b.stream(stream)
	if !ok {
		return false
	}
	d := s.bound.Load()
	if d == nil {
		b.mu.Lock()
		b.lastErr = "audio stream not bound"
		b.mu.Unlock()
		return false
	}
	return b.ResumeAudioDevice(d.id)
}

func (b *SoftwareBackend) DestroyAudioStream(stream Handle) {
	b.UnbindAudioStream(stream)
	b.mu.Lock()
	s, ok := b.streams[stream]
	delete(b.streams, stream)
	b.mu.Unlock()
	if ok {
		s.dead.Store(true)
	}
}

// putLocked converts p into the ring. It adds nothing and reports false
// when the converted data would not fit.
func (s *softStream) putLocked(p []byte) (int, bool) {
	if s.conv.maxOutput(len(p)) > s.ring.Free() {
		return 0, false
	}
	s.scratch = s.conv.convert(s.scratch[:0], p)
	if len(s.scratch) == 0 {
		return 0, true
	}
	n, err := s.ring.Write(s.scratch)
	if err != nil {
		return n, false
	}
	return n, true
}

func (s *softStream) availableLocked() int {
	frame := s.dst.FrameSize()
	return s.ring.Length() / frame * frame
}

func (s *softStream) getLocked(p []byte) int {
	n := min(len(p), s.availableLocked())
	n = n / s.dst.FrameSize() * s.dst.FrameSize()
	if n == 0 {
		return 0
	}
	read, err := s.ring.Read(p[:n])
	if err != nil {
		return 0
	}
	return read
}

// live reports whether s may still be serviced for d.
func (s *softStream) live(d *softDevice) bool {
	return !s.dead.Load() && s.bound.Load() == d
}

// process runs one device period on the driver's audio thread.
func (b *SoftwareBackend) process(d *softDevice, out, in []byte) {
	b.mu.Lock()
	if d.closed || d.paused {
		b.mu.Unlock()
		return
	}
	d.snapshot = append(d.snapshot[:0], d.streams...)
	streams := d.snapshot
	gain := d.gain
	b.mu.Unlock()

	if out != nil {
		b.playbackPeriod(d, streams, out, gain)
	} else {
		b.recordingPeriod(d, streams, in, gain)
	}
}

func (b *SoftwareBackend) playbackPeriod(d *softDevice, streams []*softStream, out []byte, gain float32) {
	frames := len(out) / d.spec.FrameSize()
	need := frames * d.spec.Channels
	if cap(d.mix) < need {
		d.mix = make([]float32, need)
	}
	mix := d.mix[:need]
	clear(mix)

	for _, s := range streams {
		s.pull(d, mix, gain)
	}

	bps := d.spec.Format.BytesPerSample()
	for i, v := range mix {
		encodeSample(d.spec.Format, out[i*bps:], v)
	}
}

// pull mixes up to len(mix) device samples from s. The get callback runs
// first when buffered data cannot cover the period.
func (s *softStream) pull(d *softDevice, mix []float32, gain float32) {
	if !s.live(d) {
		return
	}
	ch := d.spec.Channels
	s.mu.Lock()
	missing := (len(mix) - len(s.pending)) / ch
	if missing > 0 {
		frames := missing
		if s.dst.Freq != d.spec.Freq {
			frames = (missing*s.dst.Freq+d.spec.Freq-1)/d.spec.Freq + 1
		}
		want := frames * s.dst.FrameSize()
		avail := s.availableLocked()
		s.mu.Unlock()

		if cb := s.cb.Get; cb != nil && s.live(d) {
			cb(max(want-avail, 0), want)
		}

		s.mu.Lock()
		if s.bridge == nil {
			s.mu.Unlock()
			return
		}
		if cap(s.read) < want {
			s.read = make([]byte, want)
		}
		n := s.getLocked(s.read[:want])
		s.pending = s.bridge.convertFloat(s.pending, s.read[:n])
	}
	n := min(len(mix), len(s.pending))
	mixInto(mix[:n], s.pending[:n], gain)
	s.pending = append(s.pending[:0], s.pending[n:]...)
	s.mu.Unlock()
}

func (b *SoftwareBackend) recordingPeriod(d *softDevice, streams []*softStream, in []byte, gain float32) {
	data := in
	if gain != 1 {
		d.scratch = append(d.scratch[:0], in...)
		bps := d.spec.Format.BytesPerSample()
		for i := 0; i+bps <= len(d.scratch); i += bps {
			encodeSample(d.spec.Format, d.scratch[i:], decodeSample(d.spec.Format, d.scratch[i:])*gain)
		}
		data = d.scratch
	}
	for _, s := range streams {
		s.push(d, data)
	}
}

// push feeds captured device data into s and runs the put callback with
// the number of bytes that became available.
func (s *softStream) push(d *softDevice, data []byte) {
	if !s.live(d) {
		return
	}
	s.mu.Lock()
	if s.bridge == nil {
		s.mu.Unlock()
		return
	}
	s.capture = s.bridge.convert(s.capture[:0], data)
	added, ok := s.putLocked(s.capture)
	total := s.availableLocked()
	s.mu.Unlock()

	if !ok {
		logger().Debug("recording overrun", "stream", uint64(s.id), "bytes", len(data))
		return
	}
	if cb := s.cb.Put; cb != nil && added > 0 && s.live(d) {
		cb(added, total)
	}
}
