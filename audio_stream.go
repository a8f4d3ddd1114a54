package sdl

import (
	"sync"
	"unsafe"
)

// AudioStreamCallback is invoked from the audio thread. For a get callback
// additional is the number of bytes the device still needs and should be
// satisfied with Put before returning. For a put callback it is the number
// of bytes that just became available to Get.
//
// A callback never runs after the stream is destroyed, and panics are
// recovered and logged.
type AudioStreamCallback func(s *AudioStream, additional, total int)

// AudioStreamOptions configures NewAudioStream.
type AudioStreamOptions struct {
	Get AudioStreamCallback // pull: device needs more data (playback)
	Put AudioStreamCallback // push: device delivered data (recording)

	// Dispatcher, when set, moves callback execution off the audio thread
	// onto whichever goroutine runs the dispatcher.
	Dispatcher *Dispatcher
}

// AudioStream converts audio between a source and a target AudioSpec.
// Bound to a playback device, source is what the application writes; bound
// to a recording device, target is what the application reads.
//
// After Destroy every method returns its zero value.
type AudioStream struct {
	resource
	backend    Backend
	id         Handle
	src        AudioSpec
	dst        AudioSpec
	dispatcher *Dispatcher

	bindMu sync.Mutex
	bound  *AudioDevice
}

// NewAudioStream creates a stream converting from src to dst.
func NewAudioStream(src, dst AudioSpec, opts AudioStreamOptions) (*AudioStream, error) {
	b, err := requireBackend()
	if err != nil {
		return nil, err
	}
	if !src.Valid() {
		return nil, typeError("invalid source spec %s", src)
	}
	if !dst.Valid() {
		return nil, typeError("invalid target spec %s", dst)
	}

	s := &AudioStream{
		backend:    b,
		src:        src,
		dst:        dst,
		dispatcher: opts.Dispatcher,
	}
	h, err := b.CreateAudioStream(src, dst, StreamCallbacks{
		Get: s.trampoline(opts.Get, "get"),
		Put: s.trampoline(opts.Put, "put"),
	})
	if err != nil {
		return nil, err
	}
	s.id = h
	s.init(h, s.teardown)
	return s, nil
}

func (s *AudioStream) teardown(h Handle) {
	s.bindMu.Lock()
	d := s.bound
	s.bound = nil
	s.bindMu.Unlock()

	if d != nil {
		s.backend.UnbindAudioStream(h)
		_ = d.Unref()
	}
	s.backend.DestroyAudioStream(h)
	logger().Debug("audio stream destroyed", "stream", uint64(h))
}

// trampoline adapts an application callback to the backend signature.
func (s *AudioStream) trampoline(cb AudioStreamCallback, name string) StreamCallback {
	if cb == nil {
		return nil
	}
	return func(additional, total int) {
		if s.destroyed.Load() {
			return
		}
		if s.dispatcher != nil {
			s.dispatcher.post(callbackCall{stream: s, cb: cb, name: name, additional: additional, total: total})
			return
		}
		s.invoke(cb, name, additional, total)
	}
}

// invoke runs cb unless the stream has been destroyed in the meantime.
func (s *AudioStream) invoke(cb AudioStreamCallback, name string, additional, total int) {
	if s.destroyed.Load() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger().Error("audio stream callback panicked",
				"component", "audio_stream",
				"stream", uint64(s.id),
				"callback", name,
				"panic", r)
		}
	}()
	cb(s, additional, total)
}

// Source returns the input layout, or the zero spec once destroyed.
func (s *AudioStream) Source() AudioSpec {
	if !s.alive() {
		return AudioSpec{}
	}
	return s.src
}

// Target returns the output layout, or the zero spec once destroyed.
func (s *AudioStream) Target() AudioSpec {
	if !s.alive() {
		return AudioSpec{}
	}
	return s.dst
}

// Put queues p, in the source format, for conversion. It reports false if
// the stream is destroyed or the backend refused the data (for a bounded
// buffer, when it is full).
func (s *AudioStream) Put(p []byte) bool {
	h := s.pin()
	if h == 0 {
		return false
	}
	defer s.unpin()
	if len(p) == 0 {
		return true
	}
	return s.backend.PutAudioStreamData(h, p)
}

// PutAt queues n bytes of p starting at off. A negative n means the rest
// of p.
func (s *AudioStream) PutAt(p []byte, off, n int) bool {
	b, ok := window(p, off, n)
	if !ok {
		return false
	}
	return s.Put(b)
}

// PutFloat32 queues interleaved samples. The source format must be F32.
func (s *AudioStream) PutFloat32(samples []float32) bool {
	if s.src.Format != AudioFormatF32 {
		return false
	}
	return s.Put(float32Bytes(samples))
}

// Get reads converted data, in the target format, into p and returns the
// number of bytes written. It never returns more than Available reported
// and returns 0 once destroyed.
func (s *AudioStream) Get(p []byte) int {
	h := s.pin()
	if h == 0 {
		return 0
	}
	defer s.unpin()
	if len(p) == 0 {
		return 0
	}
	n := s.backend.GetAudioStreamData(h, p)
	if n < 0 {
		return 0
	}
	return n
}

// GetAt reads into p[off:off+n]. A negative n means the rest of p.
func (s *AudioStream) GetAt(p []byte, off, n int) int {
	b, ok := window(p, off, n)
	if !ok {
		return 0
	}
	return s.Get(b)
}

// GetFloat32 reads interleaved samples and returns how many were written.
// The target format must be F32.
func (s *AudioStream) GetFloat32(samples []float32) int {
	if s.dst.Format != AudioFormatF32 {
		return 0
	}
	return s.Get(float32Bytes(samples)) / 4
}

// Available returns the converted bytes ready for Get.
func (s *AudioStream) Available() int {
	h := s.pin()
	if h == 0 {
		return 0
	}
	defer s.unpin()
	n := s.backend.AudioStreamAvailable(h)
	if n < 0 {
		return 0
	}
	return n
}

// Flush pushes partially buffered input through the converter, making it
// available even if it does not fill a resampler window.
func (s *AudioStream) Flush() bool {
	h := s.pin()
	if h == 0 {
		return false
	}
	defer s.unpin()
	return s.backend.FlushAudioStream(h)
}

// Clear discards all buffered data.
func (s *AudioStream) Clear() bool {
	h := s.pin()
	if h == 0 {
		return false
	}
	defer s.unpin()
	return s.backend.ClearAudioStream(h)
}

// Device returns the id of the device the stream is bound to, or 0.
func (s *AudioStream) Device() AudioDeviceID {
	h := s.pin()
	if h == 0 {
		return 0
	}
	defer s.unpin()
	return s.backend.AudioStreamDevice(h)
}

// BoundDevice returns the wrapper of the device the stream is bound to.
func (s *AudioStream) BoundDevice() *AudioDevice {
	s.bindMu.Lock()
	defer s.bindMu.Unlock()
	return s.bound
}

// Resume unpauses the device the stream is bound to.
func (s *AudioStream) Resume() bool {
	h := s.pin()
	if h == 0 {
		return false
	}
	defer s.unpin()
	return s.backend.ResumeAudioStreamDevice(h)
}

func (s *AudioStream) swapBound(d *AudioDevice) *AudioDevice {
	s.bindMu.Lock()
	defer s.bindMu.Unlock()
	prev := s.bound
	s.bound = d
	return prev
}

// takeBound clears the binding if it points at d.
func (s *AudioStream) takeBound(d *AudioDevice) bool {
	s.bindMu.Lock()
	defer s.bindMu.Unlock()
	if s.bound != d {
		return false
	}
	s.bound = nil
	return true
}

// window returns p[off:off+n], with n < 0 meaning the remainder.
func window(p []byte, off, n int) ([]byte, bool) {
	if off < 0 || off > len(p) {
		return nil, false
	}
	if n < 0 {
		n = len(p) - off
	}
	if n > len(p)-off {
		return nil, false
	}
	return p[off : off+n], true
}

func float32Bytes(f []float32) []byte {
	if len(f) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&f[0])), len(f)*4)
}
