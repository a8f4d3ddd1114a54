package sdl

import (
	"fmt"
	"strings"
)

// AudioDevice is an opened logical audio device. Streams are connected to
// it with BindStream; every bound stream holds a reference on the device,
// so it cannot be destroyed until they are unbound or destroyed.
// Do not destroy a device from one of its streams' callbacks.
type AudioDevice struct {
	resource
	backend   Backend
	requested AudioDeviceID
	id        AudioDeviceID
	spec      *AudioSpec
}

// OpenAudioDevice opens id, which may be a concrete device or one of the
// default sentinels. A nil spec lets the backend choose the format.
func OpenAudioDevice(id AudioDeviceID, spec *AudioSpec) (*AudioDevice, error) {
	b, err := requireBackend()
	if err != nil {
		return nil, err
	}
	if spec != nil && !spec.Valid() {
		return nil, typeError("invalid device spec %s", *spec)
	}
	logical, err := b.OpenAudioDevice(id, spec)
	if err != nil {
		return nil, err
	}
	d := &AudioDevice{backend: b, requested: id, id: logical}
	if spec != nil {
		s := *spec
		d.spec = &s
	}
	d.init(Handle(logical), func(Handle) {
		d.backend.CloseAudioDevice(d.id)
		logger().Debug("audio device closed", "device", uint32(d.id))
	})
	return d, nil
}

// DefaultPlaybackDevice opens the system default output.
func DefaultPlaybackDevice(spec *AudioSpec) (*AudioDevice, error) {
	return OpenAudioDevice(AudioDeviceDefaultPlayback, spec)
}

// DefaultRecordingDevice opens the system default input.
func DefaultRecordingDevice(spec *AudioSpec) (*AudioDevice, error) {
	return OpenAudioDevice(AudioDeviceDefaultRecording, spec)
}

// ID returns the logical device id, or 0 once destroyed.
func (d *AudioDevice) ID() AudioDeviceID {
	if !d.alive() {
		return 0
	}
	return d.id
}

// Requested returns the id passed to OpenAudioDevice, or 0 once destroyed.
func (d *AudioDevice) Requested() AudioDeviceID {
	if !d.alive() {
		return 0
	}
	return d.requested
}

// Spec returns the spec the device was opened with, nil if the backend
// defaults were used or the device is destroyed.
func (d *AudioDevice) Spec() *AudioSpec {
	if !d.alive() {
		return nil
	}
	return d.spec
}

// Name returns the device name, or "" once destroyed.
func (d *AudioDevice) Name() string {
	if !d.alive() {
		return ""
	}
	return d.backend.AudioDeviceName(d.id)
}

// Format returns the format the device is running with.
func (d *AudioDevice) Format() AudioDeviceFormat {
	if !d.alive() {
		return AudioDeviceFormat{}
	}
	spec, frames, ok := d.backend.AudioDeviceFormat(d.id)
	return AudioDeviceFormat{Valid: ok, SampleFrames: frames, Spec: spec}
}

// IsPlayback reports whether the device is an output.
func (d *AudioDevice) IsPlayback() bool {
	if !d.alive() {
		return false
	}
	return d.backend.IsAudioDevicePlayback(d.id)
}

// IsPhysical reports whether the id refers to hardware rather than a
// logical device. Opened devices are always logical.
func (d *AudioDevice) IsPhysical() bool {
	if !d.alive() {
		return false
	}
	return d.backend.IsAudioDevicePhysical(d.id)
}

// IsPaused reports whether device processing is paused.
func (d *AudioDevice) IsPaused() bool {
	if !d.alive() {
		return false
	}
	return d.backend.AudioDevicePaused(d.id)
}

// Pause stops callbacks and I/O. Pausing a paused device succeeds.
func (d *AudioDevice) Pause() bool {
	if !d.alive() {
		return false
	}
	return d.backend.PauseAudioDevice(d.id)
}

// Resume restarts a paused device. Resuming a running device succeeds.
func (d *AudioDevice) Resume() bool {
	if !d.alive() {
		return false
	}
	return d.backend.ResumeAudioDevice(d.id)
}

// Gain returns the device gain, or 0 once destroyed.
func (d *AudioDevice) Gain() float32 {
	if !d.alive() {
		return 0
	}
	return d.backend.AudioDeviceGain(d.id)
}

// SetGain changes the device gain. It takes effect immediately whether or
// not the device is paused.
func (d *AudioDevice) SetGain(gain float32) bool {
	if !d.alive() || gain < 0 {
		return false
	}
	return d.backend.SetAudioDeviceGain(d.id, gain)
}

// BindStream connects s to the device and resumes the device. Binding a
// stream already bound elsewhere is reported by the backend.
func (d *AudioDevice) BindStream(s *AudioStream) error {
	if s == nil {
		return typeError("bind requires an audio stream")
	}
	if !d.alive() {
		return fmt.Errorf("bind to device %d: %w", d.id, ErrDestroyed)
	}
	h := s.pin()
	if h == 0 {
		return fmt.Errorf("bind stream: %w", ErrDestroyed)
	}
	defer s.unpin()

	if !d.Ref() {
		return fmt.Errorf("bind to device %d: %w", d.id, ErrDestroyed)
	}
	if !d.backend.BindAudioStream(d.id, h) {
		_ = d.Unref()
		return backendError(d.backend, "BindAudioStream")
	}
	if prev := s.swapBound(d); prev != nil {
		_ = prev.Unref()
	}
	d.backend.ResumeAudioDevice(d.id)
	return nil
}

// UnbindStream disconnects s. It is a no-op when the device is destroyed
// or s is not bound to it.
func (d *AudioDevice) UnbindStream(s *AudioStream) {
	if s == nil || !d.alive() {
		return
	}
	h := s.pin()
	if h == 0 {
		return
	}
	defer s.unpin()
	if !s.takeBound(d) {
		return
	}
	d.backend.UnbindAudioStream(h)
	_ = d.Unref()
}

// AudioPlaybackDevices lists the physical output devices.
func AudioPlaybackDevices() ([]AudioDeviceID, error) {
	b, err := requireBackend()
	if err != nil {
		return nil, err
	}
	return b.AudioPlaybackDevices(), nil
}

// AudioRecordingDevices lists the physical input devices.
func AudioRecordingDevices() ([]AudioDeviceID, error) {
	b, err := requireBackend()
	if err != nil {
		return nil, err
	}
	return b.AudioRecordingDevices(), nil
}

// AudioDeviceName returns the name of a physical device.
func AudioDeviceName(id AudioDeviceID) string {
	b := CurrentBackend()
	if b == nil {
		return ""
	}
	return b.AudioDeviceName(id)
}

// AudioDeviceFormatOf returns the preferred format of a physical device.
func AudioDeviceFormatOf(id AudioDeviceID) AudioDeviceFormat {
	b := CurrentBackend()
	if b == nil {
		return AudioDeviceFormat{}
	}
	spec, frames, ok := b.AudioDeviceFormat(id)
	return AudioDeviceFormat{Valid: ok, SampleFrames: frames, Spec: spec}
}

// FindAudioDevice returns the first physical device whose name contains
// name, case-insensitively.
func FindAudioDevice(name string, playback bool) (AudioDeviceID, bool) {
	b := CurrentBackend()
	if b == nil {
		return 0, false
	}
	ids := b.AudioRecordingDevices()
	if playback {
		ids = b.AudioPlaybackDevices()
	}
	needle := strings.ToLower(name)
	for _, id := range ids {
		if strings.Contains(strings.ToLower(b.AudioDeviceName(id)), needle) {
			return id, true
		}
	}
	return 0, false
}
