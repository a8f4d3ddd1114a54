package sdl

import (
	"sync"
)

// Handle is an opaque native handle. Zero is never a valid handle.
type Handle uint64

// AudioDeviceID identifies a physical or logical audio device.
type AudioDeviceID uint32

// Default device sentinels accepted by OpenAudioDevice.
const (
	AudioDeviceDefaultPlayback  AudioDeviceID = 0xFFFFFFFF
	AudioDeviceDefaultRecording AudioDeviceID = 0xFFFFFFFE
)

// CameraID identifies a camera device.
type CameraID uint32

// VideoBackend creates display surfaces, renderers and textures.
type VideoBackend interface {
	CreateWindow(title string, width, height int, flags WindowFlags) (Handle, error)
	DestroyWindow(window Handle)

	CreateRenderer(window Handle) (Handle, error)
	DestroyRenderer(renderer Handle)
	RenderClear(renderer Handle) bool
	RenderTexture(renderer, texture Handle) bool
	RenderPresent(renderer Handle) bool

	CreateTexture(renderer Handle, format PixelFormat, access TextureAccess, width, height int) (Handle, error)
	UpdateTexture(texture Handle, pixels []byte, pitch int) bool
	DestroyTexture(texture Handle)
}

// EventBackend dequeues pending events without blocking.
type EventBackend interface {
	PollEvent(record *EventRecord) bool
}

// StreamCallback is invoked by the backend from its audio thread. For a get
// callback additional is the number of bytes the device still needs; for a
// put callback it is the number of bytes just delivered. total is the
// amount the backend is working with in this cycle.
type StreamCallback func(additional, total int)

// StreamCallbacks holds the optional pull and push notifications of a
// stream. Nil members are not installed.
type StreamCallbacks struct {
	Get StreamCallback
	Put StreamCallback
}

// AudioBackend opens devices and owns format-converting stream buffers.
//
// Get and Put callbacks may be invoked concurrently with every other method.
// Once UnbindAudioStream or DestroyAudioStream returns the backend starts no
// new callback invocations for that stream; one already in flight may still
// complete.
type AudioBackend interface {
	AudioPlaybackDevices() []AudioDeviceID
	AudioRecordingDevices() []AudioDeviceID
	AudioDeviceName(id AudioDeviceID) string
	AudioDeviceFormat(id AudioDeviceID) (spec AudioSpec, sampleFrames int, ok bool)
	IsAudioDevicePlayback(id AudioDeviceID) bool
	IsAudioDevicePhysical(id AudioDeviceID) bool

	// OpenAudioDevice opens a logical device. A nil spec lets the backend
	// pick its defaults.
	OpenAudioDevice(id AudioDeviceID, spec *AudioSpec) (AudioDeviceID, error)
	CloseAudioDevice(id AudioDeviceID)
	PauseAudioDevice(id AudioDeviceID) bool
	ResumeAudioDevice(id AudioDeviceID) bool
	AudioDevicePaused(id AudioDeviceID) bool
	AudioDeviceGain(id AudioDeviceID) float32
	SetAudioDeviceGain(id AudioDeviceID, gain float32) bool

	CreateAudioStream(src, dst AudioSpec, callbacks StreamCallbacks) (Handle, error)
	PutAudioStreamData(stream Handle, p []byte) bool
	GetAudioStreamData(stream Handle, p []byte) int
	AudioStreamAvailable(stream Handle) int
	FlushAudioStream(stream Handle) bool
	ClearAudioStream(stream Handle) bool
	AudioStreamDevice(stream Handle) AudioDeviceID
	BindAudioStream(device AudioDeviceID, stream Handle) bool
	UnbindAudioStream(stream Handle)
	ResumeAudioStreamDevice(stream Handle) bool
	DestroyAudioStream(stream Handle)
}

// CameraBackend enumerates and opens capture devices.
type CameraBackend interface {
	Cameras() ([]CameraID, error)
	CameraName(id CameraID) string
	CameraPosition(id CameraID) CameraPosition
	CameraSupportedFormats(id CameraID) ([]CameraSpec, error)

	OpenCamera(id CameraID, spec *CameraSpec) (Handle, error)
	CloseCamera(camera Handle)
	CameraPermissionState(camera Handle) PermissionState
	CameraInstanceID(camera Handle) CameraID
	CameraFormat(camera Handle) (CameraSpec, bool)

	// AcquireCameraFrame returns 0 when no frame is ready.
	AcquireCameraFrame(camera Handle) (frame Handle, info FrameInfo)
	ReleaseCameraFrame(camera, frame Handle)
}

// FrameInfo describes an acquired camera frame. Pixels aliases backend
// memory and is only valid until the frame is released.
type FrameInfo struct {
	Timestamp uint64 // nanoseconds
	Width     int
	Height    int
	Pitch     int
	Format    PixelFormat
	Pixels    []byte
}

// Backend is the full native multimedia contract this package consumes.
type Backend interface {
	Name() string
	// LastError returns the message of the most recent backend failure.
	LastError() string
	VideoBackend
	EventBackend
	AudioBackend
	CameraBackend
}

// backendRegistry holds the active backend.
type backendRegistry struct {
	backend Backend
	mu      sync.RWMutex
}

var globalBackendRegistry = &backendRegistry{}

// RegisterBackend makes b the backend used by every constructor in this
// package. Resources keep the backend they were created with.
func RegisterBackend(b Backend) {
	globalBackendRegistry.mu.Lock()
	defer globalBackendRegistry.mu.Unlock()
	globalBackendRegistry.backend = b
	if b != nil {
		logger().Debug("backend registered", "backend", b.Name())
	}
}

// CurrentBackend returns the registered backend, or nil.
func CurrentBackend() Backend {
	globalBackendRegistry.mu.RLock()
	defer globalBackendRegistry.mu.RUnlock()
	return globalBackendRegistry.backend
}

func backendError(b Backend, op string) error {
	return &BackendError{Op: op, Msg: b.LastError()}
}

func requireBackend() (Backend, error) {
	b := CurrentBackend()
	if b == nil {
		return nil, ErrNoBackend
	}
	return b, nil
}
