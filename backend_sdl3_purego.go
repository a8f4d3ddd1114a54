//go:build (darwin || linux) && !nosdl3

// Native SDL3 backend loaded at runtime with purego. No cgo is required;
// set SDL3_LIB_PATH to point at a directory holding libSDL3 when it is not
// installed system-wide.

package sdl

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// SDL_InitSubSystem flags.
const (
	sdlInitAudio  = 0x00000010
	sdlInitVideo  = 0x00000020
	sdlInitEvents = 0x00004000
	sdlInitCamera = 0x00010000
)

type sdlAudioSpec struct {
	format   uint32
	channels int32
	freq     int32
}

type sdlCameraSpec struct {
	format     uint32
	colorspace uint32
	width      int32
	height     int32
	fpsNum     int32
	fpsDenom   int32
}

// sdlSurface mirrors the leading fields of SDL_Surface.
type sdlSurface struct {
	flags  uint32
	format uint32
	w      int32
	h      int32
	pitch  int32
	_      int32
	pixels uintptr
}

var (
	sdlOnce    sync.Once
	sdlHandle  uintptr
	sdlInitErr error

	// Core
	sdlInitSubSystem func(flags uint32) bool
	sdlQuitSubSystem func(flags uint32)
	sdlGetError      func() uintptr
	sdlSetHint       func(name, value string) bool
	sdlFree          func(ptr uintptr)

	// Video
	sdlCreateWindow    func(title string, w, h int32, flags uint64) uintptr
	sdlDestroyWindow   func(window uintptr)
	sdlCreateRenderer  func(window uintptr, name uintptr) uintptr
	sdlDestroyRenderer func(renderer uintptr)
	sdlRenderClear     func(renderer uintptr) bool
	sdlRenderTexture   func(renderer, texture, srcRect, dstRect uintptr) bool
	sdlRenderPresent   func(renderer uintptr) bool
	sdlCreateTexture   func(renderer uintptr, format uint32, access int32, w, h int32) uintptr
	sdlUpdateTexture   func(texture, rect uintptr, pixels unsafe.Pointer, pitch int32) bool
	sdlDestroyTexture  func(texture uintptr)

	// Events
	sdlPollEvent func(event unsafe.Pointer) bool

	// Audio
	sdlGetAudioPlaybackDevices   func(count *int32) uintptr
	sdlGetAudioRecordingDevices  func(count *int32) uintptr
	sdlGetAudioDeviceName        func(id uint32) uintptr
	sdlGetAudioDeviceFormat      func(id uint32, spec unsafe.Pointer, frames *int32) bool
	sdlIsAudioDevicePlayback     func(id uint32) bool
	sdlIsAudioDevicePhysical     func(id uint32) bool
	sdlOpenAudioDevice           func(id uint32, spec unsafe.Pointer) uint32
	sdlCloseAudioDevice          func(id uint32)
	sdlPauseAudioDevice          func(id uint32) bool
	sdlResumeAudioDevice         func(id uint32) bool
	sdlAudioDevicePaused         func(id uint32) bool
	sdlGetAudioDeviceGain        func(id uint32) float32
	sdlSetAudioDeviceGain        func(id uint32, gain float32) bool
	sdlCreateAudioStream         func(src, dst unsafe.Pointer) uintptr
	sdlSetAudioStreamGetCallback func(stream, cb, userdata uintptr) bool
	sdlSetAudioStreamPutCallback func(stream, cb, userdata uintptr) bool
	sdlPutAudioStreamData        func(stream uintptr, buf unsafe.Pointer, n int32) bool
	sdlGetAudioStreamData        func(stream uintptr, buf unsafe.Pointer, n int32) int32
	sdlGetAudioStreamAvailable   func(stream uintptr) int32
	sdlFlushAudioStream          func(stream uintptr) bool
	sdlClearAudioStream          func(stream uintptr) bool
	sdlGetAudioStreamDevice      func(stream uintptr) uint32
	sdlBindAudioStream           func(device uint32, stream uintptr) bool
	sdlUnbindAudioStream         func(stream uintptr)
	sdlResumeAudioStreamDevice   func(stream uintptr) bool
	sdlDestroyAudioStream        func(stream uintptr)

	// Camera
	sdlGetCameras                func(count *int32) uintptr
	sdlGetCameraName             func(id uint32) uintptr
	sdlGetCameraPosition         func(id uint32) int32
	sdlGetCameraSupportedFormats func(id uint32, count *int32) uintptr
	sdlOpenCamera                func(id uint32, spec unsafe.Pointer) uintptr
	sdlCloseCamera               func(camera uintptr)
	sdlGetCameraPermissionState  func(camera uintptr) int32
	sdlGetCameraID               func(camera uintptr) uint32
	sdlGetCameraFormat           func(camera uintptr, spec unsafe.Pointer) bool
	sdlAcquireCameraFrame        func(camera uintptr, timestampNS *uint64) uintptr
	sdlReleaseCameraFrame        func(camera, frame uintptr)
)

func sdlLibraryNames() []string {
	if runtime.GOOS == "darwin" {
		return []string{"libSDL3.dylib", "libSDL3.0.dylib"}
	}
	return []string{"libSDL3.so.0", "libSDL3.so"}
}

func initSDL3() error {
	sdlOnce.Do(func() {
		names := sdlLibraryNames()
		var lastErr error
		candidates := names
		if p := findLibrary(names...); p != "" {
			candidates = append([]string{p}, names...)
		}
		for _, path := range candidates {
			sdlHandle, lastErr = purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
			if lastErr == nil {
				break
			}
		}
		if sdlHandle == 0 {
			sdlInitErr = fmt.Errorf("sdl: failed to load libSDL3: %w", lastErr)
			return
		}

		h := sdlHandle
		purego.RegisterLibFunc(&sdlInitSubSystem, h, "SDL_InitSubSystem")
		purego.RegisterLibFunc(&sdlQuitSubSystem, h, "SDL_QuitSubSystem")
		purego.RegisterLibFunc(&sdlGetError, h, "SDL_GetError")
		purego.RegisterLibFunc(&sdlSetHint, h, "SDL_SetHint")
		purego.RegisterLibFunc(&sdlFree, h, "SDL_free")

		purego.RegisterLibFunc(&sdlCreateWindow, h, "SDL_CreateWindow")
		purego.RegisterLibFunc(&sdlDestroyWindow, h, "SDL_DestroyWindow")
		purego.RegisterLibFunc(&sdlCreateRenderer, h, "SDL_CreateRenderer")
		purego.RegisterLibFunc(&sdlDestroyRenderer, h, "SDL_DestroyRenderer")
		purego.RegisterLibFunc(&sdlRenderClear, h, "SDL_RenderClear")
		purego.RegisterLibFunc(&sdlRenderTexture, h, "SDL_RenderTexture")
		purego.RegisterLibFunc(&sdlRenderPresent, h, "SDL_RenderPresent")
		purego.RegisterLibFunc(&sdlCreateTexture, h, "SDL_CreateTexture")
		purego.RegisterLibFunc(&sdlUpdateTexture, h, "SDL_UpdateTexture")
		purego.RegisterLibFunc(&sdlDestroyTexture, h, "SDL_DestroyTexture")

		purego.RegisterLibFunc(&sdlPollEvent, h, "SDL_PollEvent")

		purego.RegisterLibFunc(&sdlGetAudioPlaybackDevices, h, "SDL_GetAudioPlaybackDevices")
		purego.RegisterLibFunc(&sdlGetAudioRecordingDevices, h, "SDL_GetAudioRecordingDevices")
		purego.RegisterLibFunc(&sdlGetAudioDeviceName, h, "SDL_GetAudioDeviceName")
		purego.RegisterLibFunc(&sdlGetAudioDeviceFormat, h, "SDL_GetAudioDeviceFormat")
		purego.RegisterLibFunc(&sdlIsAudioDevicePlayback, h, "SDL_IsAudioDevicePlayback")
		purego.RegisterLibFunc(&sdlIsAudioDevicePhysical, h, "SDL_IsAudioDevicePhysical")
		purego.RegisterLibFunc(&sdlOpenAudioDevice, h, "SDL_OpenAudioDevice")
		purego.RegisterLibFunc(&sdlCloseAudioDevice, h, "SDL_CloseAudioDevice")
		purego.RegisterLibFunc(&sdlPauseAudioDevice, h, "SDL_PauseAudioDevice")
		purego.RegisterLibFunc(&sdlResumeAudioDevice, h, "SDL_ResumeAudioDevice")
		purego.RegisterLibFunc(&sdlAudioDevicePaused, h, "SDL_AudioDevicePaused")
		purego.RegisterLibFunc(&sdlGetAudioDeviceGain, h, "SDL_GetAudioDeviceGain")
		purego.RegisterLibFunc(&sdlSetAudioDeviceGain, h, "SDL_SetAudioDeviceGain")
		purego.RegisterLibFunc(&sdlCreateAudioStream, h, "SDL_CreateAudioStream")
		purego.RegisterLibFunc(&sdlSetAudioStreamGetCallback, h, "SDL_SetAudioStreamGetCallback")
		purego.RegisterLibFunc(&sdlSetAudioStreamPutCallback, h, "SDL_SetAudioStreamPutCallback")
		purego.RegisterLibFunc(&sdlPutAudioStreamData, h, "SDL_PutAudioStreamData")
		purego.RegisterLibFunc(&sdlGetAudioStreamData, h, "SDL_GetAudioStreamData")
		purego.RegisterLibFunc(&sdlGetAudioStreamAvailable, h, "SDL_GetAudioStreamAvailable")
		purego.RegisterLibFunc(&sdlFlushAudioStream, h, "SDL_FlushAudioStream")
		purego.RegisterLibFunc(&sdlClearAudioStream, h, "SDL_ClearAudioStream")
		purego.RegisterLibFunc(&sdlGetAudioStreamDevice, h, "SDL_GetAudioStreamDevice")
		purego.RegisterLibFunc(&sdlBindAudioStream, h, "SDL_BindAudioStream")
		purego.RegisterLibFunc(&sdlUnbindAudioStream, h, "SDL_UnbindAudioStream")
		purego.RegisterLibFunc(&sdlResumeAudioStreamDevice, h, "SDL_ResumeAudioStreamDevice")
		purego.RegisterLibFunc(&sdlDestroyAudioStream, h, "SDL_DestroyAudioStream")

		purego.RegisterLibFunc(&sdlGetCameras, h, "SDL_GetCameras")
		purego.RegisterLibFunc(&sdlGetCameraName, h, "SDL_GetCameraName")
		purego.RegisterLibFunc(&sdlGetCameraPosition, h, "SDL_GetCameraPosition")
		purego.RegisterLibFunc(&sdlGetCameraSupportedFormats, h, "SDL_GetCameraSupportedFormats")
		purego.RegisterLibFunc(&sdlOpenCamera, h, "SDL_OpenCamera")
		purego.RegisterLibFunc(&sdlCloseCamera, h, "SDL_CloseCamera")
		purego.RegisterLibFunc(&sdlGetCameraPermissionState, h, "SDL_GetCameraPermissionState")
		purego.RegisterLibFunc(&sdlGetCameraID, h, "SDL_GetCameraID")
		purego.RegisterLibFunc(&sdlGetCameraFormat, h, "SDL_GetCameraFormat")
		purego.RegisterLibFunc(&sdlAcquireCameraFrame, h, "SDL_AcquireCameraFrame")
		purego.RegisterLibFunc(&sdlReleaseCameraFrame, h, "SDL_ReleaseCameraFrame")

		sdlSetHint("SDL_NO_SIGNAL_HANDLERS", "1")
	})
	return sdlInitErr
}

// SDL3Available reports whether libSDL3 could be loaded.
func SDL3Available() bool {
	return initSDL3() == nil
}

// SDL3Backend drives the native SDL3 library. Subsystems are initialized
// on first use. On macOS video calls must come from the main thread.
type SDL3Backend struct {
	mu     sync.Mutex
	inited uint32
}

// NewSDL3Backend loads libSDL3.
func NewSDL3Backend() (*SDL3Backend, error) {
	if err := initSDL3(); err != nil {
		return nil, err
	}
	return &SDL3Backend{}, nil
}

func (b *SDL3Backend) Name() string { return "sdl3" }

func (b *SDL3Backend) LastError() string { return goStringFromPtr(sdlGetError()) }

// subsystem initializes the given SDL subsystem once.
func (b *SDL3Backend) subsystem(flag uint32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inited&flag != 0 {
		return true
	}
	if !sdlInitSubSystem(flag) {
		return false
	}
	b.inited |= flag
	return true
}

// Close shuts down every subsystem this backend started.
func (b *SDL3Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inited != 0 {
		sdlQuitSubSystem(b.inited)
		b.inited = 0
	}
}

// ---- video ----

func (b *SDL3Backend) CreateWindow(title string, width, height int, flags WindowFlags) (Handle, error) {
	if !b.subsystem(sdlInitVideo) {
		return 0, backendError(b, "CreateWindow")
	}
	w := sdlCreateWindow(title, int32(width), int32(height), uint64(flags))
	if w == 0 {
		return 0, backendError(b, "CreateWindow")
	}
	return Handle(w), nil
}

func (b *SDL3Backend) DestroyWindow(window Handle) { sdlDestroyWindow(uintptr(window)) }

func (b *SDL3Backend) CreateRenderer(window Handle) (Handle, error) {
	r := sdlCreateRenderer(uintptr(window), 0)
	if r == 0 {
		return 0, backendError(b, "CreateRenderer")
	}
	return Handle(r), nil
}

func (b *SDL3Backend) DestroyRenderer(renderer Handle) { sdlDestroyRenderer(uintptr(renderer)) }

func (b *SDL3Backend) RenderClear(renderer Handle) bool { return sdlRenderClear(uintptr(renderer)) }

func (b *SDL3Backend) RenderTexture(renderer, texture Handle) bool {
	return sdlRenderTexture(uintptr(renderer), uintptr(texture), 0, 0)
}

func (b *SDL3Backend) RenderPresent(renderer Handle) bool {
	return sdlRenderPresent(uintptr(renderer))
}

func (b *SDL3Backend) CreateTexture(renderer Handle, format PixelFormat, access TextureAccess, width, height int) (Handle, error) {
	t := sdlCreateTexture(uintptr(renderer), uint32(format), int32(access), int32(width), int32(height))
	if t == 0 {
		return 0, backendError(b, "CreateTexture")
	}
	return Handle(t), nil
}

func (b *SDL3Backend) UpdateTexture(texture Handle, pixels []byte, pitch int) bool {
	if len(pixels) == 0 {
		return false
	}
	return sdlUpdateTexture(uintptr(texture), 0, unsafe.Pointer(&pixels[0]), int32(pitch))
}

func (b *SDL3Backend) DestroyTexture(texture Handle) { sdlDestroyTexture(uintptr(texture)) }

// ---- events ----

func (b *SDL3Backend) PollEvent(record *EventRecord) bool {
	if !b.subsystem(sdlInitEvents) {
		return false
	}
	return sdlPollEvent(unsafe.Pointer(record))
}

// ---- audio ----

func (b *SDL3Backend) audioIDs(get func(*int32) uintptr) []AudioDeviceID {
	if !b.subsystem(sdlInitAudio) {
		return nil
	}
	var n int32
	p := get(&n)
	if p == 0 {
		return nil
	}
	defer sdlFree(p)
	raw := unsafe.Slice((*uint32)(unsafe.Pointer(p)), int(n))
	ids := make([]AudioDeviceID, len(raw))
	for i, id := range raw {
		ids[i] = AudioDeviceID(id)
	}
	return ids
}

func (b *SDL3Backend) AudioPlaybackDevices() []AudioDeviceID {
	return b.audioIDs(sdlGetAudioPlaybackDevices)
}

func (b *SDL3Backend) AudioRecordingDevices() []AudioDeviceID {
	return b.audioIDs(sdlGetAudioRecordingDevices)
}

func (b *SDL3Backend) AudioDeviceName(id AudioDeviceID) string {
	if !b.subsystem(sdlInitAudio) {
		return ""
	}
	return goStringFromPtr(sdlGetAudioDeviceName(uint32(id)))
}

func (b *SDL3Backend) AudioDeviceFormat(id AudioDeviceID) (AudioSpec, int, bool) {
	if !b.subsystem(sdlInitAudio) {
		return AudioSpec{}, 0, false
	}
	var spec sdlAudioSpec
	var frames int32
	if !sdlGetAudioDeviceFormat(uint32(id), unsafe.Pointer(&spec), &frames) {
		return AudioSpec{}, 0, false
	}
	return fromSDLAudioSpec(spec), int(frames), true
}

func (b *SDL3Backend) IsAudioDevicePlayback(id AudioDeviceID) bool {
	return sdlIsAudioDevicePlayback(uint32(id))
}

func (b *SDL3Backend) IsAudioDevicePhysical(id AudioDeviceID) bool {
	return sdlIsAudioDevicePhysical(uint32(id))
}

func (b *SDL3Backend) OpenAudioDevice(id AudioDeviceID, spec *AudioSpec) (AudioDeviceID, error) {
	if !b.subsystem(sdlInitAudio) {
		return 0, backendError(b, "OpenAudioDevice")
	}
	var ptr unsafe.Pointer
	var s sdlAudioSpec
	if spec != nil {
		s = toSDLAudioSpec(*spec)
		ptr = unsafe.Pointer(&s)
	}
	dev := sdlOpenAudioDevice(uint32(id), ptr)
	if dev == 0 {
		return 0, backendError(b, "OpenAudioDevice")
	}
	return AudioDeviceID(dev), nil
}

func (b *SDL3Backend) CloseAudioDevice(id AudioDeviceID) { sdlCloseAudioDevice(uint32(id)) }
func (b *SDL3Backend) PauseAudioDevice(id AudioDeviceID) bool {
	return sdlPauseAudioDevice(uint32(id))
}
func (b *SDL3Backend) ResumeAudioDevice(id AudioDeviceID) bool {
	return sdlResumeAudioDevice(uint32(id))
}
func (b *SDL3Backend) AudioDevicePaused(id AudioDeviceID) bool {
	return sdlAudioDevicePaused(uint32(id))
}
func (b *SDL3Backend) AudioDeviceGain(id AudioDeviceID) float32 {
	return sdlGetAudioDeviceGain(uint32(id))
}
func (b *SDL3Backend) SetAudioDeviceGain(id AudioDeviceID, gain float32) bool {
	return sdlSetAudioDeviceGain(uint32(id), gain)
}

// Stream callbacks share one native trampoline and are routed by the
// userdata token registered with SDL.
var (
	streamCallbackOnce sync.Once
	streamGetCallback  uintptr
	streamPutCallback  uintptr

	streamCallbacksMu sync.RWMutex
	streamCallbacks   map[uintptr]StreamCallbacks = make(map[uintptr]StreamCallbacks)
	streamTokens      map[Handle]uintptr          = make(map[Handle]uintptr)
	nextStreamToken   uintptr
)

func initStreamCallbacks() {
	streamCallbackOnce.Do(func() {
		streamGetCallback = purego.NewCallback(func(userdata, stream, additional, total uintptr) {
			dispatchStreamCallback(userdata, additional, total, false)
		})
		streamPutCallback = purego.NewCallback(func(userdata, stream, additional, total uintptr) {
			dispatchStreamCallback(userdata, additional, total, true)
		})
	})
}

func dispatchStreamCallback(token, additional, total uintptr, put bool) {
	streamCallbacksMu.RLock()
	cbs, ok := streamCallbacks[token]
	streamCallbacksMu.RUnlock()
	if !ok {
		return
	}
	// C ints arrive in the low 32 bits of the register.
	a, t := int(int32(uint32(additional))), int(int32(uint32(total)))
	if put {
		if cbs.Put != nil {
			cbs.Put(a, t)
		}
	} else if cbs.Get != nil {
		cbs.Get(a, t)
	}
}

func (b *SDL3Backend) CreateAudioStream(src, dst AudioSpec, callbacks StreamCallbacks) (Handle, error) {
	if !b.subsystem(sdlInitAudio) {
		return 0, backendError(b, "CreateAudioStream")
	}
	s, d := toSDLAudioSpec(src), toSDLAudioSpec(dst)
	stream := sdlCreateAudioStream(unsafe.Pointer(&s), unsafe.Pointer(&d))
	if stream == 0 {
		return 0, backendError(b, "CreateAudioStream")
	}
	h := Handle(stream)
	if callbacks.Get == nil && callbacks.Put == nil {
		return h, nil
	}

	initStreamCallbacks()
	streamCallbacksMu.Lock()
	nextStreamToken++
	token := nextStreamToken
	streamCallbacks[token] = callbacks
	streamTokens[h] = token
	streamCallbacksMu.Unlock()

	ok := true
	if callbacks.Get != nil {
		ok = sdlSetAudioStreamGetCallback(stream, streamGetCallback, token)
	}
	if ok && callbacks.Put != nil {
		ok = sdlSetAudioStreamPutCallback(stream, streamPutCallback, token)
	}
	if !ok {
		err := backendError(b, "SetAudioStreamCallback")
		b.DestroyAudioStream(h)
		return 0, err
	}
	return h, nil
}

func (b *SDL3Backend) PutAudioStreamData(stream Handle, p []byte) bool {
	if len(p) == 0 {
		return true
	}
	return sdlPutAudioStreamData(uintptr(stream), unsafe.Pointer(&p[0]), int32(len(p)))
}

func (b *SDL3Backend) GetAudioStreamData(stream Handle, p []byte) int {
	if len(p) == 0 {
		return 0
	}
	return int(sdlGetAudioStreamData(uintptr(stream), unsafe.Pointer(&p[0]), int32(len(p))))
}

func (b *SDL3Backend) AudioStreamAvailable(stream Handle) int {
	return int(sdlGetAudioStreamAvailable(uintptr(stream)))
}

func (b *SDL3Backend) FlushAudioStream(stream Handle) bool {
	return sdlFlushAudioStream(uintptr(stream))
}

func (b *SDL3Backend) ClearAudioStream(stream Handle) bool {
	return sdlClearAudioStream(uintptr(stream))
}

func (b *SDL3Backend) AudioStreamDevice(stream Handle) AudioDeviceID {
	return AudioDeviceID(sdlGetAudioStreamDevice(uintptr(stream)))
}

func (b *SDL3Backend) BindAudioStream(device AudioDeviceID, stream Handle) bool {
	return sdlBindAudioStream(uint32(device), uintptr(stream))
}

func (b *SDL3Backend) UnbindAudioStream(stream Handle) { sdlUnbindAudioStream(uintptr(stream)) }

func (b *SDL3Backend) ResumeAudioStreamDevice(stream Handle) bool {
	return sdlResumeAudioStreamDevice(uintptr(stream))
}

func (b *SDL3Backend) DestroyAudioStream(stream Handle) {
	streamCallbacksMu.Lock()
	token, ok := streamTokens[stream]
	delete(streamTokens, stream)
	streamCallbacksMu.Unlock()
	if ok {
		// Clearing a callback takes the stream lock, so no invocation is
		// running once these return.
		sdlSetAudioStreamGetCallback(uintptr(stream), 0, 0)
		sdlSetAudioStreamPutCallback(uintptr(stream), 0, 0)
		streamCallbacksMu.Lock()
		delete(streamCallbacks, token)
		streamCallbacksMu.Unlock()
	}
	sdlDestroyAudioStream(uintptr(stream))
}

func toSDLAudioSpec(s AudioSpec) sdlAudioSpec {
	return sdlAudioSpec{format: uint32(s.Format), channels: int32(s.Channels), freq: int32(s.Freq)}
}

func fromSDLAudioSpec(s sdlAudioSpec) AudioSpec {
	return AudioSpec{Format: AudioFormat(s.format), Channels: int(s.channels), Freq: int(s.freq)}
}

// ---- camera ----

func (b *SDL3Backend) Cameras() ([]CameraID, error) {
	if !b.subsystem(sdlInitCamera) {
		return nil, backendError(b, "GetCameras")
	}
	var n int32
	p := sdlGetCameras(&n)
	if p == 0 {
		return nil, backendError(b, "GetCameras")
	}
	defer sdlFree(p)
	raw := unsafe.Slice((*uint32)(unsafe.Pointer(p)), int(n))
	ids := make([]CameraID, len(raw))
	for i, id := range raw {
		ids[i] = CameraID(id)
	}
	return ids, nil
}

func (b *SDL3Backend) CameraName(id CameraID) string {
	if !b.subsystem(sdlInitCamera) {
		return ""
	}
	return goStringFromPtr(sdlGetCameraName(uint32(id)))
}

func (b *SDL3Backend) CameraPosition(id CameraID) CameraPosition {
	if !b.subsystem(sdlInitCamera) {
		return CameraPositionUnknown
	}
	return CameraPosition(sdlGetCameraPosition(uint32(id)))
}

func (b *SDL3Backend) CameraSupportedFormats(id CameraID) ([]CameraSpec, error) {
	if !b.subsystem(sdlInitCamera) {
		return nil, backendError(b, "GetCameraSupportedFormats")
	}
	var n int32
	p := sdlGetCameraSupportedFormats(uint32(id), &n)
	if p == 0 {
		return nil, backendError(b, "GetCameraSupportedFormats")
	}
	defer sdlFree(p)
	ptrs := unsafe.Slice((**sdlCameraSpec)(unsafe.Pointer(p)), int(n))
	specs := make([]CameraSpec, 0, len(ptrs))
	for _, sp := range ptrs {
		if sp != nil {
			specs = append(specs, fromSDLCameraSpec(*sp))
		}
	}
	return specs, nil
}

func (b *SDL3Backend) OpenCamera(id CameraID, spec *CameraSpec) (Handle, error) {
	if !b.subsystem(sdlInitCamera) {
		return 0, backendError(b, "OpenCamera")
	}
	var ptr unsafe.Pointer
	var s sdlCameraSpec
	if spec != nil {
		s = toSDLCameraSpec(*spec)
		ptr = unsafe.Pointer(&s)
	}
	c := sdlOpenCamera(uint32(id), ptr)
	if c == 0 {
		return 0, backendError(b, "OpenCamera")
	}
	return Handle(c), nil
}

func (b *SDL3Backend) CloseCamera(camera Handle) { sdlCloseCamera(uintptr(camera)) }

func (b *SDL3Backend) CameraPermissionState(camera Handle) PermissionState {
	return PermissionState(sdlGetCameraPermissionState(uintptr(camera)))
}

func (b *SDL3Backend) CameraInstanceID(camera Handle) CameraID {
	return CameraID(sdlGetCameraID(uintptr(camera)))
}

func (b *SDL3Backend) CameraFormat(camera Handle) (CameraSpec, bool) {
	var s sdlCameraSpec
	if !sdlGetCameraFormat(uintptr(camera), unsafe.Pointer(&s)) {
		return CameraSpec{}, false
	}
	return fromSDLCameraSpec(s), true
}

func (b *SDL3Backend) AcquireCameraFrame(camera Handle) (Handle, FrameInfo) {
	var ts uint64
	p := sdlAcquireCameraFrame(uintptr(camera), &ts)
	if p == 0 {
		return 0, FrameInfo{}
	}
	surf := (*sdlSurface)(unsafe.Pointer(p))
	info := FrameInfo{
		Timestamp: ts,
		Width:     int(surf.w),
		Height:    int(surf.h),
		Pitch:     int(surf.pitch),
		Format:    PixelFormat(surf.format),
	}
	if surf.pixels != 0 {
		size := info.Format.FrameSize(info.Width, info.Height, info.Pitch)
		if size <= 0 {
			size = info.Pitch * info.Height
		}
		info.Pixels = unsafe.Slice((*byte)(unsafe.Pointer(surf.pixels)), size)
	}
	return Handle(p), info
}

func (b *SDL3Backend) ReleaseCameraFrame(camera, frame Handle) {
	sdlReleaseCameraFrame(uintptr(camera), uintptr(frame))
}

func toSDLCameraSpec(s CameraSpec) sdlCameraSpec {
	return sdlCameraSpec{
		format:     uint32(s.Format),
		colorspace: s.Colorspace,
		width:      int32(s.Width),
		height:     int32(s.Height),
		fpsNum:     int32(s.FPSNumerator),
		fpsDenom:   int32(s.FPSDenominator),
	}
}

func fromSDLCameraSpec(s sdlCameraSpec) CameraSpec {
	return CameraSpec{
		Format:         PixelFormat(s.format),
		Colorspace:     s.colorspace,
		Width:          int(s.width),
		Height:         int(s.height),
		FPSNumerator:   int(s.fpsNum),
		FPSDenominator: int(s.fpsDenom),
	}
}

func init() {
	if CurrentBackend() != nil {
		return
	}
	b, err := NewSDL3Backend()
	if err != nil {
		logger().Debug("sdl3 backend unavailable", "error", err)
		return
	}
	RegisterBackend(b)
}
