package sdl

import (
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"golang.org/x/image/draw"
)

// SoftwareConfig configures a SoftwareBackend.
type SoftwareConfig struct {
	// StreamCapacity bounds the converted bytes an audio stream buffers.
	// Put fails once a stream is full. Default: 1 MiB.
	StreamCapacity int

	// PeriodFrames is the device buffer size in sample frames (default: 1024).
	PeriodFrames int

	// DeviceSpec is the format of physical devices and of devices opened
	// without a spec (default: DefaultAudioSpec).
	DeviceSpec AudioSpec

	// Driver clocks opened devices (default: a clocked NullDriver).
	Driver DeviceDriver

	PlaybackDevices  []string // physical output names
	RecordingDevices []string // physical input names

	Cameras       []SoftwareCamera
	Pattern       PatternConfig    // image produced by every camera
	Permission    PermissionPolicy // camera access decision
	CameraBuffers int              // frames a camera can have outstanding (default: 4)

	// EventQueueDepth bounds pending events; PushEvent fails beyond it
	// (default: 256).
	EventQueueDepth int
}

// SoftwareCamera describes an enumerated software camera.
type SoftwareCamera struct {
	Name     string
	Position CameraPosition
	Formats  []CameraSpec
}

// PermissionMode selects how camera access is decided.
type PermissionMode int

const (
	// PermissionApprove approves access once PermissionPolicy.Delay has
	// elapsed since the camera was opened.
	PermissionApprove PermissionMode = iota
	// PermissionDeny denies access once the delay has elapsed.
	PermissionDeny
	// PermissionManual keeps access pending until
	// SoftwareBackend.ResolveCameraPermission is called.
	PermissionManual
)

// PermissionPolicy decides camera access on the software backend.
type PermissionPolicy struct {
	Mode  PermissionMode
	Delay time.Duration
}

// DefaultSoftwareConfig returns a configuration with one playback device,
// one recording device and one front camera, approved immediately.
func DefaultSoftwareConfig() SoftwareConfig {
	return SoftwareConfig{
		StreamCapacity:   1 << 20,
		PeriodFrames:     1024,
		DeviceSpec:       DefaultAudioSpec,
		PlaybackDevices:  []string{"Software Playback"},
		RecordingDevices: []string{"Software Recording"},
		Cameras: []SoftwareCamera{{
			Name:     "Software Camera",
			Position: CameraPositionFrontFacing,
			Formats: []CameraSpec{
				{Format: PixelFormatRGBA32, Width: 640, Height: 480, FPSNumerator: 30, FPSDenominator: 1},
				{Format: PixelFormatYUY2, Width: 640, Height: 480, FPSNumerator: 30, FPSDenominator: 1},
				{Format: PixelFormatIYUV, Width: 320, Height: 240, FPSNumerator: 30, FPSDenominator: 1},
			},
		}},
		Pattern:         PatternConfig{Pattern: PatternColorBars},
		CameraBuffers:   4,
		EventQueueDepth: 256,
	}
}

// SoftwareBackend is a Backend implemented in Go. Rendering happens into
// in-memory images, audio devices are clocked by a DeviceDriver, cameras
// produce synthetic patterns and events come from PushEvent.
type SoftwareBackend struct {
	config SoftwareConfig
	driver DeviceDriver
	start  time.Time

	mu         sync.Mutex
	lastErr    string
	nextHandle Handle

	windows   map[Handle]*softWindow
	renderers map[Handle]*softRenderer
	textures  map[Handle]*softTexture
	events    []EventRecord

	physical     map[AudioDeviceID]*softPhysical
	playbackIDs  []AudioDeviceID
	recordingIDs []AudioDeviceID
	devices      map[AudioDeviceID]*softDevice
	streams      map[Handle]*softStream

	cameraIDs []CameraID
	cameras   map[Handle]*softCamera
}

// NewSoftwareBackend creates a backend. Zero config fields take the values
// of DefaultSoftwareConfig, except the device and camera lists, which may
// be left empty on purpose.
func NewSoftwareBackend(config SoftwareConfig) *SoftwareBackend {
	def := DefaultSoftwareConfig()
	if config.StreamCapacity <= 0 {
		config.StreamCapacity = def.StreamCapacity
	}
	if config.PeriodFrames <= 0 {
		config.PeriodFrames = def.PeriodFrames
	}
	if !config.DeviceSpec.Valid() {
		config.DeviceSpec = def.DeviceSpec
	}
	if config.CameraBuffers <= 0 {
		config.CameraBuffers = def.CameraBuffers
	}
	if config.EventQueueDepth <= 0 {
		config.EventQueueDepth = def.EventQueueDepth
	}
	driver := config.Driver
	if driver == nil {
		driver = NewNullDriver()
	}

	b := &SoftwareBackend{
		config:    config,
		driver:    driver,
		start:     time.Now(),
		windows:   make(map[Handle]*softWindow),
		renderers: make(map[Handle]*softRenderer),
		textures:  make(map[Handle]*softTexture),
		physical:  make(map[AudioDeviceID]*softPhysical),
		devices:   make(map[AudioDeviceID]*softDevice),
		streams:   make(map[Handle]*softStream),
		cameras:   make(map[Handle]*softCamera),
	}

	var next AudioDeviceID = 1
	for _, name := range config.PlaybackDevices {
		b.physical[next] = &softPhysical{id: next, name: name, playback: true}
		b.playbackIDs = append(b.playbackIDs, next)
		next++
	}
	for _, name := range config.RecordingDevices {
		b.physical[next] = &softPhysical{id: next, name: name}
		b.recordingIDs = append(b.recordingIDs, next)
		next++
	}
	for i := range config.Cameras {
		b.cameraIDs = append(b.cameraIDs, CameraID(i+1))
	}
	return b
}

func (b *SoftwareBackend) Name() string { return "software/" + b.driver.Name() }

// Driver returns the device driver.
func (b *SoftwareBackend) Driver() DeviceDriver { return b.driver }

func (b *SoftwareBackend) LastError() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// fail records msg as the last error and returns it as a BackendError.
// b.mu must be held.
func (b *SoftwareBackend) fail(op, format string, args ...any) error {
	b.lastErr = fmt.Sprintf(format, args...)
	return &BackendError{Op: op, Msg: b.lastErr}
}

// failed records msg and returns false. b.mu must be held.
func (b *SoftwareBackend) failed(format string, args ...any) bool {
	b.lastErr = fmt.Sprintf(format, args...)
	return false
}

func (b *SoftwareBackend) handle() Handle {
	b.nextHandle++
	return b.nextHandle
}

func (b *SoftwareBackend) now() uint64 {
	return uint64(time.Since(b.start).Nanoseconds())
}

// Close closes every open device and the driver.
func (b *SoftwareBackend) Close() error {
	b.mu.Lock()
	ids := make([]AudioDeviceID, 0, len(b.devices))
	for id := range b.devices {
		ids = append(ids, id)
	}
	b.mu.Unlock()
	for _, id := range ids {
		b.CloseAudioDevice(id)
	}
	return b.driver.Close()
}

type softWindow struct {
	title    string
	flags    WindowFlags
	renderer Handle
	frame    *image.RGBA // last presented image
}

type softRenderer struct {
	window Handle
	target *image.RGBA
}

type softTexture struct {
	renderer Handle
	format   PixelFormat
	access   TextureAccess
	img      *image.RGBA
}

const graphicsAPIFlags = WindowOpenGL | WindowVulkan | WindowMetal

func (b *SoftwareBackend) CreateWindow(title string, width, height int, flags WindowFlags) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if api := flags & graphicsAPIFlags; api&(api-1) != 0 {
		return 0, b.fail("CreateWindow", "window flags select more than one graphics API (%#x)", uint64(api))
	}
	h := b.handle()
	b.windows[h] = &softWindow{
		title: title,
		flags: flags,
		frame: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	return h, nil
}

func (b *SoftwareBackend) DestroyWindow(window Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.windows, window)
}

// WindowImage returns a copy of the last image presented to window.
func (b *SoftwareBackend) WindowImage(window Handle) *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[window]
	if !ok {
		return nil
	}
	img := image.NewRGBA(w.frame.Rect)
	copy(img.Pix, w.frame.Pix)
	return img
}

func (b *SoftwareBackend) CreateRenderer(window Handle) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[window]
	if !ok {
		return 0, b.fail("CreateRenderer", "invalid window")
	}
	if w.renderer != 0 {
		return 0, b.fail("CreateRenderer", "renderer already associated with window")
	}
	h := b.handle()
	w.renderer = h
	b.renderers[h] = &softRenderer{window: window, target: image.NewRGBA(w.frame.Rect)}
	return h, nil
}

func (b *SoftwareBackend) DestroyRenderer(renderer Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.renderers[renderer]
	if !ok {
		return
	}
	if w, ok := b.windows[r.window]; ok {
		w.renderer = 0
	}
	delete(b.renderers, renderer)
}

func (b *SoftwareBackend) RenderClear(renderer Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.renderers[renderer]
	if !ok {
		return b.failed("invalid renderer")
	}
	draw.Draw(r.target, r.target.Rect, image.NewUniform(color.RGBA{A: 255}), image.Point{}, draw.Src)
	return true
}

func (b *SoftwareBackend) RenderTexture(renderer, texture Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.renderers[renderer]
	if !ok {
		return b.failed("invalid renderer")
	}
	t, ok := b.textures[texture]
	if !ok || t.renderer != renderer {
		return b.failed("invalid texture")
	}
	if t.img.Rect.Size() == r.target.Rect.Size() {
		draw.Draw(r.target, r.target.Rect, t.img, image.Point{}, draw.Over)
	} else {
		draw.ApproxBiLinear.Scale(r.target, r.target.Rect, t.img, t.img.Rect, draw.Over, nil)
	}
	return true
}

func (b *SoftwareBackend) RenderPresent(renderer Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.renderers[renderer]
	if !ok {
		return b.failed("invalid renderer")
	}
	if w, ok := b.windows[r.window]; ok {
		copy(w.frame.Pix, r.target.Pix)
	}
	return true
}

// textureFormatSupported lists the packed formats textures can hold.
func textureFormatSupported(f PixelFormat) bool {
	switch f {
	case PixelFormatRGBA32, PixelFormatARGB8888, PixelFormatXRGB8888,
		PixelFormatRGB24, PixelFormatBGR24:
		return true
	}
	return false
}

func (b *SoftwareBackend) CreateTexture(renderer Handle, format PixelFormat, access TextureAccess, width, height int) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.renderers[renderer]; !ok {
		return 0, b.fail("CreateTexture", "invalid renderer")
	}
	if !textureFormatSupported(format) {
		return 0, b.fail("CreateTexture", "unsupported texture format %s", format)
	}
	if access < TextureAccessStatic || access > TextureAccessTarget {
		return 0, b.fail("CreateTexture", "invalid texture access %d", access)
	}
	h := b.handle()
	b.textures[h] = &softTexture{
		renderer: renderer,
		format:   format,
		access:   access,
		img:      image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	return h, nil
}

func (b *SoftwareBackend) UpdateTexture(texture Handle, pixels []byte, pitch int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.textures[texture]
	if !ok {
		return b.failed("invalid texture")
	}
	bpp := t.format.BytesPerPixel()
	w, h := t.img.Rect.Dx(), t.img.Rect.Dy()
	if pitch < w*bpp || len(pixels) < pitch*(h-1)+w*bpp {
		return b.failed("pixel buffer too small")
	}
	for y := 0; y < h; y++ {
		src := pixels[y*pitch:]
		dst := t.img.Pix[y*t.img.Stride:]
		for x := 0; x < w; x++ {
			s := src[x*bpp:]
			d := dst[x*4 : x*4+4]
			switch t.format {
			case PixelFormatRGBA32:
				d[0], d[1], d[2], d[3] = s[0], s[1], s[2], s[3]
			case PixelFormatARGB8888:
				d[0], d[1], d[2], d[3] = s[2], s[1], s[0], s[3]
			case PixelFormatXRGB8888:
				d[0], d[1], d[2], d[3] = s[2], s[1], s[0], 255
			case PixelFormatRGB24:
				d[0], d[1], d[2], d[3] = s[0], s[1], s[2], 255
			case PixelFormatBGR24:
				d[0], d[1], d[2], d[3] = s[2], s[1], s[0], 255
			}
		}
	}
	return true
}

func (b *SoftwareBackend) DestroyTexture(texture Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.textures, texture)
}

// PushEvent queues an event. The timestamp is filled in when zero. It
// reports false when the queue is full.
func (b *SoftwareBackend) PushEvent(rec EventRecord) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pushEvent(rec)
}

func (b *SoftwareBackend) pushEvent(rec EventRecord) bool {
	if len(b.events) >= b.config.EventQueueDepth {
		return b.failed("event queue full")
	}
	ev := Event{rec: rec}
	if ev.Timestamp() == 0 {
		rec.SetTimestamp(b.now())
	}
	b.events = append(b.events, rec)
	return true
}

// PushQuit queues a quit request.
func (b *SoftwareBackend) PushQuit() bool {
	var rec EventRecord
	rec.SetType(EventQuit)
	return b.PushEvent(rec)
}

// PushKey queues a key press or release.
func (b *SoftwareBackend) PushKey(sc Scancode, down bool) bool {
	var rec EventRecord
	if down {
		rec.SetType(EventKeyDown)
	} else {
		rec.SetType(EventKeyUp)
	}
	rec.SetKey(sc, 0, down, false)
	return b.PushEvent(rec)
}

func (b *SoftwareBackend) PollEvent(record *EventRecord) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return false
	}
	*record = b.events[0]
	b.events = b.events[1:]
	return true
}

// EnsureBackend returns the registered backend. When none is registered it
// installs a SoftwareBackend, driven by miniaudio when that driver is
// available and by a null clock otherwise.
func EnsureBackend() Backend {
	if b := CurrentBackend(); b != nil {
		return b
	}
	config := DefaultSoftwareConfig()
	if drv, err := NewMalgoDriver(); err == nil {
		config.Driver = drv
	} else {
		logger().Debug("using null audio driver", "error", err)
	}
	b := NewSoftwareBackend(config)
	RegisterBackend(b)
	return b
}
