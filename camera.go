package sdl

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// CameraPosition is where a camera faces on the device.
type CameraPosition int32

const (
	CameraPositionUnknown     CameraPosition = 0
	CameraPositionFrontFacing CameraPosition = 1
	CameraPositionBackFacing  CameraPosition = 2
)

func (p CameraPosition) String() string {
	switch p {
	case CameraPositionFrontFacing:
		return "front"
	case CameraPositionBackFacing:
		return "back"
	default:
		return "unknown"
	}
}

// PermissionState is the camera access decision. The backend moves it from
// pending to approved or denied, typically after a system prompt.
type PermissionState int32

const (
	PermissionDenied   PermissionState = -1
	PermissionPending  PermissionState = 0
	PermissionApproved PermissionState = 1
)

func (s PermissionState) String() string {
	switch s {
	case PermissionDenied:
		return "denied"
	case PermissionApproved:
		return "approved"
	default:
		return "pending"
	}
}

// CameraSpec is a capture format (SDL_CameraSpec).
type CameraSpec struct {
	Format         PixelFormat
	Colorspace     uint32
	Width          int
	Height         int
	FPSNumerator   int
	FPSDenominator int
}

// FPS returns the frame rate as a float, 0 if unset.
func (s CameraSpec) FPS() float64 {
	if s.FPSDenominator == 0 {
		return 0
	}
	return float64(s.FPSNumerator) / float64(s.FPSDenominator)
}

func (s CameraSpec) String() string {
	return fmt.Sprintf("%s %dx%d@%d/%d", s.Format, s.Width, s.Height, s.FPSNumerator, s.FPSDenominator)
}

// withDefaults fills the frame rate when only format and size were given.
func (s CameraSpec) withDefaults() CameraSpec {
	if s.FPSNumerator == 0 || s.FPSDenominator == 0 {
		s.FPSNumerator, s.FPSDenominator = 30, 1
	}
	return s
}

// CameraFormatStatus qualifies the result of Camera.Format.
type CameraFormatStatus int

const (
	CameraFormatOK      CameraFormatStatus = iota
	CameraFormatPending                    // permission not decided yet
	CameraFormatError
)

func (s CameraFormatStatus) String() string {
	switch s {
	case CameraFormatOK:
		return "ok"
	case CameraFormatPending:
		return "pending"
	default:
		return "error"
	}
}

// CameraFormat is the negotiated capture format of an open camera.
type CameraFormat struct {
	Status CameraFormatStatus
	Spec   CameraSpec
}

// Camera is an open capture device. Frames are acquired into a pool owned
// by the camera; destroying the camera invalidates every outstanding frame.
type Camera struct {
	resource
	backend   Backend
	requested CameraID
	spec      *CameraSpec
	pool      framePool
}

// OpenCamera opens id. A nil spec lets the backend choose the format;
// a spec without a frame rate is completed with 30 fps.
func OpenCamera(id CameraID, spec *CameraSpec) (*Camera, error) {
	b, err := requireBackend()
	if err != nil {
		return nil, err
	}
	var req *CameraSpec
	if spec != nil {
		if spec.Width < 0 || spec.Height < 0 {
			return nil, typeError("camera size %dx%d", spec.Width, spec.Height)
		}
		s := spec.withDefaults()
		req = &s
	}
	h, err := b.OpenCamera(id, req)
	if err != nil {
		return nil, err
	}
	c := &Camera{backend: b, requested: id, spec: req}
	c.init(h, func(h Handle) {
		c.pool.reset()
		c.backend.CloseCamera(h)
		logger().Debug("camera closed", "camera", uint32(id))
	})
	return c, nil
}

// DefaultCamera opens the first enumerated camera.
func DefaultCamera(spec *CameraSpec) (*Camera, error) {
	ids, err := Cameras()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, &BackendError{Op: "OpenCamera", Msg: "no cameras available"}
	}
	return OpenCamera(ids[0], spec)
}

// ID returns the instance id of the opened camera, or 0 once destroyed.
func (c *Camera) ID() CameraID {
	if !c.alive() {
		return 0
	}
	return c.backend.CameraInstanceID(c.Handle())
}

// Requested returns the id passed to OpenCamera, or 0 once destroyed.
func (c *Camera) Requested() CameraID {
	if !c.alive() {
		return 0
	}
	return c.requested
}

// PermissionState returns the current access decision. A destroyed camera
// reports the zero state and IsPending is false for it.
func (c *Camera) PermissionState() PermissionState {
	if !c.alive() {
		return PermissionPending
	}
	return c.backend.CameraPermissionState(c.Handle())
}

func (c *Camera) IsApproved() bool { return c.PermissionState() == PermissionApproved }
func (c *Camera) IsPending() bool  { return c.alive() && c.PermissionState() == PermissionPending }
func (c *Camera) IsDenied() bool   { return c.PermissionState() == PermissionDenied }

// Format returns the capture format. Until permission is granted the
// format is usually unknown and the status is CameraFormatPending.
func (c *Camera) Format() CameraFormat {
	if !c.alive() {
		return CameraFormat{Status: CameraFormatError}
	}
	if spec, ok := c.backend.CameraFormat(c.Handle()); ok {
		return CameraFormat{Status: CameraFormatOK, Spec: spec}
	}
	if c.PermissionState() == PermissionPending {
		return CameraFormat{Status: CameraFormatPending}
	}
	return CameraFormat{Status: CameraFormatError}
}

// AcquireFrame returns the next captured frame without blocking. The frame
// is invalid when the camera is destroyed, not yet approved, or has no new
// frame; an invalid frame needs no Release. A valid frame must be released
// before the next acquire.
func (c *Camera) AcquireFrame() *CameraFrame {
	h := c.pin()
	if h == 0 {
		return &CameraFrame{}
	}
	defer c.unpin()
	if c.backend.CameraPermissionState(h) != PermissionApproved {
		return &CameraFrame{}
	}
	fh, info := c.backend.AcquireCameraFrame(h)
	if fh == 0 {
		return &CameraFrame{}
	}
	slot, gen := c.pool.put(fh)
	f := &CameraFrame{camera: c, slot: slot, gen: gen, info: info}
	f.init(fh, nil)
	f.Ref()
	return f
}

// CameraFrame is one acquired frame. It is an index into its camera's frame
// pool, so a frame outliving its camera reads as released.
type CameraFrame struct {
	resource
	camera   *Camera
	slot     int
	gen      uint32
	info     FrameInfo
	released atomic.Bool
}

// Valid reports whether the frame holds pixel data that can be read.
func (f *CameraFrame) Valid() bool {
	return f.camera != nil && !f.released.Load() && f.alive() && f.camera.pool.live(f.slot, f.gen)
}

// Timestamp returns the capture time in nanoseconds, 0 for an invalid frame.
func (f *CameraFrame) Timestamp() uint64 {
	if !f.Valid() {
		return 0
	}
	return f.info.Timestamp
}

func (f *CameraFrame) Width() int {
	if !f.Valid() {
		return 0
	}
	return f.info.Width
}

func (f *CameraFrame) Height() int {
	if !f.Valid() {
		return 0
	}
	return f.info.Height
}

// Pitch returns the length of a row in bytes.
func (f *CameraFrame) Pitch() int {
	if !f.Valid() {
		return 0
	}
	return f.info.Pitch
}

func (f *CameraFrame) Format() PixelFormat {
	if !f.Valid() {
		return PixelFormatUnknown
	}
	return f.info.Format
}

// Pixels returns the frame data. It aliases backend memory and must not be
// used after Release.
func (f *CameraFrame) Pixels() []byte {
	if !f.Valid() {
		return nil
	}
	return f.info.Pixels
}

// Release returns the frame's buffer to the camera. Releasing an invalid
// or already released frame, or a frame whose camera is destroyed, does
// nothing.
func (f *CameraFrame) Release() {
	if f.camera == nil || !f.released.CompareAndSwap(false, true) {
		return
	}
	c := f.camera
	if fh := c.pool.take(f.slot, f.gen); fh != 0 {
		if h := c.pin(); h != 0 {
			c.backend.ReleaseCameraFrame(h, fh)
			c.unpin()
		}
	}
	_ = f.Unref()
}

// Close releases the frame and then destroys it.
func (f *CameraFrame) Close() error {
	f.Release()
	return f.Destroy()
}

// framePool tracks frames handed out by a camera. Each slot carries a
// generation that changes whenever the slot is released or the pool is
// reset, so a stale frame can never touch a recycled slot.
type framePool struct {
	mu    sync.Mutex
	slots []frameSlot
}

type frameSlot struct {
	frame Handle
	gen   uint32
	inUse bool
}

func (p *framePool) put(frame Handle) (int, uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.slots {
		if !p.slots[i].inUse {
			p.slots[i].frame = frame
			p.slots[i].inUse = true
			return i, p.slots[i].gen
		}
	}
	p.slots = append(p.slots, frameSlot{frame: frame, inUse: true})
	return len(p.slots) - 1, 0
}

func (p *framePool) live(slot int, gen uint32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slot >= 0 && slot < len(p.slots) && p.slots[slot].inUse && p.slots[slot].gen == gen
}

// take frees the slot and returns its backend frame, or 0 if the slot was
// already recycled.
func (p *framePool) take(slot int, gen uint32) Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	if slot < 0 || slot >= len(p.slots) {
		return 0
	}
	s := &p.slots[slot]
	if !s.inUse || s.gen != gen {
		return 0
	}
	h := s.frame
	s.frame = 0
	s.inUse = false
	s.gen++
	return h
}

func (p *framePool) outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.slots {
		if s.inUse {
			n++
		}
	}
	return n
}

func (p *framePool) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.slots {
		p.slots[i].frame = 0
		p.slots[i].inUse = false
		p.slots[i].gen++
	}
}

// OutstandingFrames returns the number of acquired frames not yet released.
func (c *Camera) OutstandingFrames() int { return c.pool.outstanding() }

// Cameras lists the connected cameras.
func Cameras() ([]CameraID, error) {
	b, err := requireBackend()
	if err != nil {
		return nil, err
	}
	return b.Cameras()
}

// CameraName returns the name of a connected camera.
func CameraName(id CameraID) string {
	b := CurrentBackend()
	if b == nil {
		return ""
	}
	return b.CameraName(id)
}

// CameraPositionOf returns where a connected camera faces.
func CameraPositionOf(id CameraID) CameraPosition {
	b := CurrentBackend()
	if b == nil {
		return CameraPositionUnknown
	}
	return b.CameraPosition(id)
}

// SupportedCameraFormats lists the capture formats of a connected camera.
func SupportedCameraFormats(id CameraID) ([]CameraSpec, error) {
	b, err := requireBackend()
	if err != nil {
		return nil, err
	}
	return b.CameraSupportedFormats(id)
}
