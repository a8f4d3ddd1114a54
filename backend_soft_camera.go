package sdl

import (
	"time"
)

type softCamera struct {
	id       CameraID
	spec     CameraSpec
	pitch    int
	opened   time.Time
	state    PermissionState
	renderer *patternRenderer

	frameNum uint64
	bufs     [][]byte
	busy     map[Handle]int // frame handle -> buffer index
}

func (b *SoftwareBackend) Cameras() ([]CameraID, error) {
	return append([]CameraID(nil), b.cameraIDs...), nil
}

func (b *SoftwareBackend) cameraConfig(id CameraID) (SoftwareCamera, bool) {
	if id == 0 || int(id) > len(b.config.Cameras) {
		return SoftwareCamera{}, false
	}
	return b.config.Cameras[id-1], true
}

func (b *SoftwareBackend) CameraName(id CameraID) string {
	c, _ := b.cameraConfig(id)
	return c.Name
}

func (b *SoftwareBackend) CameraPosition(id CameraID) CameraPosition {
	c, _ := b.cameraConfig(id)
	return c.Position
}

func (b *SoftwareBackend) CameraSupportedFormats(id CameraID) ([]CameraSpec, error) {
	c, ok := b.cameraConfig(id)
	if !ok {
		b.mu.Lock()
		defer b.mu.Unlock()
		return nil, b.fail("GetCameraSupportedFormats", "invalid camera id %d", id)
	}
	return append([]CameraSpec(nil), c.Formats...), nil
}

func (b *SoftwareBackend) OpenCamera(id CameraID, spec *CameraSpec) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cfg, ok := b.cameraConfig(id)
	if !ok {
		return 0, b.fail("OpenCamera", "invalid camera id %d", id)
	}

	var s CameraSpec
	if len(cfg.Formats) > 0 {
		s = cfg.Formats[0]
	}
	if spec != nil {
		if spec.Format != PixelFormatUnknown {
			s.Format = spec.Format
		}
		if spec.Width > 0 && spec.Height > 0 {
			s.Width, s.Height = spec.Width, spec.Height
		}
		if spec.FPSNumerator > 0 && spec.FPSDenominator > 0 {
			s.FPSNumerator, s.FPSDenominator = spec.FPSNumerator, spec.FPSDenominator
		}
		s.Colorspace = spec.Colorspace
	}
	if !patternSupported(s.Format) {
		return 0, b.fail("OpenCamera", "unsupported camera format %s", s.Format)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return 0, b.fail("OpenCamera", "invalid camera size %dx%d", s.Width, s.Height)
	}
	if s.FPSNumerator <= 0 || s.FPSDenominator <= 0 {
		s.FPSNumerator, s.FPSDenominator = 30, 1
	}

	pitch := patternPitch(s.Format, s.Width)
	size := s.Format.FrameSize(s.Width, s.Height, pitch)
	c := &softCamera{
		id:       id,
		spec:     s,
		pitch:    pitch,
		opened:   time.Now(),
		renderer: newPatternRenderer(b.config.Pattern, uint64(time.Now().UnixNano())),
		busy:     make(map[Handle]int),
	}
	for i := 0; i < b.config.CameraBuffers; i++ {
		c.bufs = append(c.bufs, make([]byte, size))
	}
	h := b.handle()
	b.cameras[h] = c
	b.decidePermission(c)
	return h, nil
}

// decidePermission applies the permission policy. b.mu must be held.
func (b *SoftwareBackend) decidePermission(c *softCamera) {
	if c.state != PermissionPending {
		return
	}
	policy := b.config.Permission
	if policy.Mode == PermissionManual || time.Since(c.opened) < policy.Delay {
		return
	}
	if policy.Mode == PermissionDeny {
		b.setPermission(c, PermissionDenied)
	} else {
		b.setPermission(c, PermissionApproved)
	}
}

func (b *SoftwareBackend) setPermission(c *softCamera, state PermissionState) {
	c.state = state
	var rec EventRecord
	if state == PermissionApproved {
		rec.SetType(EventCameraDeviceApproved)
	} else {
		rec.SetType(EventCameraDeviceDenied)
	}
	b.pushEvent(rec)
}

// ResolveCameraPermission approves or denies every open camera whose
// permission is still pending.
func (b *SoftwareBackend) ResolveCameraPermission(approve bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	state := PermissionDenied
	if approve {
		state = PermissionApproved
	}
	for _, c := range b.cameras {
		if c.state == PermissionPending {
			b.setPermission(c, state)
		}
	}
}

func (b *SoftwareBackend) CloseCamera(camera Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.cameras, camera)
}

func (b *SoftwareBackend) camera(h Handle) (*softCamera, bool) {
	c, ok := b.cameras[h]
	if !ok {
		b.lastErr = "invalid camera"
		return nil, false
	}
	b.decidePermission(c)
	return c, true
}

func (b *SoftwareBackend) CameraPermissionState(camera Handle) PermissionState {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.camera(camera)
	if !ok {
		return PermissionDenied
	}
	return c.state
}

func (b *SoftwareBackend) CameraInstanceID(camera Handle) CameraID {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.camera(camera); ok {
		return c.id
	}
	return 0
}

func (b *SoftwareBackend) CameraFormat(camera Handle) (CameraSpec, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.camera(camera)
	if !ok || c.state != PermissionApproved {
		return CameraSpec{}, false
	}
	return c.spec, true
}

func (b *SoftwareBackend) AcquireCameraFrame(camera Handle) (Handle, FrameInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.camera(camera)
	if !ok || c.state != PermissionApproved {
		return 0, FrameInfo{}
	}
	idx := -1
	for i := range c.bufs {
		if !c.bufInUse(i) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, FrameInfo{}
	}

	buf := c.bufs[idx]
	c.renderer.render(buf, c.spec.Format, c.spec.Width, c.spec.Height, c.pitch, c.frameNum)
	ts := c.frameNum * uint64(time.Second) * uint64(c.spec.FPSDenominator) / uint64(c.spec.FPSNumerator)
	c.frameNum++

	h := b.handle()
	c.busy[h] = idx
	return h, FrameInfo{
		Timestamp: ts,
		Width:     c.spec.Width,
		Height:    c.spec.Height,
		Pitch:     c.pitch,
		Format:    c.spec.Format,
		Pixels:    buf,
	}
}

func (c *softCamera) bufInUse(i int) bool {
	for _, idx := range c.busy {
		if idx == i {
			return true
		}
	}
	return false
}

func (b *SoftwareBackend) ReleaseCameraFrame(camera, frame Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.cameras[camera]; ok {
		delete(c.busy, frame)
	}
}
