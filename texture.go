package sdl

// Texture is a pixel buffer owned by a renderer.
type Texture struct {
	resource
	backend  Backend
	renderer *Renderer
	width    int
	height   int
	format   PixelFormat
	access   TextureAccess
}

// NewTexture creates a width x height texture on r. A zero format selects
// PixelFormatRGBA32. Pass TextureAccessStreaming for textures updated every
// frame.
func NewTexture(r *Renderer, width, height int, format PixelFormat, access TextureAccess) (*Texture, error) {
	if r == nil || !r.alive() {
		return nil, typeError("texture requires a live renderer")
	}
	if width <= 0 || height <= 0 {
		return nil, typeError("texture size %dx%d", width, height)
	}
	if format == PixelFormatUnknown {
		format = PixelFormatRGBA32
	}
	h, err := r.backend.CreateTexture(r.Handle(), format, access, width, height)
	if err != nil {
		return nil, err
	}
	if !r.Ref() {
		r.backend.DestroyTexture(h)
		return nil, typeError("texture requires a live renderer")
	}
	t := &Texture{
		backend:  r.backend,
		renderer: r,
		width:    width,
		height:   height,
		format:   format,
		access:   access,
	}
	t.init(h, func(h Handle) {
		t.backend.DestroyTexture(h)
		_ = t.renderer.Unref()
	})
	return t, nil
}

// Renderer returns the owning renderer, or nil once destroyed.
func (t *Texture) Renderer() *Renderer {
	if !t.alive() {
		return nil
	}
	return t.renderer
}

// Width returns the texture width, or 0 once destroyed.
func (t *Texture) Width() int {
	if !t.alive() {
		return 0
	}
	return t.width
}

// Height returns the texture height, or 0 once destroyed.
func (t *Texture) Height() int {
	if !t.alive() {
		return 0
	}
	return t.height
}

// Format returns the pixel format, or PixelFormatUnknown once destroyed.
func (t *Texture) Format() PixelFormat {
	if !t.alive() {
		return PixelFormatUnknown
	}
	return t.format
}

// Access returns the access mode, or 0 once destroyed.
func (t *Texture) Access() TextureAccess {
	if !t.alive() {
		return 0
	}
	return t.access
}

// Update copies pixels into the texture. pitch is the byte length of one
// row in pixels. The caller keeps ownership of pixels.
func (t *Texture) Update(pixels []byte, pitch int) bool {
	if !t.alive() || pitch <= 0 {
		return false
	}
	if len(pixels) < t.format.FrameSize(t.width, t.height, pitch) {
		return false
	}
	return t.backend.UpdateTexture(t.Handle(), pixels, pitch)
}
