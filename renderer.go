package sdl

// Renderer draws textures into a window.
type Renderer struct {
	resource
	backend Backend
	window  *Window
}

// NewRenderer creates a renderer for w. It fails with ErrType if w is nil
// or already destroyed.
func NewRenderer(w *Window) (*Renderer, error) {
	if w == nil || !w.alive() {
		return nil, typeError("renderer requires a live window")
	}
	h, err := w.backend.CreateRenderer(w.Handle())
	if err != nil {
		return nil, err
	}
	if !w.Ref() {
		w.backend.DestroyRenderer(h)
		return nil, typeError("renderer requires a live window")
	}
	r := &Renderer{backend: w.backend, window: w}
	r.init(h, func(h Handle) {
		r.backend.DestroyRenderer(h)
		_ = r.window.Unref()
	})
	return r, nil
}

// Window returns the window the renderer targets, or nil once destroyed.
func (r *Renderer) Window() *Window {
	if !r.alive() {
		return nil
	}
	return r.window
}

// Clear fills the target with the draw color.
func (r *Renderer) Clear() bool {
	if !r.alive() {
		return false
	}
	return r.backend.RenderClear(r.Handle())
}

// Draw copies t onto the full render target.
func (r *Renderer) Draw(t *Texture) bool {
	if !r.alive() || t == nil || !t.alive() {
		return false
	}
	return r.backend.RenderTexture(r.Handle(), t.Handle())
}

// Present shows everything drawn since the last Present.
func (r *Renderer) Present() bool {
	if !r.alive() {
		return false
	}
	return r.backend.RenderPresent(r.Handle())
}
