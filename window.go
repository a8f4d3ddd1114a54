package sdl

// WindowFlags is a bitmask of window creation flags (SDL_WindowFlags).
type WindowFlags uint64

const (
	WindowFullscreen       WindowFlags = 0x0000000000000001
	WindowOpenGL           WindowFlags = 0x0000000000000002
	WindowOccluded         WindowFlags = 0x0000000000000004
	WindowHidden           WindowFlags = 0x0000000000000008
	WindowBorderless       WindowFlags = 0x0000000000000010
	WindowResizable        WindowFlags = 0x0000000000000020
	WindowMinimized        WindowFlags = 0x0000000000000040
	WindowMaximized        WindowFlags = 0x0000000000000080
	WindowHighPixelDensity WindowFlags = 0x0000000000002000
	WindowAlwaysOnTop      WindowFlags = 0x0000000000010000
	WindowVulkan           WindowFlags = 0x0000000010000000
	WindowMetal            WindowFlags = 0x0000000020000000
	WindowTransparent      WindowFlags = 0x0000000040000000
)

// Window is a display surface. Renderers hold a reference on the window
// they draw into, so a window cannot be destroyed while one is alive.
type Window struct {
	resource
	backend Backend
	title   string
	width   int
	height  int
	flags   WindowFlags
}

// NewWindow creates a window on the registered backend.
func NewWindow(title string, width, height int, flags WindowFlags) (*Window, error) {
	b, err := requireBackend()
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, typeError("window size %dx%d", width, height)
	}
	h, err := b.CreateWindow(title, width, height, flags)
	if err != nil {
		return nil, err
	}
	w := &Window{backend: b, title: title, width: width, height: height, flags: flags}
	w.init(h, b.DestroyWindow)
	return w, nil
}

// Title returns the title the window was created with, or "" once destroyed.
func (w *Window) Title() string {
	if !w.alive() {
		return ""
	}
	return w.title
}

// Size returns the creation size, or 0, 0 once destroyed.
func (w *Window) Size() (width, height int) {
	if !w.alive() {
		return 0, 0
	}
	return w.width, w.height
}

// Flags returns the creation flags, or 0 once destroyed.
func (w *Window) Flags() WindowFlags {
	if !w.alive() {
		return 0
	}
	return w.flags
}
