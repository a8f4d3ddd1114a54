//go:build !cgo || nomalgo

package sdl

import "errors"

// MalgoDriver is unavailable in this build.
type MalgoDriver struct{ NullDriver }

// NewMalgoDriver reports that miniaudio support was not compiled in.
func NewMalgoDriver() (*MalgoDriver, error) {
	return nil, errors.New("sdl: miniaudio driver not built (needs cgo, without the nomalgo tag)")
}
