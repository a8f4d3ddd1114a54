package sdl

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by this package wraps one of these
// (or is a *BackendError), so callers can branch with errors.Is.
var (
	// ErrType reports an argument of the wrong shape, e.g. a nil or dead
	// parent passed to a constructor.
	ErrType = errors.New("sdl: invalid argument")

	// ErrState reports an operation that is invalid in the resource's
	// current lifecycle state.
	ErrState = errors.New("sdl: invalid state")
)

var (
	// ErrDestroyed is returned when destroying a resource twice, or when
	// operating on a resource whose handle has been released.
	ErrDestroyed = fmt.Errorf("%w: resource already destroyed", ErrState)

	// ErrInUse is returned by Destroy while references are outstanding.
	ErrInUse = fmt.Errorf("%w: resource has active references", ErrState)

	// ErrNoReferences is returned by Unref when the count is already zero.
	ErrNoReferences = fmt.Errorf("%w: resource has no active references", ErrState)

	// ErrNoBackend is returned by constructors when no backend is registered.
	ErrNoBackend = fmt.Errorf("%w: no backend registered", ErrState)
)

// BackendError carries a failure reported by the native backend.
type BackendError struct {
	Op  string // backend operation, e.g. "OpenAudioDevice"
	Msg string // backend's last error string
}

func (e *BackendError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("sdl: %s failed", e.Op)
	}
	return fmt.Sprintf("sdl: %s failed: %s", e.Op, e.Msg)
}

func typeError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrType}, args...)...)
}
