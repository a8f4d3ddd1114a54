package sdl

import (
	"sync"
	"sync/atomic"
)

// Owned is the lifecycle contract shared by every native-handle-backed
// object in this package.
//
// A resource starts with zero references. Collaborators that must keep it
// alive across an asynchronous boundary call Ref and later Unref. Destroy
// tears the native handle down exactly once and only while no references
// are outstanding; DestroyWhenUnused defers the teardown to the last Unref.
type Owned interface {
	Ref() bool
	Unref() error
	Destroy() error
	DestroyWhenUnused() error
	Destroyed() bool
	Refs() int
}

// resource is embedded by every wrapper. The handle is non-zero iff the
// resource is not destroyed.
type resource struct {
	mu       sync.Mutex
	refs     int
	deferred bool
	handle   atomic.Uint64

	// destroyed is read without the lock from backend callback threads.
	destroyed atomic.Bool

	// pins counts in-flight native calls. Teardown sets destroyed first and
	// then waits for pins to drain, so a pin taken while another is held on
	// the same goroutine (a callback re-entering its stream) never blocks.
	pins    atomic.Int64
	drained *sync.Cond // lazily created under mu

	teardown func(h Handle)
}

func (r *resource) init(h Handle, teardown func(h Handle)) {
	r.handle.Store(uint64(h))
	r.teardown = teardown
}

// Handle returns the native handle, or 0 once destroyed.
func (r *resource) Handle() Handle {
	return Handle(r.handle.Load())
}

// Destroyed reports whether the native teardown has started.
func (r *resource) Destroyed() bool {
	return r.destroyed.Load()
}

// Refs returns the current reference count.
func (r *resource) Refs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refs
}

// Ref takes a reference. It is a no-op once the resource is destroyed so
// cleanup code racing a destroy does not fail; the return value reports
// whether a reference was taken.
func (r *resource) Ref() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed.Load() || r.deferred {
		return false
	}
	r.refs++
	return true
}

// Unref releases a reference. When the count reaches zero after a
// deferred destroy was requested, the native teardown runs now.
func (r *resource) Unref() error {
	r.mu.Lock()
	if r.refs == 0 {
		r.mu.Unlock()
		return ErrNoReferences
	}
	r.refs--
	run := r.refs == 0 && r.deferred
	if run {
		r.deferred = false
		r.destroyed.Store(true)
	}
	r.mu.Unlock()

	if run {
		r.release()
	}
	return nil
}

// Destroy releases the native handle synchronously.
func (r *resource) Destroy() error {
	r.mu.Lock()
	if r.refs != 0 {
		r.mu.Unlock()
		return ErrInUse
	}
	if r.destroyed.Load() || r.deferred {
		r.mu.Unlock()
		return ErrDestroyed
	}
	r.destroyed.Store(true)
	r.mu.Unlock()

	r.release()
	return nil
}

// DestroyWhenUnused requests a destroy. The native teardown runs
// immediately when no references are outstanding, otherwise on the Unref
// that brings the count to zero. No new references can be taken after it.
func (r *resource) DestroyWhenUnused() error {
	r.mu.Lock()
	if r.destroyed.Load() || r.deferred {
		r.mu.Unlock()
		return ErrDestroyed
	}
	if r.refs != 0 {
		r.deferred = true
		r.mu.Unlock()
		return nil
	}
	r.destroyed.Store(true)
	r.mu.Unlock()

	r.release()
	return nil
}

// Close implements io.Closer for scoped use with defer.
func (r *resource) Close() error {
	return r.Destroy()
}

// release runs the teardown once every pin taken before destroyed was set
// has been released. Callers set destroyed first.
func (r *resource) release() {
	r.mu.Lock()
	for r.pins.Load() != 0 {
		r.drainedCond().Wait()
	}
	r.mu.Unlock()

	h := Handle(r.handle.Swap(0))
	if h != 0 && r.teardown != nil {
		r.teardown(h)
	}
}

// alive reports whether the resource still owns a live handle.
func (r *resource) alive() bool {
	return !r.destroyed.Load() && r.handle.Load() != 0
}

func (r *resource) drainedCond() *sync.Cond {
	if r.drained == nil {
		r.drained = sync.NewCond(&r.mu)
	}
	return r.drained
}

// pin returns the live handle and holds off teardown until unpin. It
// never blocks, and pins may nest. It returns 0, with nothing to unpin,
// once the resource is destroyed.
func (r *resource) pin() Handle {
	r.pins.Add(1)
	h := Handle(r.handle.Load())
	if h == 0 || r.destroyed.Load() {
		r.unpin()
		return 0
	}
	return h
}

func (r *resource) unpin() {
	if r.pins.Add(-1) == 0 && r.destroyed.Load() {
		r.mu.Lock()
		r.drainedCond().Broadcast()
		r.mu.Unlock()
	}
}

// Using runs fn with res and destroys res when fn returns, whatever the
// outcome. The destroy error is returned if fn itself succeeded.
func Using[T Owned](res T, fn func(T) error) (err error) {
	defer func() {
		if derr := res.Destroy(); err == nil {
			err = derr
		}
	}()
	return fn(res)
}
