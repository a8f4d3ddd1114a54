package sdl

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countedResource struct {
	resource
	teardowns atomic.Int32
}

func newCountedResource() *countedResource {
	r := &countedResource{}
	r.init(42, func(h Handle) { r.teardowns.Add(1) })
	return r
}

func TestResource_DestroyWithReferences(t *testing.T) {
	r := newCountedResource()
	require.True(t, r.Ref())

	err := r.Destroy()
	assert.ErrorIs(t, err, ErrInUse)
	assert.ErrorIs(t, err, ErrState)
	assert.False(t, r.Destroyed())
	assert.Equal(t, Handle(42), r.Handle())

	require.NoError(t, r.Unref())
	require.NoError(t, r.Destroy())
	assert.True(t, r.Destroyed())
	assert.Equal(t, Handle(0), r.Handle())
	assert.Equal(t, int32(1), r.teardowns.Load())
}

func TestResource_DestroyTwice(t *testing.T) {
	r := newCountedResource()
	require.NoError(t, r.Destroy())

	err := r.Destroy()
	assert.ErrorIs(t, err, ErrDestroyed)
	assert.ErrorIs(t, err, ErrState)
	assert.Equal(t, int32(1), r.teardowns.Load())
}

func TestResource_UnrefPastZero(t *testing.T) {
	r := newCountedResource()
	assert.ErrorIs(t, r.Unref(), ErrNoReferences)

	require.True(t, r.Ref())
	require.True(t, r.Ref())
	assert.Equal(t, 2, r.Refs())
	require.NoError(t, r.Unref())
	require.NoError(t, r.Unref())
	assert.ErrorIs(t, r.Unref(), ErrNoReferences)
}

func TestResource_RefAfterDestroy(t *testing.T) {
	r := newCountedResource()
	require.NoError(t, r.Close())
	assert.False(t, r.Ref())
	assert.Equal(t, 0, r.Refs())
}

func TestResource_DestroyWhenUnused(t *testing.T) {
	r := newCountedResource()
	require.True(t, r.Ref())

	require.NoError(t, r.DestroyWhenUnused())
	assert.False(t, r.Destroyed(), "teardown waits for the last reference")
	assert.False(t, r.Ref(), "no new references after a destroy request")
	assert.ErrorIs(t, r.DestroyWhenUnused(), ErrDestroyed)
	assert.ErrorIs(t, r.Destroy(), ErrInUse)

	require.NoError(t, r.Unref())
	assert.True(t, r.Destroyed())
	assert.Equal(t, int32(1), r.teardowns.Load())
}

func TestResource_DestroyWhenUnusedImmediate(t *testing.T) {
	r := newCountedResource()
	require.NoError(t, r.DestroyWhenUnused())
	assert.True(t, r.Destroyed())
	assert.Equal(t, int32(1), r.teardowns.Load())
}

func TestResource_ConcurrentDestroy(t *testing.T) {
	r := newCountedResource()

	var wg sync.WaitGroup
	var ok atomic.Int32
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Destroy() == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(1), r.teardowns.Load())
}

func TestResource_PinDelaysTeardown(t *testing.T) {
	r := newCountedResource()
	h := r.pin()
	require.Equal(t, Handle(42), h)

	done := make(chan error, 1)
	go func() { done <- r.Destroy() }()

	select {
	case <-done:
		t.Fatal("teardown ran while the handle was pinned")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, int32(0), r.teardowns.Load())

	r.unpin()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("destroy did not complete after unpin")
	}
	assert.Equal(t, int32(1), r.teardowns.Load())
	assert.Equal(t, Handle(0), r.pin(), "pin after destroy")
}

func TestResource_NestedPinDuringDestroy(t *testing.T) {
	r := newCountedResource()
	require.Equal(t, Handle(42), r.pin())

	done := make(chan error, 1)
	go func() { done <- r.Destroy() }()
	require.Eventually(t, r.Destroyed, time.Second, time.Millisecond)

	// The goroutine holding the outer pin re-enters while the destroy waits.
	nested := make(chan Handle, 1)
	go func() { nested <- r.pin() }()
	select {
	case h := <-nested:
		assert.Equal(t, Handle(0), h)
	case <-time.After(2 * time.Second):
		t.Fatal("nested pin blocked behind a pending destroy")
	}
	assert.Equal(t, int32(0), r.teardowns.Load())

	r.unpin()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("destroy did not complete after unpin")
	}
	assert.Equal(t, int32(1), r.teardowns.Load())
}

func TestResource_PinsNest(t *testing.T) {
	r := newCountedResource()
	require.Equal(t, Handle(42), r.pin())
	require.Equal(t, Handle(42), r.pin())
	r.unpin()
	r.unpin()
	require.NoError(t, r.Destroy())
	assert.Equal(t, int32(1), r.teardowns.Load())
}

func TestUsing(t *testing.T) {
	r := newCountedResource()
	err := Using(r, func(r *countedResource) error {
		assert.False(t, r.Destroyed())
		return nil
	})
	require.NoError(t, err)
	assert.True(t, r.Destroyed())

	failing := newCountedResource()
	boom := errors.New("boom")
	err = Using(failing, func(*countedResource) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.True(t, failing.Destroyed())

	// A reference still held when fn returns surfaces as the destroy error.
	held := newCountedResource()
	err = Using(held, func(r *countedResource) error {
		r.Ref()
		return nil
	})
	assert.ErrorIs(t, err, ErrInUse)
}
