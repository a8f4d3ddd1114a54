package sdl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_NoBackend(t *testing.T) {
	withoutBackend(t)
	_, err := NewPoller()
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestPoller_NilEvent(t *testing.T) {
	newTestBackend(t)
	p, err := NewPoller()
	require.NoError(t, err)

	_, err = p.Poll(nil)
	assert.ErrorIs(t, err, ErrType)
}

func TestPoller_Empty(t *testing.T) {
	newTestBackend(t)
	p, err := NewPoller()
	require.NoError(t, err)

	var ev Event
	ok, err := p.Poll(&ev)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPoller_KeyboardAndQuit(t *testing.T) {
	b := newTestBackend(t)
	p, err := NewPoller()
	require.NoError(t, err)

	require.True(t, b.PushKey(ScancodeEscape, true))
	require.True(t, b.PushKey(ScancodeEscape, false))
	require.True(t, b.PushQuit())

	var ev Event
	ok, err := p.Poll(&ev)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, EventKeyDown, ev.Type())
	assert.Equal(t, ScancodeEscape, ev.Key().Scancode())
	assert.True(t, ev.Key().Down())
	assert.False(t, ev.Key().Repeat())
	assert.NotZero(t, ev.Timestamp())

	ok, _ = p.Poll(&ev)
	require.True(t, ok)
	assert.Equal(t, EventKeyUp, ev.Type())
	assert.False(t, ev.Key().Down())

	ok, _ = p.Poll(&ev)
	require.True(t, ok)
	assert.Equal(t, EventQuit, ev.Type())

	ok, _ = p.Poll(&ev)
	assert.False(t, ok)
}

func TestPoller_CustomRecord(t *testing.T) {
	b := newTestBackend(t)
	p, err := NewPoller()
	require.NoError(t, err)

	var rec EventRecord
	rec.SetType(EventUser)
	rec.SetTimestamp(uint64(time.Second))
	rec.SetKey(ScancodeSpace, 0x20, true, true)
	require.True(t, b.PushEvent(rec))

	var ev Event
	ok, err := p.Poll(&ev)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, EventUser, ev.Type())
	assert.Equal(t, uint64(time.Second), ev.Timestamp(), "explicit timestamp kept")
	assert.Equal(t, uint32(0x20), ev.Key().Keycode())
	assert.True(t, ev.Key().Repeat())

	ev.Record().Reset()
	assert.Equal(t, EventFirst, ev.Type())
}

func TestPoller_CameraPermissionEvent(t *testing.T) {
	newTestBackend(t)
	p, err := NewPoller()
	require.NoError(t, err)

	cam, err := DefaultCamera(nil)
	require.NoError(t, err)
	defer cam.Destroy()

	var ev Event
	ok, err := p.Poll(&ev)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, EventCameraDeviceApproved, ev.Type())
}
