package sdl

import (
	"encoding/binary"
)

// EventType identifies the kind of event held in an Event (SDL_EventType).
type EventType uint32

const (
	EventFirst                    EventType = 0
	EventQuit                     EventType = 0x100
	EventTerminating              EventType = 0x101
	EventLowMemory                EventType = 0x102
	EventWindowShown              EventType = 0x202
	EventWindowHidden             EventType = 0x203
	EventWindowExposed            EventType = 0x204
	EventWindowMoved              EventType = 0x205
	EventWindowResized            EventType = 0x206
	EventWindowMouseEnter         EventType = 0x20C
	EventWindowMouseLeave         EventType = 0x20D
	EventWindowFocusGained        EventType = 0x20E
	EventWindowFocusLost          EventType = 0x20F
	EventWindowCloseRequested     EventType = 0x210
	EventKeyDown                  EventType = 0x300
	EventKeyUp                    EventType = 0x301
	EventTextInput                EventType = 0x303
	EventMouseMotion              EventType = 0x400
	EventMouseButtonDown          EventType = 0x401
	EventMouseButtonUp            EventType = 0x402
	EventMouseWheel               EventType = 0x403
	EventAudioDeviceAdded         EventType = 0x1100
	EventAudioDeviceRemoved       EventType = 0x1101
	EventAudioDeviceFormatChanged EventType = 0x1102
	EventCameraDeviceAdded        EventType = 0x1400
	EventCameraDeviceRemoved      EventType = 0x1401
	EventCameraDeviceApproved     EventType = 0x1402
	EventCameraDeviceDenied       EventType = 0x1403
	EventUser                     EventType = 0x8000
)

// Scancode is a physical key position (SDL_Scancode, USB HID usage).
type Scancode uint32

const (
	ScancodeUnknown   Scancode = 0
	ScancodeA         Scancode = 4
	ScancodeD         Scancode = 7
	ScancodeQ         Scancode = 20
	ScancodeS         Scancode = 22
	ScancodeW         Scancode = 26
	Scancode1         Scancode = 30
	ScancodeReturn    Scancode = 40
	ScancodeEscape    Scancode = 41
	ScancodeBackspace Scancode = 42
	ScancodeTab       Scancode = 43
	ScancodeSpace     Scancode = 44
	ScancodeRight     Scancode = 79
	ScancodeLeft      Scancode = 80
	ScancodeDown      Scancode = 81
	ScancodeUp        Scancode = 82
)

// EventRecord is the raw 128-byte SDL_Event union as the backend writes it.
type EventRecord [128]byte

// Field offsets inside SDL_Event.
const (
	eventOffType      = 0
	eventOffTimestamp = 8
	eventOffWindowID  = 16
	eventOffScancode  = 24
	eventOffKey       = 28
	eventOffMod       = 32
	eventOffDown      = 36
	eventOffRepeat    = 37
)

// Event is a reusable event record filled by Poller.Poll. Reusing one Event
// across polls keeps the event loop allocation-free.
type Event struct {
	rec EventRecord
}

// Type returns the type of the last polled event.
func (e *Event) Type() EventType {
	return EventType(binary.LittleEndian.Uint32(e.rec[eventOffType:]))
}

// Timestamp returns the event time in nanoseconds since backend init.
func (e *Event) Timestamp() uint64 {
	return binary.LittleEndian.Uint64(e.rec[eventOffTimestamp:])
}

// WindowID returns the id of the window that had focus, if any.
func (e *Event) WindowID() uint32 {
	return binary.LittleEndian.Uint32(e.rec[eventOffWindowID:])
}

// Key returns the keyboard projection of the record. Its fields are only
// meaningful for EventKeyDown and EventKeyUp.
func (e *Event) Key() KeyboardEvent {
	return KeyboardEvent{e: e}
}

// Record exposes the raw record for backends and tests.
func (e *Event) Record() *EventRecord { return &e.rec }

// KeyboardEvent is a read-only view of a keyboard event record.
type KeyboardEvent struct {
	e *Event
}

func (k KeyboardEvent) Scancode() Scancode {
	return Scancode(binary.LittleEndian.Uint32(k.e.rec[eventOffScancode:]))
}

// Keycode returns the virtual key code.
func (k KeyboardEvent) Keycode() uint32 {
	return binary.LittleEndian.Uint32(k.e.rec[eventOffKey:])
}

func (k KeyboardEvent) Mod() uint16 {
	return binary.LittleEndian.Uint16(k.e.rec[eventOffMod:])
}

func (k KeyboardEvent) Down() bool   { return k.e.rec[eventOffDown] != 0 }
func (k KeyboardEvent) Repeat() bool { return k.e.rec[eventOffRepeat] != 0 }

// Reset zeroes the record.
func (r *EventRecord) Reset() { *r = EventRecord{} }

// SetType writes the event type field.
func (r *EventRecord) SetType(t EventType) {
	binary.LittleEndian.PutUint32(r[eventOffType:], uint32(t))
}

// SetTimestamp writes the timestamp field.
func (r *EventRecord) SetTimestamp(ns uint64) {
	binary.LittleEndian.PutUint64(r[eventOffTimestamp:], ns)
}

// SetKey writes the keyboard fields of a key event.
func (r *EventRecord) SetKey(sc Scancode, keycode uint32, down, repeat bool) {
	binary.LittleEndian.PutUint32(r[eventOffScancode:], uint32(sc))
	binary.LittleEndian.PutUint32(r[eventOffKey:], keycode)
	r[eventOffDown] = boolByte(down)
	r[eventOffRepeat] = boolByte(repeat)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// Poller dequeues events from the backend event queue.
type Poller struct {
	backend Backend
}

// NewPoller returns a poller bound to the registered backend.
func NewPoller() (*Poller, error) {
	b, err := requireBackend()
	if err != nil {
		return nil, err
	}
	return &Poller{backend: b}, nil
}

// Poll dequeues one pending event into ev without blocking. It reports
// whether an event was dequeued; ev is left untouched otherwise.
func (p *Poller) Poll(ev *Event) (bool, error) {
	if ev == nil {
		return false, typeError("poll requires an event record")
	}
	return p.backend.PollEvent(&ev.rec), nil
}
