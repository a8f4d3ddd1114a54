package sdl

import (
	"sync"
	"time"
)

// DriverCallback processes one device period. For playback, out must be
// filled with len(out) bytes in the device spec; for recording, in holds
// the captured bytes. Exactly one of them is non-nil.
type DriverCallback func(out, in []byte)

// DriverPort is a running device clock.
type DriverPort interface {
	Pause() error
	Resume() error
	Close() error
}

// DeviceDriver drives the audio thread of software backend devices.
type DeviceDriver interface {
	Name() string
	// Supports reports whether the driver can run a device in spec.
	Supports(spec AudioSpec) bool
	Start(spec AudioSpec, periodFrames int, playback bool, cb DriverCallback) (DriverPort, error)
	Close() error
}

// NullDriver is a device driver without hardware. Each started device
// runs its callback from its own goroutine every period, or only when
// Step is called if Manual is set.
type NullDriver struct {
	// Manual disables the clock goroutines; periods run on Step.
	Manual bool

	// Source fills recording periods. Nil records silence.
	Source func(in []byte, spec AudioSpec)

	// Sink observes every playback period after it was produced.
	Sink func(out []byte, spec AudioSpec)

	mu    sync.Mutex
	ports map[*nullPort]struct{}
}

// NewNullDriver returns a clocked null driver.
func NewNullDriver() *NullDriver {
	return &NullDriver{}
}

func (d *NullDriver) Name() string { return "null" }

func (d *NullDriver) Supports(spec AudioSpec) bool { return spec.Valid() }

func (d *NullDriver) Start(spec AudioSpec, periodFrames int, playback bool, cb DriverCallback) (DriverPort, error) {
	if periodFrames <= 0 {
		periodFrames = 1024
	}
	p := &nullPort{
		driver:   d,
		spec:     spec,
		playback: playback,
		cb:       cb,
		buf:      make([]byte, periodFrames*spec.FrameSize()),
		interval: time.Duration(float64(periodFrames) / float64(spec.Freq) * float64(time.Second)),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	d.mu.Lock()
	if d.ports == nil {
		d.ports = make(map[*nullPort]struct{})
	}
	d.ports[p] = struct{}{}
	d.mu.Unlock()

	if d.Manual {
		close(p.done)
	} else {
		go p.loop()
	}
	return p, nil
}

// Step runs one period on every running device, on the calling goroutine.
func (d *NullDriver) Step() {
	d.mu.Lock()
	ports := make([]*nullPort, 0, len(d.ports))
	for p := range d.ports {
		ports = append(ports, p)
	}
	d.mu.Unlock()

	for _, p := range ports {
		p.tick()
	}
}

func (d *NullDriver) Close() error {
	d.mu.Lock()
	ports := d.ports
	d.ports = nil
	d.mu.Unlock()
	for p := range ports {
		p.Close()
	}
	return nil
}

type nullPort struct {
	driver   *NullDriver
	spec     AudioSpec
	playback bool
	cb       DriverCallback
	interval time.Duration

	mu     sync.Mutex // serializes periods
	buf    []byte
	paused bool
	closed bool

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func (p *nullPort) loop() {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *nullPort) tick() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused || p.closed {
		return
	}
	if p.playback {
		clear(p.buf)
		p.cb(p.buf, nil)
		if sink := p.driver.Sink; sink != nil {
			sink(p.buf, p.spec)
		}
		return
	}
	if src := p.driver.Source; src != nil {
		src(p.buf, p.spec)
	} else {
		clear(p.buf)
	}
	p.cb(nil, p.buf)
}

func (p *nullPort) Pause() error {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
	return nil
}

func (p *nullPort) Resume() error {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
	return nil
}

// Close stops the clock and waits for an in-flight period to finish.
func (p *nullPort) Close() error {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.driver.mu.Lock()
	delete(p.driver.ports, p)
	p.driver.mu.Unlock()
	return nil
}
