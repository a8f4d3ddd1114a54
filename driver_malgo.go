//go:build cgo && !nomalgo

package sdl

import (
	"fmt"
	"runtime"

	"github.com/gen2brain/malgo"
)

// MalgoDriver runs software backend devices on real hardware through
// miniaudio. Miniaudio calls the device callback from its own audio
// thread.
type MalgoDriver struct {
	ctx *malgo.AllocatedContext
}

// NewMalgoDriver initializes a miniaudio context on the platform's native
// backend.
func NewMalgoDriver() (*MalgoDriver, error) {
	var backends []malgo.Backend
	switch runtime.GOOS {
	case "linux":
		backends = []malgo.Backend{malgo.BackendAlsa, malgo.BackendPulseaudio}
	case "windows":
		backends = []malgo.Backend{malgo.BackendWasapi}
	case "darwin":
		backends = []malgo.Backend{malgo.BackendCoreaudio}
	}
	ctx, err := malgo.InitContext(backends, malgo.ContextConfig{}, func(message string) {
		logger().Debug("miniaudio", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("init miniaudio context: %w", err)
	}
	return &MalgoDriver{ctx: ctx}, nil
}

func (d *MalgoDriver) Name() string { return "miniaudio" }

func (d *MalgoDriver) Supports(spec AudioSpec) bool {
	_, ok := malgoFormat(spec.Format)
	return ok && spec.Valid()
}

func malgoFormat(f AudioFormat) (malgo.FormatType, bool) {
	switch f {
	case AudioFormatU8:
		return malgo.FormatU8, true
	case AudioFormatS16LE:
		return malgo.FormatS16, true
	case AudioFormatS32LE:
		return malgo.FormatS32, true
	case AudioFormatF32LE:
		return malgo.FormatF32, true
	}
	return malgo.FormatUnknown, false
}

func (d *MalgoDriver) Start(spec AudioSpec, periodFrames int, playback bool, cb DriverCallback) (DriverPort, error) {
	format, ok := malgoFormat(spec.Format)
	if !ok {
		return nil, &BackendError{Op: "OpenAudioDevice", Msg: fmt.Sprintf("miniaudio cannot run %s", spec.Format)}
	}

	var cfg malgo.DeviceConfig
	if playback {
		cfg = malgo.DefaultDeviceConfig(malgo.Playback)
		cfg.Playback.Format = format
		cfg.Playback.Channels = uint32(spec.Channels)
	} else {
		cfg = malgo.DefaultDeviceConfig(malgo.Capture)
		cfg.Capture.Format = format
		cfg.Capture.Channels = uint32(spec.Channels)
	}
	cfg.SampleRate = uint32(spec.Freq)
	cfg.PeriodSizeInFrames = uint32(periodFrames)
	cfg.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, in []byte, frames uint32) {
			if playback {
				cb(out, nil)
			} else {
				cb(nil, in)
			}
		},
		Stop: func() {
			logger().Debug("miniaudio device stopped", "playback", playback)
		},
	}
	dev, err := malgo.InitDevice(d.ctx.Context, cfg, callbacks)
	if err != nil {
		return nil, &BackendError{Op: "OpenAudioDevice", Msg: err.Error()}
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		return nil, &BackendError{Op: "OpenAudioDevice", Msg: err.Error()}
	}
	return &malgoPort{dev: dev}, nil
}

func (d *MalgoDriver) Close() error {
	if d.ctx == nil {
		return nil
	}
	err := d.ctx.Uninit()
	d.ctx.Free()
	d.ctx = nil
	return err
}

type malgoPort struct {
	dev *malgo.Device
}

func (p *malgoPort) Pause() error  { return p.dev.Stop() }
func (p *malgoPort) Resume() error { return p.dev.Start() }

// Close stops the device; miniaudio waits for the callback to return.
func (p *malgoPort) Close() error {
	p.dev.Uninit()
	return nil
}
