package sdl

import (
	"context"
	"fmt"
)

// DeviceKind represents the type of media device.
type DeviceKind int

const (
	DeviceKindVideoInput  DeviceKind = iota // Camera
	DeviceKindAudioInput                    // Microphone
	DeviceKindAudioOutput                   // Speaker/headphones
)

func (k DeviceKind) String() string {
	switch k {
	case DeviceKindVideoInput:
		return "videoinput"
	case DeviceKindAudioInput:
		return "audioinput"
	case DeviceKindAudioOutput:
		return "audiooutput"
	default:
		return "unknown"
	}
}

// DeviceInfo describes a media device (like browser's MediaDeviceInfo).
type DeviceInfo struct {
	DeviceID string     // Stable within a process, e.g. "audiooutput:3"
	Kind     DeviceKind // Device type
	Label    string     // Human-readable device name

	Audio    AudioDeviceID  // set for audio devices
	Camera   CameraID       // set for cameras
	Position CameraPosition // cameras only
}

// EnumerateDevices lists every audio and camera device the backend knows
// about. A subsystem that fails to enumerate is skipped; the error is
// returned only when nothing could be listed.
func EnumerateDevices(ctx context.Context) ([]DeviceInfo, error) {
	b, err := requireBackend()
	if err != nil {
		return nil, err
	}

	var devices []DeviceInfo
	var firstErr error

	cams, err := b.Cameras()
	if err != nil {
		firstErr = err
	}
	for _, id := range cams {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		devices = append(devices, DeviceInfo{
			DeviceID: deviceID(DeviceKindVideoInput, uint32(id)),
			Kind:     DeviceKindVideoInput,
			Label:    b.CameraName(id),
			Camera:   id,
			Position: b.CameraPosition(id),
		})
	}

	for _, list := range []struct {
		kind DeviceKind
		ids  []AudioDeviceID
	}{
		{DeviceKindAudioInput, b.AudioRecordingDevices()},
		{DeviceKindAudioOutput, b.AudioPlaybackDevices()},
	} {
		for _, id := range list.ids {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			devices = append(devices, DeviceInfo{
				DeviceID: deviceID(list.kind, uint32(id)),
				Kind:     list.kind,
				Label:    b.AudioDeviceName(id),
				Audio:    id,
			})
		}
	}

	if len(devices) == 0 && firstErr != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", firstErr)
	}
	return devices, nil
}

func deviceID(kind DeviceKind, id uint32) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

// IsDeviceChange reports whether ev announces an audio or camera device
// being added or removed. Callers typically re-run EnumerateDevices.
func IsDeviceChange(ev *Event) bool {
	switch ev.Type() {
	case EventAudioDeviceAdded, EventAudioDeviceRemoved,
		EventCameraDeviceAdded, EventCameraDeviceRemoved:
		return true
	}
	return false
}
