// Package sdl provides reference-counted Go wrappers over an SDL3-style
// multimedia backend: windows, renderers and textures, event polling,
// audio devices and converting audio streams, and cameras with a
// permission-gated frame pool.
//
// Key pieces include:
//   - Owned resources with Ref/Unref/Destroy and deferred destruction
//   - Window -> Renderer -> Texture chains that keep their parents alive
//   - AudioDevice and AudioStream with pull/push callbacks that are never
//     delivered to a destroyed stream
//   - Camera and CameraFrame, gated by the pending/approved/denied
//     permission state
//   - WAVRecorder and L16 RTP packetizers for getting audio out of a stream
//
// # Ownership
//
//	Window <- Renderer <- Texture       (children hold a reference on parents)
//	AudioDevice <- AudioStream binding (a bound stream holds its device)
//	Camera -> CameraFrame pool          (frames are invalid once released)
//
// Destroy fails with ErrInUse while references are outstanding;
// DestroyWhenUnused defers it until the last Unref.
//
// # Backends
//
// Every constructor uses the backend installed with RegisterBackend. On
// Linux and macOS the native SDL3 backend registers itself at init when
// libSDL3 can be loaded with purego; set SDL3_LIB_PATH to the directory
// holding it. NewSoftwareBackend provides a headless pure-Go backend with
// configurable devices, cameras and permission policy, driven either by a
// null clock or by miniaudio through malgo.
//
// # Build Tags
//
// Optional tags disable features:
//   - nosdl3: disable the native SDL3 binding
//   - nomalgo: disable the miniaudio driver (which also needs cgo)
package sdl
