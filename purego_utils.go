//go:build (darwin || linux) && !nosdl3

// Shared helpers for the purego native binding.

package sdl

import (
	"os"
	"path/filepath"
	"unsafe"
)

// goStringFromPtr converts a NUL-terminated C string to a Go string.
func goStringFromPtr(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	p := unsafe.Pointer(ptr)
	var length int
	for *(*byte)(unsafe.Add(p, length)) != 0 {
		length++
		if length > 4096 { // Safety limit
			break
		}
	}
	if length == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(p), length))
}

// findLibrary returns the first existing candidate in the configured
// search paths, or "" to let the system loader search.
func findLibrary(names ...string) string {
	searchPaths := []string{
		os.Getenv("SDL3_LIB_PATH"),
		os.Getenv("SDL_LIB_PATH"),
	}
	if exe, err := os.Executable(); err == nil {
		searchPaths = append(searchPaths, filepath.Dir(exe))
	}
	if root := findModuleRoot(); root != "" {
		searchPaths = append(searchPaths, filepath.Join(root, "build"), filepath.Join(root, "lib"))
	}
	searchPaths = append(searchPaths,
		"/usr/local/lib",
		"/opt/homebrew/lib",
		"/usr/lib",
		"/usr/lib/x86_64-linux-gnu",
		"/usr/lib/aarch64-linux-gnu",
	)

	for _, p := range searchPaths {
		if p == "" {
			continue
		}
		for _, name := range names {
			candidate := filepath.Join(p, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

// findModuleRoot walks up the directory tree from the current working directory
// to find the module root (directory containing go.mod).
func findModuleRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
