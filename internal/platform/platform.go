// Package platform maps host operating systems to the bundled koi binaries.
//
// The launcher ships one prebuilt koi executable per supported platform,
// each in its own subdirectory next to the launcher. This package owns the
// static table describing that layout.
package platform

import (
	"path/filepath"
	"runtime"
)

// Key identifies a supported platform.
type Key string

// Supported platform keys.
const (
	Windows Key = "windows"
	Darwin  Key = "darwin"
	Linux   Key = "linux"
)

// Arch is the architecture tag every bundled binary is built for.
const Arch = "amd64"

// Layout describes where the koi binary for a platform lives relative to the
// install directory.
type Layout struct {
	Key        Key    `json:"platform" yaml:"platform" toml:"platform"`
	Subdir     string `json:"subdir" yaml:"subdir" toml:"subdir"`
	Executable string `json:"executable" yaml:"executable" toml:"executable"`
}

// layouts is ordered windows, darwin, linux. Table() returns it in this order.
var layouts = []Layout{
	{Key: Windows, Subdir: "koi_windows_amd64_v1", Executable: "koi.exe"},
	{Key: Darwin, Subdir: "koi_darwin_amd64_v1", Executable: "koi"},
	{Key: Linux, Subdir: "koi_linux_amd64_v1", Executable: "koi"},
}

var byKey = func() map[Key]Layout {
	m := make(map[Key]Layout, len(layouts))
	for _, l := range layouts {
		m[l.Key] = l
	}

	return m
}()

// Resolve maps a GOOS-style identifier to a platform key. Unrecognized
// identifiers resolve to Linux.
func Resolve(goos string) Key {
	if _, ok := byKey[Key(goos)]; ok {
		return Key(goos)
	}

	return Linux
}

// Known reports whether goos is one of the supported identifiers, i.e.
// whether Resolve returns it without falling back.
func Known(goos string) bool {
	_, ok := byKey[Key(goos)]
	return ok
}

// Current returns the key for the running host.
func Current() Key {
	return Resolve(runtime.GOOS)
}

// Lookup returns the layout for k. Unknown keys get the Linux layout.
func Lookup(k Key) Layout {
	if l, ok := byKey[k]; ok {
		return l
	}

	return byKey[Linux]
}

// Table returns a copy of the full layout table.
func Table() []Layout {
	out := make([]Layout, len(layouts))
	copy(out, layouts)

	return out
}

// Subdir returns the per-platform subdirectory name.
func (k Key) Subdir() string {
	return Lookup(k).Subdir
}

// Executable returns the executable file name, with ".exe" on Windows only.
func (k Key) Executable() string {
	return Lookup(k).Executable
}

// Arch returns the architecture tag of the bundled binary.
func (k Key) Arch() string {
	return Arch
}

// String returns the platform identifier.
func (k Key) String() string {
	return string(k)
}

// BinaryPath joins baseDir with the platform subdirectory and executable.
func BinaryPath(baseDir string, k Key) string {
	l := Lookup(k)
	return filepath.Join(baseDir, l.Subdir, l.Executable)
}
