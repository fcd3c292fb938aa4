// Package platform classifies the host operating system. The result decides
// how command lines are handed to the process launcher.
package platform

import (
	"errors"
	"runtime"
	"sync"
)

// OS is the closed set of host kinds the deploy tooling can reason about.
type OS string

const (
	Windows OS = "Windows"
	Linux   OS = "Linux"
)

// ErrUnsupported is matched by errors.Is for any UnsupportedError.
var ErrUnsupported = errors.New("unsupported platform")

// UnsupportedError reports a host name outside the known set.
type UnsupportedError struct{ Name string }

func (e *UnsupportedError) Error() string { return "unsupported platform: " + e.Name }

func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }

// IsWindows reports whether o is the Windows kind.
func (o OS) IsWindows() bool { return o == Windows }

// IsLinux reports whether o is the Linux kind.
func (o OS) IsLinux() bool { return o == Linux }

// Parse maps a host name to an OS. Both runtime.GOOS spellings ("windows",
// "linux") and display spellings ("Windows", "Linux") are accepted.
func Parse(name string) (OS, error) {
	switch name {
	case "Windows", "windows":
		return Windows, nil
	case "Linux", "linux":
		return Linux, nil
	default:
		return "", &UnsupportedError{Name: name}
	}
}

// Detector resolves the host OS once and returns the cached value afterwards.
type Detector struct {
	hostName func() string

	once sync.Once
	os   OS
	err  error
}

// NewDetector returns a Detector backed by runtime.GOOS.
func NewDetector() *Detector {
	return &Detector{hostName: func() string { return runtime.GOOS }}
}

// NewDetectorFor returns a Detector that classifies the given name source.
func NewDetectorFor(hostName func() string) *Detector {
	return &Detector{hostName: hostName}
}

// Current returns the memoized classification.
func (d *Detector) Current() (OS, error) {
	d.once.Do(func() {
		d.os, d.err = Parse(d.hostName())
	})
	return d.os, d.err
}
