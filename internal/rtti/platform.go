package rtti

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Platform identifies the host in plugin descriptors.
type Platform struct {
	// Name is the descriptor platform name, e.g. "Linux".
	Name string
	// Bits is the pointer width.
	Bits int
}

// HostPlatform returns the platform the process runs on.
func HostPlatform() Platform {
	return Platform{Name: PlatformName(runtime.GOOS), Bits: strconv.IntSize}
}

// PlatformName maps a GOOS value to its descriptor platform name.
func PlatformName(goos string) string {
	switch goos {
	case "windows":
		return "Windows"
	case "linux":
		return "Linux"
	case "darwin", "ios":
		return "MacOSX"
	case "freebsd":
		return "FreeBSD"
	case "android":
		return "Android"
	default:
		return goos
	}
}

// BuildType selects debug or release plugin libraries.
type BuildType int

const (
	// BuildRelease selects release libraries.
	BuildRelease BuildType = iota
	// BuildDebug selects debug libraries.
	BuildDebug
)

// String returns the descriptor name of the build type.
func (b BuildType) String() string {
	if b == BuildDebug {
		return "Debug"
	}
	return "Release"
}

// ParseBuildType parses "debug" or "release", ignoring case.
func ParseBuildType(s string) (BuildType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "release", "":
		return BuildRelease, nil
	case "debug":
		return BuildDebug, nil
	default:
		return BuildRelease, fmt.Errorf("%w: %q", ErrInvalidBuildType, s)
	}
}
