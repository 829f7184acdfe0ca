package config

import (
	"path"
	"runtime"
)

const (
	releaseURLTemplate = "https://github.com/mamba-org/micromamba-releases/releases/latest/download/micromamba-"
	archiveURLTemplate = "https://micro.mamba.pm/api/micromamba/"
)

// Platform returns the conda subdir name for the running OS and architecture,
// for example linux-64 or osx-arm64.
func Platform() string {
	return platformFor(runtime.GOOS, runtime.GOARCH)
}

// ExecutableName returns "micromamba.exe" on Windows and "micromamba" elsewhere.
func ExecutableName() string {
	return executableNameFor(runtime.GOOS)
}

// ArchiveBinaryPath returns the slash-separated location of the executable
// inside an extracted archive.
func ArchiveBinaryPath() string {
	return archiveBinaryPathFor(runtime.GOOS)
}

// DefaultBinaryURL returns the release URL of the raw binary for this platform.
func DefaultBinaryURL() string {
	return releaseURLTemplate + Platform()
}

// DefaultArchiveURL returns the URL of the compressed archive for this platform.
func DefaultArchiveURL() string {
	return archiveURLTemplate + Platform() + "/latest"
}

func platformFor(goos, goarch string) string {
	var osName string

	switch goos {
	case "darwin":
		osName = "osx"
	case "windows":
		osName = "win"
	default:
		osName = goos
	}

	switch goarch {
	case "amd64":
		return osName + "-64"
	case "arm64":
		if goos == "linux" {
			return osName + "-aarch64"
		}

		return osName + "-arm64"
	case "ppc64le":
		return osName + "-ppc64le"
	default:
		return osName + "-" + goarch
	}
}

func executableNameFor(goos string) string {
	if goos == "windows" {
		return "micromamba.exe"
	}

	return "micromamba"
}

func archiveBinaryPathFor(goos string) string {
	if goos == "windows" {
		return path.Join("Library", "bin", executableNameFor(goos))
	}

	return path.Join("bin", executableNameFor(goos))
}
