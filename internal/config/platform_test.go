package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPlatformFor maps Go targets to conda subdirs.
func TestPlatformFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		goos, goarch, want string
	}{
		{"linux", "amd64", "linux-64"},
		{"linux", "arm64", "linux-aarch64"},
		{"linux", "ppc64le", "linux-ppc64le"},
		{"darwin", "amd64", "osx-64"},
		{"darwin", "arm64", "osx-arm64"},
		{"windows", "amd64", "win-64"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, platformFor(tc.goos, tc.goarch), "%s/%s", tc.goos, tc.goarch)
	}
}

// TestArchiveBinaryPathFor checks the archive layout per OS.
func TestArchiveBinaryPathFor(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Library/bin/micromamba.exe", archiveBinaryPathFor("windows"))
	require.Equal(t, "bin/micromamba", archiveBinaryPathFor("linux"))
	require.Equal(t, "micromamba.exe", executableNameFor("windows"))
	require.Contains(t, DefaultArchiveURL(), Platform())
}
