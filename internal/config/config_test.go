package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks defaults and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Empty config gets defaults.
	cfg := new(Config)

	require.NoError(t, Validate(cfg))
	require.Equal(t, ModeChecksum, cfg.Artifact.Mode)
	require.Equal(t, DefaultChannel, cfg.Channel)
	require.Equal(t, DefaultPythonVersion, cfg.PythonVersion)
	require.Equal(t, cfg.Artifact.URL+".sha256", cfg.Artifact.ChecksumURL)
	require.NotEmpty(t, cfg.RootPrefix)

	// Unknown mode.
	cfg = &Config{Artifact: Artifact{Mode: "torrent"}}
	require.ErrorIs(t, Validate(cfg), errUnknownArtifactMode)

	// Bad URL.
	cfg = &Config{Artifact: Artifact{Mode: ModeChecksum, URL: "not a url"}}
	require.Error(t, Validate(cfg))

	// Negative retries.
	cfg = &Config{Retries: -1}
	require.ErrorIs(t, Validate(cfg), errNegativeRetries)

	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		RootPrefix: filepath.Join(dir, "root"),
		Artifact: Artifact{
			Mode:       ModeArchive,
			ArchiveURL: "https://micro.mamba.pm/api/micromamba/linux-64/latest",
		},
		TrustedHost: true,
		Retries:     5,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.RootPrefix, loaded.RootPrefix)
	require.Equal(t, cfg.Artifact.ArchiveURL, loaded.Artifact.ArchiveURL)
	require.Equal(t, ModeArchive, loaded.Artifact.Mode)
	require.True(t, loaded.TrustedHost)
	require.Equal(t, 5, loaded.Retries)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoadOrDefault falls back to defaults only when the file is missing.
func TestLoadOrDefault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := LoadOrDefault(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultRootPrefix(), cfg.RootPrefix)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("root_prefix: [unclosed"), DefaultFilePermissions))

	_, err = LoadOrDefault(broken)
	require.Error(t, err)
}

// TestBinaryPath follows the layout of each acquisition mode.
func TestBinaryPath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	cfg := &Config{RootPrefix: root, Artifact: Artifact{Mode: ModeChecksum}}
	require.Equal(t, filepath.Join(root, ExecutableName()), cfg.BinaryPath())

	cfg.Artifact.Mode = ModeArchive
	require.Equal(t, filepath.Join(root, filepath.FromSlash(ArchiveBinaryPath())), cfg.BinaryPath())
	require.Equal(t, filepath.Join(root, "pkgs"), cfg.PackageCacheDir())
}
