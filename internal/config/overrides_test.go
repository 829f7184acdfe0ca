package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestApplyOverrides_ExplicitValues replaces only the keys that are set.
func TestApplyOverrides_ExplicitValues(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "root")

	v := NewViper()
	v.Set(KeyRootPrefix, root)
	v.Set(KeyArtifactMode, "ARCHIVE")
	v.Set(KeyTrustedHost, "true")
	v.Set(KeyTimeout, "30s")
	v.Set(KeyRetries, "7")

	cfg := Default()
	require.NoError(t, ApplyOverrides(cfg, v))

	require.Equal(t, root, cfg.RootPrefix)
	require.Equal(t, ModeArchive, cfg.Artifact.Mode)
	require.True(t, cfg.TrustedHost)
	require.Equal(t, 30*time.Second, cfg.Timeout)
	require.Equal(t, 7, cfg.Retries)
	require.Equal(t, DefaultChannel, cfg.Channel)
	require.Equal(t, DefaultPythonVersion, cfg.PythonVersion)
}

// TestApplyOverrides_Invalid rejects values that fail validation.
func TestApplyOverrides_Invalid(t *testing.T) {
	t.Parallel()

	v := NewViper()
	v.Set(KeyRetries, -1)
	require.ErrorIs(t, ApplyOverrides(Default(), v), errNegativeRetries)

	v = NewViper()
	v.Set(KeyArtifactMode, "torrent")
	require.ErrorIs(t, ApplyOverrides(Default(), v), errUnknownArtifactMode)

	require.ErrorIs(t, ApplyOverrides(nil, NewViper()), errConfigIsNotSet)
}

// TestApplyOverrides_RootPrefixEnv reads the variable micromamba honors and
// lets the prefixed variable win.
func TestApplyOverrides_RootPrefixEnv(t *testing.T) {
	mambaRoot := filepath.Join(t.TempDir(), "mamba")
	runnerRoot := filepath.Join(t.TempDir(), "runner")

	t.Setenv(RootPrefixEnv, mambaRoot)
	t.Setenv(EnvPrefix+"_ROOT_PREFIX", "")
	t.Setenv(EnvPrefix+"_CHANNEL", "bioconda")

	cfg := Default()
	require.NoError(t, ApplyOverrides(cfg, NewViper()))
	require.Equal(t, mambaRoot, cfg.RootPrefix)
	require.Equal(t, "bioconda", cfg.Channel)

	t.Setenv(EnvPrefix+"_ROOT_PREFIX", runnerRoot)

	cfg = Default()
	require.NoError(t, ApplyOverrides(cfg, NewViper()))
	require.Equal(t, runnerRoot, cfg.RootPrefix)
}
