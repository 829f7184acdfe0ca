package mambarc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/mamba-runner/internal/config"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(t.TempDir())
	s, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, s)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns equal settings.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "nested", "root")
	repo := NewFileRepository(root)

	cfg := &config.Config{RootPrefix: root, Channel: "conda-forge"}
	want := ForConfig(cfg)

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, []string{filepath.Join(root, "pkgs")}, got.PkgsDirs)

	_, err = os.Stat(filepath.Join(root, Filename))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, Filename), repo.Path())
}

// TestFileRepository_SaveNil rejects nil settings.
func TestFileRepository_SaveNil(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(t.TempDir())
	require.ErrorIs(t, repo.Save(context.Background(), nil), errSettingsNotSet)
}
