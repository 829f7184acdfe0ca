package mambarc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/mamba-runner/internal/config"
)

// Filename is the name micromamba looks for inside the root prefix.
const Filename = ".mambarc"

// Settings is the subset of micromamba configuration managed by mamba-runner.
type Settings struct {
	// PkgsDirs lists package cache directories.
	PkgsDirs []string `yaml:"pkgs_dirs"`
	// Channels lists the default channels.
	Channels []string `yaml:"channels,omitempty"`
}

// ForConfig returns settings that point the package cache inside the root prefix.
func ForConfig(cfg *config.Config) *Settings {
	settings := &Settings{
		PkgsDirs: []string{cfg.PackageCacheDir()},
	}

	if cfg.Channel != "" {
		settings.Channels = []string{cfg.Channel}
	}

	return settings
}

// Repository defines persistence operations for micromamba settings.
type Repository interface {
	Load(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, settings *Settings) error
}

// FileRepository persists settings to a YAML file on disk.
type FileRepository struct {
	// path is the filesystem location of the settings file.
	path string
	// mu protects concurrent access to the settings file.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned when the settings file does not exist yet.
	ErrNotFound = errors.New("mambarc not found")

	errSettingsNotSet = errors.New("settings are not set")
)

// NewFileRepository creates a repository for the settings file inside rootPrefix.
func NewFileRepository(rootPrefix string) *FileRepository {
	return &FileRepository{
		path: filepath.Join(filepath.Clean(rootPrefix), Filename),
	}
}

// Path returns the location of the settings file.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the settings from disk.
func (r *FileRepository) Load(_ context.Context) (*Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read mambarc: %w", err)
	}

	var settings Settings
	if err = yaml.Unmarshal(contents, &settings); err != nil {
		return nil, fmt.Errorf("decode mambarc: %w", err)
	}

	return &settings, nil
}

// Save writes the settings to disk, creating the root prefix when needed.
func (r *FileRepository) Save(_ context.Context, settings *Settings) error {
	if settings == nil {
		return errSettingsNotSet
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode mambarc: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(r.path), config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("create root prefix: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write mambarc: %w", err)
	}

	return nil
}
