package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/mamba-runner/internal/domain/pyenv"
)

// ArtifactMode selects how the micromamba executable is acquired.
type ArtifactMode string

const (
	// ModeChecksum downloads the raw binary and verifies a detached SHA-256 digest.
	ModeChecksum ArtifactMode = "checksum"
	// ModeArchive downloads a compressed archive and extracts the binary from it.
	ModeArchive ArtifactMode = "archive"
)

// Artifact describes where the micromamba executable comes from.
type Artifact struct {
	// Mode is either checksum or archive.
	Mode ArtifactMode `yaml:"mode"`
	// URL points at the raw binary (checksum mode).
	URL string `yaml:"url"`
	// ChecksumURL points at the detached SHA-256 digest (checksum mode).
	ChecksumURL string `yaml:"checksum_url"`
	// ArchiveURL points at the compressed archive (archive mode).
	ArchiveURL string `yaml:"archive_url"`
}

// Config holds the settings shared by every mamba-runner command.
type Config struct {
	// RootPrefix is the directory holding the executable, environments and package cache.
	RootPrefix string `yaml:"root_prefix"`
	// Artifact controls acquisition of the executable.
	Artifact Artifact `yaml:"artifact"`
	// Channel is the conda channel used when creating environments.
	Channel string `yaml:"channel"`
	// PythonVersion is the default interpreter version for new environments.
	PythonVersion string `yaml:"python_version"`
	// TrustedHost bypasses TLS verification for package index hosts.
	TrustedHost bool `yaml:"trusted_host"`
	// Timeout bounds a single HTTP attempt while fetching artifacts.
	Timeout time.Duration `yaml:"timeout"`
	// Retries is the number of extra HTTP attempts after a failed download.
	Retries int `yaml:"retries"`
	// LogLevel is the minimum level of log messages.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "mamba-runner.yaml"

	// DefaultChannel is the conda channel used when none is configured.
	DefaultChannel = "conda-forge"

	// DefaultPythonVersion is pinned for new environments when none is configured.
	DefaultPythonVersion = pyenv.DefaultPythonVersion

	// DefaultTimeout is the default duration of a single HTTP attempt.
	DefaultTimeout = 5 * time.Minute

	// DefaultRetries is the default number of HTTP retries.
	DefaultRetries = 3

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// DefaultDirPermissions is used for directories created under the root prefix.
	DefaultDirPermissions = 0o755

	// RootPrefixEnv is the variable micromamba reads its root prefix from.
	RootPrefixEnv = "MAMBA_ROOT_PREFIX"

	// appDirName is the directory created under the user config directory.
	appDirName = "mamba-runner"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errRootPrefixRequired is returned when no root prefix could be determined.
	errRootPrefixRequired = errors.New("root prefix must be provided")
	// errUnknownArtifactMode is returned for unsupported acquisition modes.
	errUnknownArtifactMode = errors.New("unknown artifact mode")
	// errArtifactURLRequired is returned when the selected mode has no source URL.
	errArtifactURLRequired = errors.New("artifact url must be provided")
	// errNegativeRetries is returned when retries is below zero.
	errNegativeRetries = errors.New("retries must not be negative")
)

// Default returns a configuration filled with platform defaults.
func Default() *Config {
	cfg := new(Config)
	applyDefaults(cfg)

	return cfg
}

// DefaultRootPrefix derives the root prefix from the platform config directory.
func DefaultRootPrefix() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join("."+appDirName, "micromamba")
	}

	return filepath.Join(dir, appDirName, "micromamba")
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load but falls back to defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills in defaults and checks the provided settings.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	applyDefaults(cfg)

	if cfg.RootPrefix == "" {
		return errRootPrefixRequired
	}

	if cfg.Retries < 0 {
		return errNegativeRetries
	}

	switch cfg.Artifact.Mode {
	case ModeChecksum:
		if err := validateURL("artifact url", cfg.Artifact.URL); err != nil {
			return err
		}

		if err := validateURL("checksum url", cfg.Artifact.ChecksumURL); err != nil {
			return err
		}
	case ModeArchive:
		if err := validateURL("archive url", cfg.Artifact.ArchiveURL); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%q: %w", cfg.Artifact.Mode, errUnknownArtifactMode)
	}

	return nil
}

// BinaryPath returns where the executable lives for the configured acquisition mode.
func (c *Config) BinaryPath() string {
	if c.Artifact.Mode == ModeArchive {
		return filepath.Join(c.RootPrefix, filepath.FromSlash(ArchiveBinaryPath()))
	}

	return filepath.Join(c.RootPrefix, ExecutableName())
}

// PackageCacheDir returns the package cache directory inside the root prefix.
func (c *Config) PackageCacheDir() string {
	return filepath.Join(c.RootPrefix, "pkgs")
}

// applyDefaults fills empty fields.
func applyDefaults(cfg *Config) {
	if cfg.RootPrefix == "" {
		cfg.RootPrefix = DefaultRootPrefix()
	}

	cfg.RootPrefix = filepath.Clean(cfg.RootPrefix)

	if cfg.Artifact.Mode == "" {
		cfg.Artifact.Mode = ModeChecksum
	}

	if cfg.Artifact.URL == "" {
		cfg.Artifact.URL = DefaultBinaryURL()
	}

	if cfg.Artifact.ChecksumURL == "" {
		cfg.Artifact.ChecksumURL = cfg.Artifact.URL + ".sha256"
	}

	if cfg.Artifact.ArchiveURL == "" {
		cfg.Artifact.ArchiveURL = DefaultArchiveURL()
	}

	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}

	if cfg.PythonVersion == "" {
		cfg.PythonVersion = DefaultPythonVersion
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s: %w", name, errArtifactURLRequired)
	}

	if _, err := url.ParseRequestURI(raw); err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}

	return nil
}
