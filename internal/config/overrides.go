package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that override file settings.
const EnvPrefix = "MAMBA_RUNNER"

// Keys that can be overridden by flags or environment variables.
const (
	KeyRootPrefix    = "root_prefix"
	KeyArtifactMode  = "artifact.mode"
	KeyChannel       = "channel"
	KeyPythonVersion = "python_version"
	KeyTrustedHost   = "trusted_host"
	KeyTimeout       = "timeout"
	KeyRetries       = "retries"
	KeyLogLevel      = "log_level"
)

// NewViper returns a viper instance bound to MAMBA_RUNNER_* variables.
// The root prefix is also read from MAMBA_ROOT_PREFIX, the variable
// micromamba itself honors, with the prefixed variable taking precedence.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		KeyArtifactMode,
		KeyChannel,
		KeyPythonVersion,
		KeyTrustedHost,
		KeyTimeout,
		KeyRetries,
		KeyLogLevel,
	} {
		_ = v.BindEnv(key)
	}

	_ = v.BindEnv(KeyRootPrefix, EnvPrefix+"_ROOT_PREFIX", RootPrefixEnv)

	return v
}

// ApplyOverrides copies every key set in v over cfg and validates the result.
// Flags bound to v count as set only when given on the command line.
func ApplyOverrides(cfg *Config, v *viper.Viper) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if v.IsSet(KeyRootPrefix) {
		cfg.RootPrefix = v.GetString(KeyRootPrefix)
	}

	if v.IsSet(KeyArtifactMode) {
		cfg.Artifact.Mode = ArtifactMode(strings.ToLower(v.GetString(KeyArtifactMode)))
	}

	if v.IsSet(KeyChannel) {
		cfg.Channel = v.GetString(KeyChannel)
	}

	if v.IsSet(KeyPythonVersion) {
		cfg.PythonVersion = v.GetString(KeyPythonVersion)
	}

	if v.IsSet(KeyTrustedHost) {
		cfg.TrustedHost = v.GetBool(KeyTrustedHost)
	}

	if v.IsSet(KeyTimeout) {
		cfg.Timeout = v.GetDuration(KeyTimeout)
	}

	if v.IsSet(KeyRetries) {
		cfg.Retries = v.GetInt(KeyRetries)
	}

	if v.IsSet(KeyLogLevel) {
		cfg.LogLevel = v.GetString(KeyLogLevel)
	}

	return Validate(cfg)
}
