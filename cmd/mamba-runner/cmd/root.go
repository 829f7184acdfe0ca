package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/mamba-runner/internal/config"
	"github.com/oshokin/mamba-runner/internal/logger"
	"github.com/oshokin/mamba-runner/internal/service/common"
	"github.com/oshokin/mamba-runner/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// envFile is an optional KEY=VALUE file imported before configuration is resolved.
	envFile string

	// overrides layers flags and environment variables over the configuration file.
	overrides = config.NewViper()

	// rootCmd represents the base command when called without any subcommands.
	rootCmd = &cobra.Command{
		Use:           "mamba-runner",
		Short:         "Manage micromamba Python environments and run scripts inside them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// exitCodeError carries a process exit status out of a command.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return "exit status " + strconv.Itoa(e.code)
}

// Execute runs the mamba-runner CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd, micromambaVersion)

	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err == nil {
		return
	}

	var exitErr *exitCodeError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.code)
	}

	logger.Error(ctx, err)
	os.Exit(1)
}

// loadSettings resolves the configuration: file (or defaults when the default
// file is absent), then environment variables, then flags.
func loadSettings(ctx context.Context) (*config.Config, error) {
	if envFile != "" && !config.ImportEnvFile(envFile) {
		logger.WarnKV(ctx, "Environment file was not loaded", "path", envFile)
	}

	var (
		cfg *config.Config
		err error
	)

	if configPath == config.DefaultConfigFilename {
		cfg, err = config.LoadOrDefault(configPath)
	} else {
		cfg, err = config.Load(configPath)
	}

	if err != nil {
		return nil, err
	}

	if err = config.ApplyOverrides(cfg, overrides); err != nil {
		return nil, err
	}

	level, ok := logger.ParseLogLevel(cfg.LogLevel)
	if !ok {
		logger.WarnKV(ctx, "Unknown log level, using info", "log_level", cfg.LogLevel)
	}

	logger.SetLevel(level)

	return cfg, nil
}

// micromambaVersion asks the installed executable for its version.
func micromambaVersion(ctx context.Context) (string, error) {
	cfg, err := loadSettings(ctx)
	if err != nil {
		return "", err
	}

	result, err := common.ExecuteChecked(ctx, common.NewExecutorFromConfig(cfg), []string{"--version"})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(result.Output)), nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVar(&envFile, "env-file", "", "KEY=VALUE file imported into the environment before startup")
	flags.String("root-prefix", "", "directory holding micromamba, its environments and package cache")
	flags.String("log-level", "", "minimum log level (debug, info, warn, error)")
	flags.Bool("trusted-host", false, "skip TLS verification for conda and PyPI hosts")

	_ = overrides.BindPFlag(config.KeyRootPrefix, flags.Lookup("root-prefix"))
	_ = overrides.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = overrides.BindPFlag(config.KeyTrustedHost, flags.Lookup("trusted-host"))
}
