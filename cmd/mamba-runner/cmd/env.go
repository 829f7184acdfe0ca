package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/mamba-runner/internal/config"
	"github.com/oshokin/mamba-runner/internal/domain/pyenv"
	"github.com/oshokin/mamba-runner/internal/logger"
	"github.com/oshokin/mamba-runner/internal/service/common"
	"github.com/oshokin/mamba-runner/internal/service/registry"
)

var (
	// pythonVersion overrides the configured interpreter version for env create.
	pythonVersion string

	envCmd = &cobra.Command{
		Use:   "env",
		Short: "Inspect, create and remove environments",
	}

	envListCmd = &cobra.Command{
		Use:   "list",
		Short: "Print the names of all environments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRegistry(cmd.Context(), false, func(ctx context.Context, _ *config.Config, reg *registry.Registry) error {
				names, err := reg.List(ctx)
				if err != nil {
					return err
				}

				for _, name := range names {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
				}

				return nil
			})
		},
	}

	envExistsCmd = &cobra.Command{
		Use:   "exists <name>",
		Short: "Exit with status 0 when the environment exists and 1 otherwise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd.Context(), false, func(ctx context.Context, _ *config.Config, reg *registry.Registry) error {
				exists, err := reg.Exists(ctx, args[0])
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), exists)

				if !exists {
					return &exitCodeError{code: 1}
				}

				return nil
			})
		},
	}

	envCreateCmd = &cobra.Command{
		Use:   "create <name>",
		Short: "Create an environment with Python and pip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd.Context(), true, func(ctx context.Context, cfg *config.Config, reg *registry.Registry) error {
				env := pyenv.Environment{
					Name:          args[0],
					PythonVersion: cfg.PythonVersion,
					TrustedHost:   cfg.TrustedHost,
				}

				if pythonVersion != "" {
					env.PythonVersion = pythonVersion
				}

				return reg.Create(ctx, env)
			})
		},
	}

	envRemoveCmd = &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove an environment and clean the shared package cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRegistry(cmd.Context(), true, func(ctx context.Context, _ *config.Config, reg *registry.Registry) error {
				return reg.Remove(ctx, args[0])
			})
		},
	}
)

// withRegistry resolves settings and calls fn with a registry. Mutating calls
// hold the root prefix lock for their whole duration.
func withRegistry(
	ctx context.Context,
	mutating bool,
	fn func(context.Context, *config.Config, *registry.Registry) error,
) error {
	ctx = logger.WithName(ctx, "registry")

	cfg, err := loadSettings(ctx)
	if err != nil {
		return err
	}

	reg, err := registry.FromOptions(&registry.Options{Config: cfg})
	if err != nil {
		return err
	}

	if mutating {
		unlock, err := common.LockRoot(cfg.RootPrefix)
		if err != nil {
			return err
		}

		defer unlock()
	}

	return fn(ctx, cfg, reg)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	envCreateCmd.Flags().StringVar(&pythonVersion, "python", "", "python version for the new environment")

	envCmd.AddCommand(envListCmd, envExistsCmd, envCreateCmd, envRemoveCmd)
	rootCmd.AddCommand(envCmd)
}
