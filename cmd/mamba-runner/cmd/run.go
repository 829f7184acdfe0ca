package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/mamba-runner/internal/domain/pyenv"
	"github.com/oshokin/mamba-runner/internal/logger"
	"github.com/oshokin/mamba-runner/internal/service/runner"
)

var (
	// outputMode selects how target output is decoded.
	outputMode string

	// dryRun prints the command line instead of running it.
	dryRun bool

	// runCmd runs a script or console command inside an environment.
	runCmd = &cobra.Command{
		Use:   "run <env> <target> [args...]",
		Short: "Run a .py script or a console command inside an environment",
		Args:  cobra.MinimumNArgs(2), //nolint:mnd // Environment and target.
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logger.WithName(cmd.Context(), "runner")

			mode, err := pyenv.ParseOutputMode(outputMode)
			if err != nil {
				return err
			}

			inv := &pyenv.Invocation{
				Environment: args[0],
				Target:      args[1],
				Args:        args[2:],
				Mode:        mode,
			}

			if dryRun {
				argv, err := runner.BuildArgs(inv)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), runner.CommandLine(append([]string{"micromamba"}, argv...)))

				return nil
			}

			cfg, err := loadSettings(ctx)
			if err != nil {
				return err
			}

			r, err := runner.FromOptions(&runner.Options{Config: cfg})
			if err != nil {
				return err
			}

			result, err := r.Run(ctx, inv)
			if err != nil {
				return err
			}

			if mode == pyenv.ModeJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")

				if err = encoder.Encode(result.Value); err != nil {
					return fmt.Errorf("encode result: %w", err)
				}
			} else {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), result.Output)
			}

			if result.ExitCode != 0 {
				return &exitCodeError{code: result.ExitCode}
			}

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	runCmd.Flags().StringVarP(&outputMode, "mode", "m", string(pyenv.ModeText), "output decoding: json or text")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the quoted command line and exit")
	runCmd.Flags().SetInterspersed(false)

	rootCmd.AddCommand(runCmd)
}
