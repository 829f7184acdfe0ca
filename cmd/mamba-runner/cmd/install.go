package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/mamba-runner/internal/domain/pyenv"
	"github.com/oshokin/mamba-runner/internal/logger"
	"github.com/oshokin/mamba-runner/internal/service/common"
	"github.com/oshokin/mamba-runner/internal/service/installer"
)

var errPackagesFailed = errors.New("some packages failed to install")

// installCmd installs pip packages one by one and reports each outcome.
var installCmd = &cobra.Command{
	Use:   "install <env> <package>...",
	Short: "Install pip packages into an environment",
	Args:  cobra.MinimumNArgs(2), //nolint:mnd // Environment plus at least one package.
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := logger.WithName(cmd.Context(), "installer")

		cfg, err := loadSettings(ctx)
		if err != nil {
			return err
		}

		inst, err := installer.FromOptions(&installer.Options{Config: cfg})
		if err != nil {
			return err
		}

		unlock, err := common.LockRoot(cfg.RootPrefix)
		if err != nil {
			return err
		}

		defer unlock()

		outcomes := inst.InstallAll(ctx, args[0], args[1:], cfg.TrustedHost)
		for _, outcome := range outcomes {
			if outcome.Success {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ok\t%s\n", outcome.Name)
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "failed\t%s\t%v\n", outcome.Name, outcome.Err)
			}
		}

		if failed := pyenv.Failed(outcomes); len(failed) > 0 {
			return fmt.Errorf("%w: %v", errPackagesFailed, failed)
		}

		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(installCmd)
}
