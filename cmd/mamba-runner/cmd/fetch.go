package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/mamba-runner/internal/service/fetcher"
)

// fetchCmd downloads, verifies and installs the micromamba executable.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download and verify the micromamba executable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cfg, err := loadSettings(ctx)
		if err != nil {
			return err
		}

		path, err := fetcher.Run(ctx, &fetcher.Options{Config: cfg})
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)

		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(fetchCmd)
}
