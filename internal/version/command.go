package version

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// ToolVersionFunc reports the version of the managed micromamba executable.
type ToolVersionFunc func(ctx context.Context) (string, error)

// AttachCobraVersionCommand attaches a `version` subcommand to root. When
// toolVersion is set, the micromamba version is printed too, or a note when
// the executable is not available yet.
func AttachCobraVersionCommand(root *cobra.Command, toolVersion ToolVersionFunc) {
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		Long:  "Print build metadata injected from Git at build time and, when installed, the version of the managed micromamba executable.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), Full())

			if toolVersion == nil {
				return
			}

			tool, err := toolVersion(cmd.Context())
			if err != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "micromamba: unavailable (%v)\n", err)
				return
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "micromamba: %s\n", tool)
		},
	})
}
