package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ctagard/inspect/internal/version"
)

// NewVersionCommand creates the "version" command.
func NewVersionCommand(streams Streams) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(streams.Out, version.String())
		},
	}
}
