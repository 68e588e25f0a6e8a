package cli

import (
	"github.com/spf13/cobra"

	"github.com/ctagard/inspect/internal/mcp"
)

// NewServeCommand creates the "serve" command, which exposes launches as
// MCP tools over stdio.
func NewServeCommand(flags *rootFlags, streams Streams) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve inspect_launch as an MCP tool over stdio",
		Long: `Serve runs a Model Context Protocol server on stdin/stdout exposing:

  inspect_launch         Run a script under the inspector and report its
                         exit code, port and captured output
  inspect_list_launches  List launches still running

Launches still running when the server stops are killed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}

			logger := newLogger(streams.Err, flags.verbose)
			server := mcp.NewServer(cfg, logger)
			defer server.Close()

			logger.Info("MCP server starting")
			return server.ServeStdio()
		},
	}
}
