// Package cli implements the cobra-based command line for inspect.
//
// The root command runs a script under the inspector:
//
//	inspect [flags] <target> [args...]
//
// Flag parsing stops at the target, so every argument after it is forwarded
// to the script unchanged. The process exits with the script's exit code.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ctagard/inspect/internal/config"
	"github.com/ctagard/inspect/internal/errors"
	"github.com/ctagard/inspect/internal/launcher"
	"github.com/ctagard/inspect/internal/resolve"
	"github.com/ctagard/inspect/internal/version"
)

// rootFlags holds the flag values shared by the root and serve commands.
type rootFlags struct {
	configPath string
	runtime    string
	host       string
	port       int
	searchPath string
	timeout    time.Duration
	attachFile string
	verbose    bool
}

// Streams are the standard streams a command reads and writes.
type Streams struct {
	Out io.Writer
	Err io.Writer
}

// NewRootCommand creates the root command with its subcommands.
func NewRootCommand(streams Streams) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "inspect [flags] <target> [args...]",
		Short: "Run a script under the Node.js inspector on a free port",
		Long: `inspect runs a script with the Node.js inspector enabled on the first free
port at or above the start port (default 9229). The script's stdout is relayed
unchanged and its stderr is relayed without the inspector's startup banner.

The target is a path to a script or a bare name looked up in --search-path and
then PATH. Arguments after the target are forwarded to the script. inspect
exits with the script's exit code.

Examples:
  inspect ./server.js
  inspect --port 9300 server.js --listen 8080
  inspect --search-path ./scripts build --watch`,

		Args: cobra.MinimumNArgs(1),

		SilenceUsage:  true,
		SilenceErrors: true,

		Version: version.GetVersion(),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, flags, streams, args[0], args[1:])
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Stop at the target so its arguments are never taken as our flags
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&flags.runtime, "runtime", config.DefaultRuntime, "Runtime used to run the script")
	rootCmd.PersistentFlags().StringVar(&flags.host, "host", config.DefaultHost, "Address the inspector binds to")
	rootCmd.PersistentFlags().IntVar(&flags.port, "port", config.DefaultStartPort, "First inspector port to try")
	rootCmd.PersistentFlags().StringVar(&flags.searchPath, "search-path", "", "Directories searched before PATH for bare target names (PATH-list syntax)")
	rootCmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", 0, "Kill the script after this duration (0 waits indefinitely)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log launch details to stderr")
	rootCmd.Flags().StringVar(&flags.attachFile, "attach-file", "", "Write a DAP attach request for the chosen port to this file")

	rootCmd.SetOut(streams.Out)
	rootCmd.SetErr(streams.Err)

	rootCmd.AddCommand(NewServeCommand(flags, streams))
	rootCmd.AddCommand(NewVersionCommand(streams))

	return rootCmd
}

// Run executes the command line and returns the process exit code.
func Run(ctx context.Context, args []string, streams Streams) int {
	rootCmd := NewRootCommand(streams)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	// A failed script already wrote its own diagnostics
	if !errors.Is(err, errors.CodeChildFailed) {
		fmt.Fprintf(streams.Err, "Error: %v\n", err)
	}
	return errors.ExitCode(err)
}

func runInspect(cmd *cobra.Command, flags *rootFlags, streams Streams, target string, args []string) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("attach-file") {
		cfg.AttachFile = flags.attachFile
	}

	logger := newLogger(streams.Err, flags.verbose)
	l := launcher.New(cfg,
		launcher.WithStdout(streams.Out),
		launcher.WithStderr(streams.Err),
		launcher.WithLogger(logger),
		launcher.WithForwardSignals(true),
	)

	_, err = l.Launch(cmd.Context(), target, args...)
	return err
}

// loadConfig reads the config file and applies flags the user set.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("runtime") {
		cfg.Runtime = flags.runtime
	}
	if cmd.Flags().Changed("host") {
		cfg.Host = flags.host
	}
	if cmd.Flags().Changed("port") {
		cfg.StartPort = flags.port
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = config.Duration{Duration: flags.timeout}
	}
	if flags.searchPath != "" {
		cfg.PrependSearchPath(resolve.SplitList(flags.searchPath)...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger logs to w when verbose and discards otherwise, so relayed
// stderr carries only the script's own output by default.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
