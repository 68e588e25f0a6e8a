// Package inspect runs a script under the Node.js inspector on a free port.
//
// The simplest entry point is Inspect:
//
//	if err := inspect.Inspect(ctx, "./server.js", "--verbose"); err != nil {
//		// the script exited non-zero, or could not be launched
//	}
//
// The child's stdout is relayed unchanged and its stderr is relayed with the
// inspector's "Debugger listening on ..." banner removed. Use New with
// options to redirect output, search extra directories for bare script
// names, or pick the runtime and start port.
package inspect

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/ctagard/inspect/internal/config"
	"github.com/ctagard/inspect/internal/errors"
	"github.com/ctagard/inspect/internal/launcher"
	"github.com/ctagard/inspect/pkg/types"
)

// Child is a running launch; see Inspector.Start.
type Child = launcher.Child

// Inspector launches scripts under the inspector.
type Inspector struct {
	cfg      *config.Config
	launcher *launcher.Launcher
}

// Option configures an Inspector
type Option func(*options)

type options struct {
	cfg          *config.Config
	launcherOpts []launcher.Option
	searchPath   []string
}

// WithStdout sets where the child's stdout is relayed (default os.Stdout).
func WithStdout(w io.Writer) Option {
	return func(o *options) {
		o.launcherOpts = append(o.launcherOpts, launcher.WithStdout(w))
	}
}

// WithStderr sets where the child's filtered stderr is relayed (default os.Stderr).
func WithStderr(w io.Writer) Option {
	return func(o *options) {
		o.launcherOpts = append(o.launcherOpts, launcher.WithStderr(w))
	}
}

// WithLogger sets the logger for launch diagnostics (default: discarded).
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.launcherOpts = append(o.launcherOpts, launcher.WithLogger(logger))
	}
}

// WithSearchPath adds directories searched, before PATH, for bare script names.
func WithSearchPath(dirs ...string) Option {
	return func(o *options) {
		o.searchPath = append(o.searchPath, dirs...)
	}
}

// WithRuntime sets the interpreter (default "node").
func WithRuntime(runtime string, args ...string) Option {
	return func(o *options) {
		o.cfg.Runtime = runtime
		o.cfg.RuntimeArgs = args
	}
}

// WithStartPort sets the first inspector port probed (default 9229).
func WithStartPort(port int) Option {
	return func(o *options) {
		o.cfg.StartPort = port
	}
}

// WithTimeout kills the child if it runs longer than d.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.cfg.Timeout = config.Duration{Duration: d}
	}
}

// New creates an Inspector.
func New(opts ...Option) *Inspector {
	o := &options{cfg: config.DefaultConfig()}
	for _, opt := range opts {
		opt(o)
	}
	if len(o.searchPath) > 0 {
		o.cfg.PrependSearchPath(o.searchPath...)
	}

	return &Inspector{
		cfg:      o.cfg,
		launcher: launcher.New(o.cfg, o.launcherOpts...),
	}
}

// Inspect runs target with args and waits for it to exit. It returns nil
// when the child exits with status 0 and an error otherwise.
func (i *Inspector) Inspect(ctx context.Context, target string, args ...string) error {
	_, err := i.launcher.Launch(ctx, target, args...)
	return err
}

// Run is Inspect returning the launch result as well.
func (i *Inspector) Run(ctx context.Context, target string, args ...string) (*types.LaunchResult, error) {
	return i.launcher.Launch(ctx, target, args...)
}

// Start spawns target and returns without waiting for it to exit.
func (i *Inspector) Start(ctx context.Context, target string, args ...string) (*Child, error) {
	return i.launcher.Start(ctx, target, args...)
}

// Inspect runs target under the inspector with the default configuration.
func Inspect(ctx context.Context, target string, args ...string) error {
	return New().Inspect(ctx, target, args...)
}

// ExitCode maps an error returned by Inspect to a process exit code.
func ExitCode(err error) int {
	return errors.ExitCode(err)
}
