// Package launcher runs a target script under the inspector.
//
// A launch resolves the target, finds a free inspector port, spawns the
// runtime with the inspector flag bound to that port, relays the child's
// stdout verbatim and its stderr with the inspector banner removed, and
// settles a Completion exactly once when the child exits.
package launcher

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ctagard/inspect/internal/attach"
	"github.com/ctagard/inspect/internal/config"
	"github.com/ctagard/inspect/internal/errors"
	"github.com/ctagard/inspect/internal/port"
	"github.com/ctagard/inspect/internal/resolve"
	"github.com/ctagard/inspect/internal/stream"
	"github.com/ctagard/inspect/pkg/types"
)

// waitDelay bounds how long output is drained after the child exits when a
// grandchild still holds its stdout or stderr open.
const waitDelay = 2 * time.Second

// Launcher starts target scripts under the inspector.
type Launcher struct {
	cfg            *config.Config
	resolver       *resolve.Resolver
	finder         *port.Finder
	registry       *Registry
	stdout         io.Writer
	stderr         io.Writer
	logger         *slog.Logger
	forwardSignals bool
	attachFile     string
}

// Option configures a Launcher
type Option func(*Launcher)

// WithStdout sets where the child's stdout is relayed.
func WithStdout(w io.Writer) Option {
	return func(l *Launcher) {
		l.stdout = w
	}
}

// WithStderr sets where the child's filtered stderr is relayed.
func WithStderr(w io.Writer) Option {
	return func(l *Launcher) {
		l.stderr = w
	}
}

// WithLogger sets the logger for launch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithSearchPath replaces the directories searched for bare target names.
func WithSearchPath(dirs ...string) Option {
	return func(l *Launcher) {
		l.resolver = resolve.NewResolver(dirs)
	}
}

// WithFinder replaces the port finder.
func WithFinder(f *port.Finder) Option {
	return func(l *Launcher) {
		l.finder = f
	}
}

// WithRegistry tracks launches in a shared registry.
func WithRegistry(r *Registry) Option {
	return func(l *Launcher) {
		l.registry = r
	}
}

// WithForwardSignals relays SIGINT, SIGTERM and SIGHUP received by this
// process to the child while it runs.
func WithForwardSignals(enabled bool) Option {
	return func(l *Launcher) {
		l.forwardSignals = enabled
	}
}

// WithAttachFile writes a DAP attach request for each launch to path.
func WithAttachFile(path string) Option {
	return func(l *Launcher) {
		l.attachFile = path
	}
}

// New creates a Launcher. A nil cfg uses the defaults.
func New(cfg *config.Config, opts ...Option) *Launcher {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	l := &Launcher{
		cfg:        cfg,
		registry:   NewRegistry(),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		attachFile: cfg.AttachFile,
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.resolver == nil {
		l.resolver = resolve.NewResolver(cfg.SearchPath)
	}
	if l.finder == nil {
		l.finder = port.NewFinder(cfg.Host, port.WithScanWindow(cfg.ScanWindow), port.WithLogger(l.logger))
	}

	return l
}

// Registry returns the registry tracking this launcher's in-flight launches.
func (l *Launcher) Registry() *Registry {
	return l.registry
}

// Launch starts the target and waits for it to exit. The error is nil
// exactly when the child exited with status 0.
func (l *Launcher) Launch(ctx context.Context, target string, args ...string) (*types.LaunchResult, error) {
	child, err := l.Start(ctx, target, args...)
	if err != nil {
		return nil, err
	}
	return child.Wait()
}

// Start resolves the target, finds an inspector port and spawns the child.
// It returns once the child is running; failures before that point are
// returned directly and no process is left behind.
func (l *Launcher) Start(ctx context.Context, target string, args ...string) (*Child, error) {
	resolved, err := l.resolver.Resolve(target)
	if err != nil {
		return nil, err
	}

	inspectPort, err := l.finder.Find(ctx, l.cfg.StartPort)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	logger := l.logger.With("launch_id", id, "target", target)

	timeout := l.cfg.Timeout.Duration
	var runCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}

	cmd := exec.CommandContext(runCtx, l.cfg.Runtime, l.commandArgs(resolved, inspectPort, args)...)
	cmd.Env = os.Environ()
	// stdin stays disconnected; the child runs in its own process group
	// and would be stopped by SIGTTIN if it read from the terminal.
	cmd.Stdin = nil
	cmd.Stdout = l.stdout
	filter := stream.NewBannerFilter(l.stderr)
	cmd.Stderr = filter
	// Set platform-specific process attributes (process_unix.go / process_windows.go)
	setProcAttr(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = waitDelay

	if l.attachFile != "" {
		if err := attach.WriteFile(l.attachFile, l.cfg.Host, inspectPort); err != nil {
			cancel()
			return nil, err
		}
	}

	if err := cmd.Start(); err != nil {
		cancel()
		l.removeAttachFile(logger)
		return nil, errors.SpawnFailed(l.cfg.Runtime, err)
	}

	child := &Child{
		ID:           id,
		Target:       target,
		ResolvedPath: resolved,
		Port:         inspectPort,
		PID:          cmd.Process.Pid,
		StartedAt:    time.Now(),
		cmd:          cmd,
		completion:   newCompletion(),
	}
	l.registry.add(child)
	logger.Info("child started", "pid", child.PID, "port", inspectPort, "resolved", resolved)

	stopForwarding := func() {}
	if l.forwardSignals {
		stopForwarding = forwardSignals(child.PID, logger)
	}

	go func() {
		waitErr := cmd.Wait()
		stopForwarding()
		if err := filter.Close(); err != nil {
			logger.Warn("failed to flush stderr", "error", err)
		}

		timedOut := stderrors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
		canceled := ctx.Err()
		cancel()
		l.removeAttachFile(logger)

		result := &types.LaunchResult{
			LaunchID:     id,
			Target:       target,
			ResolvedPath: resolved,
			Port:         inspectPort,
			PID:          child.PID,
			ExitCode:     exitCode(cmd.ProcessState, waitErr),
			Duration:     time.Since(child.StartedAt),
		}

		var launchErr error
		switch {
		case timedOut:
			launchErr = errors.LaunchTimeout(target, timeout)
		case canceled != nil:
			launchErr = errors.ChildFailed(target, result.ExitCode).WithCause(canceled)
		case result.ExitCode != 0:
			launchErr = errors.ChildFailed(target, result.ExitCode)
		}
		if launchErr != nil && result.ExitCode == 0 {
			result.ExitCode = errors.ExitGeneralError
		}

		logger.Info("child exited", "pid", child.PID, "exit_code", result.ExitCode, "duration", result.Duration)
		child.completion.settle(result, launchErr)
		l.registry.remove(id)
	}()

	return child, nil
}

// commandArgs builds the runtime arguments: runtime args, the inspector flag
// bound to host:port, the target, then the caller's arguments in order.
func (l *Launcher) commandArgs(resolved string, inspectPort int, args []string) []string {
	cmdArgs := make([]string, 0, len(l.cfg.RuntimeArgs)+2+len(args))
	cmdArgs = append(cmdArgs, l.cfg.RuntimeArgs...)
	cmdArgs = append(cmdArgs, InspectArg(l.cfg.InspectFlag, l.cfg.Host, inspectPort))
	cmdArgs = append(cmdArgs, resolved)
	cmdArgs = append(cmdArgs, args...)
	return cmdArgs
}

func (l *Launcher) removeAttachFile(logger *slog.Logger) {
	if l.attachFile == "" {
		return
	}
	if err := os.Remove(l.attachFile); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove attach file", "path", l.attachFile, "error", err)
	}
}

// InspectArg formats the inspector flag, e.g. "--inspect=127.0.0.1:9229".
func InspectArg(flag, host string, inspectPort int) string {
	return fmt.Sprintf("%s=%s", flag, net.JoinHostPort(host, strconv.Itoa(inspectPort)))
}

// exitCode derives the child's exit status from its final process state.
func exitCode(state *os.ProcessState, waitErr error) int {
	if state == nil {
		if waitErr != nil {
			return errors.ExitGeneralError
		}
		return 0
	}
	if code := state.ExitCode(); code >= 0 {
		return code
	}
	return signaledExitCode(state)
}
