//go:build !windows

package launcher

import (
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/ctagard/inspect/internal/errors"
)

// forwardedSignals are relayed from the launcher to the child's group.
var forwardedSignals = []os.Signal{unix.SIGINT, unix.SIGTERM, unix.SIGHUP}

// setProcAttr puts the child in its own process group so the whole tree it
// spawns can be signalled or killed together.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup kills the child and its process group.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	// Negative pid addresses the group; ESRCH means it already exited
	if err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL); err != nil && err != unix.ESRCH {
		return err
	}
	return nil
}

// signaledExitCode returns the shell convention 128+signal for a child
// terminated by a signal.
func signaledExitCode(state *os.ProcessState) int {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return errors.ExitGeneralError
}

// forwardSignals relays termination signals received by this process to the
// child's process group until stop is called.
func forwardSignals(pid int, logger *slog.Logger) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigCh, forwardedSignals...)

	go func() {
		for {
			select {
			case sig := <-sigCh:
				s, ok := sig.(syscall.Signal)
				if !ok {
					continue
				}
				logger.Debug("forwarding signal", "signal", s.String(), "pid", pid)
				if err := unix.Kill(-pid, s); err != nil && err != unix.ESRCH {
					logger.Warn("failed to forward signal", "signal", s.String(), "pid", pid, "error", err)
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
