//go:build windows

package launcher

import (
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/ctagard/inspect/internal/errors"
)

// setProcAttr creates a new process group for the child.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// killProcessGroup kills the child. Windows has no Unix-style process
// groups, so only the direct child is terminated.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if err := cmd.Process.Kill(); err != nil && err != os.ErrProcessDone {
		return err
	}
	return nil
}

func signaledExitCode(state *os.ProcessState) int {
	return errors.ExitGeneralError
}

// forwardSignals kills the child when this process is interrupted, since
// console control events cannot be targeted at a single process group here.
func forwardSignals(pid int, logger *slog.Logger) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigCh, os.Interrupt)

	go func() {
		select {
		case <-sigCh:
			logger.Debug("interrupt received, killing child", "pid", pid)
			if p, err := os.FindProcess(pid); err == nil {
				_ = p.Kill()
			}
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
