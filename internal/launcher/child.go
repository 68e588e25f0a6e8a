package launcher

import (
	"os/exec"
	"time"

	"github.com/ctagard/inspect/pkg/types"
)

// Child is a running launch. It owns the spawned process for its lifetime.
type Child struct {
	ID           string
	Target       string
	ResolvedPath string
	Port         int
	PID          int
	StartedAt    time.Time

	cmd        *exec.Cmd
	completion *Completion
}

// Wait blocks until the child has exited and returns its result. A non-nil
// error means the launch failed; for a non-zero exit it is a CHILD_FAILED
// error carrying the exit code.
func (c *Child) Wait() (*types.LaunchResult, error) {
	return c.completion.Wait()
}

// Done is closed when the child has exited.
func (c *Child) Done() <-chan struct{} {
	return c.completion.Done()
}

// Completion returns the child's completion.
func (c *Child) Completion() *Completion {
	return c.completion
}

// Kill terminates the child's process group.
func (c *Child) Kill() error {
	return killProcessGroup(c.cmd)
}

// Info returns a snapshot of the child for listing.
func (c *Child) Info() types.LaunchInfo {
	status := types.LaunchStatusRunning
	select {
	case <-c.completion.Done():
		status = types.LaunchStatusExited
		if _, err := c.completion.Wait(); err != nil {
			status = types.LaunchStatusFailed
		}
	default:
	}

	return types.LaunchInfo{
		LaunchID:     c.ID,
		Target:       c.Target,
		ResolvedPath: c.ResolvedPath,
		Port:         c.Port,
		PID:          c.PID,
		Status:       status,
		StartedAt:    c.StartedAt,
	}
}
