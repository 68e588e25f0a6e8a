// Package types defines data types shared by the launcher, the public API and
// the MCP tool server.
package types

import "time"

// LaunchStatus represents the lifecycle state of a launched child
type LaunchStatus string

const (
	LaunchStatusRunning LaunchStatus = "running"
	LaunchStatusExited  LaunchStatus = "exited"
	LaunchStatusFailed  LaunchStatus = "failed"
)

// LaunchRequest is a target invocation: the script and the extra arguments
// appended after it.
type LaunchRequest struct {
	Target string   `json:"target"`
	Args   []string `json:"args,omitempty"`
}

// LaunchResult describes a settled launch.
type LaunchResult struct {
	LaunchID     string        `json:"launchId"`
	Target       string        `json:"target"`
	ResolvedPath string        `json:"resolvedPath"`
	Port         int           `json:"port"`
	PID          int           `json:"pid,omitempty"`
	ExitCode     int           `json:"exitCode"`
	Duration     time.Duration `json:"duration"`
}

// Success reports whether the child exited with status 0.
func (r *LaunchResult) Success() bool {
	return r.ExitCode == 0
}

// LaunchInfo describes an in-flight launch.
type LaunchInfo struct {
	LaunchID     string       `json:"launchId"`
	Target       string       `json:"target"`
	ResolvedPath string       `json:"resolvedPath"`
	Port         int          `json:"port"`
	PID          int          `json:"pid"`
	Status       LaunchStatus `json:"status"`
	StartedAt    time.Time    `json:"startedAt"`
}
