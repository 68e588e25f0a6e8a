package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ctagard/inspect/internal/config"
	"github.com/ctagard/inspect/internal/errors"
	"github.com/ctagard/inspect/internal/launcher"
	"github.com/ctagard/inspect/internal/resolve"
	"github.com/ctagard/inspect/pkg/types"
)

// LaunchOutcome is the JSON body returned by inspect_launch.
type LaunchOutcome struct {
	LaunchID     string `json:"launchId"`
	Target       string `json:"target"`
	ResolvedPath string `json:"resolvedPath"`
	Port         int    `json:"port"`
	ExitCode     int    `json:"exitCode"`
	Success      bool   `json:"success"`
	Stdout       string `json:"stdout"`
	Stderr       string `json:"stderr"`
	Error        string `json:"error,omitempty"`
}

func (s *Server) handleInspectLaunch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := request.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(errors.MissingParameter("target",
			"Specify the script to run, as a path or a name on the search path.").Error()), nil
	}

	launchReq := types.LaunchRequest{Target: target}
	if argsJSON, err := request.RequireString("args"); err == nil && argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &launchReq.Args); err != nil {
			return mcp.NewToolResultError(errors.InvalidJSON("args", err, `["--port", "8080"]`).Error()), nil
		}
	}

	cfg := *s.config
	cfg.AttachFile = ""
	if searchPath, err := request.RequireString("searchPath"); err == nil && searchPath != "" {
		cfg.SearchPath = append(resolve.SplitList(searchPath), s.config.SearchPath...)
	}
	if seconds, err := request.RequireFloat("timeoutSeconds"); err == nil {
		if seconds < 0 {
			return mcp.NewToolResultError(errors.ConfigInvalid("timeoutSeconds", "must not be negative").Error()), nil
		}
		cfg.Timeout = config.Duration{Duration: time.Duration(seconds * float64(time.Second))}
	}

	var stdout, stderr bytes.Buffer
	l := launcher.New(&cfg,
		launcher.WithStdout(&stdout),
		launcher.WithStderr(&stderr),
		launcher.WithRegistry(s.registry),
		launcher.WithLogger(s.logger),
	)

	child, err := l.Start(ctx, launchReq.Target, launchReq.Args...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// The child is bound to ctx, so a canceled request also kills it
	result, launchErr := child.Completion().WaitContext(ctx)
	if result == nil {
		return mcp.NewToolResultError(fmt.Sprintf("launch %s canceled: %v", child.ID, launchErr)), nil
	}
	outcome := newLaunchOutcome(result, launchErr, stdout.String(), stderr.String())

	jsonBytes, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleInspectListLaunches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	children := s.registry.List()
	launches := make([]types.LaunchInfo, 0, len(children))
	for _, child := range children {
		launches = append(launches, child.Info())
	}

	result := map[string]interface{}{
		"launches": launches,
		"count":    len(launches),
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode launches: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// newLaunchOutcome reports a settled launch. A non-zero exit is a normal
// outcome with success=false, not a tool error.
func newLaunchOutcome(result *types.LaunchResult, launchErr error, stdout, stderr string) LaunchOutcome {
	outcome := LaunchOutcome{
		LaunchID:     result.LaunchID,
		Target:       result.Target,
		ResolvedPath: result.ResolvedPath,
		Port:         result.Port,
		ExitCode:     result.ExitCode,
		Success:      launchErr == nil,
		Stdout:       stdout,
		Stderr:       stderr,
	}
	if launchErr != nil {
		outcome.Error = launchErr.Error()
	}
	return outcome
}
