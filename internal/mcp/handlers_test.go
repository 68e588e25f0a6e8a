package mcp

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctagard/inspect/internal/launcher"
	"github.com/ctagard/inspect/internal/testutil"
)

func TestMain(m *testing.M) {
	testutil.RunFakeNode()
	os.Exit(m.Run())
}

func newRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "unexpected content %T", result.Content[0])
	return text.Text
}

func launch(t *testing.T, s *Server, args map[string]interface{}) LaunchOutcome {
	t.Helper()

	result, err := s.handleInspectLaunch(context.Background(), newRequest("inspect_launch", args))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var outcome LaunchOutcome
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &outcome))
	return outcome
}

// TestInspectLaunch_Success verifies the reported outcome of a script that
// exits 0, with the banner removed from captured stderr.
func TestInspectLaunch_Success(t *testing.T) {
	cfg := testutil.Config(t)
	s := NewServer(cfg, testutil.Logger(t))

	outcome := launch(t, s, map[string]interface{}{
		"target": "success",
		"args":   `["overwrite"]`,
	})
	assert.True(t, outcome.Success)
	assert.Equal(t, 0, outcome.ExitCode)
	assert.Equal(t, "overwrite", outcome.Stdout)
	assert.Empty(t, outcome.Stderr)
	assert.Equal(t, testutil.Fixture("success"), outcome.ResolvedPath)
	assert.GreaterOrEqual(t, outcome.Port, cfg.StartPort)
	assert.NotEmpty(t, outcome.LaunchID)
	assert.Empty(t, outcome.Error)
}

// TestInspectLaunch_ChildFailure verifies that a non-zero exit is reported
// as an unsuccessful outcome, not a tool error.
func TestInspectLaunch_ChildFailure(t *testing.T) {
	s := NewServer(testutil.Config(t), nil)

	outcome := launch(t, s, map[string]interface{}{"target": "error"})
	assert.False(t, outcome.Success)
	assert.Equal(t, 1, outcome.ExitCode)
	assert.Equal(t, "error\n", outcome.Stderr)
	assert.Contains(t, outcome.Error, "exited with code 1")
}

// TestInspectLaunch_SearchPath verifies that the searchPath parameter is
// consulted before the configured search path.
func TestInspectLaunch_SearchPath(t *testing.T) {
	cfg := testutil.Config(t)
	cfg.SearchPath = nil
	s := NewServer(cfg, nil)

	outcome := launch(t, s, map[string]interface{}{
		"target":     "success",
		"searchPath": testutil.FixturesDir(),
	})
	assert.True(t, outcome.Success)
	assert.Nil(t, cfg.SearchPath, "server configuration must not change")
}

func TestInspectLaunch_Timeout(t *testing.T) {
	s := NewServer(testutil.Config(t), nil)

	outcome := launch(t, s, map[string]interface{}{
		"target":         "sleep",
		"timeoutSeconds": 0.1,
	})
	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "did not exit within")
}

func TestInspectLaunch_ParameterErrors(t *testing.T) {
	s := NewServer(testutil.Config(t), nil)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing target", map[string]interface{}{}, "required parameter 'target' is missing"},
		{"bad args", map[string]interface{}{"target": "success", "args": "--flag"}, "invalid JSON in parameter 'args'"},
		{"negative timeout", map[string]interface{}{"target": "success", "timeoutSeconds": -1.0}, "timeoutSeconds"},
		{"unknown target", map[string]interface{}{"target": "no-such-script"}, "target 'no-such-script' not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleInspectLaunch(context.Background(), newRequest("inspect_launch", tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.want)
		})
	}
}

// TestInspectListLaunches verifies that running launches are listed and
// that Close kills them.
func TestInspectListLaunches(t *testing.T) {
	cfg := testutil.Config(t)
	s := NewServer(cfg, nil)

	l := launcher.New(cfg, launcher.WithRegistry(s.Registry()), launcher.WithStderr(&strings.Builder{}))
	child, err := l.Start(context.Background(), "sleep")
	require.NoError(t, err)

	result, err := s.handleInspectListLaunches(context.Background(), newRequest("inspect_list_launches", nil))
	require.NoError(t, err)

	var listed struct {
		Launches []struct {
			LaunchID string `json:"launchId"`
			Status   string `json:"status"`
			Port     int    `json:"port"`
		} `json:"launches"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &listed))
	require.Equal(t, 1, listed.Count)
	assert.Equal(t, child.ID, listed.Launches[0].LaunchID)
	assert.Equal(t, "running", listed.Launches[0].Status)
	assert.Equal(t, child.Port, listed.Launches[0].Port)

	s.Close()
	select {
	case <-child.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("launch still running after Close")
	}
}

func TestNewServer_Defaults(t *testing.T) {
	s := NewServer(nil, nil)
	assert.NotNil(t, s.MCPServer())
	assert.Zero(t, s.Registry().Len())
}

func TestInspectLaunch_CanceledRequest(t *testing.T) {
	s := NewServer(testutil.Config(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.handleInspectLaunch(ctx, newRequest("inspect_launch", map[string]interface{}{"target": "success"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Zero(t, s.Registry().Len())
}
