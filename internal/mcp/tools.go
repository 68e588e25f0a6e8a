package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTools() {
	s.registerInspectLaunch()
	s.registerInspectListLaunches()
}

func (s *Server) registerInspectLaunch() {
	tool := mcp.NewTool("inspect_launch",
		mcp.WithDescription("Run a script under the Node.js inspector on a free port and wait for it to exit. Returns the exit code, the chosen inspector port and the script's stdout and stderr (with the inspector banner removed)."),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Script to run: a path, or a bare name found on the search path"),
		),
		mcp.WithString("args",
			mcp.Description("JSON array of string arguments appended after the script. Example: [\"--port\", \"8080\"]"),
		),
		mcp.WithString("searchPath",
			mcp.Description("Extra directories, PATH-list syntax, searched before the configured search path for bare names"),
		),
		mcp.WithNumber("timeoutSeconds",
			mcp.Description("Kill the script after this many seconds (default: configured timeout, 0 waits indefinitely)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleInspectLaunch)
}

func (s *Server) registerInspectListLaunches() {
	tool := mcp.NewTool("inspect_list_launches",
		mcp.WithDescription("List scripts started by inspect_launch that are still running"),
	)
	s.mcpServer.AddTool(tool, s.handleInspectListLaunches)
}
