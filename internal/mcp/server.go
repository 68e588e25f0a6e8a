// Package mcp exposes the launcher as Model Context Protocol tools.
//
// Tools:
//   - inspect_launch: run a script under the inspector and report its exit
//     code and captured output
//   - inspect_list_launches: list launches still running
package mcp

import (
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ctagard/inspect/internal/config"
	"github.com/ctagard/inspect/internal/launcher"
	"github.com/ctagard/inspect/internal/version"
)

// Server wraps the MCP server with launch capabilities
type Server struct {
	mcpServer *server.MCPServer
	registry  *launcher.Registry
	config    *config.Config
	logger    *slog.Logger
}

// NewServer creates a new MCP server. A nil logger discards logs.
func NewServer(cfg *config.Config, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	mcpServer := server.NewMCPServer(
		"inspect",
		version.GetVersion(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s := &Server{
		mcpServer: mcpServer,
		registry:  launcher.NewRegistry(),
		config:    cfg,
		logger:    logger,
	}

	s.registerTools()

	return s
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// Close terminates launches that are still running
func (s *Server) Close() {
	s.registry.TerminateAll(s.logger)
}

// MCPServer returns the underlying mcp-go server
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Registry returns the registry of in-flight launches
func (s *Server) Registry() *launcher.Registry {
	return s.registry
}
