// ABOUTME: MCP server initialization and configuration
// ABOUTME: Exposes the restaurant bookmark commands as tools and resources for AI agents

package mcp

import (
	"context"
	"fmt"

	"github.com/harper/matjip/internal/bookmarks"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps MCP server with the bookmark service.
type Server struct {
	mcp *mcp.Server
	svc *bookmarks.Service
}

// NewServer creates MCP server with all capabilities.
func NewServer(svc *bookmarks.Service) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("bookmark service is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "matjip",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp: mcpServer,
		svc: svc,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
