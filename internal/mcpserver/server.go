// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the document catalog for LLM integration via stdio
// transport. All tools are read-only.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/lagu/internal/docservice"
)

// Server wraps the MCP server with Lagu tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
}

// New creates a new MCP server with all Lagu tools registered.
func New(svc *docservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Lagu",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read a catalogued Markdown document by its custom identifier or UUID."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document identifier (custom id preferred, UUID accepted)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List the documents of one catalogued directory."),
		mcp.WithString("directory", mcp.Required(), mcp.Description("Directory UUID")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("directory_tree",
		mcp.WithDescription("Return every catalogued directory, roots first."),
	), s.directoryTree)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.GetDocument(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("directory")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not a UUID: %s", raw)), nil
	}
	docs, err := s.svc.ListDocuments(ctx, dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(docs, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) directoryTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dirs, err := s.svc.Tree(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(dirs, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
