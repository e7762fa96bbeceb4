package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"betterauth-mcp/pkg/tools"
)

// StdioServer exposes the same toolset over the official MCP stdio
// transport, for clients that launch the server as a subprocess instead
// of talking to the HTTP endpoint.
type StdioServer struct {
	toolset *tools.Toolset
	server  *mcp.Server
}

// ReadPageInput is the input schema for the read_page tool.
type ReadPageInput struct {
	PageRoute string `json:"page_route" jsonschema:"route of the page to read (e.g. /llms.txt/docs/basic-usage.md)"`
}

// EmptyInput is the input schema for tools that take no arguments.
type EmptyInput struct{}

func NewStdioServer(toolset *tools.Toolset) *StdioServer {
	impl := &mcp.Implementation{
		Name:    "better-auth",
		Version: "1.0.0",
	}

	s := &StdioServer{
		toolset: toolset,
		server:  mcp.NewServer(impl, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_table_of_contents",
		Description: "Fetch the Table of Contents (includes routes to pages) from the Better Auth website.",
	}, s.handleGetTableOfContents)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "read_page",
		Description: "Read a page from the Better Auth website.",
	}, s.handleReadPage)

	return s
}

// Run serves over stdio until the context is cancelled or the stream
// closes.
func (s *StdioServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *StdioServer) handleGetTableOfContents(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, any, error) {
	text := s.toolset.GetTableOfContents(ctx)
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

func (s *StdioServer) handleReadPage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReadPageInput,
) (*mcp.CallToolResult, any, error) {
	text := s.toolset.ReadPage(ctx, input.PageRoute)
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}
