// Package server exposes the bridge operations as an MCP server, mirroring
// the tool surface the engine itself offers.
package server

import (
	"context"

	"codebridge/internal/bridge"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverVersion = "0.1.0"

const systemPrompt = `# codebridge

Tools for analyzing a codebase with the codetraverse engine.

Start with create_fdep_data to analyze a workspace; it writes per-file
component artifacts under the fdep output path and graph files under the
graph output path. Every other tool reads those artifacts or graph files.
Use workspace_summary first to see which languages a workspace contains.

Component identities are fully qualified paths like "Module.Sub::name".
`

// Server wires a Bridge into MCP tools and resources.
type Server struct {
	mcpServer     *mcp.Server
	bridge        *bridge.Bridge
	workspaceRoot string
}

// New creates a server for one bridge instance. workspaceRoot is the default
// root for workspace-level tools when the caller does not pass one.
func New(b *bridge.Bridge, workspaceRoot string) *Server {
	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    "codebridge",
			Version: serverVersion,
		}, nil),
		bridge:        b,
		workspaceRoot: workspaceRoot,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// Run serves MCP over stdio until the context is canceled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
