// Package mcpserver exposes the router itself as an MCP server over stdio,
// so any MCP-capable client can use routing and invocation as ordinary tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/0xnairb/mcp-aws-yolo/internal/registry"
	"github.com/0xnairb/mcp-aws-yolo/internal/router"
	"github.com/0xnairb/mcp-aws-yolo/internal/session"
)

// PromptRouter is the routing surface exposed as MCP tools.
type PromptRouter interface {
	FindBestServer(ctx context.Context, prompt string) *router.RoutingResult
	Invoke(ctx context.Context, serverID, toolName string, params map[string]any) *router.ExecutionResult
	Servers() []registry.ServerDescriptor
	ListServerTools(ctx context.Context, serverID string) ([]session.ToolDescriptor, error)
	Health(ctx context.Context) *router.HealthStatus
}

// Server wraps an MCP server whose tools delegate to the router.
type Server struct {
	name    string
	version string
	router  PromptRouter
	logger  hclog.Logger
}

// New builds the MCP surface for the given router.
func New(name, version string, pr PromptRouter, logger hclog.Logger) *Server {
	return &Server{
		name:    name,
		version: version,
		router:  pr,
		logger:  logger.Named("mcp"),
	}
}

// Serve runs the MCP server on stdio until the client disconnects.
func (s *Server) Serve() error {
	return server.ServeStdio(s.build())
}

func (s *Server) build() *server.MCPServer {
	srv := server.NewMCPServer(s.name, s.version, server.WithToolCapabilities(false))

	srv.AddTool(
		mcp.NewTool("get_intention",
			mcp.WithDescription("Analyze a natural language prompt and find the best MCP server to handle it"),
			mcp.WithString("prompt",
				mcp.Required(),
				mcp.Description("Natural language description of what you want to do"),
			),
		),
		s.handleGetIntention,
	)

	srv.AddTool(
		mcp.NewTool("take_action",
			mcp.WithDescription("Execute a tool on a registered MCP server"),
			mcp.WithString("server_id",
				mcp.Required(),
				mcp.Description("ID of the server to execute the tool on"),
			),
			mcp.WithString("tool_name",
				mcp.Required(),
				mcp.Description("Name of the tool to execute"),
			),
			mcp.WithObject("parameters",
				mcp.Description("Arguments to pass to the tool"),
			),
		),
		s.handleTakeAction,
	)

	srv.AddTool(
		mcp.NewTool("list_available_servers",
			mcp.WithDescription("List all registered MCP servers and their tools"),
		),
		s.handleListServers,
	)

	srv.AddTool(
		mcp.NewTool("health_check",
			mcp.WithDescription("Report the health of the router and its dependencies"),
		),
		s.handleHealthCheck,
	)

	return srv
}

func (s *Server) handleGetIntention(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	prompt, ok := args["prompt"].(string)
	if !ok || prompt == "" {
		return mcp.NewToolResultError("'prompt' is required and must be a non-empty string"), nil
	}

	s.logger.Debug("Routing prompt", "prompt", prompt)

	return jsonResult(s.router.FindBestServer(ctx, prompt))
}

func (s *Server) handleTakeAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	serverID, ok := args["server_id"].(string)
	if !ok || serverID == "" {
		return mcp.NewToolResultError("'server_id' is required and must be a non-empty string"), nil
	}

	toolName, ok := args["tool_name"].(string)
	if !ok || toolName == "" {
		return mcp.NewToolResultError("'tool_name' is required and must be a non-empty string"), nil
	}

	var params map[string]any
	if raw, exists := args["parameters"]; exists && raw != nil {
		params, ok = raw.(map[string]any)
		if !ok {
			return mcp.NewToolResultError("'parameters' must be an object"), nil
		}
	}

	s.logger.Debug("Executing tool", "server", serverID, "tool", toolName)

	return jsonResult(s.router.Invoke(ctx, serverID, toolName, params))
}

type serverEntry struct {
	ServerID     string             `json:"server_id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Capabilities []string           `json:"capabilities,omitempty"`
	Tools        []registry.ToolRef `json:"tools"`
}

func (s *Server) handleListServers(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	servers := s.router.Servers()

	entries := make([]serverEntry, 0, len(servers))
	for _, desc := range servers {
		entries = append(entries, serverEntry{
			ServerID:     desc.ServerID,
			Name:         desc.Name,
			Description:  desc.Description,
			Capabilities: desc.Capabilities,
			Tools:        desc.Tools,
		})
	}

	return jsonResult(map[string]any{
		"servers": entries,
		"count":   len(entries),
	})
}

func (s *Server) handleHealthCheck(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.router.Health(ctx))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
