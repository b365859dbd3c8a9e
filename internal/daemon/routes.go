package daemon

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/0xnairb/mcp-aws-yolo/internal/errors"
	"github.com/0xnairb/mcp-aws-yolo/internal/router"
	"github.com/0xnairb/mcp-aws-yolo/internal/session"
)

// ServerSummary is the per-server entry returned when listing servers.
type ServerSummary struct {
	ServerID     string   `json:"server_id"     doc:"Unique identifier of the server"`
	Name         string   `json:"name"          doc:"Human readable server name"`
	Description  string   `json:"description"   doc:"What the server does"`
	Capabilities []string `json:"capabilities,omitempty" doc:"Capability tags"`
	Tools        []string `json:"tools"         doc:"Known tool names"`
}

// ServersResponse represents the wrapped API response for a list of servers.
type ServersResponse struct {
	Body []ServerSummary
}

// ServerToolsRequest represents the incoming API request for the live tool
// list of a server.
type ServerToolsRequest struct {
	ID string `doc:"ID of the server to lookup tools for" example:"aws-s3" path:"id"`
}

// ServerToolsResponse wraps the live tool list of one server.
type ServerToolsResponse struct {
	Body []session.ToolDescriptor
}

// RouteRequest represents the incoming API request to route a prompt.
type RouteRequest struct {
	Body struct {
		Prompt string `json:"prompt" doc:"Natural language prompt to route" example:"create an s3 bucket named reports" minLength:"1"`
	}
}

// RouteResponse wraps the routing outcome.
type RouteResponse struct {
	Body router.RoutingResult
}

// ToolCallRequest represents the incoming API request to call a tool on a
// particular server.
type ToolCallRequest struct {
	ID   string         `doc:"ID of the server"         example:"aws-s3"        path:"id"`
	Tool string         `doc:"Name of the tool to call" example:"create_bucket" path:"tool"`
	Body map[string]any `doc:"Arguments for the tool"`
}

// ToolCallResponse wraps the invocation outcome.
type ToolCallResponse struct {
	Body router.ExecutionResult
}

// HealthResponse wraps the component health report.
type HealthResponse struct {
	Body router.HealthStatus
}

// RegisterRoutes sets up all routing, invocation and health endpoints.
func RegisterRoutes(api huma.API, pr PromptRouter) {
	serverTags := []string{"Servers"}

	huma.Register(
		api,
		huma.Operation{
			OperationID: "listServers",
			Method:      http.MethodGet,
			Path:        "/servers",
			Summary:     "List all registered servers",
			Tags:        serverTags,
		},
		func(_ context.Context, _ *struct{}) (*ServersResponse, error) {
			return handleServers(pr)
		},
	)

	huma.Register(
		api,
		huma.Operation{
			OperationID: "listServerTools",
			Method:      http.MethodGet,
			Path:        "/servers/{id}/tools",
			Summary:     "List a server's live tools",
			Tags:        append(serverTags, "Tools"),
		},
		func(ctx context.Context, input *ServerToolsRequest) (*ServerToolsResponse, error) {
			tools, err := pr.ListServerTools(ctx, input.ID)
			if err != nil {
				return nil, err
			}
			return &ServerToolsResponse{Body: tools}, nil
		},
	)

	huma.Register(
		api,
		huma.Operation{
			OperationID: "routePrompt",
			Method:      http.MethodPost,
			Path:        "/route",
			Summary:     "Route a prompt to the best server",
			Tags:        []string{"Routing"},
		},
		func(ctx context.Context, input *RouteRequest) (*RouteResponse, error) {
			if input.Body.Prompt == "" {
				return nil, fmt.Errorf("%w: prompt must not be empty", errors.ErrBadRequest)
			}
			return &RouteResponse{Body: *pr.FindBestServer(ctx, input.Body.Prompt)}, nil
		},
	)

	huma.Register(
		api,
		huma.Operation{
			OperationID: "callTool",
			Method:      http.MethodPost,
			Path:        "/servers/{id}/tools/{tool}",
			Summary:     "Call a tool on a server",
			Tags:        append(serverTags, "Tools"),
		},
		func(ctx context.Context, input *ToolCallRequest) (*ToolCallResponse, error) {
			return &ToolCallResponse{Body: *pr.Invoke(ctx, input.ID, input.Tool, input.Body)}, nil
		},
	)

	huma.Register(
		api,
		huma.Operation{
			OperationID: "health",
			Method:      http.MethodGet,
			Path:        "/health",
			Summary:     "Report component health",
			Tags:        []string{"Health"},
		},
		func(ctx context.Context, _ *struct{}) (*HealthResponse, error) {
			return &HealthResponse{Body: *pr.Health(ctx)}, nil
		},
	)
}

// handleServers returns summaries of every registered server.
func handleServers(pr PromptRouter) (*ServersResponse, error) {
	servers := pr.Servers()

	summaries := make([]ServerSummary, 0, len(servers))
	for _, s := range servers {
		tools := make([]string, 0, len(s.Tools))
		for _, tool := range s.Tools {
			tools = append(tools, tool.Name)
		}
		summaries = append(summaries, ServerSummary{
			ServerID:     s.ServerID,
			Name:         s.Name,
			Description:  s.Description,
			Capabilities: s.Capabilities,
			Tools:        tools,
		})
	}

	return &ServersResponse{Body: summaries}, nil
}
