package daemon

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/0xnairb/mcp-aws-yolo/internal/registry"
	"github.com/0xnairb/mcp-aws-yolo/internal/router"
	"github.com/0xnairb/mcp-aws-yolo/internal/session"
)

// PromptRouter is the routing surface the API exposes over HTTP.
type PromptRouter interface {
	FindBestServer(ctx context.Context, prompt string) *router.RoutingResult
	Invoke(ctx context.Context, serverID, toolName string, params map[string]any) *router.ExecutionResult
	Servers() []registry.ServerDescriptor
	ListServerTools(ctx context.Context, serverID string) ([]session.ToolDescriptor, error)
	Health(ctx context.Context) *router.HealthStatus
}

// APIDependencies declares the required dependencies for the API server.
type APIDependencies struct {
	// Router handles prompt routing and tool invocation.
	Router PromptRouter

	// Addr specifies the network address to bind.
	Addr string

	// Logger for API server operations.
	Logger hclog.Logger
}

// Validate ensures all required dependencies are present.
func (d APIDependencies) Validate() error {
	if d.Router == nil {
		return fmt.Errorf("router is required")
	}
	if d.Addr == "" {
		return fmt.Errorf("address is required")
	}
	if d.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	return nil
}
