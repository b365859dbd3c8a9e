package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/0xnairb/mcp-aws-yolo/internal/errors"
	"github.com/0xnairb/mcp-aws-yolo/internal/template"
)

// MCPClient abstracts the subset of the MCP client used by sessions, so tests
// can substitute an in-process fake for a spawned subprocess.
type MCPClient interface {
	Initialize(ctx context.Context, request mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, request mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Ping(ctx context.Context) error
	Close() error
}

// Dialer spawns a server process from an expanded launch spec and returns an
// un-initialized client for it.
type Dialer func(spec template.LaunchSpec) (MCPClient, error)

func stdioDialer(spec template.LaunchSpec) (MCPClient, error) {
	return client.NewStdioMCPClient(spec.Command, spec.Environ(), spec.Args...)
}

// Session is a single live connection to a running tool server. A session is
// safe for concurrent use: exchanges on the underlying stdio pipe are
// serialized by a per-session mutex.
type Session struct {
	serverID string
	client   MCPClient
	logger   hclog.Logger

	mu        sync.Mutex
	closeOnce sync.Once
}

// ServerID returns the registry ID of the server this session talks to.
func (s *Session) ServerID() string {
	return s.serverID
}

func newSession(ctx context.Context, serverID string, c MCPClient, initTimeout time.Duration, logger hclog.Logger) (*Session, error) {
	s := &Session{
		serverID: serverID,
		client:   c,
		logger:   logger,
	}

	initCtx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    "mcp-aws-yolo",
		Version: "1.0.0",
	}

	if _, err := s.client.Initialize(initCtx, req); err != nil {
		s.Close()
		return nil, wrapProtocolErr(initCtx, fmt.Errorf("initialize handshake with '%s': %w", serverID, err))
	}

	return s, nil
}

// ListTools asks the server for its current tool list.
func (s *Session) ListTools(ctx context.Context) ([]ToolDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, wrapProtocolErr(ctx, fmt.Errorf("%w: list tools on '%s': %v", errors.ErrToolListFailed, s.serverID, err))
	}

	tools := make([]ToolDescriptor, 0, len(res.Tools))
	for _, tool := range res.Tools {
		tools = append(tools, toolFromMCP(tool))
	}

	return tools, nil
}

// CallTool invokes a named tool with the given arguments and returns the
// decoded result content. A result the server marks as an error becomes an
// ErrToolCallFailed carrying the server's message.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]any) ([]ToolContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := s.client.CallTool(ctx, req)
	if err != nil {
		return nil, wrapProtocolErr(ctx, fmt.Errorf("%w: call '%s' on '%s': %v", errors.ErrToolCallFailed, name, s.serverID, err))
	}

	content := contentFromMCP(res.Content)
	if res.IsError {
		return content, fmt.Errorf("%w: '%s' on '%s': %s", errors.ErrToolCallFailed, name, s.serverID, contentText(content))
	}

	return content, nil
}

// Ping checks the connection is still live.
func (s *Session) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.client.Ping(ctx)
}

// Close terminates the underlying connection and its subprocess. It is
// idempotent; close errors are logged, never returned, so a failed close
// cannot mask an earlier error.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if err := s.client.Close(); err != nil {
			s.logger.Warn("Error closing session", "server", s.serverID, "error", err)
		}
	})
}

func contentText(items []ToolContent) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type == ContentText {
			parts = append(parts, item.Text)
		}
	}
	if len(parts) == 0 {
		return "tool reported an error"
	}
	return strings.Join(parts, "\n")
}

func wrapProtocolErr(ctx context.Context, err error) error {
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", errors.ErrTimeout, err)
	}
	if stderrors.Is(err, errors.ErrToolCallFailed) || stderrors.Is(err, errors.ErrToolListFailed) {
		return err
	}
	return fmt.Errorf("%w: %v", errors.ErrProtocol, err)
}
