package daemon

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xnairb/mcp-aws-yolo/internal/errors"
	"github.com/0xnairb/mcp-aws-yolo/internal/registry"
	"github.com/0xnairb/mcp-aws-yolo/internal/router"
	"github.com/0xnairb/mcp-aws-yolo/internal/session"
)

type fakePromptRouter struct {
	servers   []registry.ServerDescriptor
	tools     []session.ToolDescriptor
	toolsErr  error
	routing   *router.RoutingResult
	execution *router.ExecutionResult
	health    *router.HealthStatus
}

func (f *fakePromptRouter) FindBestServer(_ context.Context, _ string) *router.RoutingResult {
	return f.routing
}

func (f *fakePromptRouter) Invoke(_ context.Context, _, _ string, _ map[string]any) *router.ExecutionResult {
	return f.execution
}

func (f *fakePromptRouter) Servers() []registry.ServerDescriptor {
	return f.servers
}

func (f *fakePromptRouter) ListServerTools(_ context.Context, _ string) ([]session.ToolDescriptor, error) {
	return f.tools, f.toolsErr
}

func (f *fakePromptRouter) Health(_ context.Context) *router.HealthStatus {
	return f.health
}

func TestNewAPIServer_ValidatesDependencies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		deps    APIDependencies
		wantErr string
	}{
		{
			name:    "missing router",
			deps:    APIDependencies{Addr: "localhost:8090", Logger: hclog.NewNullLogger()},
			wantErr: "router is required",
		},
		{
			name:    "missing address",
			deps:    APIDependencies{Router: &fakePromptRouter{}, Logger: hclog.NewNullLogger()},
			wantErr: "address is required",
		},
		{
			name:    "missing logger",
			deps:    APIDependencies{Router: &fakePromptRouter{}, Addr: "localhost:8090"},
			wantErr: "logger is required",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewAPIServer(tc.deps)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNewAPIServer_AppliesOptions(t *testing.T) {
	t.Parallel()

	srv, err := NewAPIServer(
		APIDependencies{Router: &fakePromptRouter{}, Addr: "localhost:8090", Logger: hclog.NewNullLogger()},
		WithCORSEnabled([]string{"https://example.com"}),
		WithShutdownTimeout(3*time.Second),
	)
	require.NoError(t, err)

	assert.True(t, srv.cors.Enabled)
	assert.Equal(t, []string{"https://example.com"}, srv.cors.AllowOrigins)
	assert.Equal(t, 3*time.Second, srv.shutdownTimeout)
}

func TestNewAPIOptions_RejectsInvalid(t *testing.T) {
	t.Parallel()

	_, err := NewAPIOptions(WithShutdownTimeout(0))
	require.Error(t, err)

	_, err = NewAPIOptions(WithCORSEnabled(nil))
	require.Error(t, err)
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "bad request maps to 400",
			err:        fmt.Errorf("%w: prompt must not be empty", errors.ErrBadRequest),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "server not found maps to 404",
			err:        fmt.Errorf("%w: aws-s3", errors.ErrServerNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "tool not found maps to 404",
			err:        fmt.Errorf("%w: create_bucket", errors.ErrToolNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "no candidates maps to 404",
			err:        errors.ErrNoCandidates,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "no selection maps to 404",
			err:        errors.ErrNoSelection,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "timeout maps to 504",
			err:        fmt.Errorf("%w: initialize", errors.ErrTimeout),
			wantStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "tool list failure maps to 502",
			err:        fmt.Errorf("%w: aws-s3", errors.ErrToolListFailed),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "tool call failure maps to 502",
			err:        fmt.Errorf("%w: create_bucket", errors.ErrToolCallFailed),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "protocol error maps to 502",
			err:        fmt.Errorf("%w: handshake", errors.ErrProtocol),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "service unavailable maps to 502",
			err:        fmt.Errorf("%w: qdrant", errors.ErrServiceUnavailable),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "unknown error maps to 500",
			err:        stdErrors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			statusErr := mapError(hclog.NewNullLogger(), tc.err)
			assert.Equal(t, tc.wantStatus, statusErr.GetStatus())
		})
	}
}

func TestHandleServers(t *testing.T) {
	t.Parallel()

	pr := &fakePromptRouter{
		servers: []registry.ServerDescriptor{
			{
				ServerID:     "aws-s3",
				Name:         "AWS S3 Server",
				Description:  "Manages buckets",
				Capabilities: []string{"storage"},
				Tools: []registry.ToolRef{
					{Name: "create_bucket"},
					{Name: "list_buckets"},
				},
			},
		},
	}

	resp, err := handleServers(pr)
	require.NoError(t, err)
	require.Len(t, resp.Body, 1)
	assert.Equal(t, "aws-s3", resp.Body[0].ServerID)
	assert.Equal(t, []string{"create_bucket", "list_buckets"}, resp.Body[0].Tools)
}
