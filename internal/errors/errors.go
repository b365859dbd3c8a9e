// Package errors defines domain-level errors used throughout the application.
// These errors represent business logic failures and are mapped to appropriate HTTP status codes at the API boundary.
//
// NOTE: Important for developers
// When adding a new error here, you MUST consider how it should be handled when returned from API endpoints.
//
// Unmapped errors will default to HTTP 500 Internal Server Error.
//
// Don't forget to:
// 1. Add your error to mapError (internal/daemon/api_server.go)
// 2. Add a test case to TestMapError (internal/daemon/api_server_test.go)
package errors

import (
	"errors"
)

var (
	// ErrBadRequest indicates that the caller provided invalid input, such as
	// tool arguments that fail schema validation or a malformed request body.
	// Recommended to map to HTTP 400 Bad Request.
	ErrBadRequest = errors.New("bad request")

	// ErrConfigLoad indicates that the application config, registry file or
	// secrets file is missing or malformed. Fatal at startup, never mapped
	// to an HTTP response.
	ErrConfigLoad = errors.New("configuration load failed")

	// ErrRegistryMalformed indicates that the registry source parsed but failed
	// validation, e.g. duplicate server ids or entries missing required fields.
	ErrRegistryMalformed = errors.New("registry malformed")

	// ErrServerNotFound indicates that the requested server id does not exist
	// in the registry. Recommended to map to HTTP 404 Not Found.
	ErrServerNotFound = errors.New("server not found")

	// ErrToolNotFound indicates that the requested tool does not exist on the
	// target server. The wrapping message names the unknown tool and lists the
	// tools the server actually exposes.
	// Recommended to map to HTTP 404 Not Found.
	ErrToolNotFound = errors.New("tool not found")

	// ErrNoCandidates indicates that no server in the index scored above the
	// similarity threshold for a routing request, even after the widening
	// retry. Recommended to map to HTTP 404 Not Found.
	ErrNoCandidates = errors.New("no suitable servers found")

	// ErrNoSelection indicates that candidates existed but the selection stage
	// decided none of them fits the request.
	// Recommended to map to HTTP 404 Not Found.
	ErrNoSelection = errors.New("no suitable server selected")

	// ErrServiceUnavailable indicates that an external collaborator (embedding
	// service, LLM, vector database) is unreachable. Surfaced per-request,
	// never fatal. Recommended to map to HTTP 502 Bad Gateway.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrProtocol indicates a failure in the tool-server exchange: handshake
	// failure, malformed response, or premature process exit.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrProtocol = errors.New("protocol error")

	// ErrTimeout indicates that a bounded external call exceeded its deadline.
	// The owning session is torn down; the caller decides whether to retry.
	// Recommended to map to HTTP 504 Gateway Timeout.
	ErrTimeout = errors.New("deadline exceeded")

	// ErrToolCallFailed indicates that a tool invocation returned a failure
	// payload. Recommended to map to HTTP 502 Bad Gateway.
	ErrToolCallFailed = errors.New("tool call failed")

	// ErrToolListFailed indicates that listing tools from a server failed.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrToolListFailed = errors.New("tool list failed")
)
