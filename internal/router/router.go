package router

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/sync/errgroup"

	"github.com/0xnairb/mcp-aws-yolo/internal/config"
	"github.com/0xnairb/mcp-aws-yolo/internal/errors"
	"github.com/0xnairb/mcp-aws-yolo/internal/llm"
	"github.com/0xnairb/mcp-aws-yolo/internal/registry"
	"github.com/0xnairb/mcp-aws-yolo/internal/secrets"
	"github.com/0xnairb/mcp-aws-yolo/internal/session"
	"github.com/0xnairb/mcp-aws-yolo/internal/template"
	"github.com/0xnairb/mcp-aws-yolo/internal/vector"
)

// CandidateSearcher retrieves candidate servers by semantic similarity.
type CandidateSearcher interface {
	Search(ctx context.Context, query string, limit int, threshold float64) ([]vector.Candidate, error)
}

// IntentAnalyzer extracts structured intent from a prompt.
type IntentAnalyzer interface {
	Analyze(ctx context.Context, prompt string) llm.Intent
}

// CandidateSelector picks one candidate, or nil when none fits.
type CandidateSelector interface {
	Select(ctx context.Context, intent llm.Intent, candidates []vector.Candidate, originalPrompt string) *vector.Candidate
}

// ToolSessions is the session-manager surface the router depends on.
type ToolSessions interface {
	ListTools(ctx context.Context, serverID string, spec template.LaunchSpec) ([]session.ToolDescriptor, error)
	CallTool(ctx context.Context, serverID string, spec template.LaunchSpec, tool string, args map[string]any) ([]session.ToolContent, error)
	DisconnectAll()
}

// VectorHealth reports the state of the descriptor collection.
type VectorHealth interface {
	CollectionInfo(ctx context.Context) (vector.CollectionInfo, error)
}

// Dependencies declares everything a Router needs to operate.
type Dependencies struct {
	Registry  *registry.Registry
	Secrets   secrets.Store
	Retriever CandidateSearcher
	Analyzer  IntentAnalyzer
	Selector  CandidateSelector
	Sessions  ToolSessions
	Vector    VectorHealth
	Search    config.SearchConfig
	Logger    hclog.Logger
}

// Validate ensures all required dependencies are present.
func (d Dependencies) Validate() error {
	if d.Registry == nil {
		return fmt.Errorf("registry is required")
	}
	if d.Retriever == nil {
		return fmt.Errorf("retriever is required")
	}
	if d.Analyzer == nil {
		return fmt.Errorf("intent analyzer is required")
	}
	if d.Selector == nil {
		return fmt.Errorf("candidate selector is required")
	}
	if d.Sessions == nil {
		return fmt.Errorf("session manager is required")
	}
	if d.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	return nil
}

// Router binds retrieval, selection, the registry and live sessions into the
// two top-level operations every surface exposes: route a prompt to a server,
// and invoke a tool on a server.
type Router struct {
	deps   Dependencies
	logger hclog.Logger
}

// New validates the dependency set and returns a ready Router.
func New(deps Dependencies) (*Router, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrBadRequest, err)
	}

	return &Router{
		deps:   deps,
		logger: deps.Logger.Named("router"),
	}, nil
}

// FindBestServer routes a natural-language prompt to the most suitable
// registered server. The result is always populated; Success false plus Error
// report routing failures in-band.
func (r *Router) FindBestServer(ctx context.Context, prompt string) *RoutingResult {
	start := time.Now()

	var (
		intent     llm.Intent
		candidates []vector.Candidate
	)

	// Intent extraction and the similarity search only need the raw prompt,
	// so they run concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		intent = r.deps.Analyzer.Analyze(gctx, prompt)
		return nil
	})
	g.Go(func() error {
		var err error
		candidates, err = r.deps.Retriever.Search(gctx, prompt, r.deps.Search.Limit, r.deps.Search.SimilarityThreshold)
		return err
	})
	if err := g.Wait(); err != nil {
		return r.routingFailure(start, intent, fmt.Sprintf("candidate search failed: %v", err))
	}

	if len(candidates) == 0 {
		widened := prompt
		if len(intent.Keywords) > 0 {
			widened = prompt + " " + strings.Join(intent.Keywords, " ")
		}
		threshold := r.deps.Search.SimilarityThreshold * r.deps.Search.WideningFactor

		r.logger.Debug("No candidates at primary threshold, widening", "threshold", threshold)

		var err error
		candidates, err = r.deps.Retriever.Search(ctx, widened, r.deps.Search.Limit, threshold)
		if err != nil {
			return r.routingFailure(start, intent, fmt.Sprintf("candidate search failed: %v", err))
		}
	}

	if len(candidates) == 0 {
		return r.routingFailure(start, intent, "no suitable server found for the prompt")
	}

	chosen := r.deps.Selector.Select(ctx, intent, candidates, prompt)
	if chosen == nil {
		return r.routingFailure(start, intent, "no candidate matched the prompt's intent")
	}

	desc, ok := r.deps.Registry.Lookup(chosen.ServerID)
	if !ok {
		return r.routingFailure(start, intent, fmt.Sprintf("server '%s' selected but not present in registry", chosen.ServerID))
	}

	match := &ServerMatch{
		ServerID:        desc.ServerID,
		Name:            desc.Name,
		Description:     desc.Description,
		SimilarityScore: chosen.SimilarityScore,
		Capabilities:    desc.Capabilities,
		Tools:           staticTools(desc),
	}

	if desc.DynamicDiscovery && len(desc.Tools) == 0 {
		spec := template.Expand(desc, r.deps.Secrets)
		tools, err := r.deps.Sessions.ListTools(ctx, desc.ServerID, spec)
		if err != nil {
			r.logger.Warn("Dynamic tool discovery failed, continuing with registry data", "server", desc.ServerID, "error", err)
		} else {
			match.Tools = tools
		}
	}

	result := &RoutingResult{
		Success:       true,
		Server:        match,
		Intent:        &intent,
		ExecutionTime: time.Since(start).Seconds(),
	}

	// Without an LLM verdict the similarity score stands in for confidence.
	result.Confidence = chosen.SimilarityScore
	if v, ok := chosen.Metadata[llm.MetaConfidence].(float64); ok {
		result.Confidence = v
	}
	if v, ok := chosen.Metadata[llm.MetaReasoning].(string); ok {
		result.Reasoning = v
	}
	if v, ok := chosen.Metadata[llm.MetaRecommendedTool].(string); ok {
		result.RecommendedTool = v
	}

	r.logger.Info("Routed prompt",
		"server", match.ServerID,
		"similarity", match.SimilarityScore,
		"confidence", result.Confidence,
		"duration", time.Since(start),
	)

	return result
}

func (r *Router) routingFailure(start time.Time, intent llm.Intent, msg string) *RoutingResult {
	r.logger.Warn("Routing failed", "error", msg)

	return &RoutingResult{
		Success:       false,
		Intent:        &intent,
		ExecutionTime: time.Since(start).Seconds(),
		Error:         msg,
	}
}

// Invoke executes a named tool on a registered server. The tool is resolved
// against the server's live tool list and arguments are validated against its
// input schema before the call is made.
func (r *Router) Invoke(ctx context.Context, serverID, toolName string, params map[string]any) *ExecutionResult {
	result := &ExecutionResult{
		ServerID:   serverID,
		ToolName:   toolName,
		Parameters: params,
	}

	desc, ok := r.deps.Registry.Lookup(serverID)
	if !ok {
		result.Error = fmt.Sprintf("server '%s' not found in registry", serverID)
		return result
	}

	spec := template.Expand(desc, r.deps.Secrets)

	tools, err := r.deps.Sessions.ListTools(ctx, serverID, spec)
	if err != nil {
		result.Error = fmt.Sprintf("failed to list tools on '%s': %v", serverID, err)
		return result
	}

	tool, ok := findTool(tools, toolName)
	if !ok {
		result.Error = fmt.Sprintf("tool '%s' not found on server '%s', available tools: %s",
			toolName, serverID, strings.Join(toolNames(tools), ", "))
		return result
	}

	if err := validateArguments(tool, params, r.logger); err != nil {
		result.Error = err.Error()
		return result
	}

	content, err := r.deps.Sessions.CallTool(ctx, serverID, spec, toolName, params)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Result = session.UnwrapContent(content)

	return result
}

// Servers lists every registered server descriptor.
func (r *Router) Servers() []registry.ServerDescriptor {
	return r.deps.Registry.List()
}

// ListServerTools returns the live tool list of a registered server.
func (r *Router) ListServerTools(ctx context.Context, serverID string) ([]session.ToolDescriptor, error) {
	desc, ok := r.deps.Registry.Lookup(serverID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrServerNotFound, serverID)
	}

	return r.deps.Sessions.ListTools(ctx, serverID, template.Expand(desc, r.deps.Secrets))
}

// Health reports the state of the router's dependencies.
func (r *Router) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:     "healthy",
		Components: map[string]string{},
		Servers:    r.deps.Registry.Len(),
	}

	if status.Servers == 0 {
		status.Components["registry"] = "empty"
		status.Status = "degraded"
	} else {
		status.Components["registry"] = "ok"
	}

	if r.deps.Vector != nil {
		info, err := r.deps.Vector.CollectionInfo(ctx)
		if err != nil {
			status.Components["vector_store"] = fmt.Sprintf("unavailable: %v", err)
			status.Status = "degraded"
		} else if info.Points == 0 {
			status.Components["vector_store"] = "empty collection, run index first"
			status.Status = "degraded"
		} else {
			status.Components["vector_store"] = fmt.Sprintf("ok (%d points, %s)", info.Points, info.Status)
		}
	}

	return status
}

// Close tears down any pooled sessions.
func (r *Router) Close() {
	r.deps.Sessions.DisconnectAll()
}

func staticTools(desc registry.ServerDescriptor) []session.ToolDescriptor {
	tools := make([]session.ToolDescriptor, 0, len(desc.Tools))
	for _, ref := range desc.Tools {
		tools = append(tools, session.ToolDescriptor{
			Name:        ref.Name,
			Description: ref.Description,
		})
	}
	return tools
}

func findTool(tools []session.ToolDescriptor, name string) (session.ToolDescriptor, bool) {
	for _, tool := range tools {
		if tool.Name == name {
			return tool, true
		}
	}
	return session.ToolDescriptor{}, false
}

func toolNames(tools []session.ToolDescriptor) []string {
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	return names
}

// validateArguments checks params against the tool's input schema. A schema
// that itself fails to compile is skipped with a warning so a misbehaving
// server cannot block invocation outright.
func validateArguments(tool session.ToolDescriptor, params map[string]any, logger hclog.Logger) error {
	if len(tool.InputSchema) == 0 {
		return nil
	}

	if params == nil {
		params = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(tool.InputSchema)
	docLoader := gojsonschema.NewGoLoader(params)

	res, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		logger.Warn("Tool schema did not compile, skipping validation", "tool", tool.Name, "error", err)
		return nil
	}

	if res.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(res.Errors()))
	for _, desc := range res.Errors() {
		msgs = append(msgs, desc.String())
	}

	return fmt.Errorf("%w: invalid arguments for tool '%s': %s", errors.ErrBadRequest, tool.Name, strings.Join(msgs, "; "))
}
