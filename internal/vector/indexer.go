package vector

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/0xnairb/mcp-aws-yolo/internal/registry"
)

// Indexer embeds registry descriptors and writes them into the vector store.
type Indexer struct {
	embedder Embedder
	store    Store
	logger   hclog.Logger
}

// NewIndexer wires an indexer over the given embedder and store.
func NewIndexer(logger hclog.Logger, embedder Embedder, store Store) *Indexer {
	return &Indexer{
		embedder: embedder,
		store:    store,
		logger:   logger.Named("indexer"),
	}
}

// IndexAll recreates the collection and indexes every descriptor. Point ids
// follow registry order, which is stable because List is sorted.
func (i *Indexer) IndexAll(ctx context.Context, servers []registry.ServerDescriptor) error {
	dim, err := i.embedder.Dimension(ctx)
	if err != nil {
		return err
	}

	if err := i.store.EnsureCollection(ctx, dim); err != nil {
		return err
	}

	for n, desc := range servers {
		vec, err := i.embedder.Embed(ctx, EmbeddingText(desc))
		if err != nil {
			return fmt.Errorf("failed to embed server %q: %w", desc.ServerID, err)
		}

		if err := i.store.Upsert(ctx, uint64(n), vec, descriptorPayload(desc)); err != nil {
			return fmt.Errorf("failed to index server %q: %w", desc.ServerID, err)
		}

		i.logger.Info("indexed server", "server_id", desc.ServerID)
	}

	i.logger.Info("index complete", "servers", len(servers), "dimension", dim)
	return nil
}

// EmbeddingText composes the text embedded for one descriptor: name, purpose,
// tool names with descriptions, and capabilities.
func EmbeddingText(desc registry.ServerDescriptor) string {
	tools := make([]string, 0, len(desc.Tools))
	for _, tool := range desc.Tools {
		tools = append(tools, strings.TrimSpace(tool.Name+" "+tool.Description))
	}

	return strings.TrimSpace(fmt.Sprintf(
		"Server: %s\nPurpose: %s\nTools: %s\nCapabilities: %s",
		desc.Name,
		desc.Description,
		strings.Join(tools, " "),
		strings.Join(desc.Capabilities, " "),
	))
}

// descriptorPayload is the searchable payload stored with each point. Launch
// configuration (command, args, env) deliberately stays out of the index; it
// is resolved from the registry at invoke time.
func descriptorPayload(desc registry.ServerDescriptor) map[string]any {
	tools := make([]any, 0, len(desc.Tools))
	for _, tool := range desc.Tools {
		tools = append(tools, map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
		})
	}

	caps := make([]any, 0, len(desc.Capabilities))
	for _, c := range desc.Capabilities {
		caps = append(caps, c)
	}

	return map[string]any{
		"server_id":         desc.ServerID,
		"name":              desc.Name,
		"description":       desc.Description,
		"tools":             tools,
		"capabilities":      caps,
		"dynamic_discovery": desc.DynamicDiscovery,
	}
}
