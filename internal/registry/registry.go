// Package registry maintains the in-memory table of tool-server descriptors
// loaded from a JSON source file.
//
// Loading rejects duplicate server ids: a registry file containing two entries
// with the same server_id fails with ErrRegistryMalformed rather than silently
// keeping either one.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/0xnairb/mcp-aws-yolo/internal/errors"
)

// Registry is the descriptor table. Reads are safe for concurrent use;
// mutations take the write lock.
type Registry struct {
	mu      sync.RWMutex
	path    string
	servers map[string]ServerDescriptor
	logger  hclog.Logger
}

// New returns an empty registry bound to the given source path.
func New(logger hclog.Logger, path string) *Registry {
	return &Registry{
		path:    path,
		servers: make(map[string]ServerDescriptor),
		logger:  logger.Named("registry"),
	}
}

// Load populates the table from the source file, replacing any prior content.
func (r *Registry) Load() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: registry file not found (%s)", errors.ErrConfigLoad, r.path)
		}
		return fmt.Errorf("%w: failed to read registry file (%s): %w", errors.ErrConfigLoad, r.path, err)
	}

	var doc file
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: failed to parse registry file (%s): %w", errors.ErrRegistryMalformed, r.path, err)
	}

	servers := make(map[string]ServerDescriptor, len(doc.Servers))
	for _, s := range doc.Servers {
		if strings.TrimSpace(s.ServerID) == "" {
			return fmt.Errorf("%w: entry %q has an empty server_id", errors.ErrRegistryMalformed, s.Name)
		}
		if strings.TrimSpace(s.Command) == "" {
			return fmt.Errorf("%w: server %q has an empty command", errors.ErrRegistryMalformed, s.ServerID)
		}
		if _, dup := servers[s.ServerID]; dup {
			return fmt.Errorf("%w: duplicate server_id %q", errors.ErrRegistryMalformed, s.ServerID)
		}
		servers[s.ServerID] = s
	}

	r.mu.Lock()
	r.servers = servers
	r.mu.Unlock()

	r.logger.Info("loaded server registry", "path", r.path, "servers", len(servers))
	return nil
}

// Lookup returns the descriptor for serverID and whether it exists.
func (r *Registry) Lookup(serverID string) (ServerDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.servers[serverID]
	return s, ok
}

// List returns all descriptors ordered by server id.
func (r *Registry) List() []ServerDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ServerDescriptor, 0, len(r.servers))
	for _, s := range r.servers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServerID < out[j].ServerID })
	return out
}

// Len returns the number of registered servers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.servers)
}

// Upsert adds or replaces a descriptor in the in-memory table only; call Save
// to persist.
func (r *Registry) Upsert(s ServerDescriptor) error {
	if strings.TrimSpace(s.ServerID) == "" {
		return fmt.Errorf("%w: server_id cannot be empty", errors.ErrBadRequest)
	}

	r.mu.Lock()
	r.servers[s.ServerID] = s
	r.mu.Unlock()

	r.logger.Info("upserted server", "server_id", s.ServerID)
	return nil
}

// Remove deletes a descriptor from the in-memory table, reporting whether it
// was present.
func (r *Registry) Remove(serverID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.servers[serverID]; !ok {
		return false
	}
	delete(r.servers, serverID)
	r.logger.Info("removed server", "server_id", serverID)
	return true
}

// Save writes the current table back to the source file.
func (r *Registry) Save() error {
	doc := file{Servers: r.List()}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}

	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry file (%s): %w", r.path, err)
	}

	r.logger.Info("saved server registry", "path", r.path, "servers", r.Len())
	return nil
}
