package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/semaphore"

	"github.com/0xnairb/mcp-aws-yolo/internal/errors"
	"github.com/0xnairb/mcp-aws-yolo/internal/template"
)

const (
	// DefaultInitTimeout bounds the spawn-and-handshake phase.
	DefaultInitTimeout = 30 * time.Second

	// DefaultCallTimeout bounds a single tool invocation.
	DefaultCallTimeout = 60 * time.Second

	// DefaultMaxEphemeral caps concurrently running ephemeral subprocesses.
	DefaultMaxEphemeral = 8

	pingTimeout = 5 * time.Second
)

// Manager owns every live connection to tool servers: one-shot ephemeral
// sessions bounded by a global spawn cap, and an optional persistent pool
// keyed by server ID. The pool mutex guards map access only; probing and
// dialing happen under a per-server lock so a stalled server never blocks
// exchanges with the others.
type Manager struct {
	logger      hclog.Logger
	dialer      Dialer
	initTimeout time.Duration
	callTimeout time.Duration
	spawnSem    *semaphore.Weighted
	persistent  bool

	mu       sync.Mutex
	sessions map[string]*Session
	connects map[string]*sync.Mutex
}

// ManagerOption mutates manager construction defaults.
type ManagerOption func(*Manager)

// WithDialer substitutes the subprocess dialer, primarily for tests.
func WithDialer(d Dialer) ManagerOption {
	return func(m *Manager) {
		m.dialer = d
	}
}

// WithInitTimeout overrides the spawn-and-handshake timeout.
func WithInitTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.initTimeout = d
		}
	}
}

// WithCallTimeout overrides the per-invocation timeout.
func WithCallTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.callTimeout = d
		}
	}
}

// WithPersistent keeps one pooled session per server instead of spawning a
// fresh subprocess for every exchange.
func WithPersistent(enabled bool) ManagerOption {
	return func(m *Manager) {
		m.persistent = enabled
	}
}

// WithMaxEphemeral overrides the ephemeral subprocess cap.
func WithMaxEphemeral(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.spawnSem = semaphore.NewWeighted(int64(n))
		}
	}
}

// NewManager creates a session manager with stdio dialing and default
// timeouts; options adjust both.
func NewManager(logger hclog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		logger:      logger.Named("session"),
		dialer:      stdioDialer,
		initTimeout: DefaultInitTimeout,
		callTimeout: DefaultCallTimeout,
		spawnSem:    semaphore.NewWeighted(DefaultMaxEphemeral),
		sessions:    make(map[string]*Session),
		connects:    make(map[string]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// CallTimeout reports the configured per-invocation timeout.
func (m *Manager) CallTimeout() time.Duration {
	return m.callTimeout
}

func (m *Manager) dial(ctx context.Context, serverID string, spec template.LaunchSpec) (*Session, error) {
	c, err := m.dialer(spec)
	if err != nil {
		return nil, wrapProtocolErr(ctx, fmt.Errorf("spawn '%s': %w", serverID, err))
	}

	s, err := newSession(ctx, serverID, c, m.initTimeout, m.logger)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("Session established", "server", serverID, "command", spec.Command)

	return s, nil
}

// withEphemeral runs fn against a freshly spawned session and always tears it
// down afterwards, holding one slot of the global spawn cap for the duration.
func (m *Manager) withEphemeral(ctx context.Context, serverID string, spec template.LaunchSpec, fn func(*Session) error) error {
	if err := m.spawnSem.Acquire(ctx, 1); err != nil {
		return wrapProtocolErr(ctx, fmt.Errorf("waiting for spawn slot for '%s': %w", serverID, err))
	}
	defer m.spawnSem.Release(1)

	s, err := m.dial(ctx, serverID, spec)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(s)
}

// exchange runs fn against either a pooled or a one-shot session, per the
// manager's mode. A pooled session that times out or breaks protocol is torn
// down immediately; the next exchange dials fresh.
func (m *Manager) exchange(ctx context.Context, serverID string, spec template.LaunchSpec, fn func(*Session) error) error {
	if m.persistent {
		s, err := m.Connect(ctx, serverID, spec)
		if err != nil {
			return err
		}

		err = fn(s)
		if stderrors.Is(err, errors.ErrTimeout) || stderrors.Is(err, errors.ErrProtocol) {
			m.logger.Warn("Evicting pooled session after transport failure", "server", serverID, "error", err)
			m.evict(serverID, s)
		}
		return err
	}
	return m.withEphemeral(ctx, serverID, spec, fn)
}

// ListTools discovers the server's current tools.
func (m *Manager) ListTools(ctx context.Context, serverID string, spec template.LaunchSpec) ([]ToolDescriptor, error) {
	var tools []ToolDescriptor

	err := m.exchange(ctx, serverID, spec, func(s *Session) error {
		listCtx, cancel := context.WithTimeout(ctx, m.callTimeout)
		defer cancel()

		var listErr error
		tools, listErr = s.ListTools(listCtx)
		return listErr
	})
	if err != nil {
		return nil, err
	}

	return tools, nil
}

// CallTool invokes a tool on the server.
func (m *Manager) CallTool(ctx context.Context, serverID string, spec template.LaunchSpec, tool string, args map[string]any) ([]ToolContent, error) {
	var content []ToolContent

	err := m.exchange(ctx, serverID, spec, func(s *Session) error {
		callCtx, cancel := context.WithTimeout(ctx, m.callTimeout)
		defer cancel()

		var callErr error
		content, callErr = s.CallTool(callCtx, tool, args)
		return callErr
	})
	if err != nil {
		return content, err
	}

	return content, nil
}

// connectLock returns the per-server lock serializing ping-and-dial for one
// server ID.
func (m *Manager) connectLock(serverID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.connects[serverID]
	if !ok {
		l = &sync.Mutex{}
		m.connects[serverID] = l
	}

	return l
}

// evict closes a pooled session and removes it from the pool, unless the pool
// entry has already been replaced by a newer session.
func (m *Manager) evict(serverID string, s *Session) {
	s.Close()

	m.mu.Lock()
	defer m.mu.Unlock()

	if cur, ok := m.sessions[serverID]; ok && cur == s {
		delete(m.sessions, serverID)
	}
}

// Connect returns a pooled session for the server, dialing one if none exists.
// A pooled session is probed with a ping before reuse; a dead one is replaced
// with a single re-dial. The pool mutex is held only for map access, so a slow
// ping or dial against one server does not stall connects to the others.
func (m *Manager) Connect(ctx context.Context, serverID string, spec template.LaunchSpec) (*Session, error) {
	lock := m.connectLock(serverID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	s, ok := m.sessions[serverID]
	m.mu.Unlock()

	if ok {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := s.Ping(pingCtx)
		cancel()
		if err == nil {
			return s, nil
		}

		m.logger.Warn("Pooled session unresponsive, re-dialing", "server", serverID, "error", err)
		m.evict(serverID, s)
	}

	s, err := m.dial(ctx, serverID, spec)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[serverID] = s
	m.mu.Unlock()

	return s, nil
}

// Disconnect tears down the pooled session for a server, if any.
func (m *Manager) Disconnect(serverID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[serverID]; ok {
		s.Close()
		delete(m.sessions, serverID)
	}
}

// DisconnectAll tears down every pooled session.
func (m *Manager) DisconnectAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		s.Close()
		delete(m.sessions, id)
	}
}

// ConnectedServers lists the IDs currently held in the persistent pool.
func (m *Manager) ConnectedServers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}

	return ids
}
