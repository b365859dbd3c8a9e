package cmd

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/0xnairb/mcp-aws-yolo/internal/config"
	"github.com/0xnairb/mcp-aws-yolo/internal/flags"
	"github.com/0xnairb/mcp-aws-yolo/internal/llm"
	"github.com/0xnairb/mcp-aws-yolo/internal/registry"
	"github.com/0xnairb/mcp-aws-yolo/internal/router"
	"github.com/0xnairb/mcp-aws-yolo/internal/secrets"
	"github.com/0xnairb/mcp-aws-yolo/internal/session"
	"github.com/0xnairb/mcp-aws-yolo/internal/vector"
)

// app bundles the fully wired component graph the commands operate on.
type app struct {
	cfg      *config.Config
	registry *registry.Registry
	secrets  secrets.Store
	embedder vector.Embedder
	store    vector.Store
	router   *router.Router
	logger   hclog.Logger
}

// buildApp loads configuration, registry and secrets, connects the external
// services and wires the router. Every command that talks to servers goes
// through here so the graph is assembled exactly one way.
func buildApp(logger hclog.Logger) (*app, error) {
	loader := &config.DefaultLoader{}

	cfg, err := loader.Load(flags.ConfigFile)
	if err != nil {
		return nil, err
	}

	reg := registry.New(logger, cfg.RegistryFile)
	if err := reg.Load(); err != nil {
		return nil, err
	}

	store, err := secrets.Load(cfg.SecretsFile)
	if err != nil {
		return nil, err
	}

	embedder, err := vector.NewOllamaEmbedder(cfg.Ollama.BaseURL, cfg.Ollama.EmbeddingModel, cfg.Ollama.Timeout.Duration)
	if err != nil {
		return nil, err
	}

	completer, err := llm.NewOllamaCompleter(cfg.Ollama.BaseURL, cfg.Ollama.Model, cfg.Ollama.Timeout.Duration)
	if err != nil {
		return nil, err
	}

	vectorStore, err := vector.NewQdrantStore(vector.QdrantConfig{
		Host:       cfg.Qdrant.Host,
		Port:       cfg.Qdrant.Port,
		APIKey:     cfg.Qdrant.APIKey,
		UseTLS:     cfg.Qdrant.UseTLS,
		Collection: cfg.Qdrant.Collection,
		Timeout:    cfg.Qdrant.Timeout.Duration,
	})
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(logger,
		session.WithInitTimeout(cfg.Session.InitTimeout.Duration),
		session.WithCallTimeout(cfg.Session.CallTimeout.Duration),
		session.WithMaxEphemeral(cfg.Session.MaxEphemeral),
		session.WithPersistent(cfg.Session.Persistent),
	)

	r, err := router.New(router.Dependencies{
		Registry:  reg,
		Secrets:   store,
		Retriever: vector.NewRetriever(logger, embedder, vectorStore),
		Analyzer:  llm.NewAnalyzer(logger, completer),
		Selector:  llm.NewSelector(logger, completer),
		Sessions:  sessions,
		Vector:    vectorStore,
		Search:    cfg.Search,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to wire router: %w", err)
	}

	return &app{
		cfg:      cfg,
		registry: reg,
		secrets:  store,
		embedder: embedder,
		store:    vectorStore,
		router:   r,
		logger:   logger,
	}, nil
}
