// Package config loads and validates the application configuration file
// (.mcp-aws-yolo.toml). All fields have working defaults so a missing file is
// only an error when the caller explicitly requires one.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/0xnairb/mcp-aws-yolo/internal/errors"
)

var _ Loader = (*DefaultLoader)(nil)

// Loader loads application configuration from a file path.
type Loader interface {
	Load(path string) (*Config, error)
}

// DefaultLoader is the file-backed Loader used by the CLI.
type DefaultLoader struct{}

// Config represents the .mcp-aws-yolo.toml file structure.
type Config struct {
	// ServerName is the name announced on the MCP stdio surface.
	ServerName string `toml:"server_name"`

	// RegistryFile is the path to the JSON server registry.
	RegistryFile string `toml:"registry_file"`

	// SecretsFile is the path to the flat TOML secrets map consulted by
	// launch-config templating.
	SecretsFile string `toml:"secrets_file"`

	Ollama  OllamaConfig  `toml:"ollama"`
	Qdrant  QdrantConfig  `toml:"qdrant"`
	Search  SearchConfig  `toml:"search"`
	Session SessionConfig `toml:"session"`
}

// OllamaConfig holds settings for the embedding and completion services.
type OllamaConfig struct {
	// BaseURL of the Ollama HTTP API.
	BaseURL string `toml:"base_url"`

	// Model used for intent analysis and server selection.
	Model string `toml:"model"`

	// EmbeddingModel used to embed server descriptors and queries.
	EmbeddingModel string `toml:"embedding_model"`

	// Timeout bounds each embedding or completion call.
	Timeout duration `toml:"timeout"`
}

// QdrantConfig holds vector database connection settings.
type QdrantConfig struct {
	Host   string `toml:"host"`
	Port   int    `toml:"port"`
	APIKey string `toml:"api_key"`
	UseTLS bool   `toml:"use_tls"`

	// Collection is the name of the server-descriptor collection.
	Collection string `toml:"collection"`

	// Timeout bounds each search or upsert call.
	Timeout duration `toml:"timeout"`
}

// SearchConfig holds candidate retrieval and selection parameters.
type SearchConfig struct {
	// Limit is the maximum number of candidates returned per search.
	Limit int `toml:"limit"`

	// SimilarityThreshold is the minimum score for a hit to become a candidate.
	SimilarityThreshold float64 `toml:"similarity_threshold"`

	// WideningFactor lowers the threshold on the single fallback retry when
	// the primary search returns nothing.
	WideningFactor float64 `toml:"widening_factor"`
}

// SessionConfig holds tool-server session settings.
type SessionConfig struct {
	// InitTimeout bounds subprocess spawn plus protocol handshake.
	InitTimeout duration `toml:"init_timeout"`

	// CallTimeout bounds a single list-tools or call-tool exchange.
	CallTimeout duration `toml:"call_timeout"`

	// MaxEphemeral caps concurrent ephemeral subprocess spawns.
	MaxEphemeral int `toml:"max_ephemeral"`

	// Persistent keeps sessions pooled by server id instead of creating one
	// subprocess per call.
	Persistent bool `toml:"persistent"`
}

// duration wraps time.Duration so values can be written as "30s" in TOML.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns a Config populated with working defaults.
func Default() *Config {
	return &Config{
		ServerName:   "mcp-aws-yolo",
		RegistryFile: "mcp_registry.json",
		SecretsFile:  "secrets.toml",
		Ollama: OllamaConfig{
			BaseURL:        "http://localhost:11434",
			Model:          "gpt-oss:20b",
			EmbeddingModel: "all-minilm",
			Timeout:        duration{60 * time.Second},
		},
		Qdrant: QdrantConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "mcp_servers",
			Timeout:    duration{30 * time.Second},
		},
		Search: SearchConfig{
			Limit:               5,
			SimilarityThreshold: 0.3,
			WideningFactor:      0.8,
		},
		Session: SessionConfig{
			InitTimeout:  duration{30 * time.Second},
			CallTimeout:  duration{60 * time.Second},
			MaxEphemeral: 8,
		},
	}
}

// Load reads and validates the config file at path. A missing file yields the
// defaults; any other read or parse failure is an error.
func (d *DefaultLoader) Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", errors.ErrConfigLoad)
	}

	cfg := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("%w: failed to stat config file (%s): %w", errors.ErrConfigLoad, path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to decode config from file (%s): %w", errors.ErrConfigLoad, path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: failed to validate config (%s): %w", errors.ErrConfigLoad, path, err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.RegistryFile) == "" {
		return fmt.Errorf("registry_file cannot be empty")
	}
	if c.Search.Limit < 1 {
		return fmt.Errorf("search.limit must be positive, got %d", c.Search.Limit)
	}
	if c.Search.SimilarityThreshold < 0 || c.Search.SimilarityThreshold > 1 {
		return fmt.Errorf("search.similarity_threshold must be in [0,1], got %v", c.Search.SimilarityThreshold)
	}
	if c.Search.WideningFactor <= 0 || c.Search.WideningFactor > 1 {
		return fmt.Errorf("search.widening_factor must be in (0,1], got %v", c.Search.WideningFactor)
	}
	if c.Session.MaxEphemeral < 1 {
		return fmt.Errorf("session.max_ephemeral must be positive, got %d", c.Session.MaxEphemeral)
	}
	return nil
}
