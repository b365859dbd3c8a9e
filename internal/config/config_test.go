package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/0xnairb/mcp-aws-yolo/internal/errors"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	loader := &DefaultLoader{}
	cfg, err := loader.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_EmptyPath(t *testing.T) {
	t.Parallel()

	loader := &DefaultLoader{}
	_, err := loader.Load("   ")
	require.ErrorIs(t, err, errors.ErrConfigLoad)
}

func TestLoad_OverridesAndDefaultsMerge(t *testing.T) {
	t.Parallel()

	content := `
registry_file = "servers.json"

[ollama]
model = "llama3.1:8b"
timeout = "90s"

[search]
limit = 3
`
	path := filepath.Join(t.TempDir(), ".mcp-aws-yolo.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loader := &DefaultLoader{}
	cfg, err := loader.Load(path)
	require.NoError(t, err)

	require.Equal(t, "servers.json", cfg.RegistryFile)
	require.Equal(t, "llama3.1:8b", cfg.Ollama.Model)
	require.Equal(t, 90*time.Second, cfg.Ollama.Timeout.Duration)
	require.Equal(t, 3, cfg.Search.Limit)

	// Untouched fields keep their defaults.
	require.Equal(t, "all-minilm", cfg.Ollama.EmbeddingModel)
	require.InDelta(t, 0.3, cfg.Search.SimilarityThreshold, 1e-9)
	require.Equal(t, 8, cfg.Session.MaxEphemeral)
}

func TestLoad_Validation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
	}{
		{
			name:    "empty registry file",
			content: `registry_file = "  "`,
		},
		{
			name: "zero search limit",
			content: `
[search]
limit = 0
`,
		},
		{
			name: "threshold out of range",
			content: `
[search]
similarity_threshold = 1.5
`,
		},
		{
			name: "widening factor out of range",
			content: `
[search]
widening_factor = 0.0
`,
		},
		{
			name: "non-positive ephemeral cap",
			content: `
[session]
max_ephemeral = -1
`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "cfg.toml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))

			loader := &DefaultLoader{}
			_, err := loader.Load(path)
			require.ErrorIs(t, err, errors.ErrConfigLoad)
		})
	}
}
