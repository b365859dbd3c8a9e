package vector

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xnairb/mcp-aws-yolo/internal/registry"
)

type fakeEmbedder struct {
	dim    uint64
	embeds []string
	err    error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.embeds = append(f.embeds, text)
	return make([]float32, f.dim), nil
}

func (f *fakeEmbedder) Dimension(context.Context) (uint64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.dim, nil
}

type fakeStore struct {
	hits      []Hit
	searchErr error

	ensuredDim uint64
	upserts    map[uint64]map[string]any

	lastLimit     uint64
	lastThreshold float32
}

func (f *fakeStore) EnsureCollection(_ context.Context, dim uint64) error {
	f.ensuredDim = dim
	return nil
}

func (f *fakeStore) Upsert(_ context.Context, id uint64, _ []float32, payload map[string]any) error {
	if f.upserts == nil {
		f.upserts = make(map[uint64]map[string]any)
	}
	f.upserts[id] = payload
	return nil
}

func (f *fakeStore) Search(_ context.Context, _ []float32, limit uint64, threshold float32) ([]Hit, error) {
	f.lastLimit = limit
	f.lastThreshold = threshold
	if f.searchErr != nil {
		return nil, f.searchErr
	}

	var out []Hit
	for _, h := range f.hits {
		if h.Score >= threshold {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeStore) CollectionInfo(context.Context) (CollectionInfo, error) {
	return CollectionInfo{Points: uint64(len(f.upserts)), Status: "green"}, nil
}

func awsDeployHit(score float32) Hit {
	return Hit{
		Score: score,
		Payload: map[string]any{
			"server_id":   "aws-deploy",
			"name":        "AWS Deploy",
			"description": "Deploys applications to AWS",
			"capabilities": []any{
				"deployment", "aws",
			},
			"tools": []any{
				map[string]any{"name": "deploy_app", "description": "Deploy an application"},
			},
		},
	}
}

func TestRetriever_Search(t *testing.T) {
	t.Parallel()

	store := &fakeStore{hits: []Hit{awsDeployHit(0.82)}}
	r := NewRetriever(hclog.NewNullLogger(), &fakeEmbedder{dim: 4}, store)

	candidates, err := r.Search(context.Background(), "deploy a web app on aws", 5, 0.3)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, "aws-deploy", c.ServerID)
	assert.Equal(t, "AWS Deploy", c.Name)
	assert.InDelta(t, 0.82, c.SimilarityScore, 1e-6)
	assert.Equal(t, []string{"deployment", "aws"}, c.Capabilities)
	require.Len(t, c.Tools, 1)
	assert.Equal(t, "deploy_app", c.Tools[0].Name)
	assert.NotNil(t, c.Metadata)

	assert.Equal(t, uint64(5), store.lastLimit)
	assert.InDelta(t, 0.3, store.lastThreshold, 1e-6)
}

func TestRetriever_Search_NeverBelowThreshold(t *testing.T) {
	t.Parallel()

	// A buggy backend that ignores its threshold argument.
	store := &fakeStore{hits: []Hit{awsDeployHit(0.82), awsDeployHit(0.1)}}
	store.hits[1].Payload["server_id"] = "weather-lookup"

	// Override Search filtering by returning everything.
	r := NewRetriever(hclog.NewNullLogger(), &fakeEmbedder{dim: 4}, leakyStore{store})

	candidates, err := r.Search(context.Background(), "deploy", 5, 0.3)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "aws-deploy", candidates[0].ServerID)
	for _, c := range candidates {
		assert.GreaterOrEqual(t, c.SimilarityScore, 0.3)
	}
}

// leakyStore returns all hits regardless of threshold.
type leakyStore struct {
	*fakeStore
}

func (l leakyStore) Search(context.Context, []float32, uint64, float32) ([]Hit, error) {
	return l.hits, nil
}

func TestRetriever_Search_EmbedError(t *testing.T) {
	t.Parallel()

	r := NewRetriever(hclog.NewNullLogger(), &fakeEmbedder{err: assert.AnError}, &fakeStore{})
	_, err := r.Search(context.Background(), "anything", 5, 0.3)
	require.Error(t, err)
}

func TestIndexer_IndexAll(t *testing.T) {
	t.Parallel()

	servers := []registry.ServerDescriptor{
		{
			ServerID:     "aws-deploy",
			Name:         "AWS Deploy",
			Description:  "Deploys applications to AWS",
			Command:      "uvx",
			Args:         []string{"--secret", "{{env:token}}"},
			Capabilities: []string{"deployment"},
			Tools:        []registry.ToolRef{{Name: "deploy_app", Description: "Deploy an application"}},
		},
		{
			ServerID:    "weather-lookup",
			Name:        "Weather",
			Description: "Looks up weather forecasts",
			Command:     "npx",
		},
	}

	embedder := &fakeEmbedder{dim: 8}
	store := &fakeStore{}
	idx := NewIndexer(hclog.NewNullLogger(), embedder, store)

	require.NoError(t, idx.IndexAll(context.Background(), servers))

	assert.Equal(t, uint64(8), store.ensuredDim)
	require.Len(t, store.upserts, 2)

	payload := store.upserts[0]
	assert.Equal(t, "aws-deploy", payload["server_id"])
	// Launch configuration never enters the index.
	assert.NotContains(t, payload, "command")
	assert.NotContains(t, payload, "args")
	assert.NotContains(t, payload, "env")

	// Embedded text covers name, purpose, tools and capabilities.
	require.NotEmpty(t, embedder.embeds)
	text := embedder.embeds[0]
	assert.Contains(t, text, "AWS Deploy")
	assert.Contains(t, text, "deploy_app")
	assert.Contains(t, text, "deployment")
}
