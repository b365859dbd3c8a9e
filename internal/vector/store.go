package vector

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/0xnairb/mcp-aws-yolo/internal/errors"
)

// Hit is a single raw nearest-neighbor result.
type Hit struct {
	Payload map[string]any
	Score   float32
}

// CollectionInfo summarizes the state of the descriptor collection.
type CollectionInfo struct {
	Points uint64 `json:"points_count"`
	Status string `json:"status"`
}

// Store is the narrow contract over the vector database.
type Store interface {
	// EnsureCollection creates the collection with the given dimensionality,
	// dropping any existing collection of the same name first.
	EnsureCollection(ctx context.Context, dim uint64) error

	// Upsert writes one point.
	Upsert(ctx context.Context, id uint64, vec []float32, payload map[string]any) error

	// Search returns up to limit hits scoring at or above threshold.
	Search(ctx context.Context, vec []float32, limit uint64, threshold float32) ([]Hit, error)

	// CollectionInfo reports point count and collection status.
	CollectionInfo(ctx context.Context) (CollectionInfo, error)
}

var _ Store = (*QdrantStore)(nil)

// QdrantStore implements Store against a Qdrant instance over gRPC.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	timeout    time.Duration
}

// QdrantConfig holds connection settings for NewQdrantStore.
type QdrantConfig struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string

	// Timeout bounds each store operation; zero means no client-side limit.
	Timeout time.Duration
}

// NewQdrantStore connects to Qdrant and binds to the named collection.
func NewQdrantStore(cfg QdrantConfig) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create qdrant client: %w", errors.ErrServiceUnavailable, err)
	}

	return &QdrantStore{client: client, collection: cfg.Collection, timeout: cfg.Timeout}, nil
}

func (s *QdrantStore) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// EnsureCollection implements Store.
func (s *QdrantStore) EnsureCollection(ctx context.Context, dim uint64) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("%w: failed to check collection %q: %w", errors.ErrServiceUnavailable, s.collection, err)
	}
	if exists {
		if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
			return fmt.Errorf("%w: failed to delete collection %q: %w", errors.ErrServiceUnavailable, s.collection, err)
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dim,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create collection %q: %w", errors.ErrServiceUnavailable, s.collection, err)
	}
	return nil
}

// Upsert implements Store.
func (s *QdrantStore) Upsert(ctx context.Context, id uint64, vec []float32, payload map[string]any) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewIDNum(id),
				Vectors: qdrant.NewVectors(vec...),
				Payload: qdrant.NewValueMap(payload),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: upsert into %q failed: %w", errors.ErrServiceUnavailable, s.collection, err)
	}
	return nil
}

// Search implements Store.
func (s *QdrantStore) Search(ctx context.Context, vec []float32, limit uint64, threshold float32) ([]Hit, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vec...),
		Limit:          qdrant.PtrOf(limit),
		ScoreThreshold: qdrant.PtrOf(threshold),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: vector search in %q failed: %w", errors.ErrServiceUnavailable, s.collection, err)
	}

	hits := make([]Hit, 0, len(points))
	for _, p := range points {
		hits = append(hits, Hit{
			Payload: payloadToMap(p.GetPayload()),
			Score:   p.GetScore(),
		})
	}
	return hits, nil
}

// CollectionInfo implements Store.
func (s *QdrantStore) CollectionInfo(ctx context.Context) (CollectionInfo, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	info, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return CollectionInfo{}, fmt.Errorf("%w: failed to get info for %q: %w", errors.ErrServiceUnavailable, s.collection, err)
	}

	return CollectionInfo{
		Points: info.GetPointsCount(),
		Status: info.GetStatus().String(),
	}, nil
}

// payloadToMap converts a Qdrant payload into plain Go values, decoding the
// tagged variants once at this boundary.
func payloadToMap(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = valueToAny(v)
	}
	return out
}

func valueToAny(v *qdrant.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_ListValue:
		values := kind.ListValue.GetValues()
		out := make([]any, 0, len(values))
		for _, item := range values {
			out = append(out, valueToAny(item))
		}
		return out
	case *qdrant.Value_StructValue:
		return payloadToMap(kind.StructValue.GetFields())
	default:
		return nil
	}
}
