package qdrant

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/phuslu/log"
	"github.com/qdrant/go-client/qdrant"

	"taxrag/internal/domain"
	"taxrag/internal/embedding"
)

// Config holds Qdrant connection configuration.
type Config struct {
	// URL is the Qdrant server address (e.g. "https://example.qdrant.io:6334").
	URL string

	// APIKey is an optional API key for authentication.
	APIKey string

	// Collection is the named collection holding the indexed chunks.
	Collection string
}

// Index is a persistent vector index backed by a named Qdrant collection
// with cosine distance. Re-opening an Index against the same collection
// recovers previously indexed chunks without re-ingestion.
type Index struct {
	client     *qdrant.Client
	embedder   embedding.Embedder
	collection string
	logger     *log.Logger

	// mu guards the delete+recreate pair in Clear so a search never
	// observes a half-torn-down collection.
	mu        sync.RWMutex
	dimension atomic.Uint64
}

// NewIndex connects to Qdrant and returns an index over the configured
// collection. The collection itself is created lazily on first Add, once
// the embedder's dimensionality is known.
func NewIndex(cfg Config, embedder embedding.Embedder, logger *log.Logger) (*Index, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant collection is required")
	}
	if logger == nil {
		logger = &log.DefaultLogger
	}

	raw := cfg.URL
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse qdrant url: %w", err)
	}
	port := 6334
	if u.Port() != "" {
		p, err := strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid port: %w", err)
		}
		port = p
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   u.Hostname(),
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &Index{
		client:     client,
		embedder:   embedder,
		collection: cfg.Collection,
		logger:     logger,
	}, nil
}

// Add embeds all chunk texts in one batch and upserts them with freshly
// generated ids. Embedding failures reject the whole batch before
// anything is written.
func (s *Index) Add(ctx context.Context, chunks []domain.Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, &domain.IndexWriteError{Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ensureCollection(ctx, uint64(len(vectors[0]))); err != nil {
		return nil, &domain.IndexWriteError{Err: err}
	}

	ids := make([]string, len(chunks))
	points := make([]*qdrant.PointStruct, len(chunks))
	for i, ch := range chunks {
		ids[i] = uuid.NewString()
		payload := map[string]any{
			"text":        ch.Text,
			"chunk_index": int64(ch.Index),
		}
		for k, v := range ch.Metadata {
			payload[k] = v
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(ids[i]),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return nil, &domain.IndexWriteError{Err: err}
	}
	s.logger.Debug().Int("points", len(points)).Str("collection", s.collection).Msg("upserted chunks")
	return ids, nil
}

// Search embeds the query and runs nearest-neighbor lookup. A missing
// collection counts as an empty index.
func (s *Index) Search(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		k = 5
	}
	vec, err := s.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, &domain.IndexReadError{Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return nil, &domain.IndexReadError{Err: err}
	}
	if !exists {
		return nil, nil
	}

	limit := uint64(k)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vec...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, &domain.IndexReadError{Err: err}
	}

	results := make([]domain.ScoredChunk, 0, len(points))
	for _, p := range points {
		chunk := domain.Chunk{Metadata: map[string]any{}}
		for key, v := range p.Payload {
			switch key {
			case "text":
				chunk.Text = v.GetStringValue()
			case "chunk_index":
				chunk.Index = int(v.GetIntegerValue())
			default:
				chunk.Metadata[key] = extractValue(v)
			}
		}
		results = append(results, domain.ScoredChunk{Chunk: chunk, Score: p.Score})
	}
	return results, nil
}

// Clear deletes the collection and recreates an empty one under the same
// name. Safe to call when the collection does not exist.
func (s *Index) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return &domain.IndexWriteError{Err: err}
	}
	if exists {
		if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
			return &domain.IndexWriteError{Err: err}
		}
	}
	if dim := s.dimension.Load(); dim != 0 {
		if err := s.createCollection(ctx, dim); err != nil {
			return &domain.IndexWriteError{Err: err}
		}
	}
	s.logger.Info().Str("collection", s.collection).Msg("collection cleared")
	return nil
}

// Count returns the stored point count, or 0 with a warning when the
// store cannot be reached. Display use only.
func (s *Index) Count(ctx context.Context) int {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		s.logger.Warn().Err(err).Str("collection", s.collection).Msg("count unavailable")
		return 0
	}
	if !exists {
		return 0
	}
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("collection", s.collection).Msg("count unavailable")
		return 0
	}
	return int(n)
}

// Close releases the underlying gRPC connection.
func (s *Index) Close() error { return s.client.Close() }

func (s *Index) ensureCollection(ctx context.Context, dimension uint64) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return err
	}
	if exists {
		s.dimension.Store(dimension)
		return nil
	}
	return s.createCollection(ctx, dimension)
}

func (s *Index) createCollection(ctx context.Context, dimension uint64) error {
	err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return err
	}
	s.dimension.Store(dimension)
	return nil
}

// extractValue converts a Qdrant payload value back to a Go primitive.
func extractValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	default:
		return nil
	}
}
