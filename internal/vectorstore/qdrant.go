package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"hybridrag/internal/contextutil"
)

// QdrantStore implements VectorStore on one Qdrant collection.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantStore creates a Qdrant-backed store for collection.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port is taken as the HTTP port + 1.
func NewQdrantStore(urlStr, collection string) (*QdrantStore, error) {
	host, port, err := grpcAddress(urlStr)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{
		client:     client,
		collection: collection,
	}, nil
}

// grpcAddress derives the gRPC host and port from a Qdrant HTTP URL.
func grpcAddress(urlStr string) (string, int, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err != nil {
			return "", 0, fmt.Errorf("invalid Qdrant port %q: %w", parsedURL.Port(), err)
		}
		port = httpPort + 1
	}
	return host, port, nil
}

// Close releases the gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// Add upserts points with their payload.
func (s *QdrantStore) Add(ctx context.Context, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		qdrantPoints = append(qdrantPoints, &qdrant.PointStruct{
			Id:      qdrant.NewID(point.ID),
			Vectors: qdrant.NewVectors(point.Vec...),
			Payload: qdrant.NewValueMap(payloadFor(point)),
		})
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         qdrantPoints,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", s.collection, "count", len(points), "error", err)
		return fmt.Errorf("%w: failed to upsert points: %w", ErrUnavailable, err)
	}

	logger.DebugContext(ctx, "upserted points", "collection", s.collection, "count", len(points))
	return nil
}

// Query runs a cosine search. Qdrant reports similarity, which is turned into
// distance as 1 - similarity.
func (s *QdrantStore) Query(ctx context.Context, vec []float32, topK int, filter map[string]any) ([]Hit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if topK <= 0 {
		return []Hit{}, nil
	}

	qdrantFilter, err := buildFilter(filter)
	if err != nil {
		return nil, err
	}

	limit := uint64(topK)
	queryReq := &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vec...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         qdrantFilter,
	}

	scoredPoints, err := s.client.Query(ctx, queryReq)
	if err != nil {
		logger.ErrorContext(ctx, "failed to query points", "collection", s.collection, "top_k", topK, "error", err)
		return nil, fmt.Errorf("%w: failed to query points: %w", ErrUnavailable, err)
	}

	hits := make([]Hit, 0, len(scoredPoints))
	for _, sp := range scoredPoints {
		id := ""
		if sp.Id != nil {
			id = sp.Id.GetUuid()
		}
		var payload map[string]any
		if sp.Payload != nil {
			payload = convertPayloadToMap(sp.Payload)
		}
		hits = append(hits, hitFromPayload(id, 1-float64(sp.Score), payload))
	}

	logger.DebugContext(ctx, "query completed", "collection", s.collection, "top_k", topK, "results", len(hits))
	return hits, nil
}

// DeleteByDocument removes all points whose document_id payload matches.
func (s *QdrantStore) DeleteByDocument(ctx context.Context, documentID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	wait := true
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch(KeyDocumentID, documentID)},
		}),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete document points", "collection", s.collection, "document_id", documentID, "error", err)
		return fmt.Errorf("%w: failed to delete document points: %w", ErrUnavailable, err)
	}

	logger.DebugContext(ctx, "deleted document points", "collection", s.collection, "document_id", documentID)
	return nil
}

// CountByDocument counts the points whose document_id payload matches.
func (s *QdrantStore) CountByDocument(ctx context.Context, documentID string) (int, error) {
	exact := true
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch(KeyDocumentID, documentID)},
		},
		Exact: &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count document points: %w", ErrUnavailable, err)
	}
	return int(n), nil
}

// Ping checks that the Qdrant server answers.
func (s *QdrantStore) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("%w: qdrant health check: %w", ErrUnavailable, err)
	}
	return nil
}

// EnsureCollection creates the collection with cosine distance when missing,
// and validates its vector size when present.
func (s *QdrantStore) EnsureCollection(ctx context.Context, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		logger.InfoContext(ctx, "creating collection", "collection", s.collection, "vector_size", vectorSize)
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		return nil
	}

	info, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}

	var actualSize uint64
	if config := info.GetConfig(); config != nil && config.GetParams() != nil {
		if params := config.GetParams().GetVectorsConfig().GetParams(); params != nil {
			actualSize = params.GetSize()
		}
	}
	if actualSize == 0 {
		return fmt.Errorf("could not determine collection vector size")
	}
	if int(actualSize) != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, actualSize)
	}

	logger.InfoContext(ctx, "collection validated", "collection", s.collection, "vector_size", vectorSize)
	return nil
}

// buildFilter turns an equality filter map into Qdrant must-conditions.
// Keys are sorted so the request is deterministic.
func buildFilter(filter map[string]any) (*qdrant.Filter, error) {
	if len(filter) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	must := make([]*qdrant.Condition, 0, len(keys))
	for _, k := range keys {
		v, err := normalizeFilterValue(k, filter[k])
		if err != nil {
			return nil, err
		}
		switch val := v.(type) {
		case string:
			must = append(must, qdrant.NewMatch(k, val))
		case int64:
			must = append(must, qdrant.NewMatchInt(k, val))
		case bool:
			must = append(must, qdrant.NewMatchBool(k, val))
		}
	}
	return &qdrant.Filter{Must: must}, nil
}

// convertPayloadToMap converts Qdrant payload to map[string]any.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

// convertValue converts a Qdrant Value to Go any type.
func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}
