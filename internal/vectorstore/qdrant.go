package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/RahulGopathi/NewsChatbot-BE/internal/contextutil"
)

// ErrValueCountMismatch is returned by Upsert when documents and embeddings
// are not equal-length.
var ErrValueCountMismatch = errors.New("documents and embeddings count mismatch")

// QdrantIndex implements VectorIndex using Qdrant.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
	vectorSize int
	topK       int
}

// NewQdrantIndex creates a new Qdrant-backed index. urlStr should be in the
// format "http://host:port" (e.g., "http://localhost:6333"); the gRPC port is
// derived from the HTTP port. vectorSize must match the embedding model's
// output dimension and topK is the default search limit.
func NewQdrantIndex(urlStr, collection string, vectorSize, topK int) (*QdrantIndex, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	// gRPC port is conventionally the HTTP port + 1
	port := 6334
	if parsedURL.Port() != "" {
		if httpPort, err := strconv.Atoi(parsedURL.Port()); err == nil {
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantIndex{
		client:     client,
		collection: collection,
		vectorSize: vectorSize,
		topK:       topK,
	}, nil
}

// EnsureReady creates the collection with cosine distance and the payload
// indexes used for filtered search if they do not exist yet. When the
// collection already exists its vector size is validated against the
// configured embedding dimension; a mismatch is a configuration error.
func (s *QdrantIndex) EnsureReady(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		logger.InfoContext(ctx, "creating collection", "collection", s.collection, "vector_size", s.vectorSize)
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(s.vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		s.createPayloadIndexes(ctx)
		return nil
	}

	info, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}

	config := info.GetConfig()
	if config == nil || config.GetParams() == nil {
		return fmt.Errorf("collection config is invalid")
	}
	params := config.GetParams().GetVectorsConfig().GetParams()
	if params == nil {
		return fmt.Errorf("collection vectors config is invalid")
	}
	if int(params.GetSize()) != s.vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", s.vectorSize, params.GetSize())
	}

	logger.DebugContext(ctx, "collection validated", "collection", s.collection, "vector_size", s.vectorSize)
	return nil
}

// createPayloadIndexes provisions the filterable fields: publish date
// (range-queryable), source domain and categories (exact match). Failures are
// logged, not fatal; unindexed filters still work, just slower.
func (s *QdrantIndex) createPayloadIndexes(ctx context.Context) {
	logger := contextutil.LoggerFromContext(ctx)

	indexes := []struct {
		field     string
		fieldType qdrant.FieldType
	}{
		{"date_publish", qdrant.FieldType_FieldTypeDatetime},
		{"source_domain", qdrant.FieldType_FieldTypeKeyword},
		{"categories", qdrant.FieldType_FieldTypeKeyword},
	}

	for _, idx := range indexes {
		_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: s.collection,
			FieldName:      idx.field,
			FieldType:      idx.fieldType.Enum(),
		})
		if err != nil {
			logger.WarnContext(ctx, "failed to create payload index", "field", idx.field, "error", err)
			continue
		}
		logger.DebugContext(ctx, "created payload index", "field", idx.field)
	}
}

// Upsert stores documents with their embeddings. Each stored payload carries
// an "original_id" field so lookups and deletes can round-trip by the
// caller-assigned id even when the point id is a derived UUID.
func (s *QdrantIndex) Upsert(ctx context.Context, documents []map[string]any, embeddings [][]float32) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(documents) == 0 {
		logger.WarnContext(ctx, "no documents to upsert")
		return nil
	}
	if len(documents) != len(embeddings) {
		return fmt.Errorf("%w: %d documents vs %d embeddings", ErrValueCountMismatch, len(documents), len(embeddings))
	}

	points := make([]*qdrant.PointStruct, 0, len(documents))
	for i, doc := range documents {
		id, ok := doc["id"].(string)
		if !ok || id == "" {
			logger.WarnContext(ctx, "document missing id field, skipping", "title", doc["title"])
			continue
		}

		payload := sanitizePayload(doc)
		payload["original_id"] = id

		points = append(points, &qdrant.PointStruct{
			Id:      pointID(NormalizeID(id)),
			Vectors: qdrant.NewVectors(embeddings[i]...),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	if len(points) == 0 {
		logger.WarnContext(ctx, "no valid points to upsert")
		return nil
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", s.collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.InfoContext(ctx, "upserted points", "collection", s.collection, "count", len(points))
	return nil
}

// Delete removes documents by their original ids, best-effort. Ids that do
// not exist in the collection are silently skipped by the engine.
func (s *QdrantIndex) Delete(ctx context.Context, ids []string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, pointID(NormalizeID(id)))
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete points", "collection", s.collection, "count", len(ids), "error", err)
		return fmt.Errorf("failed to delete points: %w", err)
	}

	logger.DebugContext(ctx, "deleted points", "collection", s.collection, "count", len(ids))
	return nil
}

// Search performs a filtered similarity search and returns the matching
// payloads, most-similar first.
func (s *QdrantIndex) Search(ctx context.Context, embedding []float32, params SearchParams) ([]map[string]any, error) {
	logger := contextutil.LoggerFromContext(ctx)

	limit := uint64(params.Limit)
	if params.Limit <= 0 {
		limit = uint64(s.topK)
	}

	var conditions []*qdrant.Condition

	if params.StartDate != nil || params.EndDate != nil {
		dateRange := &qdrant.DatetimeRange{}
		if params.StartDate != nil {
			dateRange.Gte = timestamppb.New(*params.StartDate)
		}
		if params.EndDate != nil {
			dateRange.Lte = timestamppb.New(*params.EndDate)
		}
		conditions = append(conditions, qdrant.NewDatetimeRange("date_publish", dateRange))
	}
	if len(params.SourceDomains) > 0 {
		conditions = append(conditions, qdrant.NewMatchKeywords("source_domain", params.SourceDomains...))
	}
	if len(params.Categories) > 0 {
		conditions = append(conditions, qdrant.NewMatchKeywords("categories", params.Categories...))
	}

	query := &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if len(conditions) > 0 {
		query.Filter = &qdrant.Filter{Must: conditions}
	}

	scored, err := s.client.Query(ctx, query)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", s.collection, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]map[string]any, 0, len(scored))
	for _, point := range scored {
		results = append(results, convertPayloadToMap(point.GetPayload()))
	}

	logger.InfoContext(ctx, "search completed", "collection", s.collection, "limit", limit, "results", len(results))
	return results, nil
}

// SearchRecent searches documents published within the last `days` days.
func (s *QdrantIndex) SearchRecent(ctx context.Context, embedding []float32, days int, limit int) ([]map[string]any, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	return s.Search(ctx, embedding, SearchParams{
		Limit:     limit,
		StartDate: &start,
		EndDate:   &end,
	})
}

// GetByID retrieves a document payload by its original id.
// Returns (nil, nil) when the document is absent.
func (s *QdrantIndex) GetByID(ctx context.Context, id string) (map[string]any, error) {
	points, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            []*qdrant.PointId{pointID(NormalizeID(id))},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve point %s: %w", id, err)
	}
	if len(points) == 0 {
		return nil, nil
	}
	return convertPayloadToMap(points[0].GetPayload()), nil
}

// pointID builds a Qdrant point id from a normalized id string.
func pointID(id string) *qdrant.PointId {
	if isUnsignedInt(id) {
		if num, err := strconv.ParseUint(id, 10, 64); err == nil {
			return qdrant.NewIDNum(num)
		}
	}
	return qdrant.NewID(id)
}

// sanitizePayload copies a document map, converting values Qdrant payloads
// cannot hold natively (time.Time becomes an RFC 3339 string, which the
// datetime payload index understands).
func sanitizePayload(doc map[string]any) map[string]any {
	payload := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		payload[k] = sanitizeValue(v)
	}
	return payload
}

func sanitizeValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.Format(time.RFC3339)
	case map[string]any:
		return sanitizePayload(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = sanitizeValue(item)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out
	default:
		return v
	}
}

// convertPayloadToMap converts a Qdrant payload to map[string]any.
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

// convertValue converts a Qdrant Value to a Go value.
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
