package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/sirupsen/logrus"
	"github.com/tieubaoca/docchat-be/config"
	"github.com/tieubaoca/docchat-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const UPSERT_BATCH_SIZE = 200

var chunkClassProperties = []*models.Property{
	{Name: "content", DataType: []string{"text"}},
	{Name: "fileId", DataType: []string{"text"}},
	{Name: "documentType", DataType: []string{"text"}},
	{Name: "section", DataType: []string{"text"}},
	{Name: "sectionTitle", DataType: []string{"text"}},
	{Name: "pageNumber", DataType: []string{"int"}},
	{Name: "pageIndex", DataType: []string{"int"}},
	{Name: "chunkType", DataType: []string{"text"}},
	{Name: "chunkPart", DataType: []string{"int"}},
	{Name: "chunkIndex", DataType: []string{"int"}},
	{Name: "wordCount", DataType: []string{"int"}},
	{Name: "startWordIndex", DataType: []string{"int"}},
	{Name: "embeddingModel", DataType: []string{"text"}},
	{Name: "uploadedAt", DataType: []string{"int"}},
}

var chunkFields = []graphql.Field{
	{Name: "content"},
	{Name: "fileId"},
	{Name: "documentType"},
	{Name: "section"},
	{Name: "sectionTitle"},
	{Name: "pageNumber"},
	{Name: "pageIndex"},
	{Name: "chunkType"},
	{Name: "chunkPart"},
	{Name: "wordCount"},
	{Name: "startWordIndex"},
	{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}, {Name: "id"}}},
}

// WeaviateStore implements VectorIndex on a Weaviate collection with
// cosine hnsw and externally supplied vectors.
type WeaviateStore struct {
	client         *weaviate.Client
	class          string
	dimension      int
	embeddingModel string
	log            *logrus.Entry
}

func NewWeaviateStore(cfg config.WeaviateStoreConfig, dimension int, embeddingModel string) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")
	clientCfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		clientCfg.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
	}
	client, err := weaviate.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	return &WeaviateStore{
		client:         client,
		class:          cfg.Class,
		dimension:      dimension,
		embeddingModel: embeddingModel,
		log:            logrus.WithField("component", "weaviate_store"),
	}, nil
}

// EnsureCollection creates the chunk class if absent. Concurrent callers
// may race on creation; the duplicate create is tolerated instead of locked.
func (s *WeaviateStore) EnsureCollection(ctx context.Context) error {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}

	for _, class := range schema.Classes {
		if class.Class == s.class {
			return nil
		}
	}

	classObj := &models.Class{
		Class:           s.class,
		Properties:      chunkClassProperties,
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
		VectorIndexConfig: map[string]interface{}{
			"distance": "cosine",
		},
	}
	if err := s.client.Schema().ClassCreator().WithClass(classObj).Do(ctx); err != nil {
		// Lost the create race; the collection exists now, which is all we need.
		if strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return fmt.Errorf("failed to create %s class: %w", s.class, err)
	}
	return nil
}

func (s *WeaviateStore) UpsertChunks(ctx context.Context, chunks []types.EmbeddedChunk) error {
	uploadedAt := time.Now().Unix()
	total := len(chunks)
	for i := 0; i < total; i += UPSERT_BATCH_SIZE {
		end := i + UPSERT_BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			batcher = batcher.WithObjects(&models.Object{
				ID:         strfmt.UUID(chunks[j].ID),
				Class:      s.class,
				Properties: s.chunkProperties(chunks[j].Chunk, j, uploadedAt),
				Vector:     chunks[j].Embedding,
			})
		}

		if _, err := batcher.Do(ctx); err != nil {
			return fmt.Errorf("failed to upsert batch %d-%d: %w", i, end, err)
		}
		s.log.WithField("batch_end", end).WithField("total", total).Debug("upserted chunk batch")
	}
	return nil
}

func (s *WeaviateStore) chunkProperties(chunk types.Chunk, chunkIndex int, uploadedAt int64) map[string]interface{} {
	md := chunk.Metadata
	return map[string]interface{}{
		"content":        chunk.Content,
		"fileId":         md.FileID,
		"documentType":   string(md.DocumentType),
		"section":        string(md.SourceKind),
		"sectionTitle":   md.SectionTitle,
		"pageNumber":     md.PageNumber,
		"pageIndex":      md.PageIndex,
		"chunkType":      md.ChunkType,
		"chunkPart":      md.ChunkPart,
		"chunkIndex":     chunkIndex,
		"wordCount":      md.WordCount,
		"startWordIndex": md.StartWordIndex,
		"embeddingModel": s.embeddingModel,
		"uploadedAt":     uploadedAt,
	}
}

func (s *WeaviateStore) SearchSimilar(ctx context.Context, vector []float32, limit int, filter *SearchFilter) ([]types.ScoredChunk, error) {
	// A zero vector is the embedding fallback; unfiltered it would rank
	// the whole collection arbitrarily.
	if IsZeroVector(vector) && filter.IsEmpty() {
		s.log.Warn("similarity search with zero vector and no filter, returning empty result")
		return nil, nil
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)
	getBuilder := s.client.GraphQL().Get().
		WithClassName(s.class).
		WithFields(chunkFields...).
		WithNearVector(nearVector)
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}
	if where := buildSearchFilter(filter); where != nil {
		getBuilder = getBuilder.WithWhere(where)
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("similarity search failed: %v", result.Errors[0].Message)
	}

	return s.parseChunks(result, false), nil
}

func (s *WeaviateStore) SearchByFileID(ctx context.Context, fileID string, limit int) ([]types.ScoredChunk, error) {
	return s.searchByFilter(ctx, &SearchFilter{FileID: fileID}, limit)
}

func (s *WeaviateStore) SearchByFileIDAndPage(ctx context.Context, fileID string, pageNumber, limit int) ([]types.ScoredChunk, error) {
	return s.searchByFilter(ctx, &SearchFilter{FileID: fileID, PageNumber: pageNumber}, limit)
}

func (s *WeaviateStore) searchByFilter(ctx context.Context, filter *SearchFilter, limit int) ([]types.ScoredChunk, error) {
	getBuilder := s.client.GraphQL().Get().
		WithClassName(s.class).
		WithFields(chunkFields...).
		WithWhere(buildSearchFilter(filter))
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("filtered search failed: %w", err)
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("filtered search failed: %v", result.Errors[0].Message)
	}

	// Membership semantics: the caller asked for everything matching the
	// filter, so every hit scores 1.0.
	return s.parseChunks(result, true), nil
}

func (s *WeaviateStore) DeleteByFileID(ctx context.Context, fileID string) error {
	where := filters.Where().
		WithPath([]string{"fileId"}).
		WithOperator(filters.Equal).
		WithValueText(fileID)

	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(s.class).
		WithWhere(where).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete chunks for file %s: %w", fileID, err)
	}
	return nil
}

func (s *WeaviateStore) GetStats(ctx context.Context) (*types.IndexStats, error) {
	result, err := s.client.GraphQL().Aggregate().
		WithClassName(s.class).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate collection: %w", err)
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("failed to aggregate collection: %v", result.Errors[0].Message)
	}

	stats := &types.IndexStats{
		VectorDimension: s.dimension,
		CollectionName:  s.class,
	}
	if agg, ok := result.Data["Aggregate"].(map[string]interface{}); ok {
		if items, ok := agg[s.class].([]interface{}); ok && len(items) > 0 {
			if item, ok := items[0].(map[string]interface{}); ok {
				if meta, ok := item["meta"].(map[string]interface{}); ok {
					if count, ok := meta["count"].(float64); ok {
						stats.PointCount = int64(count)
					}
				}
			}
		}
	}
	return stats, nil
}

func (s *WeaviateStore) HealthCheck(ctx context.Context) error {
	ready, err := s.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate readiness probe failed: %w", err)
	}
	if !ready {
		return fmt.Errorf("weaviate is not ready")
	}
	return nil
}

func (s *WeaviateStore) parseChunks(result *models.GraphQLResponse, fixedScore bool) []types.ScoredChunk {
	var chunks []types.ScoredChunk
	data, ok := result.Data["Get"].(map[string]interface{})[s.class].([]interface{})
	if !ok {
		return chunks
	}
	for _, item := range data {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		chunk := types.ScoredChunk{
			Score:   1.0,
			Content: getString(obj, "content"),
			Metadata: types.ChunkMetadata{
				SourceKind:     types.SourceKind(getString(obj, "section")),
				FileID:         getString(obj, "fileId"),
				DocumentType:   types.DocumentType(getString(obj, "documentType")),
				PageNumber:     getInt(obj, "pageNumber"),
				PageIndex:      getInt(obj, "pageIndex"),
				SectionTitle:   getString(obj, "sectionTitle"),
				ChunkType:      getString(obj, "chunkType"),
				ChunkPart:      getInt(obj, "chunkPart"),
				WordCount:      getInt(obj, "wordCount"),
				StartWordIndex: getInt(obj, "startWordIndex"),
			},
		}
		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			if id, ok := additional["id"].(string); ok {
				chunk.ID = id
			}
			if !fixedScore {
				if certainty, ok := additional["certainty"].(float64); ok {
					chunk.Score = float32(certainty)
				}
			}
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// buildSearchFilter converts a SearchFilter into a weaviate where clause.
// Returns nil for an empty filter.
func buildSearchFilter(filter *SearchFilter) *filters.WhereBuilder {
	if filter.IsEmpty() {
		return nil
	}

	var operands []*filters.WhereBuilder
	if filter.FileID != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{"fileId"}).
			WithOperator(filters.Equal).
			WithValueText(filter.FileID))
	}
	if filter.DocumentType != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{"documentType"}).
			WithOperator(filters.Equal).
			WithValueText(filter.DocumentType))
	}
	if filter.PageNumber > 0 {
		operands = append(operands, filters.Where().
			WithPath([]string{"pageNumber"}).
			WithOperator(filters.Equal).
			WithValueInt(int64(filter.PageNumber)))
	}

	if len(operands) == 1 {
		return operands[0]
	}
	return filters.Where().WithOperator(filters.And).WithOperands(operands)
}

// IsZeroVector reports whether every component of v is zero.
func IsZeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Helper functions
func getString(obj map[string]interface{}, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}

func getInt(obj map[string]interface{}, key string) int {
	if v, ok := obj[key].(float64); ok {
		return int(v)
	}
	return 0
}
