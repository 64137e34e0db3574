package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tieubaoca/docqa-be/config"
	"github.com/tieubaoca/docqa-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const BATCH_SIZE = 200

var (
	CHUNK_CLASS        = "DocumentChunk"
	CHUNK_CLASS_OBJECT = &models.Class{
		Class: CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "text", DataType: []string{"text"}},
			{Name: "documentId", DataType: []string{"text"}},
			{Name: "sessionId", DataType: []string{"text"}},
			{Name: "documentType", DataType: []string{"text"}},
			{Name: "filename", DataType: []string{"text"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
		},
		// Vectors come from the external embedding service, never a
		// server-side vectorizer.
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}

	chunkFields = []graphql.Field{
		{Name: "text"},
		{Name: "documentId"},
		{Name: "sessionId"},
		{Name: "documentType"},
		{Name: "filename"},
		{Name: "chunkIndex"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}, {Name: "id"}}},
	}
)

type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(config config.WeaviateStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(config.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(config.Host, scheme+"://")
	cfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{
			Value: config.APIKey,
		}
		cfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     config.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %v", err)
	}

	hasChunkClass := false
	for _, class := range schema.Classes {
		if class.Class == CHUNK_CLASS {
			hasChunkClass = true
			break
		}
	}
	if !hasChunkClass {
		err = client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create DocumentChunk class: %v", err)
		}
	}
	return &WeaviateStore{
		client: client,
	}, nil
}

// Ready reports whether the weaviate instance answers its readiness endpoint.
func (s *WeaviateStore) Ready(ctx context.Context) error {
	ready, err := s.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return err
	}
	if !ready {
		return errors.New("weaviate is not ready")
	}
	return nil
}

func (s *WeaviateStore) ReInit() error {
	err := s.client.Schema().ClassDeleter().WithClassName(CHUNK_CLASS).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to delete DocumentChunk class: %v", err)
	}

	err = s.client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to create DocumentChunk class: %v", err)
	}
	return nil
}

// BatchInsertChunks stores chunks with their embeddings in fixed-size
// batches. Any per-object failure aborts the whole insert so the caller can
// roll back and keep the all-or-nothing upload invariant.
func (s *WeaviateStore) BatchInsertChunks(ctx context.Context, doc *types.Document, chunks []types.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunks and embeddings length mismatch: %d vs %d", len(chunks), len(embeddings))
	}
	total := len(chunks)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			properties := map[string]interface{}{
				"text":         chunks[j].Text,
				"documentId":   chunks[j].DocumentID,
				"sessionId":    chunks[j].SessionID,
				"documentType": string(doc.DocumentType),
				"filename":     doc.Filename,
				"chunkIndex":   chunks[j].Index,
			}
			batcher = batcher.WithObjects(&models.Object{
				Class:      CHUNK_CLASS,
				Properties: properties,
				Vector:     embeddings[j],
			})
		}

		resp, err := batcher.Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %v", i, end, err)
		}
		for _, obj := range resp {
			if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
				return fmt.Errorf("failed to insert batch %d-%d: %s", i, end, obj.Result.Errors.Error[0].Message)
			}
		}
	}
	return nil
}

// SearchSimilar runs a nearVector search restricted to the scope predicate.
func (s *WeaviateStore) SearchSimilar(ctx context.Context, vector []float32, pred types.ScopePredicate, limit int) ([]ChunkRecord, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	getBuilder := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(chunkFields...).
		WithNearVector(nearVector)
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}
	if where := buildScopeFilter(pred); where != nil {
		getBuilder = getBuilder.WithWhere(where)
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, err
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("search failed: %v", result.Errors[0].Message)
	}

	var records []ChunkRecord
	if data, ok := result.Data["Get"].(map[string]interface{})[CHUNK_CLASS].([]interface{}); ok {
		for _, item := range data {
			chunk, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			record := ChunkRecord{
				Text:         stringProp(chunk, "text"),
				DocumentID:   stringProp(chunk, "documentId"),
				SessionID:    stringProp(chunk, "sessionId"),
				DocumentType: types.DocumentType(stringProp(chunk, "documentType")),
				Filename:     stringProp(chunk, "filename"),
				Index:        intProp(chunk, "chunkIndex"),
			}
			if additional, ok := chunk["_additional"].(map[string]interface{}); ok {
				if id, ok := additional["id"].(string); ok {
					record.ID = id
				}
				if distance, ok := additional["distance"].(float64); ok {
					record.Distance = float32(distance)
				}
			}
			records = append(records, record)
		}
	}
	return records, nil
}

// CountInScope returns the number of chunks the predicate matches, via a
// meta count aggregate.
func (s *WeaviateStore) CountInScope(ctx context.Context, pred types.ScopePredicate) (int, error) {
	aggBuilder := s.client.GraphQL().Aggregate().
		WithClassName(CHUNK_CLASS).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}})
	if where := buildScopeFilter(pred); where != nil {
		aggBuilder = aggBuilder.WithWhere(where)
	}

	result, err := aggBuilder.Do(ctx)
	if err != nil {
		return 0, err
	}
	if result.Errors != nil {
		return 0, fmt.Errorf("count failed: %v", result.Errors[0].Message)
	}

	if data, ok := result.Data["Aggregate"].(map[string]interface{})[CHUNK_CLASS].([]interface{}); ok && len(data) > 0 {
		if agg, ok := data[0].(map[string]interface{}); ok {
			if meta, ok := agg["meta"].(map[string]interface{}); ok {
				if count, ok := meta["count"].(float64); ok {
					return int(count), nil
				}
			}
		}
	}
	return 0, nil
}

// DeleteInScope removes every chunk within the predicate. An unscoped
// predicate is rejected outright; cascade deletion is always bounded by a
// document, session, or type filter.
func (s *WeaviateStore) DeleteInScope(ctx context.Context, pred types.ScopePredicate) (int, error) {
	where := buildScopeFilter(pred)
	if where == nil {
		return 0, fmt.Errorf("refusing to delete without a scope filter")
	}

	// The batch deleter caps matches per call, so loop until nothing is left.
	deleted := 0
	for {
		resp, err := s.client.Batch().ObjectsBatchDeleter().
			WithClassName(CHUNK_CLASS).
			WithWhere(where).
			WithOutput("minimal").
			Do(ctx)
		if err != nil {
			return deleted, err
		}
		if resp == nil || resp.Results == nil {
			return deleted, nil
		}
		deleted += int(resp.Results.Successful)
		if resp.Results.Failed > 0 {
			return deleted, fmt.Errorf("failed to delete %d of %d matched chunks", resp.Results.Failed, resp.Results.Matches)
		}
		if resp.Results.Matches <= resp.Results.Successful {
			return deleted, nil
		}
	}
}

// buildScopeFilter translates a resolved scope predicate into a Weaviate
// where filter. Unscoped predicates translate to no filter at all.
func buildScopeFilter(pred types.ScopePredicate) *filters.WhereBuilder {
	switch {
	case pred.DocumentID != "":
		return filters.Where().
			WithPath([]string{"documentId"}).
			WithOperator(filters.Equal).
			WithValueText(pred.DocumentID)
	case pred.SessionID != "":
		return filters.Where().
			WithPath([]string{"sessionId"}).
			WithOperator(filters.Equal).
			WithValueText(pred.SessionID)
	case pred.DocumentType != "":
		return filters.Where().
			WithPath([]string{"documentType"}).
			WithOperator(filters.Equal).
			WithValueText(string(pred.DocumentType))
	default:
		return nil
	}
}

// Helper functions
func stringProp(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func intProp(m map[string]interface{}, key string) int {
	if v, ok := m[key].(float64); ok {
		return int(v)
	}
	return 0
}
