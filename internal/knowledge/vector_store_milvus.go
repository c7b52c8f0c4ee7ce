package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/aihub/rag-qa-go/internal/hashutil"
	"github.com/aihub/rag-qa-go/internal/logger"
)

// MilvusOptions Milvus客户端配置
type MilvusOptions struct {
	Address    string
	Username   string
	Password   string
	Collection string
	VectorSize int
	Distance   string
	Database   string
	UseTLS     bool
	Timeout    time.Duration
}

type milvusVectorStore struct {
	milvusClient client.Client
	collection   string
	vectorSize   int
	distance     string
	searchParam  entity.SearchParam
	log          *zap.Logger
}

// NewMilvusVectorStore 创建Milvus向量存储
func NewMilvusVectorStore(opts MilvusOptions) (VectorStore, error) {
	if opts.Address == "" {
		opts.Address = "localhost:19530"
	}
	if opts.Collection == "" {
		opts.Collection = "documents"
	}
	if opts.VectorSize == 0 {
		opts.VectorSize = 1536
	}
	if opts.Database == "" {
		opts.Database = "default"
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	milvusClient, err := client.NewClient(
		ctx,
		client.Config{
			Address:       opts.Address,
			DBName:        opts.Database,
			Username:      opts.Username,
			Password:      opts.Password,
			EnableTLSAuth: opts.UseTLS,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	return &milvusVectorStore{
		milvusClient: milvusClient,
		collection:   opts.Collection,
		vectorSize:   opts.VectorSize,
		distance:     formatMilvusDistance(opts.Distance),
		log:          logger.Named("vector_store"),
	}, nil
}

func formatMilvusDistance(value string) string {
	switch strings.ToUpper(value) {
	case "DOT", "IP", "INNER_PRODUCT":
		return "IP"
	case "L2", "EUCLIDEAN":
		return "L2"
	default:
		return "COSINE"
	}
}

func (s *milvusVectorStore) ensureCollection(ctx context.Context) error {
	hasCollection, err := s.milvusClient.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if !hasCollection {
		schema := &entity.Schema{
			CollectionName: s.collection,
			Description:    "Deduplicated document vectors",
			Fields: []*entity.Field{
				{
					Name:       "id",
					DataType:   entity.FieldTypeVarChar,
					PrimaryKey: true,
					TypeParams: map[string]string{
						"max_length": "256",
					},
				},
				{
					Name:     "text",
					DataType: entity.FieldTypeVarChar,
					TypeParams: map[string]string{
						"max_length": "65535",
					},
				},
				{
					Name:     "fingerprint",
					DataType: entity.FieldTypeVarChar,
					TypeParams: map[string]string{
						"max_length": "64",
					},
				},
				{
					Name:     "metadata",
					DataType: entity.FieldTypeVarChar,
					TypeParams: map[string]string{
						"max_length": "65535",
					},
				},
				{
					Name:     "vector",
					DataType: entity.FieldTypeFloatVector,
					TypeParams: map[string]string{
						"dim": fmt.Sprintf("%d", s.vectorSize),
					},
				},
			},
		}

		if err := s.milvusClient.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}

		// 根据距离类型创建索引，HNSW失败时退回IVF_FLAT
		// 检索参数与实际建成的索引类型保持一致
		metric := entity.MetricType(s.distance)
		var index entity.Index
		var sp entity.SearchParam
		var indexErr error
		index, indexErr = entity.NewIndexHNSW(metric, 8, 64)
		if indexErr == nil {
			sp, indexErr = entity.NewIndexHNSWSearchParam(64)
		}
		if indexErr != nil {
			index, indexErr = entity.NewIndexIvfFlat(metric, 128)
			if indexErr != nil {
				return fmt.Errorf("failed to create index: %w", indexErr)
			}
			sp, indexErr = entity.NewIndexIvfFlatSearchParam(16)
			if indexErr != nil {
				return fmt.Errorf("failed to create search param: %w", indexErr)
			}
		}
		s.searchParam = sp
		if err := s.milvusClient.CreateIndex(ctx, s.collection, "vector", index, false); err != nil {
			s.log.Warn("Failed to create index", zap.String("collection", s.collection), zap.Error(err))
		}
	}

	if err := s.milvusClient.LoadCollection(ctx, s.collection, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	return nil
}

func (s *milvusVectorStore) ListIDs(ctx context.Context) ([]string, error) {
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}

	resultSet, err := s.milvusClient.Query(ctx, s.collection, nil, `id != ""`, []string{"id"})
	if err != nil {
		return nil, fmt.Errorf("milvus query failed: %w", err)
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, column := range resultSet {
		if column.Name() != "id" {
			continue
		}
		varcharColumn, ok := column.(*entity.ColumnVarChar)
		if !ok {
			continue
		}
		for _, id := range varcharColumn.Data() {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *milvusVectorStore) ExistingFingerprints(ctx context.Context) (map[string]struct{}, error) {
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}

	resultSet, err := s.milvusClient.Query(ctx, s.collection, nil, `fingerprint != ""`, []string{"fingerprint"})
	if err != nil {
		return nil, fmt.Errorf("milvus query failed: %w", err)
	}

	fingerprints := make(map[string]struct{})
	for _, column := range resultSet {
		if column.Name() != "fingerprint" {
			continue
		}
		if varcharColumn, ok := column.(*entity.ColumnVarChar); ok {
			for _, fingerprint := range varcharColumn.Data() {
				fingerprints[fingerprint] = struct{}{}
			}
		}
	}
	return fingerprints, nil
}

func (s *milvusVectorStore) AddUniqueByFingerprint(ctx context.Context, ids []string, texts []string, embeddings [][]float32, metadatas []map[string]interface{}) error {
	if len(ids) != len(texts) || len(ids) != len(embeddings) {
		return fmt.Errorf("mismatched input lengths: ids=%d texts=%d embeddings=%d", len(ids), len(texts), len(embeddings))
	}
	if err := s.ensureCollection(ctx); err != nil {
		return err
	}

	seen, err := s.ExistingFingerprints(ctx)
	if err != nil {
		return err
	}

	var newIDs, newTexts, newFingerprints, newMetadatas []string
	var newVectors [][]float32
	for i, text := range texts {
		fingerprint := hashutil.TextHash(text)
		if _, ok := seen[fingerprint]; ok {
			continue
		}
		seen[fingerprint] = struct{}{}

		metadata := make(map[string]interface{})
		if i < len(metadatas) {
			for k, v := range metadatas[i] {
				metadata[k] = v
			}
		}
		delete(metadata, FingerprintKey)
		metadata[FingerprintKey] = fingerprint
		metadataJSON, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}

		vector := embeddings[i]
		if len(vector) != s.vectorSize {
			padded := make([]float32, s.vectorSize)
			copy(padded, vector)
			vector = padded
		}

		newIDs = append(newIDs, ids[i])
		newTexts = append(newTexts, text)
		newFingerprints = append(newFingerprints, fingerprint)
		newMetadatas = append(newMetadatas, string(metadataJSON))
		newVectors = append(newVectors, vector)
	}

	if len(newIDs) == 0 {
		s.log.Info("No new unique documents to add", zap.Int("submitted", len(ids)))
		return nil
	}

	idColumn := entity.NewColumnVarChar("id", newIDs)
	textColumn := entity.NewColumnVarChar("text", newTexts)
	fingerprintColumn := entity.NewColumnVarChar("fingerprint", newFingerprints)
	metadataColumn := entity.NewColumnVarChar("metadata", newMetadatas)
	vectorColumn := entity.NewColumnFloatVector("vector", s.vectorSize, newVectors)

	if _, err := s.milvusClient.Insert(ctx, s.collection, "", idColumn, textColumn, fingerprintColumn, metadataColumn, vectorColumn); err != nil {
		return fmt.Errorf("milvus insert failed: %w", err)
	}

	if err := s.milvusClient.Flush(ctx, s.collection, false); err != nil {
		s.log.Warn("Failed to flush collection", zap.String("collection", s.collection), zap.Error(err))
	}

	s.log.Info("Added unique documents", zap.Int("added", len(newIDs)), zap.Int("submitted", len(ids)))
	return nil
}

func (s *milvusVectorStore) Query(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 || len(embedding) == 0 {
		return []SearchResult{}, nil
	}
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}

	// 集合已存在、本进程未建索引时默认按HNSW参数检索
	sp := s.searchParam
	if sp == nil {
		var err error
		sp, err = entity.NewIndexHNSWSearchParam(64)
		if err != nil {
			return nil, fmt.Errorf("failed to build search param: %w", err)
		}
	}
	queryVector := entity.FloatVector(embedding)
	searchResults, err := s.milvusClient.Search(
		ctx,
		s.collection,
		[]string{},
		"",
		[]string{"text", "fingerprint", "metadata"},
		[]entity.Vector{queryVector},
		"vector",
		entity.MetricType(s.distance),
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}

	if len(searchResults) == 0 {
		return []SearchResult{}, nil
	}
	result := searchResults[0]
	if result.Err != nil {
		return nil, fmt.Errorf("milvus search error: %w", result.Err)
	}
	if result.ResultCount == 0 {
		return []SearchResult{}, nil
	}

	var texts, metadataJSONs []string
	for _, field := range result.Fields {
		varcharColumn, ok := field.(*entity.ColumnVarChar)
		if !ok {
			continue
		}
		switch field.Name() {
		case "text":
			texts = varcharColumn.Data()
		case "metadata":
			metadataJSONs = varcharColumn.Data()
		}
	}

	results := make([]SearchResult, 0, result.ResultCount)
	for i := 0; i < result.ResultCount; i++ {
		text := ""
		if i < len(texts) {
			text = texts[i]
		}
		var metadata map[string]interface{}
		if i < len(metadataJSONs) && metadataJSONs[i] != "" {
			_ = json.Unmarshal([]byte(metadataJSONs[i]), &metadata)
		}
		score := float64(0)
		if i < len(result.Scores) {
			score = float64(result.Scores[i])
		}
		results = append(results, SearchResult{
			Text:     text,
			Distance: s.distanceFromScore(score),
			Metadata: metadata,
		})
	}
	return results, nil
}

// distanceFromScore 将Milvus的score统一为升序距离
func (s *milvusVectorStore) distanceFromScore(score float64) float64 {
	switch s.distance {
	case "COSINE":
		return 1 - score
	case "IP":
		return -score
	default:
		return score
	}
}

func (s *milvusVectorStore) DeleteByID(ctx context.Context, ids []string) (int, error) {
	if err := s.ensureCollection(ctx); err != nil {
		return 0, err
	}

	if len(ids) > 0 {
		quoted := make([]string, len(ids))
		for i, id := range ids {
			quoted[i] = strconv.Quote(id)
		}
		expr := fmt.Sprintf("id in [%s]", strings.Join(quoted, ", "))
		if err := s.milvusClient.Delete(ctx, s.collection, "", expr); err != nil {
			return 0, fmt.Errorf("milvus delete failed: %w", err)
		}
		if err := s.milvusClient.Flush(ctx, s.collection, false); err != nil {
			s.log.Warn("Failed to flush after delete", zap.Error(err))
		}
	}

	remaining, err := s.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	s.log.Info("Deleted documents", zap.Int("requested", len(ids)), zap.Int("remaining", len(remaining)))
	return len(remaining), nil
}

func (s *milvusVectorStore) Clear(ctx context.Context) error {
	ids, err := s.ListIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		s.log.Info("Collection already empty")
		return nil
	}
	if _, err := s.DeleteByID(ctx, ids); err != nil {
		return err
	}
	s.log.Info("Collection cleared", zap.Int("removed", len(ids)))
	return nil
}

func (s *milvusVectorStore) Ready() bool {
	if s.milvusClient == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := s.milvusClient.ListCollections(ctx)
	return err == nil
}
