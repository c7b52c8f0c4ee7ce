package knowledge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aihub/rag-qa-go/internal/logger"
	"github.com/aihub/rag-qa-go/internal/metrics"
	"github.com/aihub/rag-qa-go/internal/preprocess"
)

// Indexer 文档索引流水线：预处理、嵌入、向量库写入
type Indexer struct {
	pipeline *preprocess.Pipeline
	embedder Embedder
	store    VectorStore

	// 串行化写入与前后计数，保证addedCount的delta语义
	// 查询路径不经过该锁
	mu  sync.Mutex
	log *zap.Logger
}

// NewIndexer 创建索引器
func NewIndexer(pipeline *preprocess.Pipeline, embedder Embedder, store VectorStore) *Indexer {
	return &Indexer{
		pipeline: pipeline,
		embedder: embedder,
		store:    store,
		log:      logger.Named("indexer"),
	}
}

// Index 索引一批文档，返回实际新增的文档数
// 返回值以向量库前后id数之差为准，跨批次指纹碰撞不计入
func (ix *Indexer) Index(ctx context.Context, rawDocs []Document) (int, error) {
	start := time.Now()
	defer func() {
		metrics.IndexDuration.Observe(time.Since(start).Seconds())
	}()

	ix.log.Info("Indexing started", zap.Int("documents", len(rawDocs)))
	metrics.DocumentsReceived.Add(float64(len(rawDocs)))

	prepDocs := make([]preprocess.Document, len(rawDocs))
	metadatas := make(map[string]map[string]interface{}, len(rawDocs))
	for i, doc := range rawDocs {
		prepDocs[i] = preprocess.Document{UID: doc.UID, Text: doc.Text}

		meta := make(map[string]interface{}, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		meta["uid"] = doc.UID
		metadatas[doc.UID] = meta
	}

	processed, err := ix.pipeline.Run(prepDocs)
	if err != nil {
		return 0, err
	}
	if len(processed) == 0 {
		ix.log.Warn("No indexable documents in batch", zap.Int("received", len(rawDocs)))
		metrics.DocumentsSkipped.Add(float64(len(rawDocs)))
		return 0, nil
	}

	ids := make([]string, len(processed))
	texts := make([]string, len(processed))
	validMetadatas := make([]map[string]interface{}, len(processed))
	for i, doc := range processed {
		ids[i] = doc.UID
		texts[i] = doc.Text
		validMetadatas[i] = metadatas[doc.UID]
	}

	embeddings, err := ix.embedder.Encode(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding failed: %w", err)
	}
	if len(embeddings) != len(texts) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d texts", len(embeddings), len(texts))
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	before, err := ix.store.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("vector store list failed: %w", err)
	}
	if err := ix.store.AddUniqueByFingerprint(ctx, ids, texts, embeddings, validMetadatas); err != nil {
		return 0, fmt.Errorf("vector store add failed: %w", err)
	}
	after, err := ix.store.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("vector store list failed: %w", err)
	}

	added := len(after) - len(before)
	metrics.DocumentsIndexed.Add(float64(added))
	if skipped := len(rawDocs) - added; skipped > 0 {
		metrics.DocumentsSkipped.Add(float64(skipped))
	}

	ix.log.Info("Indexing finished",
		zap.Int("received", len(rawDocs)),
		zap.Int("processed", len(processed)),
		zap.Int("added", added))
	return added, nil
}
