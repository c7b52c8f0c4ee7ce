package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aihub/rag-qa-go/internal/hashutil"
	"github.com/aihub/rag-qa-go/internal/logger"
	"github.com/aihub/rag-qa-go/internal/metrics"
)

const embeddingCacheKeyPrefix = "ragqa:embedding:"

// CachedEmbedder 在Embedder外包一层Redis缓存，键为文本MD5
// 嵌入对相同输入是确定的，所以缓存命中等价于一次真实调用
// Redis故障时降级为直通，绝不以零向量顶替
type CachedEmbedder struct {
	inner  Embedder
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewCachedEmbedder 创建带缓存的嵌入器，client为nil时纯直通
func NewCachedEmbedder(inner Embedder, client *redis.Client, ttl time.Duration) *CachedEmbedder {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedEmbedder{
		inner:  inner,
		client: client,
		ttl:    ttl,
		log:    logger.Named("embedder_cache"),
	}
}

func (e *CachedEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if e.client == nil {
		return e.encodeMisses(ctx, texts)
	}

	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = embeddingCacheKeyPrefix + hashutil.TextHash(text)
	}

	cached, err := e.client.MGet(ctx, keys...).Result()
	if err != nil {
		e.log.Warn("Embedding cache read failed, falling back to provider", zap.Error(err))
		return e.encodeMisses(ctx, texts)
	}

	result := make([][]float32, len(texts))
	var missIndexes []int
	var missTexts []string
	for i, raw := range cached {
		payload, ok := raw.(string)
		if !ok {
			missIndexes = append(missIndexes, i)
			missTexts = append(missTexts, texts[i])
			continue
		}
		var embedding []float32
		if err := json.Unmarshal([]byte(payload), &embedding); err != nil {
			missIndexes = append(missIndexes, i)
			missTexts = append(missTexts, texts[i])
			continue
		}
		result[i] = embedding
		metrics.EmbeddingCacheHits.Inc()
	}

	if len(missTexts) > 0 {
		metrics.EmbeddingCacheMisses.Add(float64(len(missTexts)))
		embeddings, err := e.encodeMisses(ctx, missTexts)
		if err != nil {
			return nil, err
		}

		pipe := e.client.Pipeline()
		for j, idx := range missIndexes {
			result[idx] = embeddings[j]
			if payload, err := json.Marshal(embeddings[j]); err == nil {
				pipe.Set(ctx, keys[idx], payload, e.ttl)
			}
		}
		if _, err := pipe.Exec(ctx); err != nil {
			// 回写失败只影响下次命中率
			e.log.Warn("Embedding cache write failed", zap.Error(err))
		}
	}

	return result, nil
}

// encodeMisses 调用内层嵌入器并校验返回数量与输入一致
func (e *CachedEmbedder) encodeMisses(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings, err := e.inner.Encode(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(embeddings), len(texts))
	}
	return embeddings, nil
}

func (e *CachedEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

func (e *CachedEmbedder) Ready() bool {
	return e.inner.Ready()
}
