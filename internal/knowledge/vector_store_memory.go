package knowledge

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/aihub/rag-qa-go/internal/hashutil"
	"github.com/aihub/rag-qa-go/internal/logger"
)

type memoryRecord struct {
	id          string
	text        string
	fingerprint string
	embedding   []float32
	metadata    map[string]interface{}
}

// MemoryVectorStore 进程内向量存储，暴力扫描算距离
// 默认provider，也用于测试
type MemoryVectorStore struct {
	mu       sync.RWMutex
	records  []memoryRecord
	distance string
	log      *zap.Logger
}

// NewMemoryVectorStore 创建内存向量存储，distance为cosine或l2
func NewMemoryVectorStore(distance string) *MemoryVectorStore {
	if distance == "" {
		distance = "cosine"
	}
	return &MemoryVectorStore{
		distance: strings.ToLower(distance),
		log:      logger.Named("vector_store"),
	}
}

func (s *MemoryVectorStore) ListIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(s.records))
	ids := make([]string, 0, len(s.records))
	for _, rec := range s.records {
		if _, ok := seen[rec.id]; ok {
			continue
		}
		seen[rec.id] = struct{}{}
		ids = append(ids, rec.id)
	}
	return ids, nil
}

func (s *MemoryVectorStore) ExistingFingerprints(ctx context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fingerprints := make(map[string]struct{}, len(s.records))
	for _, rec := range s.records {
		fingerprints[rec.fingerprint] = struct{}{}
	}
	return fingerprints, nil
}

func (s *MemoryVectorStore) AddUniqueByFingerprint(ctx context.Context, ids []string, texts []string, embeddings [][]float32, metadatas []map[string]interface{}) error {
	if len(ids) != len(texts) || len(ids) != len(embeddings) {
		return fmt.Errorf("mismatched input lengths: ids=%d texts=%d embeddings=%d", len(ids), len(texts), len(embeddings))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.records)+len(ids))
	for _, rec := range s.records {
		seen[rec.fingerprint] = struct{}{}
	}

	added := 0
	for i, text := range texts {
		fingerprint := hashutil.TextHash(text)
		// 库内已有或本次调用中已被占用的指纹整条跳过
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

		s.records = append(s.records, memoryRecord{
			id:          ids[i],
			text:        text,
			fingerprint: fingerprint,
			embedding:   append([]float32(nil), embeddings[i]...),
			metadata:    metadata,
		})
		added++
	}

	if added > 0 {
		s.log.Info("Added unique documents", zap.Int("added", added), zap.Int("submitted", len(ids)))
	} else {
		s.log.Info("No new unique documents to add", zap.Int("submitted", len(ids)))
	}
	return nil
}

func (s *MemoryVectorStore) Query(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		return []SearchResult{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]SearchResult, 0, len(s.records))
	for _, rec := range s.records {
		metadata := make(map[string]interface{}, len(rec.metadata))
		for k, v := range rec.metadata {
			metadata[k] = v
		}
		results = append(results, SearchResult{
			Text:     rec.text,
			Distance: s.distanceBetween(embedding, rec.embedding),
			Metadata: metadata,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *MemoryVectorStore) DeleteByID(ctx context.Context, ids []string) (int, error) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	for _, rec := range s.records {
		if _, ok := drop[rec.id]; ok {
			continue
		}
		kept = append(kept, rec)
	}
	removed := len(s.records) - len(kept)
	s.records = kept

	s.log.Info("Deleted documents", zap.Int("removed", removed), zap.Int("remaining", len(s.records)))
	return len(s.records), nil
}

func (s *MemoryVectorStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

func (s *MemoryVectorStore) Ready() bool {
	return true
}

func (s *MemoryVectorStore) distanceBetween(a, b []float32) float64 {
	if s.distance == "l2" {
		var sum float64
		n := len(a)
		if len(b) < n {
			n = len(b)
		}
		for i := 0; i < n; i++ {
			d := float64(a[i] - b[i])
			sum += d * d
		}
		return math.Sqrt(sum)
	}
	return 1 - cosineSimilarity(a, b)
}

func cosineSimilarity(a, b []float32) float64 {
	normA := vectorNorm(a)
	normB := vectorNorm(b)
	if normA == 0 || normB == 0 {
		return 0
	}
	var dot float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (normA * normB)
}

func vectorNorm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
