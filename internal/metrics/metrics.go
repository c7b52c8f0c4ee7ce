package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 索引与检索路径的Prometheus指标
var (
	DocumentsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ragqa_documents_received_total",
		Help: "Raw documents submitted for indexing",
	})

	DocumentsIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ragqa_documents_indexed_total",
		Help: "Documents actually persisted in the vector store",
	})

	DocumentsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ragqa_documents_skipped_total",
		Help: "Documents dropped by preprocessing or fingerprint dedup",
	})

	QueriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ragqa_queries_total",
		Help: "Similarity queries served",
	})

	IndexDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ragqa_index_duration_seconds",
		Help:    "End to end duration of one Index call",
		Buckets: prometheus.DefBuckets,
	})

	EmbeddingCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ragqa_embedding_cache_hits_total",
		Help: "Embedding cache hits",
	})

	EmbeddingCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ragqa_embedding_cache_misses_total",
		Help: "Embedding cache misses",
	})
)

// Handler 返回Prometheus指标的HTTP处理器
func Handler() http.Handler {
	return promhttp.Handler()
}
